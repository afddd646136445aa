package metrics

import "fmt"

// Tag creates a formatted DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

// MethodTag creates an RPC method tag.
func MethodTag(method string) string {
	return Tag("method", method)
}

// StatusTag creates a status tag (success/failure/retry).
func StatusTag(status string) string {
	return Tag("status", status)
}

// ConnStateTag creates a connection-state tag.
func ConnStateTag(state string) string {
	return Tag("conn_state", state)
}

// CircuitStateTag creates a circuit breaker state tag.
func CircuitStateTag(state string) string {
	return Tag("circuit_state", state)
}
