package fallbackcache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DeriveKey computes a deterministic cache key from a method name and an
// opaque request value, per spec §4.C.
//
//   - nil request            -> "{method}:null"
//   - primitive value        -> "{method}:{stringified}"
//   - map/struct with <=10   -> "{method}:{k1=v1&k2=v2&...}" (keys sorted)
//     primitive-valued keys
//   - anything else          -> "{method}:{djb2(json(request))}" lowercase hex
func DeriveKey(method string, request any) string {
	if request == nil {
		return method + ":null"
	}

	if s, ok := stringifyPrimitive(request); ok {
		return method + ":" + s
	}

	if pairs, ok := flattenPrimitiveFields(request); ok {
		sort.Strings(pairs)
		return fmt.Sprintf("%s:%s", method, strings.Join(pairs, "&"))
	}

	canonical, err := json.Marshal(request)
	if err != nil {
		canonical = []byte(fmt.Sprintf("%v", request))
	}
	return fmt.Sprintf("%s:%08x", method, djb2(canonical))
}

// djb2 hashes b starting from h=5381, folding each byte with
// h = ((h<<5)+h) XOR b, reduced to unsigned 32 bits.
func djb2(b []byte) uint32 {
	var h uint32 = 5381
	for _, c := range b {
		h = ((h << 5) + h) ^ uint32(c)
	}
	return h
}

func stringifyPrimitive(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	default:
		return "", false
	}
}

// flattenPrimitiveFields attempts the spec's "object with <=10 keys, all
// primitive/nil values" form. It accepts map[string]any directly and falls
// back to a JSON round-trip for structs, since the core's request values
// are caller-defined types.
func flattenPrimitiveFields(v any) ([]string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, false
		}
		m = generic
	}

	if m == nil || len(m) > 10 {
		return nil, false
	}

	pairs := make([]string, 0, len(m))
	for k, val := range m {
		s, ok := primitiveOrNilString(val)
		if !ok {
			return nil, false
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, s))
	}
	return pairs, true
}

func primitiveOrNilString(v any) (string, bool) {
	if v == nil {
		return "null", true
	}
	switch x := v.(type) {
	case string, bool, float64, int, int64:
		return fmt.Sprintf("%v", x), true
	default:
		return "", false
	}
}
