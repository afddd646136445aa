package fallbackcache

import "testing"

func TestDeriveKeyNilRequest(t *testing.T) {
	if got := DeriveKey("Get", nil); got != "Get:null" {
		t.Errorf("DeriveKey() = %s, want Get:null", got)
	}
}

func TestDeriveKeyPrimitive(t *testing.T) {
	cases := []struct {
		name    string
		request any
		want    string
	}{
		{"string", "abc", "Get:abc"},
		{"bool", true, "Get:true"},
		{"int", 42, "Get:42"},
		{"float64", 3.5, "Get:3.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveKey("Get", tc.request); got != tc.want {
				t.Errorf("DeriveKey() = %s, want %s", got, tc.want)
			}
		})
	}
}

// P6 / S6: key determinism regardless of field insertion order.
func TestDeriveKeyFieldOrderInvariance(t *testing.T) {
	a := map[string]any{"a": 1.0, "b": 2.0}
	b := map[string]any{"b": 2.0, "a": 1.0}

	got := DeriveKey("M", a)
	want := "M:a=1&b=2"
	if got != want {
		t.Errorf("DeriveKey(a) = %s, want %s", got, want)
	}
	if got2 := DeriveKey("M", b); got2 != got {
		t.Errorf("DeriveKey(b) = %s, want %s (order invariance)", got2, got)
	}
}

func TestDeriveKeyStructFlattening(t *testing.T) {
	type req struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	got := DeriveKey("Get", req{ID: 1, Name: "alice"})
	want := "Get:id=1&name=alice"
	if got != want {
		t.Errorf("DeriveKey() = %s, want %s", got, want)
	}
}

func TestDeriveKeyTooManyFieldsFallsBackToHash(t *testing.T) {
	m := make(map[string]any, 11)
	for i := 0; i < 11; i++ {
		m[string(rune('a'+i))] = i
	}
	got := DeriveKey("M", m)
	if len(got) <= len("M:") || got[:2] != "M:" {
		t.Fatalf("DeriveKey() = %s, want M:-prefixed hash", got)
	}
	// Should not look like the sorted-pairs form (no '=' or '&').
	if containsAny(got, "=", "&") {
		t.Errorf("DeriveKey() = %s, expected hash form for >10 keys", got)
	}
}

func TestDeriveKeyDeterministicForNestedValue(t *testing.T) {
	type nested struct {
		Inner map[string]any `json:"inner"`
	}
	v := nested{Inner: map[string]any{"x": 1.0}}

	k1 := DeriveKey("M", v)
	k2 := DeriveKey("M", v)
	if k1 != k2 {
		t.Errorf("DeriveKey() not deterministic: %s != %s", k1, k2)
	}
}

func TestDjb2KnownValue(t *testing.T) {
	// djb2("") == 5381
	if got := djb2(nil); got != 5381 {
		t.Errorf("djb2(nil) = %d, want 5381", got)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
	}
	return false
}
