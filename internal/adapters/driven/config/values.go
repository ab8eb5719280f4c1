// Package config holds the value conversions shared by config store adapters.
//
// Decoders differ in how they type numbers and lists (TOML yields int64 and
// []any, YAML yields int and []any, JSON yields float64), so stores read raw
// values through these helpers.
package config

import "strings"

// AsString returns v as a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsInt returns v as an int. Whole floats are accepted.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// AsFloat returns v as a float64. Integers are widened.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// AsBool returns v as a bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsStringSlice returns v as a string slice, dropping non-string items.
func AsStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result, true
	}
	return nil, false
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}. Lists are kept as values.
func Flatten(m map[string]any) map[string]any {
	result := make(map[string]any)
	flattenInto(result, m, "")
	return result
}

func flattenInto(dst, m map[string]any, prefix string) {
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, nested, fullKey)
			continue
		}
		dst[fullKey] = value
	}
}

// Expand converts dot-notation keys back into nested maps for writing.
func Expand(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		node := root
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
