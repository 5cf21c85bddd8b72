package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// coerceToJSONBytes converts YAML config to JSON bytes so the strict JSON
// decoder (DisallowUnknownFields) can be reused for both formats.
//
// Returns (jsonBytes, format, err) where format is "json" or "yaml".
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, "json", nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, "yaml", fmt.Errorf("yaml unmarshal: %w", err)
	}

	j, err := json.Marshal(stringifyKeys(v))
	if err != nil {
		return nil, "yaml", fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, "yaml", nil
}

// stringifyKeys ensures all map keys are strings so the value can be
// JSON-marshaled.
func stringifyKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringifyKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringifyKeys(x[i])
		}
		return x
	default:
		return in
	}
}
