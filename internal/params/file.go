package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile reads a credential values file (YAML or JSON). Both the wrapped
// form (namespace/scope plus a values mapping) and a bare logicalId→value
// mapping are accepted.
func ParseFile(path string) (*ValuesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading values file: %w", err)
	}

	var vf ValuesFile

	// Detect format by extension or try both
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &vf); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &vf); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &vf); err != nil {
			if jsonErr := json.Unmarshal(data, &vf); jsonErr != nil {
				return nil, fmt.Errorf("parsing values file (tried YAML and JSON): %w", err)
			}
		}
	}

	if vf.Values == nil {
		vf.Values = parseBareMapping(data)
	}

	if len(vf.Values) == 0 {
		return nil, fmt.Errorf("values file %s contains no credential values", path)
	}

	return &vf, nil
}

// parseBareMapping handles files written as a flat logicalId→value mapping
// without the values wrapper. The reserved namespace and scope keys belong
// to the run settings, never to a credential.
func parseBareMapping(data []byte) map[string]string {
	var flat map[string]string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil
	}

	delete(flat, "namespace")
	delete(flat, "scope")
	delete(flat, "values")

	if len(flat) == 0 {
		return nil
	}
	return flat
}

// ParseInline parses --set style strings into a logicalId→value mapping.
func ParseInline(pairs []string) (map[string]string, error) {
	result := make(map[string]string)

	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid value format: %s (expected logicalId=value)", p)
		}
		result[parts[0]] = parts[1]
	}

	return result, nil
}

// Merge merges file values with inline values (inline takes precedence).
func Merge(fileValues, inlineValues map[string]string) map[string]string {
	result := make(map[string]string)

	for k, v := range fileValues {
		result[k] = v
	}
	for k, v := range inlineValues {
		result[k] = v
	}

	return result
}
