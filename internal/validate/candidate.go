package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/stuttgart-things/sealkit/internal/inventory"
)

// Candidate is one persisted manifest under inspection. The document is kept
// as a raw map so every structural defect stays observable instead of being
// rejected at decode time.
type Candidate struct {
	File string

	doc      map[string]any
	parseErr error
}

// NewCandidate decodes one document. Decode failures are recorded, not
// returned; the checks report them.
func NewCandidate(file string, data []byte) Candidate {
	c := Candidate{File: file}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		c.parseErr = err
		return c
	}

	c.doc = doc
	return c
}

// SecretName returns the secret name the candidate claims via metadata,
// falling back to its filename when the metadata is unusable.
func (c Candidate) SecretName() string {
	if name := c.stringAt("metadata", "name"); name != "" {
		return name
	}

	base := filepath.Base(c.File)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".sealed")
}

// stringAt walks nested maps and returns the string leaf, or "".
func (c Candidate) stringAt(path ...string) string {
	var current any = map[string]any(c.doc)
	for _, step := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = node[step]
	}

	leaf, _ := current.(string)
	return leaf
}

// mapAt walks nested maps and returns the map leaf.
func (c Candidate) mapAt(path ...string) (map[string]any, bool) {
	var current any = map[string]any(c.doc)
	for _, step := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current = node[step]
	}

	leaf, ok := current.(map[string]any)
	return leaf, ok
}

// encryptedKeys returns the spec.encryptedData key names, sorted.
func (c Candidate) encryptedKeys() []string {
	data, ok := c.mapAt("spec", "encryptedData")
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// providesKey reports whether spec.encryptedData carries the key.
func (c Candidate) providesKey(key string) bool {
	data, ok := c.mapAt("spec", "encryptedData")
	if !ok {
		return false
	}
	_, found := data[key]
	return found
}

// bookkeeping files live in the manifest directory but are not manifests.
var bookkeepingFiles = map[string]bool{
	inventory.DefaultFilename: true,
	"kustomization.yaml":      true,
	"kustomization.yml":       true,
}

// LoadDirectory reads every YAML file in a flat manifest directory, sorted
// by filename. Unreadable directories and files are environmental errors;
// undecodable contents become candidates that the checks flag.
func LoadDirectory(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if bookkeepingFiles[entry.Name()] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		candidates = append(candidates, NewCandidate(path, data))
	}

	return candidates, nil
}
