package kustomize

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	APIVersion = "kustomize.config.k8s.io/v1beta1"
	Kind       = "Kustomization"
)

// Kustomization is the subset of a kustomization.yaml that sealed manifests
// are registered into.
type Kustomization struct {
	APIVersion string   `yaml:"apiVersion,omitempty"`
	Kind       string   `yaml:"kind,omitempty"`
	Namespace  string   `yaml:"namespace,omitempty"`
	Resources  []string `yaml:"resources"`
}

// New returns an empty kustomization with its type markers set.
func New() *Kustomization {
	return &Kustomization{APIVersion: APIVersion, Kind: Kind}
}

// Load reads and parses a kustomization.yaml file.
func Load(path string) (*Kustomization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kustomization file: %w", err)
	}

	var k Kustomization
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parsing kustomization file: %w", err)
	}

	return &k, nil
}

// Save writes a Kustomization to a YAML file.
func Save(path string, k *Kustomization) error {
	data, err := yaml.Marshal(k)
	if err != nil {
		return fmt.Errorf("marshalling kustomization: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing kustomization file: %w", err)
	}

	return nil
}

// AddResource adds a resource entry if it doesn't already exist and reports
// whether the list changed.
func AddResource(k *Kustomization, resource string) bool {
	for _, r := range k.Resources {
		if r == resource {
			return false
		}
	}
	k.Resources = append(k.Resources, resource)
	sort.Strings(k.Resources)
	return true
}

// RemoveResource removes a resource entry by value.
// Returns an error if the resource is not found.
func RemoveResource(k *Kustomization, resource string) error {
	for i, r := range k.Resources {
		if r == resource {
			k.Resources = append(k.Resources[:i], k.Resources[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("resource %q not found in kustomization", resource)
}

// Register records manifest filenames in the kustomization.yaml at path,
// creating the file when it does not exist yet. Already registered names are
// left alone; the file is rewritten only when something changed.
func Register(path string, resources []string) error {
	k, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		k = New()
	}

	changed := false
	for _, r := range resources {
		if AddResource(k, r) {
			changed = true
		}
	}

	if !changed {
		return nil
	}

	return Save(path, k)
}
