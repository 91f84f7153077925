package params

// ValuesFile carries non-interactive provisioning input: one value per
// logical credential id, plus optional run settings that flags may override.
type ValuesFile struct {
	Namespace string            `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Scope     string            `yaml:"scope,omitempty" json:"scope,omitempty"`
	Values    map[string]string `yaml:"values" json:"values"`
}
