package registry

// Entry binds one logical credential to the secret name and data key the
// deployment templates dereference. The provisioning and validation paths
// both consult this table and nothing else, so introducing a credential
// means adding exactly one row here.
type Entry struct {
	// LogicalID is the stable, purpose-level handle for the credential,
	// independent of which secret currently stores it.
	LogicalID string `yaml:"logicalId" json:"logicalId"`

	// SecretName and Key locate the credential inside the sealed manifests.
	SecretName string `yaml:"secretName" json:"secretName"`
	Key        string `yaml:"key" json:"key"`

	// Required marks keys the validator treats as mandatory for the secret.
	Required bool `yaml:"required" json:"required"`

	// Title and Help feed the interactive prompts and the bindings listing.
	Title string `yaml:"title" json:"title"`
	Help  string `yaml:"help,omitempty" json:"help,omitempty"`

	// Sensitive values are masked during input and redacted in any echo.
	Sensitive bool `yaml:"sensitive" json:"sensitive"`

	// Default is the suggested prompt value. Never set for sensitive entries.
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}
