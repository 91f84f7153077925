package inventory

// Inventory is the sealed-inventory.yaml document: a non-secret record of
// what was sealed into a manifest directory and when. It never holds
// plaintext or ciphertext, only names.
type Inventory struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Secrets    []Record `yaml:"secrets" json:"secrets"`
}

// Record describes one provisioned secret.
type Record struct {
	Name      string   `yaml:"name" json:"name"`
	Namespace string   `yaml:"namespace" json:"namespace"`
	Scope     string   `yaml:"scope" json:"scope"`
	File      string   `yaml:"file" json:"file"`
	Keys      []string `yaml:"keys" json:"keys"`
	SealedAt  string   `yaml:"sealedAt" json:"sealedAt"`
	SealedBy  string   `yaml:"sealedBy,omitempty" json:"sealedBy,omitempty"`
}
