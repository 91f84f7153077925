package manifest

import "sort"

// Wire constants for the manifests this tool produces and consumes.
const (
	SecretAPIVersion = "v1"
	SecretKind       = "Secret"
	SecretType       = "Opaque"

	SealedAPIVersion = "bitnami.com/v1alpha1"
	SealedKind       = "SealedSecret"
)

// SecretManifest is the unsealed key/value bundle assembled from a credential
// set. It exists only in memory and in the transient file handed to the
// sealing binary; it is never persisted.
type SecretManifest struct {
	Name      string
	Namespace string
	Type      string
	// Data maps each credential key to the base64 text of its plaintext value.
	Data map[string]string
}

// Keys returns the data key names, sorted.
func (m *SecretManifest) Keys() []string {
	return sortedKeys(m.Data)
}

// ObjectMeta carries the metadata fields sealkit cares about.
type ObjectMeta struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// SecretTemplate describes the Secret the cluster controller materializes
// after unsealing.
type SecretTemplate struct {
	Metadata ObjectMeta `json:"metadata,omitempty"`
	Type     string     `json:"type,omitempty"`
}

// SealedSpec is the spec section of a SealedSecret manifest.
type SealedSpec struct {
	// EncryptedData maps each credential key to its opaque ciphertext.
	EncryptedData map[string]string `json:"encryptedData"`
	Template      SecretTemplate    `json:"template"`
}

// EncryptedManifest is a persisted SealedSecret document. It is produced once
// per provisioning run by the sealing client and immutable afterwards.
type EncryptedManifest struct {
	APIVersion string     `json:"apiVersion"`
	Kind       string     `json:"kind"`
	Metadata   ObjectMeta `json:"metadata"`
	Spec       SealedSpec `json:"spec"`
}

// Keys returns the encryptedData key names, sorted.
func (m *EncryptedManifest) Keys() []string {
	return sortedKeys(m.Spec.EncryptedData)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
