package manifest

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// ParseEncrypted decodes a SealedSecret document and verifies its type
// markers. It is strict: callers that want to inspect arbitrary YAML use
// their own tolerant decoding.
func ParseEncrypted(data []byte) (*EncryptedManifest, error) {
	var doc EncryptedManifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding sealed manifest: %w", err)
	}

	if doc.APIVersion != SealedAPIVersion || doc.Kind != SealedKind {
		return nil, fmt.Errorf("document is %s/%s, expected %s/%s",
			doc.APIVersion, doc.Kind, SealedAPIVersion, SealedKind)
	}

	if doc.Spec.EncryptedData == nil {
		return nil, fmt.Errorf("sealed manifest %q has no spec.encryptedData section", doc.Metadata.Name)
	}

	return &doc, nil
}
