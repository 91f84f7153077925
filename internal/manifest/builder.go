package manifest

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/stuttgart-things/sealkit/internal/creds"
)

// ErrInvalidIdentifier indicates a secret name or namespace that is not a
// legal kubernetes identifier.
var ErrInvalidIdentifier = errors.New("invalid kubernetes identifier")

// Build assembles the unsealed manifest for one secret from a credential set.
// The name must be a DNS-1123 subdomain and the namespace a DNS-1123 label;
// every plaintext value is base64 encoded into the data section.
func Build(name, namespace string, set *creds.Set) (*SecretManifest, error) {
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return nil, fmt.Errorf("%w: secret name %q: %s", ErrInvalidIdentifier, name, errs[0])
	}

	if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
		return nil, fmt.Errorf("%w: namespace %q: %s", ErrInvalidIdentifier, namespace, errs[0])
	}

	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("no credential values provided for secret %q", name)
	}

	data := make(map[string]string, set.Len())
	for _, key := range set.Keys() {
		value, _ := set.Get(key)
		data[key] = Encode(value)
	}

	return &SecretManifest{
		Name:      name,
		Namespace: namespace,
		Type:      SecretType,
		Data:      data,
	}, nil
}
