package seal

import "fmt"

// Scope selects the decryption authority granted to a sealed manifest.
type Scope string

const (
	// ScopeNamespaceWide seals for the declared namespace only.
	ScopeNamespaceWide Scope = "namespace-wide"

	// ScopeClusterWide seals for any namespace in the cluster.
	ScopeClusterWide Scope = "cluster-wide"
)

// ParseScope maps user input to a Scope.
func ParseScope(text string) (Scope, error) {
	switch Scope(text) {
	case ScopeNamespaceWide, ScopeClusterWide:
		return Scope(text), nil
	}
	return "", fmt.Errorf("unknown sealing scope %q (valid: %s, %s)",
		text, ScopeNamespaceWide, ScopeClusterWide)
}

// Flag returns the value handed to the sealing binary's --scope flag.
func (s Scope) Flag() string {
	return string(s)
}
