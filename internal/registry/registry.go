package registry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownIdentifier indicates a logical id with no registry row.
var ErrUnknownIdentifier = errors.New("unknown credential identifier")

// entries is the canonical credential table for the ehrbase deployment.
// Prompt order follows the slice order.
var entries = []Entry{
	{
		LogicalID:  "api-admin-username",
		SecretName: "ehrbase-auth-users",
		Key:        "admin-username",
		Required:   true,
		Title:      "API admin username",
		Help:       "basic-auth administrator account of the API service",
		Default:    "ehrbase-admin",
	},
	{
		LogicalID:  "api-admin-password",
		SecretName: "ehrbase-auth-users",
		Key:        "admin-password",
		Required:   true,
		Title:      "API admin password",
		Sensitive:  true,
	},
	{
		LogicalID:  "api-username",
		SecretName: "ehrbase-auth-users",
		Key:        "username",
		Required:   true,
		Title:      "API user username",
		Help:       "basic-auth service account of the API service",
		Default:    "ehrbase-user",
	},
	{
		LogicalID:  "api-password",
		SecretName: "ehrbase-auth-users",
		Key:        "password",
		Required:   true,
		Title:      "API user password",
		Sensitive:  true,
	},
	{
		LogicalID:  "database-username",
		SecretName: "ehrbase-db-credentials",
		Key:        "username",
		Required:   true,
		Title:      "Database username",
		Help:       "owner role of the ehrbase database",
		Default:    "ehrbase",
	},
	{
		LogicalID:  "database-password",
		SecretName: "ehrbase-db-credentials",
		Key:        "password",
		Required:   true,
		Title:      "Database password",
		Sensitive:  true,
	},
	{
		LogicalID:  "cache-password",
		SecretName: "ehrbase-cache-credentials",
		Key:        "password",
		Required:   true,
		Title:      "Cache password",
		Help:       "AUTH password of the cache instance",
		Sensitive:  true,
	},
}

// Entries returns a copy of the full table in prompt order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup resolves a logical id to its registry row.
func Lookup(logicalID string) (Entry, error) {
	for _, e := range entries {
		if e.LogicalID == logicalID {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownIdentifier, logicalID)
}

// EntriesFor returns the rows of one secret name in prompt order.
func EntriesFor(secretName string) []Entry {
	var result []Entry
	for _, e := range entries {
		if e.SecretName == secretName {
			result = append(result, e)
		}
	}
	return result
}

// RequiredKeysFor returns the mandatory data keys of a secret name, sorted.
// Unknown names yield an empty set.
func RequiredKeysFor(secretName string) []string {
	var keys []string
	for _, e := range entries {
		if e.SecretName == secretName && e.Required {
			keys = append(keys, e.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// AllSecretNames returns every secret name in the table, sorted and unique.
func AllSecretNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		if !seen[e.SecretName] {
			seen[e.SecretName] = true
			names = append(names, e.SecretName)
		}
	}
	sort.Strings(names)
	return names
}

// KnownSecretName reports whether any row claims the given secret name.
func KnownSecretName(secretName string) bool {
	for _, e := range entries {
		if e.SecretName == secretName {
			return true
		}
	}
	return false
}

// Filename maps a secret name to its manifest filename. Provisioning writes
// and validation reads through this single mapping.
func Filename(secretName string) string {
	return secretName + ".sealed.yaml"
}
