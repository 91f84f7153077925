package creds

import (
	"errors"
	"fmt"
)

// Credential set errors.
var (
	// ErrEmptyKey indicates a credential was added without a key name.
	ErrEmptyKey = errors.New("credential key must not be empty")

	// ErrDuplicateKey indicates a credential key was added twice to the same set.
	ErrDuplicateKey = errors.New("duplicate credential key")
)

// Set holds plaintext credential values keyed by their logical key name,
// preserving the order in which they were added. Values live only in memory;
// callers are expected to Destroy the set once the values have been encoded.
type Set struct {
	keys   []string
	values map[string][]byte
}

// New returns an empty credential set.
func New() *Set {
	return &Set{values: make(map[string][]byte)}
}

// Add appends a key/value pair to the set.
// The key must be non-empty and unique within the set.
func (s *Set) Add(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if s.values == nil {
		s.values = make(map[string][]byte)
	}
	if _, exists := s.values[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	s.keys = append(s.keys, key)
	s.values[key] = value
	return nil
}

// AddString is Add for string values.
func (s *Set) AddString(key, value string) error {
	return s.Add(key, []byte(value))
}

// Get returns the value for key and whether it exists.
func (s *Set) Get(key string) ([]byte, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the key names in insertion order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of credentials in the set.
func (s *Set) Len() int {
	return len(s.keys)
}

// Destroy zeroes every plaintext value and empties the set.
// The set is unusable afterwards. Safe on a nil set.
func (s *Set) Destroy() {
	if s == nil {
		return
	}
	for _, v := range s.values {
		for i := range v {
			v[i] = 0
		}
	}
	s.keys = nil
	s.values = make(map[string][]byte)
}
