package inventory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIVersion = "sealkit.stuttgart-things.com/v1alpha1"
	DefaultKind       = "SealedInventory"

	// DefaultFilename is the inventory's name inside a manifest directory.
	DefaultFilename = "sealed-inventory.yaml"
)

// New creates an empty inventory with default fields.
func New() *Inventory {
	return &Inventory{
		APIVersion: DefaultAPIVersion,
		Kind:       DefaultKind,
		Secrets:    []Record{},
	}
}

// Load reads and parses a sealed-inventory.yaml file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory file: %w", err)
	}

	return &inv, nil
}

// Save writes an Inventory to a YAML file.
func Save(path string, inv *Inventory) error {
	if inv.APIVersion == "" {
		inv.APIVersion = DefaultAPIVersion
	}
	if inv.Kind == "" {
		inv.Kind = DefaultKind
	}

	data, err := yaml.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshalling inventory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing inventory file: %w", err)
	}

	return nil
}

// AddRecord adds a record to the inventory.
// A resealed secret replaces its previous record.
func AddRecord(inv *Inventory, rec Record) {
	for i, r := range inv.Secrets {
		if r.Name == rec.Name {
			inv.Secrets[i] = rec
			return
		}
	}
	inv.Secrets = append(inv.Secrets, rec)
}

// RemoveRecord removes a record by secret name.
// Returns an error if the record is not found.
func RemoveRecord(inv *Inventory, name string) error {
	for i, r := range inv.Secrets {
		if r.Name == name {
			inv.Secrets = append(inv.Secrets[:i], inv.Secrets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("secret %q not found in inventory", name)
}

// FindRecord returns a pointer to the record for the given secret name, or nil.
func FindRecord(inv *Inventory, name string) *Record {
	for i, r := range inv.Secrets {
		if r.Name == name {
			return &inv.Secrets[i]
		}
	}
	return nil
}

// Update loads the inventory at path (or starts a new one), applies the
// records, and saves it back.
func Update(path string, records []Record) error {
	inv, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		inv = New()
	}

	for _, rec := range records {
		AddRecord(inv, rec)
	}

	return Save(path, inv)
}
