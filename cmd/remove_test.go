package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stuttgart-things/sealkit/internal/inventory"
	"github.com/stuttgart-things/sealkit/internal/kustomize"
)

func TestPerformRemove(t *testing.T) {
	tests := []struct {
		name        string
		secretName  string
		setup       func(t *testing.T, dir string)
		wantErr     bool
		errContains string
		verify      func(t *testing.T, dir string, result *RemoveResult)
	}{
		{
			name:       "removes manifest and updates inventory and kustomization",
			secretName: "ehrbase-db-credentials",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				manifest := filepath.Join(dir, "ehrbase-db-credentials.sealed.yaml")
				if err := os.WriteFile(manifest, []byte("apiVersion: bitnami.com/v1alpha1\n"), 0o644); err != nil {
					t.Fatal(err)
				}

				k := &kustomize.Kustomization{
					APIVersion: "kustomize.config.k8s.io/v1beta1",
					Kind:       "Kustomization",
					Resources:  []string{"ehrbase-db-credentials.sealed.yaml", "ehrbase-cache-credentials.sealed.yaml"},
				}
				if err := kustomize.Save(filepath.Join(dir, "kustomization.yaml"), k); err != nil {
					t.Fatal(err)
				}

				records := []inventory.Record{
					{Name: "ehrbase-db-credentials", Namespace: "ehrbase", Scope: "namespace-wide", File: "ehrbase-db-credentials.sealed.yaml", Keys: []string{"password", "username"}},
					{Name: "ehrbase-cache-credentials", Namespace: "ehrbase", Scope: "namespace-wide", File: "ehrbase-cache-credentials.sealed.yaml", Keys: []string{"password"}},
				}
				if err := inventory.Update(filepath.Join(dir, inventory.DefaultFilename), records); err != nil {
					t.Fatal(err)
				}
			},
			verify: func(t *testing.T, dir string, result *RemoveResult) {
				t.Helper()
				// Manifest should be removed
				if _, err := os.Stat(filepath.Join(dir, "ehrbase-db-credentials.sealed.yaml")); !os.IsNotExist(err) {
					t.Error("manifest should have been removed")
				}

				// Kustomization should no longer list the resource
				k, err := kustomize.Load(filepath.Join(dir, "kustomization.yaml"))
				if err != nil {
					t.Fatal(err)
				}
				if len(k.Resources) != 1 || k.Resources[0] != "ehrbase-cache-credentials.sealed.yaml" {
					t.Errorf("expected [ehrbase-cache-credentials.sealed.yaml], got %v", k.Resources)
				}

				// Inventory should no longer hold the record
				inv, err := inventory.Load(filepath.Join(dir, inventory.DefaultFilename))
				if err != nil {
					t.Fatal(err)
				}
				if inventory.FindRecord(inv, "ehrbase-db-credentials") != nil {
					t.Error("inventory should not contain ehrbase-db-credentials")
				}
				if inventory.FindRecord(inv, "ehrbase-cache-credentials") == nil {
					t.Error("inventory should still contain ehrbase-cache-credentials")
				}

				// Verify result
				if result.SecretName != "ehrbase-db-credentials" {
					t.Errorf("expected SecretName ehrbase-db-credentials, got %s", result.SecretName)
				}
				if len(result.Removed) != 1 {
					t.Errorf("expected one removed file, got %v", result.Removed)
				}
				if len(result.Touched) != 2 {
					t.Errorf("expected inventory and kustomization touched, got %v", result.Touched)
				}
			},
		},
		{
			name:        "errors when nothing is known about the secret",
			secretName:  "ehrbase-auth-users",
			setup:       func(t *testing.T, dir string) {},
			wantErr:     true,
			errContains: "not found",
		},
		{
			name:       "succeeds without inventory or kustomization",
			secretName: "ehrbase-cache-credentials",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				manifest := filepath.Join(dir, "ehrbase-cache-credentials.sealed.yaml")
				if err := os.WriteFile(manifest, []byte("apiVersion: bitnami.com/v1alpha1\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			verify: func(t *testing.T, dir string, result *RemoveResult) {
				t.Helper()
				if _, err := os.Stat(filepath.Join(dir, "ehrbase-cache-credentials.sealed.yaml")); !os.IsNotExist(err) {
					t.Error("manifest should have been removed")
				}
				if len(result.Touched) != 0 {
					t.Errorf("expected no bookkeeping files touched, got %v", result.Touched)
				}
			},
		},
		{
			name:       "drops the record when the manifest is already gone",
			secretName: "ehrbase-auth-users",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				records := []inventory.Record{
					{Name: "ehrbase-auth-users", Namespace: "ehrbase", Scope: "namespace-wide", File: "ehrbase-auth-users.sealed.yaml", Keys: []string{"admin-username"}},
				}
				if err := inventory.Update(filepath.Join(dir, inventory.DefaultFilename), records); err != nil {
					t.Fatal(err)
				}
			},
			verify: func(t *testing.T, dir string, result *RemoveResult) {
				t.Helper()
				inv, err := inventory.Load(filepath.Join(dir, inventory.DefaultFilename))
				if err != nil {
					t.Fatal(err)
				}
				if inventory.FindRecord(inv, "ehrbase-auth-users") != nil {
					t.Error("inventory should not contain ehrbase-auth-users")
				}
				if len(result.Removed) != 0 {
					t.Errorf("expected no files removed, got %v", result.Removed)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			result, err := performRemove(dir, tt.secretName)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.verify != nil {
				tt.verify(t, dir, result)
			}
		})
	}
}

func TestPrintRemoveDryRun(t *testing.T) {
	dir := t.TempDir()

	manifest := filepath.Join(dir, "ehrbase-db-credentials.sealed.yaml")
	if err := os.WriteFile(manifest, []byte("apiVersion: bitnami.com/v1alpha1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := &RemoveConfig{
		SecretName: "ehrbase-db-credentials",
		Dir:        dir,
		DryRun:     true,
	}

	if err := printRemoveDryRun(config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify nothing was modified
	if _, err := os.Stat(manifest); os.IsNotExist(err) {
		t.Error("dry run should not remove the manifest")
	}
}

func TestGenerateRemovePRDescription(t *testing.T) {
	result := &RemoveResult{
		SecretName: "ehrbase-db-credentials",
		Removed:    []string{"/work/ehrbase-db-credentials.sealed.yaml"},
		Touched:    []string{"/work/sealed-inventory.yaml", "/work/kustomization.yaml"},
	}

	desc := generateRemovePRDescription(result)

	checks := []struct {
		label    string
		contains string
	}{
		{"secret name", "ehrbase-db-credentials"},
		{"summary heading", "## Summary"},
		{"changes heading", "## Changes"},
		{"manifest mention", "ehrbase-db-credentials.sealed.yaml"},
		{"inventory mention", "sealed-inventory.yaml"},
		{"kustomization mention", "kustomization.yaml"},
	}

	for _, c := range checks {
		if !strings.Contains(desc, c.contains) {
			t.Errorf("PR description should contain %s (%q), got:\n%s", c.label, c.contains, desc)
		}
	}
}
