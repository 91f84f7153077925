package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stuttgart-things/sealkit/internal/inventory"
	"github.com/stuttgart-things/sealkit/internal/kustomize"
	"github.com/stuttgart-things/sealkit/internal/provision"
)

func TestFindRepoRoot(t *testing.T) {
	t.Run("finds root from nested directory", func(t *testing.T) {
		repoRoot := t.TempDir()

		// Create .git directory to simulate a git repo
		gitDir := filepath.Join(repoRoot, ".git")
		if err := os.Mkdir(gitDir, 0755); err != nil {
			t.Fatal(err)
		}

		// Create nested directory
		nested := filepath.Join(repoRoot, "a", "b", "c")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}

		found, err := findRepoRoot(nested)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found != repoRoot {
			t.Errorf("expected %q, got %q", repoRoot, found)
		}
	})

	t.Run("finds root from repo root itself", func(t *testing.T) {
		repoRoot := t.TempDir()

		gitDir := filepath.Join(repoRoot, ".git")
		if err := os.Mkdir(gitDir, 0755); err != nil {
			t.Fatal(err)
		}

		found, err := findRepoRoot(repoRoot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found != repoRoot {
			t.Errorf("expected %q, got %q", repoRoot, found)
		}
	})

	t.Run("errors when not in a git repo", func(t *testing.T) {
		noGitDir := t.TempDir()

		_, err := findRepoRoot(noGitDir)
		if err == nil {
			t.Fatal("expected error but got none")
		}
		if err.Error() != "not a git repository" {
			t.Errorf("expected 'not a git repository' error, got %q", err.Error())
		}
	})
}

func TestRecordProvisionRun(t *testing.T) {
	t.Run("writes inventory next to the manifests", func(t *testing.T) {
		outputDir := t.TempDir()

		config := &ProvisionConfig{
			Namespace: "ehrbase",
			Scope:     "namespace-wide",
			OutputDir: outputDir,
		}
		result := &provision.Result{
			Items: []provision.Item{
				{
					SecretName: "ehrbase-db-credentials",
					File:       filepath.Join(outputDir, "ehrbase-db-credentials.sealed.yaml"),
					Keys:       []string{"password", "username"},
				},
			},
		}

		touched, err := recordProvisionRun(config, result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		invPath := filepath.Join(outputDir, inventory.DefaultFilename)
		if len(touched) != 1 || touched[0] != invPath {
			t.Errorf("expected touched [%s], got %v", invPath, touched)
		}

		inv, err := inventory.Load(invPath)
		if err != nil {
			t.Fatalf("inventory should have been created: %v", err)
		}

		rec := inventory.FindRecord(inv, "ehrbase-db-credentials")
		if rec == nil {
			t.Fatal("inventory should contain ehrbase-db-credentials")
		}
		if rec.Namespace != "ehrbase" {
			t.Errorf("expected namespace ehrbase, got %s", rec.Namespace)
		}
		if rec.Scope != "namespace-wide" {
			t.Errorf("expected scope namespace-wide, got %s", rec.Scope)
		}
		if rec.File != "ehrbase-db-credentials.sealed.yaml" {
			t.Errorf("expected base filename, got %s", rec.File)
		}
		if len(rec.Keys) != 2 {
			t.Errorf("expected 2 keys, got %v", rec.Keys)
		}
		if rec.SealedAt == "" {
			t.Error("expected sealedAt to be set")
		}
	})

	t.Run("updates kustomization when requested", func(t *testing.T) {
		outputDir := t.TempDir()

		config := &ProvisionConfig{
			Namespace:           "ehrbase",
			Scope:               "namespace-wide",
			OutputDir:           outputDir,
			UpdateKustomization: true,
		}
		result := &provision.Result{
			Items: []provision.Item{
				{
					SecretName: "ehrbase-cache-credentials",
					File:       filepath.Join(outputDir, "ehrbase-cache-credentials.sealed.yaml"),
					Keys:       []string{"password"},
				},
			},
		}

		touched, err := recordProvisionRun(config, result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(touched) != 2 {
			t.Fatalf("expected inventory and kustomization touched, got %v", touched)
		}

		k, err := kustomize.Load(filepath.Join(outputDir, "kustomization.yaml"))
		if err != nil {
			t.Fatalf("kustomization should have been created: %v", err)
		}
		found := false
		for _, r := range k.Resources {
			if r == "ehrbase-cache-credentials.sealed.yaml" {
				found = true
			}
		}
		if !found {
			t.Errorf("kustomization should list the sealed manifest, got %v", k.Resources)
		}
	})

	t.Run("resealing replaces the record", func(t *testing.T) {
		outputDir := t.TempDir()

		config := &ProvisionConfig{
			Namespace: "ehrbase",
			Scope:     "namespace-wide",
			OutputDir: outputDir,
		}
		item := provision.Item{
			SecretName: "ehrbase-auth-users",
			File:       filepath.Join(outputDir, "ehrbase-auth-users.sealed.yaml"),
			Keys:       []string{"admin-username"},
		}

		if _, err := recordProvisionRun(config, &provision.Result{Items: []provision.Item{item}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		item.Keys = []string{"admin-password", "admin-username", "password", "username"}
		if _, err := recordProvisionRun(config, &provision.Result{Items: []provision.Item{item}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		inv, err := inventory.Load(filepath.Join(outputDir, inventory.DefaultFilename))
		if err != nil {
			t.Fatal(err)
		}
		if len(inv.Secrets) != 1 {
			t.Fatalf("expected a single record, got %d", len(inv.Secrets))
		}
		if len(inv.Secrets[0].Keys) != 4 {
			t.Errorf("expected the record to be replaced, got keys %v", inv.Secrets[0].Keys)
		}
	})
}
