package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sigs.k8s.io/yaml"

	"github.com/stuttgart-things/sealkit/internal/creds"
	"github.com/stuttgart-things/sealkit/internal/manifest"
	"github.com/stuttgart-things/sealkit/internal/registry"
	"github.com/stuttgart-things/sealkit/internal/seal"
)

type fakeSealer struct {
	unavailable bool
	failOn      string
	calls       []string
}

func (f *fakeSealer) CheckAvailable() error {
	if f.unavailable {
		return fmt.Errorf("%w: not installed", seal.ErrUnavailable)
	}
	return nil
}

func (f *fakeSealer) Seal(m *manifest.SecretManifest, scope seal.Scope) (*manifest.EncryptedManifest, []byte, error) {
	f.calls = append(f.calls, m.Name)

	if m.Name == f.failOn {
		return nil, nil, fmt.Errorf("sealing %q failed: oracle said no", m.Name)
	}

	encrypted := make(map[string]string, len(m.Data))
	for key := range m.Data {
		encrypted[key] = "AgBmYWtlLQ" + manifest.Encode([]byte(key))
	}

	sealed := &manifest.EncryptedManifest{
		APIVersion: manifest.SealedAPIVersion,
		Kind:       manifest.SealedKind,
		Metadata:   manifest.ObjectMeta{Name: m.Name, Namespace: m.Namespace},
		Spec: manifest.SealedSpec{
			EncryptedData: encrypted,
			Template: manifest.SecretTemplate{
				Metadata: manifest.ObjectMeta{Name: m.Name, Namespace: m.Namespace},
				Type:     m.Type,
			},
		},
	}

	raw, err := yaml.Marshal(sealed)
	if err != nil {
		return nil, nil, err
	}

	return sealed, raw, nil
}

func inputFor(t *testing.T, name string, pairs map[string]string) SecretInput {
	t.Helper()

	set := creds.New()
	for key, value := range pairs {
		if err := set.AddString(key, value); err != nil {
			t.Fatalf("adding %q: %v", key, err)
		}
	}

	return SecretInput{Name: name, Creds: set}
}

func TestRunWritesAllManifests(t *testing.T) {
	dir := t.TempDir()
	sealer := &fakeSealer{}

	inputs := []SecretInput{
		inputFor(t, "ehrbase-db-credentials", map[string]string{"username": "ehrbase", "password": "pw"}),
		inputFor(t, "ehrbase-cache-credentials", map[string]string{"password": "pw"}),
	}

	result, err := Run(sealer, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: dir,
		Secrets:   inputs,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	for _, item := range result.Items {
		data, err := os.ReadFile(item.File)
		if err != nil {
			t.Fatalf("reading %s: %v", item.File, err)
		}
		sealed, err := manifest.ParseEncrypted(data)
		if err != nil {
			t.Fatalf("persisted file is not a sealed manifest: %v", err)
		}
		if sealed.Metadata.Name != item.SecretName {
			t.Errorf("file %s holds %q", item.File, sealed.Metadata.Name)
		}
		if len(sealed.Spec.EncryptedData) != len(item.Keys) {
			t.Errorf("expected %d keys in %s, got %d", len(item.Keys), item.File, len(sealed.Spec.EncryptedData))
		}
	}

	// Credential sets are destroyed once the run completes.
	for _, in := range inputs {
		if in.Creds.Len() != 0 {
			t.Errorf("credentials for %s survived the run", in.Name)
		}
	}
}

func TestRunAbortsOnSealFailureWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	sealer := &fakeSealer{failOn: "ehrbase-cache-credentials"}

	_, err := Run(sealer, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: dir,
		Secrets: []SecretInput{
			inputFor(t, "ehrbase-db-credentials", map[string]string{"username": "u", "password": "p"}),
			inputFor(t, "ehrbase-cache-credentials", map[string]string{"password": "p"}),
		},
	})
	if err == nil {
		t.Fatal("expected seal failure to abort the run")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("reading output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no partial output, found %d files", len(entries))
	}
}

func TestRunUnavailableSealer(t *testing.T) {
	sealer := &fakeSealer{unavailable: true}

	_, err := Run(sealer, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: t.TempDir(),
		Secrets: []SecretInput{
			inputFor(t, "ehrbase-cache-credentials", map[string]string{"password": "p"}),
		},
	})
	if !errors.Is(err, seal.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(sealer.calls) != 0 {
		t.Errorf("sealer must not be invoked when unavailable")
	}
}

func TestRunRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, registry.Filename("ehrbase-cache-credentials"))
	if err := os.WriteFile(existing, []byte("apiVersion: bitnami.com/v1alpha1\n"), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	sealer := &fakeSealer{}
	_, err := Run(sealer, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: dir,
		Secrets: []SecretInput{
			inputFor(t, "ehrbase-cache-credentials", map[string]string{"password": "p"}),
		},
	})
	if err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if len(sealer.calls) != 0 {
		t.Errorf("nothing may be sealed before the overwrite check, got %v", sealer.calls)
	}
}

func TestRunForceReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, registry.Filename("ehrbase-cache-credentials"))
	if err := os.WriteFile(existing, []byte("stale\n"), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	result, err := Run(&fakeSealer{}, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: dir,
		Secrets: []SecretInput{
			inputFor(t, "ehrbase-cache-credentials", map[string]string{"password": "p"}),
		},
		Force: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(result.Items[0].File)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if _, err := manifest.ParseEncrypted(data); err != nil {
		t.Fatalf("stale content survived: %v", err)
	}
}

func TestRunRejectsInvalidName(t *testing.T) {
	in := inputFor(t, "Not-A-Valid-Name", map[string]string{"password": "p"})

	_, err := Run(&fakeSealer{}, Request{
		Namespace: "ehrbase",
		Scope:     seal.ScopeNamespaceWide,
		OutputDir: t.TempDir(),
		Secrets:   []SecretInput{in},
	})
	if !errors.Is(err, manifest.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}

	if in.Creds.Len() != 0 {
		t.Error("credentials must be destroyed on abort")
	}
}

func TestRunEmptyRequest(t *testing.T) {
	if _, err := Run(&fakeSealer{}, Request{OutputDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for empty request")
	}
}
