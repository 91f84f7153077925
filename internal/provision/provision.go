package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stuttgart-things/sealkit/internal/creds"
	"github.com/stuttgart-things/sealkit/internal/manifest"
	"github.com/stuttgart-things/sealkit/internal/registry"
	"github.com/stuttgart-things/sealkit/internal/seal"
)

// Sealer is the oracle-facing surface the orchestrator needs. *seal.Client
// implements it; tests substitute a fake.
type Sealer interface {
	CheckAvailable() error
	Seal(m *manifest.SecretManifest, scope seal.Scope) (*manifest.EncryptedManifest, []byte, error)
}

// SecretInput pairs one secret name with its collected credentials.
type SecretInput struct {
	Name  string
	Creds *creds.Set
}

// Request describes one provisioning run.
type Request struct {
	Namespace string
	Scope     seal.Scope
	OutputDir string

	// Secrets are processed strictly in order, one at a time.
	Secrets []SecretInput

	// Force permits overwriting manifests from an earlier run.
	Force bool
}

// Item records one written manifest.
type Item struct {
	SecretName string
	File       string
	Keys       []string
}

// Result summarizes a completed run.
type Result struct {
	Items []Item
}

// Files returns the written paths in run order.
func (r *Result) Files() []string {
	files := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		files = append(files, item.File)
	}
	return files
}

type sealedOutput struct {
	item Item
	raw  []byte
}

// Run provisions every requested secret: build, seal, then persist. Sealing
// happens for all secrets before any file is written, so an abort never
// leaves partial output behind. The credential sets are destroyed before
// Run returns, on every path.
func Run(sealer Sealer, req Request) (*Result, error) {
	defer func() {
		for _, s := range req.Secrets {
			s.Creds.Destroy()
		}
	}()

	if len(req.Secrets) == 0 {
		return nil, fmt.Errorf("nothing to provision")
	}

	if err := sealer.CheckAvailable(); err != nil {
		return nil, err
	}

	if !req.Force {
		if err := checkNoOverwrite(req); err != nil {
			return nil, err
		}
	}

	var outputs []sealedOutput
	for _, s := range req.Secrets {
		m, err := manifest.Build(s.Name, req.Namespace, s.Creds)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", s.Name, err)
		}

		sealed, raw, err := sealer.Seal(m, req.Scope)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, sealedOutput{
			item: Item{
				SecretName: s.Name,
				File:       filepath.Join(req.OutputDir, registry.Filename(s.Name)),
				Keys:       sealed.Keys(),
			},
			raw: raw,
		})
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &Result{}
	for _, out := range outputs {
		if err := writeFile(out.item.File, out.raw); err != nil {
			removeAll(result.Files())
			return nil, err
		}
		result.Items = append(result.Items, out.item)
	}

	return result, nil
}

// checkNoOverwrite fails fast when a target manifest already exists, before
// any credential is sealed.
func checkNoOverwrite(req Request) error {
	for _, s := range req.Secrets {
		path := filepath.Join(req.OutputDir, registry.Filename(s.Name))
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, rerun with --force to replace it", path)
		}
	}
	return nil
}

// writeFile persists sealed output atomically via a sibling temp file.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func removeAll(files []string) {
	for _, f := range files {
		os.Remove(f)
	}
}
