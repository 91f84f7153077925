package seal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/stuttgart-things/sealkit/internal/manifest"
)

const defaultBinary = "kubeseal"

// ErrUnavailable indicates the sealing binary could not be resolved, could
// not be started, or exited non-zero. The run aborts either way.
var ErrUnavailable = errors.New("sealing unavailable")

// ErrKeyMismatch indicates sealed output whose encryptedData key set differs
// from the input's data key set. A silently dropped key would only surface
// later as a credential-not-found failure inside the running workload, so
// this is a hard failure.
var ErrKeyMismatch = errors.New("sealed output key set differs from input")

// Client invokes the external sealing binary. The cryptographic scheme is
// entirely the binary's concern; the client serializes input, selects the
// scope mode, and checks the key-set post-condition on the output.
type Client struct {
	// Binary is the sealing executable, resolved via PATH when relative.
	// Empty means "kubeseal".
	Binary string

	// CertPath points at a public sealing certificate for offline use.
	// When empty the binary performs its own controller discovery.
	CertPath string
}

func (c *Client) binary() string {
	if c.Binary == "" {
		return defaultBinary
	}
	return c.Binary
}

// CheckInstalled returns true if the sealing binary is on PATH.
func CheckInstalled(binary string) bool {
	if binary == "" {
		binary = defaultBinary
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// CheckAvailable verifies the client can be used: the binary must resolve
// and the certificate, when configured, must exist.
func (c *Client) CheckAvailable() error {
	if _, err := exec.LookPath(c.binary()); err != nil {
		return fmt.Errorf("%w: %q not found: install from https://github.com/bitnami-labs/sealed-secrets", ErrUnavailable, c.binary())
	}

	if c.CertPath != "" {
		if _, err := os.Stat(c.CertPath); err != nil {
			return fmt.Errorf("%w: sealing certificate: %v", ErrUnavailable, err)
		}
	}

	return nil
}

// Seal encrypts one unsealed manifest under the given scope. The plaintext
// is written to a transient file that is removed on every exit path, handed
// to the binary in a single invocation, and never retried.
func (c *Client) Seal(m *manifest.SecretManifest, scope Scope) (*manifest.EncryptedManifest, []byte, error) {
	plaintext, err := renderSecret(m)
	if err != nil {
		return nil, nil, err
	}

	tmpFile, err := os.CreateTemp("", "sealkit-secret-*.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(plaintext); err != nil {
		tmpFile.Close()
		return nil, nil, fmt.Errorf("writing temp file: %w", err)
	}
	tmpFile.Close()

	args := []string{
		"--secret-file", tmpFile.Name(),
		"--scope", scope.Flag(),
		"--format", "yaml",
	}
	if c.CertPath != "" {
		args = append(args, "--cert", c.CertPath)
	}

	cmd := exec.Command(c.binary(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, nil, fmt.Errorf("%w: sealing %q: %s", ErrUnavailable, m.Name, detail)
	}

	sealed, err := manifest.ParseEncrypted(stdout.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("sealing %q produced unusable output: %w", m.Name, err)
	}

	if err := checkKeySets(m, sealed); err != nil {
		return nil, nil, err
	}

	return sealed, stdout.Bytes(), nil
}

// checkKeySets enforces the post-condition that no key was dropped or
// invented by the sealing binary.
func checkKeySets(in *manifest.SecretManifest, out *manifest.EncryptedManifest) error {
	var missing, extra []string

	for key := range in.Data {
		if _, ok := out.Spec.EncryptedData[key]; !ok {
			missing = append(missing, key)
		}
	}
	for key := range out.Spec.EncryptedData {
		if _, ok := in.Data[key]; !ok {
			extra = append(extra, key)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(extra)

	detail := ""
	if len(missing) > 0 {
		detail += fmt.Sprintf(" missing %v", missing)
	}
	if len(extra) > 0 {
		detail += fmt.Sprintf(" unexpected %v", extra)
	}

	return fmt.Errorf("%w: secret %q:%s", ErrKeyMismatch, in.Name, detail)
}

// renderSecret serializes the unsealed manifest into the plaintext Secret
// document the sealing binary expects.
func renderSecret(m *manifest.SecretManifest) ([]byte, error) {
	data := make(map[string][]byte, len(m.Data))
	for key, encoded := range m.Data {
		raw, err := manifest.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("secret %q key %q: %w", m.Name, key, err)
		}
		data[key] = raw
	}

	secret := corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: manifest.SecretAPIVersion,
			Kind:       manifest.SecretKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      m.Name,
			Namespace: m.Namespace,
		},
		Type: corev1.SecretType(m.Type),
		Data: data,
	}

	out, err := yaml.Marshal(secret)
	if err != nil {
		return nil, fmt.Errorf("marshalling secret: %w", err)
	}

	return out, nil
}
