package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stuttgart-things/sealkit/internal/registry"
)

// sealedDoc renders a well-formed SealedSecret document carrying the given
// encryptedData keys.
func sealedDoc(name string, keys ...string) []byte {
	var b strings.Builder
	b.WriteString("apiVersion: bitnami.com/v1alpha1\n")
	b.WriteString("kind: SealedSecret\n")
	b.WriteString("metadata:\n  name: " + name + "\n  namespace: ehrbase\n")
	b.WriteString("spec:\n")
	if len(keys) == 0 {
		b.WriteString("  encryptedData: {}\n")
	} else {
		b.WriteString("  encryptedData:\n")
		for _, k := range keys {
			b.WriteString("    " + k + ": AgBmYWtlY2lwaGVydGV4dA==\n")
		}
	}
	b.WriteString("  template:\n    metadata:\n      name: " + name + "\n      namespace: ehrbase\n    type: Opaque\n")
	return []byte(b.String())
}

func candidateFor(name string, keys ...string) Candidate {
	return NewCandidate(registry.Filename(name), sealedDoc(name, keys...))
}

func countKind(r *Report, kind Kind) int {
	return len(r.ByKind(kind))
}

func TestCompleteSetPasses(t *testing.T) {
	candidates := []Candidate{
		candidateFor("ehrbase-auth-users", "admin-username", "admin-password", "username", "password"),
		candidateFor("ehrbase-db-credentials", "username", "password"),
		candidateFor("ehrbase-cache-credentials", "password"),
	}

	report := Run(candidates, Options{})

	if report.Verdict != StatusPass {
		t.Fatalf("expected pass, got %s: %+v", report.Verdict, report.Entries)
	}
	if report.Summary.Failures != 0 || report.Summary.Warnings != 0 {
		t.Fatalf("expected clean summary, got %+v", report.Summary)
	}
	if report.Summary.Passed != len(report.Entries) {
		t.Fatalf("summary passed count %d does not match %d entries",
			report.Summary.Passed, len(report.Entries))
	}
	if report.Summary.Candidates != 3 {
		t.Fatalf("expected 3 candidates, got %d", report.Summary.Candidates)
	}
}

func TestMissingEncryptedDataSection(t *testing.T) {
	doc := `apiVersion: bitnami.com/v1alpha1
kind: SealedSecret
metadata:
  name: ehrbase-cache-credentials
  namespace: ehrbase
spec:
  template:
    metadata:
      name: ehrbase-cache-credentials
    type: Opaque
`
	candidates := []Candidate{NewCandidate("ehrbase-cache-credentials.yaml", []byte(doc))}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-cache-credentials"}})

	if report.Verdict != StatusFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}
	sections := report.ByKind(KindMissingSection)
	if len(sections) != 1 {
		t.Fatalf("expected exactly one MissingSection entry, got %d", len(sections))
	}
	if !strings.Contains(sections[0].Message, "spec.encryptedData") {
		t.Errorf("entry should name the absent section: %s", sections[0].Message)
	}
	if strings.Contains(sections[0].Message, "spec.template") {
		t.Errorf("template is present and must not be reported: %s", sections[0].Message)
	}
}

func TestMissingKeysNamesEveryAbsentKey(t *testing.T) {
	// Only two of the four required keys are provided.
	candidates := []Candidate{candidateFor("ehrbase-auth-users", "admin-username", "admin-password")}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-auth-users"}})

	missing := report.ByKind(KindMissingKeys)
	if len(missing) != 1 {
		t.Fatalf("expected exactly one MissingKeys entry, got %d", len(missing))
	}
	for _, key := range []string{"password", "username"} {
		if !strings.Contains(missing[0].Message, key) {
			t.Errorf("message should list %q: %s", key, missing[0].Message)
		}
	}

	// Schema and section checks still pass for the same candidate.
	for _, e := range report.Entries {
		if (e.Check == CheckSchema || e.Check == CheckSections) && e.Status != StatusPass {
			t.Errorf("expected %s to pass, got %s", e.Check, e.Status)
		}
	}
}

func TestDroppedKeyFailsValidation(t *testing.T) {
	candidates := []Candidate{
		candidateFor("ehrbase-auth-users", "admin-username", "admin-password", "username"),
	}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-auth-users"}})

	if report.Verdict != StatusFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}
	missing := report.ByKind(KindMissingKeys)
	if len(missing) != 1 {
		t.Fatalf("expected exactly one MissingKeys entry, got %d", len(missing))
	}
	if !strings.HasSuffix(missing[0].Message, ": password") {
		t.Errorf("entry should name exactly the dropped key: %s", missing[0].Message)
	}
}

func TestAmbiguousReference(t *testing.T) {
	a := NewCandidate("cache-a.yaml", sealedDoc("ehrbase-cache-credentials", "password"))
	b := NewCandidate("cache-b.yaml", sealedDoc("ehrbase-cache-credentials", "password"))

	report := Run([]Candidate{a, b}, Options{ExpectedSecrets: []string{"ehrbase-cache-credentials"}})

	if report.Verdict != StatusFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}
	ambiguous := report.ByKind(KindAmbiguousReference)
	if len(ambiguous) != 1 {
		t.Fatalf("expected one AmbiguousReference entry, got %d", len(ambiguous))
	}
	if ambiguous[0].Target != "ehrbase-cache-credentials/password" {
		t.Errorf("unexpected target %q", ambiguous[0].Target)
	}
	for _, file := range []string{"cache-a.yaml", "cache-b.yaml"} {
		if !strings.Contains(ambiguous[0].Message, file) {
			t.Errorf("message should list %s: %s", file, ambiguous[0].Message)
		}
	}
}

func TestAbsentManifestIsMissingKeysDefect(t *testing.T) {
	report := Run(nil, Options{ExpectedSecrets: []string{"ehrbase-db-credentials"}})

	if report.Verdict != StatusFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}

	missing := report.ByKind(KindMissingKeys)
	if len(missing) != 1 {
		t.Fatalf("expected one MissingKeys entry for the absent file, got %d", len(missing))
	}
	if missing[0].File != registry.Filename("ehrbase-db-credentials") {
		t.Errorf("entry should point at the expected filename, got %q", missing[0].File)
	}
	for _, key := range []string{"username", "password"} {
		if !strings.Contains(missing[0].Message, key) {
			t.Errorf("message should list %q: %s", key, missing[0].Message)
		}
	}

	if got := countKind(report, KindUnresolvedReference); got != 2 {
		t.Errorf("expected both bindings unresolved, got %d", got)
	}
}

func TestOrphanManifestWarnsWithoutFailing(t *testing.T) {
	candidates := []Candidate{
		candidateFor("ehrbase-cache-credentials", "password"),
		candidateFor("grafana-admin", "password"),
	}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-cache-credentials"}})

	if report.Failed() {
		t.Fatalf("orphan must not fail the run: %+v", report.Entries)
	}
	if report.Verdict != StatusWarn {
		t.Fatalf("expected warn verdict, got %s", report.Verdict)
	}
	orphans := report.ByKind(KindOrphanManifest)
	if len(orphans) != 1 || orphans[0].Target != "grafana-admin" {
		t.Fatalf("expected one orphan warning for grafana-admin, got %+v", orphans)
	}
}

func TestTemplateDriftWarns(t *testing.T) {
	doc := strings.Replace(string(sealedDoc("ehrbase-cache-credentials", "password")),
		"      name: ehrbase-cache-credentials\n      namespace: ehrbase\n    type: Opaque",
		"      name: cache-renamed\n      namespace: ehrbase\n    type: Opaque", 1)
	candidates := []Candidate{NewCandidate(registry.Filename("ehrbase-cache-credentials"), []byte(doc))}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-cache-credentials"}})

	if report.Failed() {
		t.Fatalf("template drift must not fail the run: %+v", report.Entries)
	}
	if report.Verdict != StatusWarn {
		t.Fatalf("expected warn verdict, got %s", report.Verdict)
	}
	drift := report.ByKind(KindTemplateDrift)
	if len(drift) != 1 {
		t.Fatalf("expected one TemplateDrift entry, got %d", len(drift))
	}
	if !strings.Contains(drift[0].Message, "cache-renamed") {
		t.Errorf("message should name the divergent template name: %s", drift[0].Message)
	}
}

func TestWrongKindStillRunsRemainingChecks(t *testing.T) {
	doc := strings.Replace(string(sealedDoc("ehrbase-db-credentials", "username", "password")),
		"kind: SealedSecret", "kind: ConfigMap", 1)
	candidates := []Candidate{NewCandidate("ehrbase-db-credentials.yaml", []byte(doc))}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-db-credentials"}})

	if got := countKind(report, KindNotASealedSecret); got != 1 {
		t.Fatalf("expected one NotASealedSecret entry, got %d", got)
	}

	var sectionsPassed, keysPassed bool
	for _, e := range report.Entries {
		if e.Check == CheckSections && e.Status == StatusPass {
			sectionsPassed = true
		}
		if e.Check == CheckKeys && e.Status == StatusPass {
			keysPassed = true
		}
	}
	if !sectionsPassed || !keysPassed {
		t.Error("schema failure must not short-circuit the section and key checks")
	}
}

func TestUnparseableDocument(t *testing.T) {
	candidates := []Candidate{
		NewCandidate("ehrbase-db-credentials.yaml", []byte("{{ not yaml at all")),
	}

	report := Run(candidates, Options{ExpectedSecrets: []string{"ehrbase-db-credentials"}})

	if report.Verdict != StatusFail {
		t.Fatalf("expected fail, got %s", report.Verdict)
	}
	if got := countKind(report, KindNotASealedSecret); got != 1 {
		t.Errorf("expected NotASealedSecret for undecodable document, got %d", got)
	}
	if got := countKind(report, KindMissingSection); got != 2 {
		t.Errorf("expected both sections reported absent, got %d", got)
	}
}

func TestSecretNameFallsBackToFilename(t *testing.T) {
	for _, file := range []string{
		filepath.Join("out", "ehrbase-db-credentials.yaml"),
		filepath.Join("out", registry.Filename("ehrbase-db-credentials")),
	} {
		c := NewCandidate(file, []byte("{{ not yaml"))
		if got := c.SecretName(); got != "ehrbase-db-credentials" {
			t.Fatalf("expected filename fallback for %s, got %q", file, got)
		}
	}
}

func TestRunDirectory(t *testing.T) {
	dir := t.TempDir()

	writeManifest := func(name string, keys ...string) {
		t.Helper()
		path := filepath.Join(dir, registry.Filename(name))
		if err := os.WriteFile(path, sealedDoc(name, keys...), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}

	writeManifest("ehrbase-auth-users", "admin-username", "admin-password", "username", "password")
	writeManifest("ehrbase-db-credentials", "username", "password")
	writeManifest("ehrbase-cache-credentials", "password")

	// Non-YAML content and bookkeeping files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes\n"), 0o644); err != nil {
		t.Fatalf("writing README: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	bookkeeping := map[string]string{
		"kustomization.yaml":    "resources:\n  - ehrbase-auth-users.sealed.yaml\n",
		"sealed-inventory.yaml": "apiVersion: sealkit.stuttgart-things.com/v1alpha1\nkind: SealedInventory\n",
	}
	for name, content := range bookkeeping {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	report, err := RunDirectory(dir, Options{})
	if err != nil {
		t.Fatalf("RunDirectory: %v", err)
	}

	if report.Verdict != StatusPass {
		t.Fatalf("expected pass, got %s: %+v", report.Verdict, report.Entries)
	}
	if report.Summary.Candidates != 3 {
		t.Fatalf("expected 3 candidates, got %d", report.Summary.Candidates)
	}
}

func TestRunDirectoryMissingDir(t *testing.T) {
	_, err := RunDirectory(filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
