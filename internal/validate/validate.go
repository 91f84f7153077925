package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stuttgart-things/sealkit/internal/manifest"
	"github.com/stuttgart-things/sealkit/internal/registry"
)

// Options narrow a validation run.
type Options struct {
	// ExpectedSecrets lists the secret names whose manifests must exist.
	// Empty means every secret name in the registry.
	ExpectedSecrets []string
}

// Run executes every check over the candidates and aggregates one report.
// Checks never short-circuit: a candidate failing the schema check still has
// its sections and keys inspected, so a single run surfaces every defect.
func Run(candidates []Candidate, opts Options) *Report {
	expected := opts.ExpectedSecrets
	if len(expected) == 0 {
		expected = registry.AllSecretNames()
	} else {
		expected = append([]string(nil), expected...)
		sort.Strings(expected)
	}

	expectedSet := make(map[string]bool, len(expected))
	for _, name := range expected {
		expectedSet[name] = true
	}

	report := &Report{}
	byName := map[string][]Candidate{}

	for _, c := range candidates {
		name := c.SecretName()
		byName[name] = append(byName[name], c)

		checkSchema(report, c, name)
		checkSections(report, c, name)
		checkKeys(report, c, name)
		checkTemplate(report, c, name)

		if !registry.KnownSecretName(name) {
			report.warn(CheckFiles, KindOrphanManifest, name, c.File,
				"manifest does not correspond to any registered secret")
		}
	}

	checkPresence(report, byName, expected)
	checkReferences(report, byName, expectedSet)

	report.finalize(len(candidates))
	return report
}

// RunDirectory loads a flat manifest directory and validates its contents.
func RunDirectory(dir string, opts Options) (*Report, error) {
	candidates, err := LoadDirectory(dir)
	if err != nil {
		return nil, err
	}
	return Run(candidates, opts), nil
}

func checkSchema(r *Report, c Candidate, name string) {
	if c.parseErr != nil {
		r.fail(CheckSchema, KindNotASealedSecret, name, c.File,
			fmt.Sprintf("not a parseable YAML document: %v", c.parseErr))
		return
	}

	apiVersion := c.stringAt("apiVersion")
	kind := c.stringAt("kind")
	if apiVersion != manifest.SealedAPIVersion || kind != manifest.SealedKind {
		r.fail(CheckSchema, KindNotASealedSecret, name, c.File,
			fmt.Sprintf("document is %q/%q, expected %s/%s",
				apiVersion, kind, manifest.SealedAPIVersion, manifest.SealedKind))
		return
	}

	r.pass(CheckSchema, name, c.File, "apiVersion and kind match the sealed secret schema")
}

func checkSections(r *Report, c Candidate, name string) {
	missing := false
	for _, section := range []string{"encryptedData", "template"} {
		if _, ok := c.mapAt("spec", section); !ok {
			r.fail(CheckSections, KindMissingSection, name, c.File,
				"missing required section: spec."+section)
			missing = true
		}
	}

	if !missing {
		r.pass(CheckSections, name, c.File, "spec.encryptedData and spec.template present")
	}
}

func checkKeys(r *Report, c Candidate, name string) {
	required := registry.RequiredKeysFor(name)
	if len(required) == 0 {
		// Nothing is mandated for names outside the registry; the orphan
		// warning covers those.
		return
	}

	var missing []string
	for _, key := range required {
		if !c.providesKey(key) {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		r.fail(CheckKeys, KindMissingKeys, name, c.File,
			"encryptedData lacks required keys: "+strings.Join(missing, ", "))
		return
	}

	r.pass(CheckKeys, name, c.File,
		fmt.Sprintf("all %d required keys present", len(required)))
}

// checkTemplate warns when the re-materialization template disagrees with
// the outer metadata. The controller would unseal into a secret named
// differently than the manifest claims.
func checkTemplate(r *Report, c Candidate, name string) {
	outerName := c.stringAt("metadata", "name")
	outerNamespace := c.stringAt("metadata", "namespace")
	tmplName := c.stringAt("spec", "template", "metadata", "name")
	tmplNamespace := c.stringAt("spec", "template", "metadata", "namespace")

	var drift []string
	if tmplName != "" && outerName != "" && tmplName != outerName {
		drift = append(drift, fmt.Sprintf("template name %q != metadata name %q", tmplName, outerName))
	}
	if tmplNamespace != "" && outerNamespace != "" && tmplNamespace != outerNamespace {
		drift = append(drift, fmt.Sprintf("template namespace %q != metadata namespace %q", tmplNamespace, outerNamespace))
	}

	if len(drift) > 0 {
		r.warn(CheckTemplate, KindTemplateDrift, name, c.File, strings.Join(drift, "; "))
	}
}

// checkPresence reports an absent expected manifest as a missing-keys class
// defect: for the consuming deployment an absent secret and an incomplete
// one are the same failure.
func checkPresence(r *Report, byName map[string][]Candidate, expected []string) {
	for _, secretName := range expected {
		if present := byName[secretName]; len(present) > 0 {
			r.pass(CheckFiles, secretName, present[0].File, "manifest present")
			continue
		}

		required := registry.RequiredKeysFor(secretName)
		r.fail(CheckFiles, KindMissingKeys, secretName, registry.Filename(secretName),
			"manifest absent, required keys unprovided: "+strings.Join(required, ", "))
	}
}

// checkReferences resolves every registry binding of the expected secrets
// against the candidates: each (secretName, key) pair must be provided by
// exactly one manifest.
func checkReferences(r *Report, byName map[string][]Candidate, expectedSet map[string]bool) {
	for _, e := range registry.Entries() {
		if !expectedSet[e.SecretName] {
			continue
		}

		var files []string
		for _, c := range byName[e.SecretName] {
			if c.providesKey(e.Key) {
				files = append(files, c.File)
			}
		}

		target := e.SecretName + "/" + e.Key
		switch len(files) {
		case 0:
			r.fail(CheckReferences, KindUnresolvedReference, target, "",
				fmt.Sprintf("no manifest provides key %q for secret %q", e.Key, e.SecretName))
		case 1:
			r.pass(CheckReferences, target, files[0], "resolved by exactly one manifest")
		default:
			r.fail(CheckReferences, KindAmbiguousReference, target, "",
				fmt.Sprintf("%d manifests provide key %q for secret %q: %s",
					len(files), e.Key, e.SecretName, strings.Join(files, ", ")))
		}
	}
}
