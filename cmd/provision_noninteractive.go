package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stuttgart-things/sealkit/internal/creds"
	"github.com/stuttgart-things/sealkit/internal/inventory"
	"github.com/stuttgart-things/sealkit/internal/kustomize"
	"github.com/stuttgart-things/sealkit/internal/params"
	"github.com/stuttgart-things/sealkit/internal/provision"
	"github.com/stuttgart-things/sealkit/internal/registry"
	"github.com/stuttgart-things/sealkit/internal/seal"
)

// runProvisionNonInteractive runs the provision command in non-interactive mode
func runProvisionNonInteractive(config *ProvisionConfig) error {
	// Validate required inputs
	if config.ValuesFile == "" && len(config.InlineValues) == 0 {
		return fmt.Errorf("--values-file or --set is required in non-interactive mode")
	}

	values, err := loadProvisionValues(config)
	if err != nil {
		return err
	}

	if config.Namespace == "" {
		return fmt.Errorf("--namespace is required in non-interactive mode (flag or values file)")
	}
	if _, err := resolveScope(config); err != nil {
		return err
	}

	// Check sealing prerequisites
	fmt.Println("Checking sealing prerequisites...")
	client := &seal.Client{Binary: config.Binary, CertPath: config.CertPath}
	if err := client.CheckAvailable(); err != nil {
		return fmt.Errorf("sealing prerequisites: %w", err)
	}
	fmt.Println("kubeseal available")

	// Dry run
	if config.DryRun {
		return printProvisionDryRun(config, values)
	}

	return executeProvisionRun(config, values)
}

// loadProvisionValues merges the values file and --set pairs. Namespace and
// scope from the file fill in only when the flags left them empty.
func loadProvisionValues(config *ProvisionConfig) (map[string]string, error) {
	var fileValues map[string]string

	if config.ValuesFile != "" {
		vf, err := params.ParseFile(config.ValuesFile)
		if err != nil {
			return nil, fmt.Errorf("parsing values file: %w", err)
		}
		fileValues = vf.Values
		if config.Namespace == "" {
			config.Namespace = vf.Namespace
		}
		if config.Scope == "" {
			config.Scope = vf.Scope
		}
	}

	inline, err := params.ParseInline(config.InlineValues)
	if err != nil {
		return nil, fmt.Errorf("parsing --set values: %w", err)
	}

	return params.Merge(fileValues, inline), nil
}

// resolveScope applies the namespace-wide default and validates the value.
func resolveScope(config *ProvisionConfig) (seal.Scope, error) {
	if config.Scope == "" {
		config.Scope = string(seal.ScopeNamespaceWide)
	}
	return seal.ParseScope(config.Scope)
}

// assembleSecretInputs groups the collected values into per-secret
// credential sets, in canonical registry order. Registry defaults fill
// gaps for non-sensitive entries; every remaining required binding must
// be covered, and every provided id must exist in the registry.
func assembleSecretInputs(values map[string]string) ([]provision.SecretInput, error) {
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := registry.Lookup(id); err != nil {
			return nil, err
		}
	}

	var missing []string
	var inputs []provision.SecretInput
	for _, secretName := range registry.AllSecretNames() {
		set := creds.New()
		for _, entry := range registry.EntriesFor(secretName) {
			value := values[entry.LogicalID]
			if value == "" {
				value = entry.Default
			}
			if value == "" {
				if entry.Required {
					missing = append(missing, entry.LogicalID)
				}
				continue
			}
			if err := set.AddString(entry.Key, value); err != nil {
				destroyInputs(inputs)
				set.Destroy()
				return nil, fmt.Errorf("collecting %s: %w", entry.LogicalID, err)
			}
		}
		inputs = append(inputs, provision.SecretInput{Name: secretName, Creds: set})
	}

	if len(missing) > 0 {
		destroyInputs(inputs)
		return nil, fmt.Errorf("missing values for required credentials: %s", strings.Join(missing, ", "))
	}

	return inputs, nil
}

func destroyInputs(inputs []provision.SecretInput) {
	for _, in := range inputs {
		in.Creds.Destroy()
	}
}

// executeProvisionRun is the sealing pipeline both modes share: prepare
// the git workspace if requested, seal everything, write the manifests,
// update the bookkeeping files, publish.
func executeProvisionRun(config *ProvisionConfig, values map[string]string) error {
	scope, err := resolveScope(config)
	if err != nil {
		return err
	}

	inputs, err := assembleSecretInputs(values)
	if err != nil {
		return err
	}
	Logger.Infof("sealing %d secrets for namespace %s with scope %s", len(inputs), config.Namespace, scope)

	// A clone or branch switch has to happen before any file is written.
	g, cleanup, err := prepareGitWorkspace(config)
	if err != nil {
		destroyInputs(inputs)
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	client := &seal.Client{Binary: config.Binary, CertPath: config.CertPath}

	s, stop := startSpinner(fmt.Sprintf("Sealing %d secrets...", len(inputs)), verbose, debug)
	result, err := provision.Run(client, provision.Request{
		Namespace: config.Namespace,
		Scope:     scope,
		OutputDir: config.OutputDir,
		Secrets:   inputs,
		Force:     config.Force,
	})
	if err != nil {
		s.FinalMSG = errorStyle.Render("Sealing failed")
		stop()
		return err
	}
	s.FinalMSG = successStyle.Render(fmt.Sprintf("Sealed %d secrets", len(result.Items)))
	stop()

	for _, item := range result.Items {
		fmt.Println(successStyle.Render(fmt.Sprintf("Sealed: %s (%d keys)", item.File, len(item.Keys))))
	}

	bookkeeping, err := recordProvisionRun(config, result)
	if err != nil {
		return err
	}

	if g != nil {
		if err := publishToGit(g, config, result, bookkeeping); err != nil {
			return fmt.Errorf("git operations: %w", err)
		}
	}

	return nil
}

// recordProvisionRun updates the run inventory and, when requested, the
// kustomization next to the written manifests. Returns the bookkeeping
// files it touched so git publishing can stage them too.
func recordProvisionRun(config *ProvisionConfig, result *provision.Result) ([]string, error) {
	var touched []string

	sealedAt := time.Now().UTC().Format(time.RFC3339)
	records := make([]inventory.Record, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, inventory.Record{
			Name:      item.SecretName,
			Namespace: config.Namespace,
			Scope:     config.Scope,
			File:      filepath.Base(item.File),
			Keys:      item.Keys,
			SealedAt:  sealedAt,
			SealedBy:  sealedBy(),
		})
	}

	invPath := filepath.Join(config.OutputDir, inventory.DefaultFilename)
	if err := inventory.Update(invPath, records); err != nil {
		return nil, fmt.Errorf("updating inventory: %w", err)
	}
	Logger.Infof("updated inventory %s", invPath)
	touched = append(touched, invPath)

	if config.UpdateKustomization {
		kustPath := filepath.Join(config.OutputDir, "kustomization.yaml")
		names := make([]string, 0, len(result.Items))
		for _, item := range result.Items {
			names = append(names, filepath.Base(item.File))
		}
		if err := kustomize.Register(kustPath, names); err != nil {
			return nil, fmt.Errorf("updating kustomization: %w", err)
		}
		touched = append(touched, kustPath)
	}

	return touched, nil
}

func sealedBy() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "sealkit"
}

// redactValue masks sensitive values in any echoed output.
func redactValue(entry registry.Entry, value string) string {
	if entry.Sensitive {
		return "********"
	}
	return value
}

// printProvisionDryRun shows the sealing plan without invoking kubeseal
// or writing files. Values are still validated against the registry.
func printProvisionDryRun(config *ProvisionConfig, values map[string]string) error {
	inputs, err := assembleSecretInputs(values)
	if err != nil {
		return err
	}
	destroyInputs(inputs)

	fmt.Println("\n=== DRY RUN - No files written ===")
	fmt.Printf("Namespace: %s\n", config.Namespace)
	fmt.Printf("Scope:     %s\n", config.Scope)
	fmt.Println()

	for _, name := range registry.AllSecretNames() {
		fmt.Printf("Would seal: %s\n", filepath.Join(config.OutputDir, registry.Filename(name)))
		for _, entry := range registry.EntriesFor(name) {
			value := values[entry.LogicalID]
			if value == "" {
				value = entry.Default
			}
			fmt.Printf("  %s: %s\n", entry.Key, redactValue(entry, value))
		}
	}

	return nil
}
