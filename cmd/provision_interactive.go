package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/stuttgart-things/sealkit/internal/registry"
	"github.com/stuttgart-things/sealkit/internal/seal"
)

// Styles for terminal output
var (
	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	yamlStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// runProvisionInteractive runs the provision command in interactive mode
func runProvisionInteractive(config *ProvisionConfig) error {
	// 1. Check sealing prerequisites
	fmt.Println(progressStyle.Render("Checking sealing prerequisites..."))
	client := &seal.Client{Binary: config.Binary, CertPath: config.CertPath}
	if err := client.CheckAvailable(); err != nil {
		return fmt.Errorf("sealing prerequisites: %w", err)
	}
	fmt.Println(successStyle.Render("kubeseal available"))

	// 2. Pre-seed values from --values-file and --set
	values, err := loadProvisionValues(config)
	if err != nil {
		return err
	}

	// 3. Collect namespace and sealing scope
	if config.Namespace == "" || config.Scope == "" {
		if err := runTargetForm(config); err != nil {
			return fmt.Errorf("target selection: %w", err)
		}
	}
	if _, err := resolveScope(config); err != nil {
		return err
	}

	// 4. Collect credential values for every registry binding
	values, err = collectCredentialValues(values)
	if err != nil {
		return fmt.Errorf("collecting credentials: %w", err)
	}

	// 5. Review the plan, sensitive values redacted
	fmt.Println(progressStyle.Render("\nSealing plan:"))
	fmt.Println(yamlStyle.Render(formatProvisionPlan(config, values)))

	// 6. Confirm before sealing
	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Seal %d secrets?", len(registry.AllSecretNames()))).
				Description("Values are sealed through kubeseal and never written in plaintext").
				Affirmative("Yes, seal").
				Negative("Cancel").
				Value(&confirm),
		),
	)
	if err := confirmForm.Run(); err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if !confirm {
		fmt.Println("Cancelled.")
		return nil
	}

	// 7. Dry run check
	if config.DryRun {
		return printProvisionDryRun(config, values)
	}

	// 8. Destination - ask where the manifests should go
	if config.GitConfig == nil {
		destChoice, err := runDestinationChoice()
		if err != nil {
			return fmt.Errorf("destination choice: %w", err)
		}

		if destChoice.useGit {
			gitConfig, err := runGitDetailsForm(destChoice.createPR)
			if err != nil {
				return fmt.Errorf("git options: %w", err)
			}
			config.GitConfig = gitConfig

			if destChoice.createPR {
				prConfig, err := runPROptionsForm()
				if err != nil {
					return fmt.Errorf("PR options: %w", err)
				}
				config.PRConfig = prConfig
			}
		}
	}

	// 9. Seal, write, record, publish
	return executeProvisionRun(config, values)
}

// runTargetForm prompts for the namespace and sealing scope.
func runTargetForm(config *ProvisionConfig) error {
	if config.Scope == "" {
		config.Scope = string(seal.ScopeNamespaceWide)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace").
				Description("Kubernetes namespace the secrets are sealed for").
				Placeholder("ehrbase").
				Value(&config.Namespace).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("namespace is required")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Sealing scope").
				Description("namespace-wide binds the ciphertext to secret name and namespace").
				Options(
					huh.NewOption("namespace-wide", string(seal.ScopeNamespaceWide)),
					huh.NewOption("cluster-wide", string(seal.ScopeClusterWide)),
				).
				Value(&config.Scope),
		),
	)

	return form.Run()
}

// collectCredentialValues prompts for every registry binding. Defaults and
// any values already supplied via flags pre-seed the inputs; sensitive
// entries use password-mode input.
func collectCredentialValues(preset map[string]string) (map[string]string, error) {
	entries := registry.Entries()

	entryValues := make(map[string]*string)
	var formGroups []*huh.Group
	var currentFields []huh.Field

	for _, e := range entries {
		initial := preset[e.LogicalID]
		if initial == "" && !e.Sensitive {
			initial = e.Default
		}
		entryValues[e.LogicalID] = &initial

		title := e.Title
		if title == "" {
			title = e.LogicalID
		}
		if e.Required {
			title += " *"
		}

		description := e.Help
		if description == "" {
			description = fmt.Sprintf("Stored as key %q in secret %s", e.Key, e.SecretName)
		}

		var field huh.Field

		if e.Sensitive {
			// Sensitive entries use password echo mode
			field = huh.NewInput().
				Title(title).
				Description(description).
				EchoMode(huh.EchoModePassword).
				Value(entryValues[e.LogicalID]).
				Validate(func(s string) error {
					if e.Required && s == "" {
						return fmt.Errorf("%s is required", e.LogicalID)
					}
					return nil
				})
		} else {
			field = huh.NewInput().
				Title(title).
				Description(description).
				Placeholder(e.Default).
				Value(entryValues[e.LogicalID]).
				Validate(func(s string) error {
					if e.Required && s == "" {
						return fmt.Errorf("%s is required", e.LogicalID)
					}
					return nil
				})
		}

		currentFields = append(currentFields, field)

		// Group fields (max 5 per group)
		if len(currentFields) >= 5 {
			formGroups = append(formGroups, huh.NewGroup(currentFields...))
			currentFields = nil
		}
	}

	if len(currentFields) > 0 {
		formGroups = append(formGroups, huh.NewGroup(currentFields...))
	}

	form := huh.NewForm(formGroups...)
	if err := form.Run(); err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for id, v := range entryValues {
		if *v != "" {
			values[id] = *v
		}
	}

	return values, nil
}

// formatProvisionPlan renders the per-secret sealing plan with sensitive
// values redacted.
func formatProvisionPlan(config *ProvisionConfig, values map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Namespace: %s\n", config.Namespace)
	fmt.Fprintf(&b, "Scope:     %s\n", config.Scope)

	for _, name := range registry.AllSecretNames() {
		fmt.Fprintf(&b, "\n%s (%s)\n", name, registry.Filename(name))
		for _, entry := range registry.EntriesFor(name) {
			value := values[entry.LogicalID]
			if value == "" {
				value = entry.Default
			}
			fmt.Fprintf(&b, "  %s: %s\n", entry.Key, redactValue(entry, value))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// destinationChoice captures where the sealed manifests should end up.
type destinationChoice struct {
	useGit   bool
	createPR bool
}

// runDestinationChoice asks whether to publish the manifests via git.
func runDestinationChoice() (destinationChoice, error) {
	var choice string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Destination").
				Description("Where should the sealed manifests go?").
				Options(
					huh.NewOption("Write to the output directory only", "local"),
					huh.NewOption("Commit and push via git", "git"),
					huh.NewOption("Commit, push, and open a pull request", "pr"),
				).
				Value(&choice),
		),
	)

	if err := form.Run(); err != nil {
		return destinationChoice{}, err
	}

	return destinationChoice{
		useGit:   choice != "local",
		createPR: choice == "pr",
	}, nil
}

// runGitDetailsForm collects branch and commit settings for publishing.
func runGitDetailsForm(createPR bool) (*GitConfig, error) {
	gitConfig := &GitConfig{
		Commit: true,
		Push:   true,
		Remote: "origin",
	}
	createBranch := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Branch").
				Description("Branch to commit the sealed manifests to").
				Placeholder("sealed-secrets-update").
				Value(&gitConfig.Branch),

			huh.NewConfirm().
				Title("Create the branch if it doesn't exist?").
				Value(&createBranch),

			huh.NewInput().
				Title("Commit message").
				Description("Leave empty for an auto-generated message").
				Value(&gitConfig.Message),

			huh.NewInput().
				Title("Remote").
				Value(&gitConfig.Remote),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	gitConfig.CreateBranch = createBranch

	if createPR && gitConfig.Branch == "" {
		return nil, fmt.Errorf("a branch is required when opening a pull request")
	}

	return gitConfig, nil
}

// runPROptionsForm collects pull request settings.
func runPROptionsForm() (*PRConfig, error) {
	prConfig := &PRConfig{
		Create:     true,
		BaseBranch: "main",
	}
	var labels string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("PR title").
				Description("Leave empty for an auto-generated title").
				Value(&prConfig.Title),

			huh.NewInput().
				Title("PR description").
				Value(&prConfig.Description),

			huh.NewInput().
				Title("Labels").
				Description("Comma-separated, optional").
				Value(&labels),

			huh.NewInput().
				Title("Base branch").
				Value(&prConfig.BaseBranch),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	if labels != "" {
		for _, l := range strings.Split(labels, ",") {
			if trimmed := strings.TrimSpace(l); trimmed != "" {
				prConfig.Labels = append(prConfig.Labels, trimmed)
			}
		}
	}

	return prConfig, nil
}
