package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/stuttgart-things/sealkit/internal/inventory"
)

// runRemoveInteractive runs the remove command in interactive mode
func runRemoveInteractive(config *RemoveConfig) error {
	invPath := filepath.Join(config.Dir, inventory.DefaultFilename)

	inv, err := inventory.Load(invPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No sealed secrets recorded.")
			return nil
		}
		return fmt.Errorf("loading inventory: %w", err)
	}

	if len(inv.Secrets) == 0 {
		fmt.Println("No sealed secrets recorded.")
		return nil
	}

	// Select a secret, unless --name already picked one
	selected := config.SecretName
	if selected == "" {
		var options []huh.Option[string]
		for _, rec := range inv.Secrets {
			label := fmt.Sprintf("%s (%s) [%s]", rec.Name, rec.Namespace, rec.File)
			options = append(options, huh.NewOption(label, rec.Name))
		}

		selectForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Select sealed secret to remove").
					Description("Choose the secret to retire from this directory").
					Options(options...).
					Value(&selected),
			),
		)

		if err := selectForm.Run(); err != nil {
			return fmt.Errorf("selection form: %w", err)
		}
	}

	rec := inventory.FindRecord(inv, selected)
	if rec == nil {
		return fmt.Errorf("sealed secret %q not found in inventory", selected)
	}

	// Show what will be removed
	fmt.Printf("\nSealed secret to remove:\n")
	fmt.Printf("  Name:       %s\n", rec.Name)
	fmt.Printf("  Namespace:  %s\n", rec.Namespace)
	fmt.Printf("  Scope:      %s\n", rec.Scope)
	fmt.Printf("  File:       %s\n", rec.File)
	fmt.Printf("  Keys:       %s\n", strings.Join(rec.Keys, ", "))
	fmt.Printf("  Sealed at:  %s\n", rec.SealedAt)
	fmt.Println()

	// Confirm
	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove sealed secret %q?", selected)).
				Description("This deletes the manifest and its inventory record; the ciphertext cannot be recovered").
				Affirmative("Yes, remove").
				Negative("Cancel").
				Value(&confirm),
		),
	)

	if err := confirmForm.Run(); err != nil {
		return fmt.Errorf("confirmation form: %w", err)
	}

	if !confirm {
		fmt.Println("Cancelled.")
		return nil
	}

	config.SecretName = selected

	if config.DryRun {
		return printRemoveDryRun(config)
	}

	// Perform the removal
	result, err := performRemove(config.Dir, selected)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("\nRemoved sealed secret: %s", result.SecretName)))

	// Ask about git operations if not already configured
	if config.GitConfig == nil {
		destChoice, err := runRemoveDestinationChoice(config.Dir)
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

	// Execute git operations
	if config.GitConfig != nil {
		if err := executeRemoveGitOperations(result, config); err != nil {
			return fmt.Errorf("git operations: %w", err)
		}
	}

	return nil
}

// runRemoveDestinationChoice asks whether to publish the removal via git
func runRemoveDestinationChoice(dir string) (destinationChoice, error) {
	// Outside a git repo there is nothing to publish
	if _, err := findRepoRoot(dir); err != nil {
		return destinationChoice{}, nil
	}

	var destination string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Create a Git PR for this removal?").
				Description("Choose how to handle the changes").
				Options(
					huh.NewOption("Create PR (commit, push & create PR)", "pr"),
					huh.NewOption("Commit and push only", "git"),
					huh.NewOption("Keep local changes only", "local"),
				).
				Value(&destination),
		),
	)

	if err := form.Run(); err != nil {
		return destinationChoice{}, err
	}

	return destinationChoice{
		useGit:   destination != "local",
		createPR: destination == "pr",
	}, nil
}
