package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stuttgart-things/sealkit/internal/gitops"
	"github.com/stuttgart-things/sealkit/internal/inventory"
	"github.com/stuttgart-things/sealkit/internal/kustomize"
	"github.com/stuttgart-things/sealkit/internal/registry"
)

// runRemoveNonInteractive runs the remove command in non-interactive mode
func runRemoveNonInteractive(config *RemoveConfig) error {
	if config.SecretName == "" {
		return fmt.Errorf("--name is required in non-interactive mode")
	}

	if config.DryRun {
		return printRemoveDryRun(config)
	}

	result, err := performRemove(config.Dir, config.SecretName)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Removed sealed secret: %s", result.SecretName)))

	// Execute git operations
	if config.GitConfig != nil {
		if err := executeRemoveGitOperations(result, config); err != nil {
			return fmt.Errorf("git operations: %w", err)
		}
	}

	return nil
}

// performRemove deletes the sealed manifest, drops its inventory record,
// and updates kustomization.yaml when present. The manifest filename comes
// from the inventory record when one exists, the canonical mapping
// otherwise.
func performRemove(dir, secretName string) (*RemoveResult, error) {
	invPath := filepath.Join(dir, inventory.DefaultFilename)

	var inv *inventory.Inventory
	var rec *inventory.Record
	if loaded, err := inventory.Load(invPath); err == nil {
		inv = loaded
		rec = inventory.FindRecord(inv, secretName)
	}

	file := registry.Filename(secretName)
	if rec != nil && rec.File != "" {
		file = rec.File
	}

	manifestPath := filepath.Join(dir, file)
	_, statErr := os.Stat(manifestPath)
	if os.IsNotExist(statErr) && rec == nil {
		return nil, fmt.Errorf("sealed secret %q not found in %s", secretName, dir)
	}

	result := &RemoveResult{SecretName: secretName}

	// Remove the manifest
	if statErr == nil {
		if err := os.Remove(manifestPath); err != nil {
			return nil, fmt.Errorf("removing manifest: %w", err)
		}
		fmt.Printf("Removed manifest: %s\n", manifestPath)
		result.Removed = append(result.Removed, manifestPath)
	} else {
		Logger.Warnf("manifest already absent: %s", manifestPath)
	}

	// Update sealed-inventory.yaml
	if rec != nil {
		if err := inventory.RemoveRecord(inv, secretName); err != nil {
			Logger.Warnf("%v", err)
		} else {
			if err := inventory.Save(invPath, inv); err != nil {
				return nil, fmt.Errorf("saving inventory: %w", err)
			}
			fmt.Printf("Updated inventory: %s\n", invPath)
			result.Touched = append(result.Touched, invPath)
		}
	}

	// Update kustomization.yaml
	kustPath := filepath.Join(dir, "kustomization.yaml")
	if _, err := os.Stat(kustPath); err == nil {
		k, err := kustomize.Load(kustPath)
		if err != nil {
			return nil, fmt.Errorf("loading kustomization: %w", err)
		}

		if err := kustomize.RemoveResource(k, file); err != nil {
			Logger.Warnf("%v", err)
		} else {
			if err := kustomize.Save(kustPath, k); err != nil {
				return nil, fmt.Errorf("saving kustomization: %w", err)
			}
			fmt.Printf("Updated kustomization: %s\n", kustPath)
			result.Touched = append(result.Touched, kustPath)
		}
	}

	return result, nil
}

// printRemoveDryRun shows what would be removed
func printRemoveDryRun(config *RemoveConfig) error {
	file := registry.Filename(config.SecretName)

	invPath := filepath.Join(config.Dir, inventory.DefaultFilename)
	if inv, err := inventory.Load(invPath); err == nil {
		if rec := inventory.FindRecord(inv, config.SecretName); rec != nil && rec.File != "" {
			file = rec.File
		}
	}

	fmt.Println("\n=== DRY RUN - No changes made ===")
	fmt.Printf("Would remove sealed secret: %s\n", config.SecretName)
	fmt.Printf("  Manifest:   %s\n", filepath.Join(config.Dir, file))
	fmt.Printf("  Inventory:  drop record from %s\n", inventory.DefaultFilename)
	fmt.Printf("  Kustomize:  drop resource from kustomization.yaml if present\n")
	return nil
}

// executeRemoveGitOperations commits and pushes the removal
func executeRemoveGitOperations(result *RemoveResult, config *RemoveConfig) error {
	repoRoot, err := findRepoRoot(config.Dir)
	if err != nil {
		return fmt.Errorf("directory is not in a git repository: %w", err)
	}

	// Resolve credentials if pushing
	user, token := config.GitConfig.User, config.GitConfig.Token
	if config.GitConfig.Push {
		user, token, err = gitops.ResolveCredentials(user, token)
		if err != nil {
			return err
		}
	} else {
		// For commit only, credentials are optional
		user, token = gitops.ResolveCredentialsOptional(user, token)
	}

	g, err := gitops.Open(repoRoot, user, token)
	if err != nil {
		return err
	}

	// Create or switch branch, keeping the local removal in the worktree
	if config.GitConfig.Branch != "" {
		if config.GitConfig.CreateBranch {
			fmt.Printf("Creating branch: %s\n", config.GitConfig.Branch)
			err = g.CreateBranch(config.GitConfig.Branch)
		} else {
			fmt.Printf("Checking out branch: %s\n", config.GitConfig.Branch)
			err = g.CheckoutBranch(config.GitConfig.Branch)
		}
		if err != nil {
			return err
		}
	}

	fmt.Println("Staging changes...")
	if err := g.StageRemovals(result.Removed); err != nil {
		return err
	}
	if len(result.Touched) > 0 {
		if err := g.StageFiles(result.Touched); err != nil {
			return err
		}
	}

	message := config.GitConfig.Message
	if message == "" {
		message = fmt.Sprintf("remove sealed secret %s", result.SecretName)
	}

	fmt.Printf("Committing: %s\n", message)
	if err := g.Commit(message, user, ""); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Committed successfully"))

	if !config.GitConfig.Push {
		return nil
	}

	remote := config.GitConfig.Remote
	if remote == "" {
		remote = "origin"
	}
	branch := config.GitConfig.Branch
	if branch == "" {
		branch, err = g.CurrentBranch()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Pushing to %s...\n", remote)
	if err := g.Push(remote, branch); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Pushed successfully"))

	// Create PR if requested (after successful push)
	if config.PRConfig != nil && config.PRConfig.Create {
		if err := createRemovePR(result, config, g.RepoPath, branch); err != nil {
			return fmt.Errorf("creating pull request: %w", err)
		}
	}

	return nil
}

// createRemovePR opens a pull request for the pushed removal.
func createRemovePR(result *RemoveResult, config *RemoveConfig, repoPath, branch string) error {
	if err := gitops.CheckGHAuth(); err != nil {
		return err
	}

	title := config.PRConfig.Title
	if title == "" {
		title = fmt.Sprintf("remove sealed secret: %s", result.SecretName)
	}

	body := config.PRConfig.Description
	if body == "" {
		body = generateRemovePRDescription(result)
	}

	base := config.PRConfig.BaseBranch
	if base == "" {
		base = "main"
	}

	fmt.Println("Creating pull request...")
	pr, err := gitops.CreatePR(gitops.PRConfig{
		Title:      title,
		Body:       body,
		Labels:     config.PRConfig.Labels,
		BaseBranch: base,
		HeadBranch: branch,
	}, repoPath)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Pull request created: %s", pr.URL)))
	return nil
}

// generateRemovePRDescription builds a PR body describing the removal.
func generateRemovePRDescription(result *RemoveResult) string {
	var b strings.Builder

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Retires the sealed secret `%s`. The ciphertext cannot be recovered after this change; reprovision to restore it.\n\n", result.SecretName)

	b.WriteString("## Changes\n\n")
	for _, f := range result.Removed {
		fmt.Fprintf(&b, "- delete `%s`\n", filepath.Base(f))
	}
	for _, f := range result.Touched {
		fmt.Fprintf(&b, "- update `%s`\n", filepath.Base(f))
	}

	return b.String()
}
