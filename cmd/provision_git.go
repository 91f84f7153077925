package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stuttgart-things/sealkit/internal/gitops"
	"github.com/stuttgart-things/sealkit/internal/provision"
)

// prepareGitWorkspace readies the repository the manifests are written
// into: a fresh clone when a URL is given, otherwise the repo containing
// the output directory. Runs before sealing so the files land on the
// right branch in the right checkout. Returns nil when git is not in play.
func prepareGitWorkspace(config *ProvisionConfig) (*gitops.Client, func(), error) {
	if config.GitConfig == nil {
		return nil, nil, nil
	}

	// Resolve credentials if pushing
	user, token := config.GitConfig.User, config.GitConfig.Token
	if config.GitConfig.Push {
		var err error
		user, token, err = gitops.ResolveCredentials(user, token)
		if err != nil {
			return nil, nil, err
		}
	} else {
		// For commit only, credentials are optional
		user, token = gitops.ResolveCredentialsOptional(user, token)
	}
	config.GitConfig.User, config.GitConfig.Token = user, token

	var g *gitops.Client
	var cleanup func()

	if config.GitConfig.RepoURL != "" {
		fmt.Printf("Cloning %s...\n", config.GitConfig.RepoURL)
		clone, tmpDir, err := gitops.Clone(config.GitConfig.RepoURL, user, token)
		if err != nil {
			return nil, nil, err
		}
		g = clone
		cleanup = func() { _ = g.Cleanup() }

		// Write into the clone, keeping the requested relative layout
		config.OutputDir = filepath.Join(tmpDir, config.OutputDir)
	} else {
		repoPath, err := findRepoRoot(config.OutputDir)
		if err != nil {
			return nil, nil, fmt.Errorf("output directory is not in a git repository: %w", err)
		}
		opened, err := gitops.Open(repoPath, user, token)
		if err != nil {
			return nil, nil, err
		}
		g = opened
	}

	// Create or switch branch before any file is written
	if config.GitConfig.Branch != "" {
		var err error
		if config.GitConfig.CreateBranch {
			fmt.Printf("Creating branch: %s\n", config.GitConfig.Branch)
			err = g.CreateBranch(config.GitConfig.Branch)
		} else {
			fmt.Printf("Checking out branch: %s\n", config.GitConfig.Branch)
			err = g.CheckoutBranch(config.GitConfig.Branch)
		}
		if err != nil {
			if cleanup != nil {
				cleanup()
			}
			return nil, nil, err
		}
	}

	return g, cleanup, nil
}

// publishToGit stages, commits, and pushes the written manifests plus the
// bookkeeping files, then opens a PR when requested.
func publishToGit(g *gitops.Client, config *ProvisionConfig, result *provision.Result, bookkeeping []string) error {
	files := append([]string{}, result.Files()...)
	files = append(files, bookkeeping...)

	fmt.Println("Staging files...")
	if err := g.StageFiles(files); err != nil {
		return err
	}

	message := config.GitConfig.Message
	if message == "" {
		message = fmt.Sprintf("seal credentials for %s", strings.Join(secretNames(result), ", "))
	}

	fmt.Printf("Committing: %s\n", message)
	if err := g.Commit(message, config.GitConfig.User, ""); err != nil {
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
		current, err := g.CurrentBranch()
		if err != nil {
			return err
		}
		branch = current
	}

	fmt.Printf("Pushing to %s...\n", remote)
	if err := g.Push(remote, branch); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Pushed successfully"))

	// Create PR if requested (after successful push)
	if config.PRConfig != nil && config.PRConfig.Create {
		if err := createProvisionPR(config, result, g.RepoPath, branch); err != nil {
			return fmt.Errorf("creating pull request: %w", err)
		}
	}

	return nil
}

func secretNames(result *provision.Result) []string {
	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		names = append(names, item.SecretName)
	}
	return names
}

// createProvisionPR opens a pull request for the pushed branch.
func createProvisionPR(config *ProvisionConfig, result *provision.Result, repoPath, branch string) error {
	if err := gitops.CheckGHAuth(); err != nil {
		return err
	}

	title := config.PRConfig.Title
	if title == "" {
		title = gitops.DefaultPRTitle(secretNames(result))
	}

	body := config.PRConfig.Description
	if body == "" {
		body = fmt.Sprintf("Sealed %d secrets for namespace %s.", len(result.Items), config.Namespace)
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

// findRepoRoot finds the git repository root from a starting path
func findRepoRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	for {
		gitDir := filepath.Join(absPath, ".git")
		if _, err := os.Stat(gitDir); err == nil {
			return absPath, nil
		}

		parent := filepath.Dir(absPath)
		if parent == absPath {
			return "", fmt.Errorf("not a git repository")
		}
		absPath = parent
	}
}
