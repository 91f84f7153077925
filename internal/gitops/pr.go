package gitops

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// PRConfig holds pull request settings for publishing sealed manifests.
type PRConfig struct {
	Title      string
	Body       string
	Labels     []string
	BaseBranch string
	HeadBranch string
}

// PRResult holds the result of PR creation.
type PRResult struct {
	URL string
}

// DefaultPRTitle builds a review title naming the provisioned secrets.
func DefaultPRTitle(secretNames []string) string {
	return "add sealed secrets: " + strings.Join(secretNames, ", ")
}

// CreatePR opens a pull request via the gh CLI.
func CreatePR(cfg PRConfig, repoPath string) (*PRResult, error) {
	if !CheckGHInstalled() {
		return nil, fmt.Errorf("gh CLI not found: install from https://cli.github.com")
	}

	args := []string{"pr", "create",
		"--title", cfg.Title,
		"--body", cfg.Body,
		"--base", cfg.BaseBranch,
	}

	for _, label := range cfg.Labels {
		if label != "" {
			args = append(args, "--label", label)
		}
	}

	if cfg.HeadBranch != "" {
		args = append(args, "--head", cfg.HeadBranch)
	}

	cmd := exec.Command("gh", args...)
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return nil, fmt.Errorf("gh pr create failed: %s", errMsg)
	}

	return &PRResult{
		URL: strings.TrimSpace(stdout.String()),
	}, nil
}

// CheckGHAuth verifies the gh CLI is authenticated.
func CheckGHAuth() error {
	cmd := exec.Command("gh", "auth", "status")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gh CLI not authenticated: run 'gh auth login'")
	}
	return nil
}

// CheckGHInstalled checks if the gh CLI is installed.
func CheckGHInstalled() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}
