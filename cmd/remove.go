package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	removeName   string
	removeDir    string
	removeDryRun bool

	// Git flags for remove (reuse same env vars)
	removeGitBranch       string
	removeGitCreateBranch bool
	removeGitMessage      string
	removeGitRemote       string
	removeGitUser         string
	removeGitToken        string

	// PR flags for remove
	removeCreatePR      bool
	removePRTitle       string
	removePRDescription string
	removePRLabels      []string
	removePRBase        string

	// Mode flags for remove
	removeInteractive    bool
	removeNonInteractive bool
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Retire a sealed secret from a manifest directory",
	Long:  `Deletes a sealed manifest, drops its inventory record, and updates kustomization.yaml if present. Optionally commits the removal via Git PR. The cluster object is not touched.`,
	Run:   runRemove,
}

func init() {
	removeCmd.Flags().StringVar(&removeName, "name", "", "Name of the sealed secret to remove")
	removeCmd.Flags().StringVarP(&removeDir, "dir", "d", ".", "Directory holding the sealed manifests")
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without making changes")

	// Git flags
	removeCmd.Flags().StringVar(&removeGitBranch, "git-branch", "", "Branch to use/create")
	removeCmd.Flags().BoolVar(&removeGitCreateBranch, "git-create-branch", false, "Create the branch if it doesn't exist")
	removeCmd.Flags().StringVar(&removeGitMessage, "git-message", "", "Commit message (default: auto-generated)")
	removeCmd.Flags().StringVar(&removeGitRemote, "git-remote", "origin", "Git remote name")
	removeCmd.Flags().StringVar(&removeGitUser, "git-user", "", "Git username (or GIT_USER/GITHUB_USER env)")
	removeCmd.Flags().StringVar(&removeGitToken, "git-token", "", "Git token (or GIT_TOKEN/GITHUB_TOKEN env)")

	// PR flags
	removeCmd.Flags().BoolVar(&removeCreatePR, "create-pr", false, "Create a pull request after push")
	removeCmd.Flags().StringVar(&removePRTitle, "pr-title", "", "PR title (default: auto-generated)")
	removeCmd.Flags().StringVar(&removePRDescription, "pr-description", "", "PR description")
	removeCmd.Flags().StringSliceVar(&removePRLabels, "pr-labels", nil, "PR labels (comma-separated)")
	removeCmd.Flags().StringVar(&removePRBase, "pr-base", "main", "Base branch for PR")

	// Mode flags
	removeCmd.Flags().BoolVarP(&removeInteractive, "interactive", "i", false, "Force interactive mode")
	removeCmd.Flags().BoolVar(&removeNonInteractive, "non-interactive", false, "Force non-interactive mode")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) {
	fmt.Println(logo)

	config := &RemoveConfig{
		SecretName: removeName,
		Dir:        removeDir,
		DryRun:     removeDryRun,
	}

	// Build git config
	if removeGitBranch != "" || removeCreatePR {
		config.GitConfig = &GitConfig{
			Commit:       true,
			Push:         true,
			CreateBranch: removeGitCreateBranch,
			Message:      removeGitMessage,
			Branch:       removeGitBranch,
			Remote:       removeGitRemote,
			User:         removeGitUser,
			Token:        removeGitToken,
		}
	}

	// Build PR config
	if removeCreatePR || removePRTitle != "" || removePRDescription != "" || len(removePRLabels) > 0 {
		config.PRConfig = &PRConfig{
			Create:      removeCreatePR,
			Title:       removePRTitle,
			Description: removePRDescription,
			Labels:      removePRLabels,
			BaseBranch:  removePRBase,
		}
	}

	// Determine mode
	if removeNonInteractive {
		config.Interactive = false
	} else if removeInteractive {
		config.Interactive = true
	} else {
		config.Interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	var err error
	if config.Interactive {
		err = runRemoveInteractive(config)
	} else {
		err = runRemoveNonInteractive(config)
	}

	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
