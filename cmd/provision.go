package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	provisionNamespace  string
	provisionScope      string
	provisionBinary     string
	provisionCert       string
	provisionValuesFile string
	provisionSetValues  []string
	provisionOutputDir  string
	provisionDryRun     bool
	provisionForce      bool
	provisionKustomize  bool

	// Git flags for provision
	provisionGitBranch       string
	provisionGitCreateBranch bool
	provisionGitMessage      string
	provisionGitRemote       string
	provisionGitRepoURL      string
	provisionGitUser         string
	provisionGitToken        string

	// PR flags for provision
	provisionCreatePR      bool
	provisionPRTitle       string
	provisionPRDescription string
	provisionPRLabels      []string
	provisionPRBase        string

	// Mode flags for provision
	provisionInteractive    bool
	provisionNonInteractive bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Seal operator credentials into SealedSecret manifests",
	Long:  `Collects the credential values the deployment templates consume, seals them through kubeseal into SealedSecret manifests safe to commit, writes one manifest per secret, and optionally commits via Git PR.`,
	Run:   runProvision,
}

func init() {
	provisionCmd.Flags().StringVarP(&provisionNamespace, "namespace", "n", "", "Target namespace for the secrets")
	provisionCmd.Flags().StringVar(&provisionScope, "scope", "", "Sealing scope: namespace-wide or cluster-wide (default: namespace-wide)")
	provisionCmd.Flags().StringVar(&provisionBinary, "kubeseal-binary", "kubeseal", "kubeseal binary to invoke")
	provisionCmd.Flags().StringVar(&provisionCert, "cert", "", "Sealing certificate for offline sealing (passed to kubeseal --cert)")
	provisionCmd.Flags().StringVarP(&provisionValuesFile, "values-file", "f", "", "YAML/JSON file with credential values")
	provisionCmd.Flags().StringSliceVar(&provisionSetValues, "set", nil, "Inline value (logical-id=value, repeatable)")
	provisionCmd.Flags().StringVarP(&provisionOutputDir, "output-dir", "o", ".", "Output directory for sealed manifests")
	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "Show the sealing plan without invoking kubeseal or writing files")
	provisionCmd.Flags().BoolVar(&provisionForce, "force", false, "Replace manifests left behind by an earlier run")
	provisionCmd.Flags().BoolVar(&provisionKustomize, "update-kustomization", false, "Register the written manifests in the output directory's kustomization.yaml")

	// Git flags
	provisionCmd.Flags().StringVar(&provisionGitBranch, "git-branch", "", "Branch to use/create")
	provisionCmd.Flags().BoolVar(&provisionGitCreateBranch, "git-create-branch", false, "Create the branch if it doesn't exist")
	provisionCmd.Flags().StringVar(&provisionGitMessage, "git-message", "", "Commit message (default: auto-generated)")
	provisionCmd.Flags().StringVar(&provisionGitRemote, "git-remote", "origin", "Git remote name")
	provisionCmd.Flags().StringVar(&provisionGitRepoURL, "git-repo-url", "", "Clone from URL instead of using local repo")
	provisionCmd.Flags().StringVar(&provisionGitUser, "git-user", "", "Git username (or GIT_USER/GITHUB_USER env)")
	provisionCmd.Flags().StringVar(&provisionGitToken, "git-token", "", "Git token (or GIT_TOKEN/GITHUB_TOKEN env)")

	// PR flags
	provisionCmd.Flags().BoolVar(&provisionCreatePR, "create-pr", false, "Create a pull request after push")
	provisionCmd.Flags().StringVar(&provisionPRTitle, "pr-title", "", "PR title (default: auto-generated)")
	provisionCmd.Flags().StringVar(&provisionPRDescription, "pr-description", "", "PR description")
	provisionCmd.Flags().StringSliceVar(&provisionPRLabels, "pr-labels", nil, "PR labels (comma-separated)")
	provisionCmd.Flags().StringVar(&provisionPRBase, "pr-base", "main", "Base branch for PR")

	// Mode flags
	provisionCmd.Flags().BoolVarP(&provisionInteractive, "interactive", "i", false, "Force interactive mode")
	provisionCmd.Flags().BoolVar(&provisionNonInteractive, "non-interactive", false, "Force non-interactive mode")

	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) {
	fmt.Println(logo)

	config := &ProvisionConfig{
		Namespace:           provisionNamespace,
		Scope:               provisionScope,
		Binary:              provisionBinary,
		CertPath:            provisionCert,
		ValuesFile:          provisionValuesFile,
		InlineValues:        provisionSetValues,
		OutputDir:           provisionOutputDir,
		DryRun:              provisionDryRun,
		Force:               provisionForce,
		UpdateKustomization: provisionKustomize,
	}

	// Build git config if any git flags are set
	if provisionGitBranch != "" || provisionGitRepoURL != "" || provisionCreatePR {
		config.GitConfig = &GitConfig{
			Commit:       true,
			Push:         true,
			CreateBranch: provisionGitCreateBranch,
			Message:      provisionGitMessage,
			Branch:       provisionGitBranch,
			Remote:       provisionGitRemote,
			RepoURL:      provisionGitRepoURL,
			User:         provisionGitUser,
			Token:        provisionGitToken,
		}
	}

	// Build PR config if PR flags are set
	if provisionCreatePR || provisionPRTitle != "" || provisionPRDescription != "" || len(provisionPRLabels) > 0 {
		config.PRConfig = &PRConfig{
			Create:      provisionCreatePR,
			Title:       provisionPRTitle,
			Description: provisionPRDescription,
			Labels:      provisionPRLabels,
			BaseBranch:  provisionPRBase,
		}
	}

	// Determine mode
	if provisionNonInteractive {
		config.Interactive = false
	} else if provisionInteractive {
		config.Interactive = true
	} else {
		config.Interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	var err error
	if config.Interactive {
		err = runProvisionInteractive(config)
	} else {
		err = runProvisionNonInteractive(config)
	}

	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
