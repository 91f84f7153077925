package cmd

// ProvisionConfig holds configuration for the provision command
type ProvisionConfig struct {
	// Secret metadata
	Namespace string
	Scope     string

	// Sealing configuration
	Binary   string
	CertPath string

	// Value input
	ValuesFile   string
	InlineValues []string

	// Output configuration
	OutputDir           string
	DryRun              bool
	Force               bool
	UpdateKustomization bool

	// Mode control
	Interactive bool

	// Git configuration
	GitConfig *GitConfig

	// PR configuration
	PRConfig *PRConfig
}

// GitConfig holds git-related configuration
type GitConfig struct {
	Commit       bool
	Push         bool
	CreateBranch bool
	Message      string
	Branch       string
	Remote       string
	RepoURL      string
	User         string
	Token        string
}

// PRConfig holds pull request configuration
type PRConfig struct {
	Create      bool
	Title       string
	Description string
	Labels      []string
	BaseBranch  string
}
