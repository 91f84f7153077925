package cmd

// RemoveConfig holds configuration for the remove command
type RemoveConfig struct {
	SecretName string
	Dir        string

	Interactive bool
	DryRun      bool

	GitConfig *GitConfig
	PRConfig  *PRConfig
}

// RemoveResult holds the result of retiring a single sealed secret
type RemoveResult struct {
	SecretName string

	// Removed holds the manifest files deleted from disk.
	Removed []string

	// Touched holds the bookkeeping files rewritten in place.
	Touched []string
}
