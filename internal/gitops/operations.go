package gitops

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Client publishes sealed manifests into a git repository. Only encrypted
// files and bookkeeping ever pass through here; plaintext never reaches a
// worktree.
type Client struct {
	RepoPath string
	repo     *git.Repository
	auth     *http.BasicAuth
}

// Config holds git-related settings for a provisioning run.
type Config struct {
	RepoPath     string
	RepoURL      string // For clone-based workflow
	Branch       string
	CreateBranch bool
	Remote       string
	User         string
	Token        string
	CommitMsg    string
	PushChanges  bool
	OpenPR       bool
}

// Open attaches to an existing repository.
func Open(repoPath, user, token string) (*Client, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	c := &Client{
		RepoPath: repoPath,
		repo:     repo,
	}

	if user != "" && token != "" {
		c.auth = &http.BasicAuth{
			Username: user,
			Password: token,
		}
	}

	return c, nil
}

// Clone clones a repository into a temp directory. The caller owns the
// directory and removes it via Cleanup.
func Clone(url, user, token string) (*Client, string, error) {
	tmpDir, err := os.MkdirTemp("", "sealkit-gitops-*")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp directory: %w", err)
	}

	var auth *http.BasicAuth
	if user != "" && token != "" {
		auth = &http.BasicAuth{
			Username: user,
			Password: token,
		}
	}

	cloneOpts := &git.CloneOptions{
		URL: url,
	}
	if auth != nil {
		cloneOpts.Auth = auth
	}

	repo, err := git.PlainClone(tmpDir, false, cloneOpts)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, "", fmt.Errorf("cloning repository: %w", err)
	}

	return &Client{
		RepoPath: tmpDir,
		repo:     repo,
		auth:     auth,
	}, tmpDir, nil
}

// StageFiles stages manifest files for commit. Paths may be absolute or
// repo-relative; every file must exist on disk.
func (c *Client) StageFiles(files []string) error {
	worktree, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	for _, f := range files {
		relPath, err := filepath.Rel(c.RepoPath, f)
		if err != nil {
			relPath = f
		}

		absPath := filepath.Join(c.RepoPath, relPath)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", absPath)
		}

		if err := worktree.AddGlob(relPath); err != nil {
			return fmt.Errorf("staging %s: %w", relPath, err)
		}
	}

	return nil
}

// StageRemovals records file deletions in the index. The paths may already
// be gone from the worktree; anything still present is deleted as part of
// staging.
func (c *Client) StageRemovals(files []string) error {
	worktree, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	for _, f := range files {
		relPath, err := filepath.Rel(c.RepoPath, f)
		if err != nil {
			relPath = f
		}

		if _, err := worktree.Remove(relPath); err != nil {
			return fmt.Errorf("staging removal of %s: %w", relPath, err)
		}
	}

	return nil
}

// Commit creates a commit with the staged changes.
func (c *Client) Commit(message, authorName, authorEmail string) error {
	worktree, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	if authorName == "" {
		authorName = "sealkit"
	}
	if authorEmail == "" {
		authorEmail = "sealkit@automated"
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// Push pushes the named branch to the remote. An empty branch pushes the
// default refspecs.
func (c *Client) Push(remote, branch string) error {
	if c.auth == nil {
		return fmt.Errorf("git credentials required for push")
	}

	opts := &git.PushOptions{
		RemoteName: remote,
		Auth:       c.auth,
	}
	if branch != "" {
		refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
		opts.RefSpecs = []config.RefSpec{refSpec}
	}

	err := c.repo.Push(opts)
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("pushing: %w", err)
	}

	return nil
}

// Cleanup removes the repository directory (for clone-based workflows).
func (c *Client) Cleanup() error {
	return os.RemoveAll(c.RepoPath)
}

// Repo returns the underlying git repository.
func (c *Client) Repo() *git.Repository {
	return c.repo
}
