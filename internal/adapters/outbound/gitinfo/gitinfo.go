// Package gitinfo attaches version-control context to run results.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Adapter implements domain.GitInfo using go-git.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

// IsGitRepo reports whether projectPath is inside a git repository.
func (a *Adapter) IsGitRepo(projectPath string) bool {
	_, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// CommitHash returns the full HEAD hash of the repository containing
// projectPath.
func (a *Adapter) CommitHash(projectPath string) (string, error) {
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
