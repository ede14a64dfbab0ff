package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reductor/reductor/internal/adapters/outbound/gitinfo"
)

func initRepoWithCommit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("reductor test repo\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "ci",
			Email: "ci@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir
}

func TestIsGitRepo(t *testing.T) {
	adapter := gitinfo.New()

	assert.True(t, adapter.IsGitRepo(initRepoWithCommit(t)))
	assert.False(t, adapter.IsGitRepo(t.TempDir()))
}

func TestCommitHash(t *testing.T) {
	adapter := gitinfo.New()
	dir := initRepoWithCommit(t)

	hash, err := adapter.CommitHash(dir)

	require.NoError(t, err)
	assert.Len(t, hash, 40)
}

func TestCommitHash_NotARepo(t *testing.T) {
	_, err := gitinfo.New().CommitHash(t.TempDir())

	assert.Error(t, err)
}
