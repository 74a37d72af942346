package transition

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/stash"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func requireGit(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping git binary test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	t.Setenv("GIT_AUTHOR_NAME", "Test Author")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test Author")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("HOME", t.TempDir())
}

type stack struct {
	service     *git.Service
	inspector   *changes.Inspector
	manager     *stash.Manager
	coordinator *Coordinator
	repo        *gogit.Repository
	main        string
	path        string
}

func (s *stack) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(s.path, name), []byte(content), 0o644))
}

// commit writes name on the current branch and commits it.
func (s *stack) commit(t *testing.T, name, content, message string) {
	t.Helper()

	s.write(t, name, content)
	worktree, err := s.repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(name)
	require.NoError(t, err)

	sig := &object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()}
	_, err = worktree.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

// newStack builds a repository with one commit on the default branch and a
// "dev" branch pointing at it.
func newStack(t *testing.T) *stack {
	t.Helper()

	path := t.TempDir()
	repo, err := gogit.PlainInit(path, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "a.txt"), []byte("base\n"), 0o644))
	_, err = worktree.Add("a.txt")
	require.NoError(t, err)

	sig := &object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()}
	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	service := git.NewService(git.Config{Path: path, Timeout: 30 * time.Second}, logger)
	require.NoError(t, service.CreateBranch(context.Background(), "dev"))

	inspector := changes.NewInspector(changes.Config{}, service, logger)
	manager := stash.NewManager(service, inspector, logger)
	analyzer := divergence.NewAnalyzer(divergence.Config{}, service, logger)

	return &stack{
		service:     service,
		inspector:   inspector,
		manager:     manager,
		coordinator: NewCoordinator(service, inspector, manager, analyzer, logger),
		repo:        repo,
		main:        head.Name().Short(),
		path:        path,
	}
}

func TestSafeSwitch_AutoStashOnRepository(t *testing.T) {
	requireGit(t)
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(s.path, "a.txt"), []byte("local edit\n"), 0o644))

	result, err := s.coordinator.SafeSwitch(ctx, "dev", Options{AutoStash: true, Analyze: true})
	require.NoError(t, err)
	assert.True(t, result.Stashed)
	assert.NotNil(t, result.Divergence)

	current, err := s.service.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev", current)

	entries, err := s.manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, s.main)
	assert.Contains(t, entries[0].Message, "dev")

	content, err := os.ReadFile(filepath.Join(s.path, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "base\n", string(content))

	set := s.inspector.Compute(ctx)
	assert.False(t, set.HasChanges(), "pending after auto-stash: %v", set.All())
	assert.False(t, set.Degraded())

	// Bring the shelved edit back on the new branch.
	require.NoError(t, s.manager.Apply(ctx, 0, true))

	content, err = os.ReadFile(filepath.Join(s.path, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "local edit\n", string(content))
}

func TestSafeSwitch_PendingChangesOnRepository(t *testing.T) {
	requireGit(t)
	s := newStack(t)
	ctx := context.Background()

	s.commit(t, "b.txt", "base\n", "second file")
	s.write(t, "a.txt", "edited\n")
	s.write(t, "b.txt", "edited\n")
	s.write(t, "new.txt", "untracked\n")

	_, err := s.coordinator.SafeSwitch(ctx, "dev", Options{})
	require.ErrorIs(t, err, ErrPendingChanges)

	var switchErr *SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, KindPendingChanges, switchErr.Kind)
	assert.True(t, switchErr.HadPendingChanges)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "new.txt"}, switchErr.Pending)

	current, err := s.service.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.main, current)

	// Nothing was touched: the edits and the untracked file are still there.
	set := s.inspector.Compute(ctx)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, set.Unstaged)
	assert.Equal(t, []string{"new.txt"}, set.Untracked)

	entries, err := s.manager.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSafeSwitch_DetachedHeadOnRepository(t *testing.T) {
	requireGit(t)
	s := newStack(t)
	ctx := context.Background()

	out, err := exec.Command("git", "-C", s.path, "checkout", "--detach", "HEAD").CombinedOutput()
	require.NoError(t, err, string(out))

	_, err = s.service.CurrentBranch(ctx)
	require.ErrorIs(t, err, git.ErrDetachedHead)

	result, err := s.coordinator.SafeSwitch(ctx, "dev", Options{Analyze: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Origin, 7)
	assert.NotNil(t, result.Divergence)

	current, err := s.service.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev", current)
}

func TestSafeSwitch_MissingBranchOnRepository(t *testing.T) {
	requireGit(t)
	s := newStack(t)

	_, err := s.coordinator.SafeSwitch(context.Background(), "does-not-exist", Options{})

	var switchErr *SwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, KindBranchNotFound, switchErr.Kind)
}
