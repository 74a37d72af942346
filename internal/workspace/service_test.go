package workspace

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
	"github.com/branchguard/branchguard/internal/history"
	"github.com/branchguard/branchguard/internal/merge"
	"github.com/branchguard/branchguard/internal/repolock"
	"github.com/branchguard/branchguard/internal/stash"
	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/branchguard/branchguard/internal/transition"
	"github.com/branchguard/branchguard/pkg/badgerfx"
	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
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

type harness struct {
	svc     *Service
	repo    *git.Service
	metrics *metrics
	path    string
}

// newHarness wires the full stack over path with an in-memory history.
func newHarness(t *testing.T, path string, config Config) *harness {
	t.Helper()

	logger := zaptest.NewLogger(t)

	db, err := badger.Open(badgerfx.Config{InMemory: true}.Build().WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := git.NewService(git.Config{Path: path, Timeout: 30 * time.Second}, logger)
	inspector := changes.NewInspector(changes.Config{}, repo, logger)
	stashes := stash.NewManager(repo, inspector, logger)
	analyzer := divergence.NewAnalyzer(divergence.Config{}, repo, logger)
	runner := tasks.NewRunner(tasks.Config{}, logger)
	t.Cleanup(func() { _ = runner.Shutdown(context.Background()) })

	m := newMetrics(prometheus.NewRegistry())

	svc := NewService(
		config,
		repo,
		inspector,
		stashes,
		analyzer,
		transition.NewCoordinator(repo, inspector, stashes, analyzer, logger),
		merge.NewCoordinator(repo, logger),
		repolock.New(repolock.Config{Path: filepath.Join(t.TempDir(), "branchguard.lock"), Timeout: 5 * time.Second}, logger),
		history.NewService(history.NewRepository(db), logger),
		runner,
		m,
		logger,
	)

	return &harness{svc: svc, repo: repo, metrics: m, path: path}
}

func (h *harness) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.path, name), []byte(content), 0o644))
}

func (h *harness) lastEntry(t *testing.T, op history.Operation) history.Entry {
	t.Helper()

	entries, err := h.svc.History(context.Background(), history.Filter{Operation: op, Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestService_PrepareInitialisesRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{InitIfMissing: true, IgnoreTemplate: "node_modules/\n"})

	require.NoError(t, h.svc.Prepare(context.Background()))

	ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "node_modules/\n", string(ignore))

	entry := h.lastEntry(t, history.OperationInit)
	assert.Equal(t, history.OutcomeSucceeded, entry.Outcome)
	assert.Equal(t, path, entry.Repository)
}

func TestService_PrepareDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{})

	require.NoError(t, h.svc.Prepare(context.Background()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestService_RejectsInvalidArguments(t *testing.T) {
	h := newHarness(t, t.TempDir(), Config{})
	ctx := context.Background()

	require.ErrorIs(t, h.svc.CreateBranch(ctx, " "), ErrInvalidArgument)
	require.ErrorIs(t, h.svc.Commit(ctx, "", nil), ErrInvalidArgument)
	require.ErrorIs(t, h.svc.Reset(ctx, "HEAD", git.ResetMode("keep")), ErrInvalidArgument)
	require.ErrorIs(t, h.svc.Sync(ctx, SyncAction("rebase")), ErrInvalidArgument)

	_, err := h.svc.SyncAsync(SyncAction("rebase"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	entries, err := h.svc.History(ctx, history.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_SwitchRecordsHistory(t *testing.T) {
	requireGit(t)
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{InitIfMissing: true})
	ctx := context.Background()

	require.NoError(t, h.svc.Prepare(ctx))
	h.write(t, "a.txt", "base\n")
	require.NoError(t, h.svc.Commit(ctx, "initial commit", nil))

	main, err := h.svc.CurrentBranch(ctx)
	require.NoError(t, err)

	require.NoError(t, h.svc.CreateBranch(ctx, "dev"))

	h.write(t, "a.txt", "dirty\n")

	_, err = h.svc.Switch(ctx, "dev", transition.Options{})
	require.ErrorIs(t, err, transition.ErrPendingChanges)

	failed := h.lastEntry(t, history.OperationSwitch)
	assert.Equal(t, history.OutcomeFailed, failed.Outcome)
	assert.Equal(t, main, failed.Origin)
	assert.Equal(t, "dev", failed.Target)

	result, err := h.svc.Switch(ctx, "dev", transition.Options{AutoStash: true})
	require.NoError(t, err)
	assert.True(t, result.Stashed)

	done := h.lastEntry(t, history.OperationSwitch)
	assert.Equal(t, history.OutcomeSucceeded, done.Outcome)
	assert.Equal(t, main, done.Origin)

	stashes, err := h.svc.Stashes(ctx)
	require.NoError(t, err)
	require.Len(t, stashes, 1)

	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.operations.WithLabelValues("switch", "failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.operations.WithLabelValues("switch", "succeeded")), 0)
}

func TestService_StashLifecycle(t *testing.T) {
	requireGit(t)
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{InitIfMissing: true})
	ctx := context.Background()

	require.NoError(t, h.svc.Prepare(ctx))
	h.write(t, "a.txt", "base\n")
	require.NoError(t, h.svc.Commit(ctx, "initial commit", nil))

	outcome, err := h.svc.CreateStash(ctx, "nothing here")
	require.NoError(t, err)
	assert.Equal(t, stash.OutcomeSkipped, outcome)
	assert.Equal(t, history.OutcomeSkipped, h.lastEntry(t, history.OperationStashCreate).Outcome)

	h.write(t, "a.txt", "changed\n")
	outcome, err = h.svc.CreateStash(ctx, "wip")
	require.NoError(t, err)
	assert.Equal(t, stash.OutcomeCreated, outcome)

	set, err := h.svc.Changes(ctx)
	require.NoError(t, err)
	assert.False(t, set.HasChanges())

	require.NoError(t, h.svc.ApplyStash(ctx, 0, true))

	applied := h.lastEntry(t, history.OperationStashApply)
	require.NotNil(t, applied.StashIndex)
	assert.Equal(t, 0, *applied.StashIndex)
	assert.Equal(t, "pop", applied.Detail)

	err = h.svc.DropStash(ctx, 0)
	require.ErrorIs(t, err, stash.ErrDropFailed)
	assert.Equal(t, history.OutcomeFailed, h.lastEntry(t, history.OperationStashDrop).Outcome)
}

func TestService_MergeAsync(t *testing.T) {
	requireGit(t)
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{InitIfMissing: true})
	ctx := context.Background()

	require.NoError(t, h.svc.Prepare(ctx))
	h.write(t, "a.txt", "base\n")
	require.NoError(t, h.svc.Commit(ctx, "initial commit", nil))
	main, err := h.svc.CurrentBranch(ctx)
	require.NoError(t, err)

	require.NoError(t, h.svc.CreateBranch(ctx, "feature"))
	_, err = h.svc.Switch(ctx, "feature", transition.Options{})
	require.NoError(t, err)
	h.write(t, "a.txt", "feature\n")
	require.NoError(t, h.svc.Commit(ctx, "feature change", []string{"a.txt"}))

	_, err = h.svc.Switch(ctx, main, transition.Options{})
	require.NoError(t, err)
	h.write(t, "a.txt", "main\n")
	require.NoError(t, h.svc.Commit(ctx, "main change", nil))

	task, err := h.svc.MergeAsync("feature")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	done, err := h.svc.runner.Wait(waitCtx, task.ID)
	require.NoError(t, err)
	require.Equal(t, tasks.StatusSucceeded, done.Status)

	outcome, ok := done.Result.(merge.Outcome)
	require.True(t, ok)
	assert.Equal(t, merge.PhaseConflicted, outcome.Phase)

	entry := h.lastEntry(t, history.OperationMerge)
	assert.Equal(t, history.OutcomeConflicted, entry.Outcome)
	assert.Equal(t, "a.txt", entry.Detail)

	polled, err := h.svc.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusSucceeded, polled.Status)

	require.NoError(t, h.svc.Resolve(ctx, "a.txt", git.SideOurs))
	require.NoError(t, h.svc.ContinueMerge(ctx))

	state, err := h.svc.MergeState(ctx)
	require.NoError(t, err)
	assert.Equal(t, merge.PhaseCompleted, state.Phase)
}

func TestService_Reset(t *testing.T) {
	requireGit(t)
	path := filepath.Join(t.TempDir(), "repo")
	h := newHarness(t, path, Config{InitIfMissing: true})
	ctx := context.Background()

	require.NoError(t, h.svc.Prepare(ctx))
	h.write(t, "a.txt", "one\n")
	require.NoError(t, h.svc.Commit(ctx, "one", nil))
	h.write(t, "a.txt", "two\n")
	require.NoError(t, h.svc.Commit(ctx, "two", nil))

	require.NoError(t, h.svc.Reset(ctx, "HEAD~1", git.ResetHard))

	content, err := os.ReadFile(filepath.Join(path, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	entry := h.lastEntry(t, history.OperationReset)
	assert.Equal(t, "HEAD~1", entry.Target)
	assert.Equal(t, "hard", entry.Detail)
}
