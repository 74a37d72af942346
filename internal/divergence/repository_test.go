package divergence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/branchguard/branchguard/internal/git"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	t    *testing.T
	path string
	repo *gogit.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := t.TempDir()
	repo, err := gogit.PlainInit(path, false)
	require.NoError(t, err)

	return &fixture{t: t, path: path, repo: repo}
}

func (f *fixture) commit(name, content string, when time.Time) string {
	f.t.Helper()

	worktree, err := f.repo.Worktree()
	require.NoError(f.t, err)
	require.NoError(f.t, os.WriteFile(filepath.Join(f.path, name), []byte(content), 0o644))

	_, err = worktree.Add(name)
	require.NoError(f.t, err)

	sig := &object.Signature{Name: "Test Author", Email: "test@example.com", When: when}
	hash, err := worktree.Commit("update "+name, &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(f.t, err)

	return hash.String()
}

func (f *fixture) checkout(branch string, create bool) {
	f.t.Helper()

	worktree, err := f.repo.Worktree()
	require.NoError(f.t, err)
	require.NoError(f.t, worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	}))
}

func (f *fixture) head() string {
	f.t.Helper()

	head, err := f.repo.Head()
	require.NoError(f.t, err)
	return head.Name().Short()
}

func TestAnalyzer_DetectOnRepository(t *testing.T) {
	f := newFixture(t)
	f.commit("shared.txt", "base", t0)
	f.commit("both.txt", "base", t0.Add(time.Minute))
	mainBranch := f.head()

	f.checkout("feature", true)
	featureHash := f.commit("both.txt", "feature", t0.Add(2*time.Hour))
	f.commit("feature-only.txt", "new", t0.Add(3*time.Hour))

	f.checkout(mainBranch, false)
	mainHash := f.commit("both.txt", "main", t0.Add(time.Hour))

	service := git.NewService(git.Config{Path: f.path}, zaptest.NewLogger(t))
	analyzer := NewAnalyzer(Config{}, service, zaptest.NewLogger(t))

	report, err := analyzer.Detect(context.Background(), mainBranch, "feature", 50)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.NotContains(t, report.Files, "shared.txt")

	both := report.Files["both.txt"]
	assert.Equal(t, KindBothChanged, both.Kind)
	assert.Equal(t, SideB, both.MoreRecent)
	assert.Equal(t, mainHash, both.A.Hash)
	assert.Equal(t, featureHash, both.B.Hash)
	assert.Equal(t, time.Hour, both.Gap)

	only := report.Files["feature-only.txt"]
	assert.Equal(t, KindOnlyInOne, only.Kind)
	assert.Equal(t, SideB, only.OnlyIn)
}

func TestAnalyzer_CompareFileOnRepository(t *testing.T) {
	f := newFixture(t)
	f.commit("a.txt", "one\n", t0)
	mainBranch := f.head()

	f.checkout("feature", true)
	f.commit("a.txt", "two\n", t0.Add(time.Hour))

	service := git.NewService(git.Config{Path: f.path}, zaptest.NewLogger(t))
	analyzer := NewAnalyzer(Config{}, service, zaptest.NewLogger(t))

	cmp, err := analyzer.CompareFile(context.Background(), "a.txt", mainBranch, "feature")
	require.NoError(t, err)

	assert.Equal(t, "one\n", cmp.A.Content)
	assert.Equal(t, "two\n", cmp.B.Content)
	assert.Contains(t, cmp.Diff, "-one")
	assert.Contains(t, cmp.Diff, "+two")
}
