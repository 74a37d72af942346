package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const shortHashLen = 7

var _ Collaborator = (*Service)(nil)

// Service implements Collaborator for a single working tree. History,
// ancestry and branch reads go through go-git; anything that mutates the
// index or the working tree shells out to the git binary.
type Service struct {
	config Config

	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(config Config, logger *zap.Logger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Path returns the working tree the service is bound to.
func (s *Service) Path() string {
	return s.config.Path
}

func (s *Service) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.config.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}
	return repo, nil
}

// Init creates the repository when missing and writes ignoreTemplate to
// .gitignore unless one already exists.
func (s *Service) Init(ctx context.Context, ignoreTemplate string) error {
	s.logger.Info("initializing repository", zap.String("path", s.config.Path))

	if err := os.MkdirAll(s.config.Path, 0o755); err != nil { //nolint:mnd //dir perms
		return fmt.Errorf("failed to create working tree: %w", err)
	}

	if _, err := git.PlainOpen(s.config.Path); err == nil {
		s.logger.Debug("repository already exists", zap.String("path", s.config.Path))
	} else if initErr := s.plainInit(ctx); initErr != nil {
		return initErr
	}

	if ignoreTemplate == "" {
		return nil
	}

	ignorePath := filepath.Join(s.config.Path, ".gitignore")
	if _, statErr := os.Stat(ignorePath); statErr == nil {
		return nil
	}

	if writeErr := os.WriteFile(ignorePath, []byte(ignoreTemplate), 0o644); writeErr != nil { //nolint:gosec,mnd //regular file
		s.logger.Error("failed to write .gitignore", zap.Error(writeErr))
		return fmt.Errorf("failed to write .gitignore: %w", writeErr)
	}

	s.logger.Info(".gitignore created", zap.String("path", ignorePath))
	return nil
}

// plainInit creates the repository with go-git. A .git directory that
// already holds other files (the repository lock lives there) is rejected
// by go-git, so git itself initialises it in place.
func (s *Service) plainInit(ctx context.Context) error {
	_, err := git.PlainInit(s.config.Path, false)
	if errors.Is(err, git.ErrTargetDirNotEmpty) {
		s.logger.Debug("git directory not empty, initializing in place", zap.String("path", s.config.Path))
		_, err = s.mutate(ctx, "init")
	}
	if err != nil {
		s.logger.Error("failed to initialize repository", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}

	return nil
}

// CurrentBranch returns the short name of the checked out branch. An unborn
// branch (no commits yet) is still reported by name.
func (s *Service) CurrentBranch(_ context.Context) (string, error) {
	repo, err := s.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}

	if head.Type() != plumbing.SymbolicReference {
		return "", &DetachedHeadError{Hash: head.Hash().String()}
	}

	return head.Target().Short(), nil
}

// ListBranches returns local and/or remote branches.
func (s *Service) ListBranches(ctx context.Context, local, remote bool) ([]Branch, error) {
	s.logger.Debug("listing branches",
		zap.String("path", s.config.Path),
		zap.Bool("local", local),
		zap.Bool("remote", remote))

	repo, err := s.open()
	if err != nil {
		return nil, err
	}

	current, _ := s.CurrentBranch(ctx)

	refs, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}

	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		name := ref.Name()
		switch {
		case name.IsBranch() && local:
			short := name.Short()
			branches = append(branches, Branch{
				Name:    short,
				Hash:    ref.Hash().String(),
				Current: short == current,
			})
		case name.IsRemote() && remote:
			remoteName, branchName, ok := strings.Cut(name.Short(), "/")
			if !ok || branchName == "HEAD" {
				return nil
			}
			branches = append(branches, Branch{
				Name:       branchName,
				Remote:     true,
				RemoteName: remoteName,
				Hash:       ref.Hash().String(),
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to iterate branches", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}

	return branches, nil
}

// HasHead reports whether the current branch has at least one commit.
func (s *Service) HasHead(_ context.Context) (bool, error) {
	repo, err := s.open()
	if err != nil {
		return false, err
	}

	if _, headErr := repo.Head(); headErr != nil {
		if errors.Is(headErr, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrInvalidRepository, headErr)
	}

	return true, nil
}

// IterCommits walks ref newest first and returns at most maxCount commits.
// When path is set only commits touching it are returned.
func (s *Service) IterCommits(_ context.Context, ref string, maxCount int, path string) ([]Commit, error) {
	if maxCount <= 0 {
		return nil, fmt.Errorf("%w: max count must be positive, got %d", ErrInvalidArgument, maxCount)
	}

	repo, err := s.open()
	if err != nil {
		return nil, err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBranchNotFound, ref, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: *hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}
	defer iter.Close()

	commits := make([]Commit, 0, maxCount)
	for len(commits) < maxCount {
		c, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", ref, nextErr)
		}

		files, filesErr := changedFiles(c)
		if filesErr != nil {
			return nil, fmt.Errorf("failed to read changes of %s: %w", c.Hash.String(), filesErr)
		}

		if path != "" && !lo.Contains(files, filepath.ToSlash(path)) {
			continue
		}

		commits = append(commits, newCommit(c, files))
	}

	return commits, nil
}

// IsAncestor reports whether ancestor is reachable from descendant. Equal
// revisions count as ancestors.
func (s *Service) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	repo, err := s.open()
	if err != nil {
		return false, err
	}

	a, err := resolveCommit(repo, ancestor)
	if err != nil {
		return false, err
	}
	d, err := resolveCommit(repo, descendant)
	if err != nil {
		return false, err
	}

	if a.Hash == d.Hash {
		return true, nil
	}

	ok, err := a.IsAncestor(d)
	if err != nil {
		return false, fmt.Errorf("failed to check ancestry of %s and %s: %w", ancestor, descendant, err)
	}

	return ok, nil
}

// ShowFileAtRef returns the content of path as recorded at ref.
func (s *Service) ShowFileAtRef(_ context.Context, path, ref string) (string, error) {
	repo, err := s.open()
	if err != nil {
		return "", err
	}

	commit, err := resolveCommit(repo, ref)
	if err != nil {
		return "", err
	}

	file, err := commit.File(filepath.ToSlash(path))
	if errors.Is(err, object.ErrFileNotFound) {
		return "", fmt.Errorf("%w: %s at %s", ErrFileNotFound, path, ref)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}

	return content, nil
}

func resolveCommit(repo *git.Repository, ref string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBranchNotFound, ref, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
	}

	return commit, nil
}

func changedFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	if c.NumParents() == 0 {
		var files []string
		err = tree.Files().ForEach(func(f *object.File) error {
			files = append(files, f.Name)
			return nil
		})
		return files, err
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(changes))
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		files = append(files, name)
	}

	return files, nil
}

func newCommit(c *object.Commit, files []string) Commit {
	hash := c.Hash.String()
	message, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")

	return Commit{
		Hash:      hash,
		ShortHash: hash[:shortHashLen],
		When:      c.Committer.When,
		Author:    c.Author.Name,
		Message:   message,
		Files:     files,
	}
}
