package changes

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Inspector computes ChangeSets for the working tree.
type Inspector struct {
	reader  StatusReader
	ignored map[string]struct{}

	logger *zap.Logger
}

func NewInspector(config Config, reader StatusReader, logger *zap.Logger) *Inspector {
	dirs := config.IgnoredDirs
	if dirs == nil {
		dirs = DefaultIgnoredDirs
	}

	return &Inspector{
		reader:  reader,
		ignored: lo.SliceToMap(dirs, func(d string) (string, struct{}) { return d, struct{}{} }),

		logger: logger,
	}
}

// Compute queries the three groups independently. A failing query leaves
// its group empty and is recorded in Failures; Compute itself never fails.
func (i *Inspector) Compute(ctx context.Context) ChangeSet {
	set := ChangeSet{Failures: map[Group]error{}}

	set.Untracked = i.group(ctx, &set, GroupUntracked, i.reader.UntrackedFiles)
	set.Unstaged = i.group(ctx, &set, GroupUnstaged, i.reader.UnstagedFiles)
	set.Staged = i.group(ctx, &set, GroupStaged, i.staged)

	i.logger.Debug("changes computed",
		zap.Int("untracked", len(set.Untracked)),
		zap.Int("unstaged", len(set.Unstaged)),
		zap.Int("staged", len(set.Staged)),
		zap.Int("failures", len(set.Failures)))

	return set
}

// Ignored reports whether path has a segment in the ignored set.
func (i *Inspector) Ignored(path string) bool {
	for _, segment := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if _, ok := i.ignored[segment]; ok {
			return true
		}
	}
	return false
}

func (i *Inspector) group(
	ctx context.Context,
	set *ChangeSet,
	group Group,
	query func(context.Context) ([]string, error),
) []string {
	paths, err := query(ctx)
	if err != nil {
		i.logger.Warn("failed to read change group", zap.String("group", string(group)), zap.Error(err))
		set.Failures[group] = err
		return []string{}
	}

	return lo.Reject(paths, func(p string, _ int) bool { return i.Ignored(p) })
}

// staged lists every index entry while the branch has no commits yet.
func (i *Inspector) staged(ctx context.Context) ([]string, error) {
	hasHead, err := i.reader.HasHead(ctx)
	if err != nil {
		return nil, err
	}
	if !hasHead {
		return i.reader.IndexFiles(ctx)
	}
	return i.reader.StagedFiles(ctx)
}
