package changes

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	git "github.com/go-git/go-git/v5"
)

// GoGitSource answers status queries in-process with go-git, for runners
// that have no git binary.
type GoGitSource struct {
	Dir string
}

func NewGoGitSource(dir string) *GoGitSource {
	return &GoGitSource{Dir: dir}
}

func (s *GoGitSource) QueryChangeStatus(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.statusPorcelain()
	if err != nil {
		return nil, err
	}
	return ParsePorcelain(out), nil
}

func (s *GoGitSource) IsRepository(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := s.openRepo()
	if errors.Is(err, ErrNotInGitRepository) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GoGitSource) openRepo() (*git.Repository, error) {
	dir := strings.TrimSpace(s.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, ErrNotInGitRepository
		}
		dir = wd
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotInGitRepository
	}
	if err != nil {
		return nil, errors.Wrap(err, "open repository")
	}
	return repo, nil
}

// statusPorcelain renders the worktree status in `git status --porcelain`
// form so both backends share one parser.
func (s *GoGitSource) statusPorcelain() (string, error) {
	repo, err := s.openRepo()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "open worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return "", errors.Wrap(err, "git status")
	}
	if status.IsClean() {
		return "", nil
	}
	lines := make([]string, 0, len(status))
	for path, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		if fileStatus.Staging == git.Renamed && fileStatus.Extra != "" {
			lines = append(lines, fmt.Sprintf("%c%c %s%s%s", fileStatus.Staging, fileStatus.Worktree, fileStatus.Extra, renameSeparator, path))
			continue
		}
		lines = append(lines, fmt.Sprintf("%c%c %s", fileStatus.Staging, fileStatus.Worktree, path))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n", nil
}
