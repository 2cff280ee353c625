package changes

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

var (
	ErrGitNotInstalled    = errors.New("git not installed")
	ErrNotInGitRepository = errors.New("not in a git repository")
	ErrUnknownBackend     = errors.New("unknown git backend")
)

const (
	BackendExec  = "exec"
	BackendGoGit = "go-git"
)

// Source reports the change status of a working copy.
type Source interface {
	QueryChangeStatus(ctx context.Context) ([]Entry, error)
}

// Workspace is a Source that can also tell whether it points at a
// repository at all.
type Workspace interface {
	Source
	IsRepository(ctx context.Context) (bool, error)
}

// OpenWorkspace returns the workspace for dir backed by backend.
func OpenWorkspace(backend string, dir string) (Workspace, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendExec:
		return NewExecSource(dir), nil
	case BackendGoGit:
		return NewGoGitSource(dir), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (want %s or %s)", backend, BackendExec, BackendGoGit)
	}
}

// Collect queries src and returns its entries. A failing query is logged
// and yields an empty result: no changes is a valid answer downstream.
func Collect(ctx context.Context, src Source, logger *log.Logger) []Entry {
	if logger == nil {
		logger = log.Default()
	}
	entries, err := src.QueryChangeStatus(ctx)
	if err != nil {
		if errors.Is(err, ErrGitNotInstalled) {
			logger.Error("git command not found. Make sure git is installed and in PATH.")
		} else {
			logger.Error("Error running git status", "err", err)
		}
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	logger.Debug("collected change status", "entries", len(entries))
	return entries
}
