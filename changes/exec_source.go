package changes

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// ExecSource runs the git binary.
type ExecSource struct {
	GitBin string
	Dir    string
}

func NewExecSource(dir string) *ExecSource {
	return &ExecSource{GitBin: "git", Dir: dir}
}

func (s *ExecSource) QueryChangeStatus(ctx context.Context) ([]Entry, error) {
	// List untracked files one by one, not collapsed into "dir/".
	out, err := s.run(ctx, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	return ParsePorcelain(out), nil
}

func (s *ExecSource) IsRepository(ctx context.Context) (bool, error) {
	_, err := s.run(ctx, "rev-parse", "--git-dir")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrGitNotInstalled) {
		return false, err
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// run returns stdout untouched; porcelain lines may start with a space.
func (s *ExecSource) run(ctx context.Context, args ...string) (string, error) {
	bin := strings.TrimSpace(s.GitBin)
	if bin == "" {
		bin = "git"
	}
	gitPath, err := exec.LookPath(bin)
	if err != nil {
		return "", ErrGitNotInstalled
	}

	cmd := exec.CommandContext(ctx, gitPath, args...)
	if strings.TrimSpace(s.Dir) != "" {
		cmd.Dir = s.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", errors.Wrapf(err, "git %s", args[0])
		}
		return "", errors.Wrapf(err, "git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
