// Package changes turns working-copy status into the set of folders a
// change touched.
package changes

import (
	"strconv"
	"strings"
)

type StatusCode int

const (
	Modified StatusCode = iota + 1
	Added
	Deleted
	Renamed
	Untracked
)

func (s StatusCode) String() string {
	switch s {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	case Untracked:
		return "untracked"
	default:
		return "unknown"
	}
}

// Entry is one changed path, relative to the repository root.
// OrigPath is only set for renames.
type Entry struct {
	Path     string
	OrigPath string
	Status   StatusCode
}

const renameSeparator = " -> "

// ParsePorcelain parses `git status --porcelain` (v1) output.
//
// Untracked (`??`) lines are always kept. Other lines are kept when their
// two-letter code contains M, A, D or R; every other code is skipped.
func ParsePorcelain(output string) []Entry {
	entries := make([]Entry, 0)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || len(line) < 3 {
			continue
		}
		code := line[:2]
		rest := strings.TrimPrefix(line[2:], " ")
		if rest == "" {
			continue
		}

		var status StatusCode
		if code == "??" {
			status = Untracked
		} else {
			s, ok := trackedStatus(code)
			if !ok {
				continue
			}
			status = s
		}

		entry := Entry{Path: unquotePath(rest), Status: status}
		if strings.ContainsRune(code, 'R') {
			if from, to, ok := strings.Cut(rest, renameSeparator); ok {
				entry.OrigPath = unquotePath(from)
				entry.Path = unquotePath(to)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// trackedStatus returns the first of M, A, D, R found scanning the index
// column, then the worktree column.
func trackedStatus(code string) (StatusCode, bool) {
	for _, c := range code {
		switch c {
		case 'M':
			return Modified, true
		case 'A':
			return Added, true
		case 'D':
			return Deleted, true
		case 'R':
			return Renamed, true
		}
	}
	return 0, false
}

// unquotePath undoes git's C-style quoting of unusual file names.
func unquotePath(p string) string {
	if len(p) < 2 || !strings.HasPrefix(p, `"`) || !strings.HasSuffix(p, `"`) {
		return p
	}
	unquoted, err := strconv.Unquote(p)
	if err != nil {
		return p
	}
	return unquoted
}
