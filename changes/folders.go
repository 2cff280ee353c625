package changes

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// RootFolder stands for files that live directly in the repository root.
const RootFolder = "/"

// FolderSet is a set of slash-separated folders relative to the
// repository root.
type FolderSet map[string]struct{}

func NewFolderSet(folders ...string) FolderSet {
	s := make(FolderSet, len(folders))
	for _, f := range folders {
		s.Add(f)
	}
	return s
}

func (s FolderSet) Add(folder string) {
	if folder == "" {
		return
	}
	s[folder] = struct{}{}
}

func (s FolderSet) Has(folder string) bool {
	_, ok := s[folder]
	return ok
}

func (s FolderSet) Len() int {
	return len(s)
}

// Sorted returns the folders in ascending lexicographic order. The result
// is never nil.
func (s FolderSet) Sorted() []string {
	folders := lo.Keys(s)
	if folders == nil {
		folders = []string{}
	}
	slices.Sort(folders)
	return folders
}

// FolderOf returns the immediate parent folder of a changed path, or
// RootFolder when the path sits at the repository root. Ancestors are not
// included.
func FolderOf(p string) string {
	p = strings.TrimSuffix(filepath.ToSlash(p), "/")
	dir := path.Dir(path.Clean(p))
	if dir == "." || dir == "" || dir == "/" {
		return RootFolder
	}
	return dir
}

// ExtractFolders maps every path to its folder. The result does not depend
// on input order or duplicates.
func ExtractFolders(paths []string) FolderSet {
	folders := make(FolderSet, len(paths))
	for _, p := range paths {
		folders.Add(FolderOf(p))
	}
	return folders
}

// PathsOf lists the paths touched by entries. A rename contributes both
// its origin and its destination.
func PathsOf(entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
		if e.OrigPath != "" {
			paths = append(paths, e.OrigPath)
		}
	}
	return paths
}
