package manifest

import (
	"sort"
	"strings"

	"github.com/quantmind-br/unitybackup-go/internal/utils"
)

// DirectorySet holds unique slash-separated directory paths relative to
// the asset root. Paths differing only by Unicode normalization, or by
// case on case-insensitive hosts, are one entry spelled as first seen.
type DirectorySet struct {
	fold bool
	dirs map[string]string
}

// NewDirectorySet creates an empty set
func NewDirectorySet(caseInsensitive bool) *DirectorySet {
	return &DirectorySet{
		fold: caseInsensitive,
		dirs: make(map[string]string),
	}
}

// Add inserts rel and reports whether it was not present yet
func (s *DirectorySet) Add(rel string) bool {
	k := s.key(rel)
	if _, ok := s.dirs[k]; ok {
		return false
	}
	s.dirs[k] = rel
	return true
}

// Contains reports whether rel is in the set
func (s *DirectorySet) Contains(rel string) bool {
	_, ok := s.dirs[s.key(rel)]
	return ok
}

// Len returns the number of directories
func (s *DirectorySet) Len() int {
	return len(s.dirs)
}

// Sorted returns the directories in lexical order
func (s *DirectorySet) Sorted() []string {
	out := make([]string, 0, len(s.dirs))
	for _, d := range s.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (s *DirectorySet) key(rel string) string {
	k := utils.NormalizePath(rel)
	if s.fold {
		return strings.ToLower(k)
	}
	return k
}
