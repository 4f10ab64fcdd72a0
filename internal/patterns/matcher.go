package patterns

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher tests asset-relative paths against an ordered list of patterns
type Matcher struct {
	patterns []string
	compiled []gitignore.Pattern
	fold     bool
}

// Compile builds a Matcher. With caseInsensitive set, both patterns and
// paths are lower-cased before matching.
func Compile(patterns []string, caseInsensitive bool) (*Matcher, error) {
	m := &Matcher{
		patterns: append([]string(nil), patterns...),
		compiled: make([]gitignore.Pattern, len(patterns)),
		fold:     caseInsensitive,
	}
	for i, p := range patterns {
		if !IsPatternLine(p) {
			return nil, fmt.Errorf("invalid pattern %q: expected *.<extension>", p)
		}
		if caseInsensitive {
			p = strings.ToLower(p)
		}
		m.compiled[i] = gitignore.ParsePattern(p, nil)
	}
	return m, nil
}

// Len returns the number of patterns
func (m *Matcher) Len() int {
	return len(m.compiled)
}

// Pattern returns the i-th pattern as configured
func (m *Matcher) Pattern(i int) string {
	return m.patterns[i]
}

// MatchAll returns the indexes of every pattern matching the file at
// rel, a slash-separated path relative to the asset root. Only the file
// name takes part in matching; a directory named "x.png" does not select
// its contents.
func (m *Matcher) MatchAll(rel string) []int {
	parts := m.name(rel)
	var hits []int
	for i, p := range m.compiled {
		if p.Match(parts, false) == gitignore.Exclude {
			hits = append(hits, i)
		}
	}
	return hits
}

func (m *Matcher) name(rel string) []string {
	rel = strings.TrimRight(rel, "/")
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		rel = rel[i+1:]
	}
	if m.fold {
		rel = strings.ToLower(rel)
	}
	return []string{rel}
}
