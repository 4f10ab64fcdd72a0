// Package patterns extracts the tracked file extensions from the backup
// block of an ignore file and compiles them into path matchers.
//
// # Block Format
//
// The block starts at the first comment line that embeds the marker and
// runs to the end of the file. Only extension globs are collected:
//
//	# ---- #!UBB!# binary assets ----
//	*.png
//	*.fbx
//	Library/      <- ignored, not an extension glob
//
// Lines before the marker are never inspected, so ordinary ignore rules
// higher up in the file do not leak into the backup.
package patterns

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// DefaultMarker is the token that opens the backup block
const DefaultMarker = "#!UBB!#"

// extensionRegex matches a single extension glob such as "*.png"
var extensionRegex = regexp.MustCompile(`^\*\.\w+$`)

// IsMarkerLine reports whether line is a comment embedding marker
func IsMarkerLine(line, marker string) bool {
	line = strings.TrimRight(line, "\r")
	return strings.HasPrefix(line, "#") && strings.Contains(line[1:], marker)
}

// IsPatternLine reports whether line is an extension glob
func IsPatternLine(line string) bool {
	return extensionRegex.MatchString(strings.TrimSpace(line))
}

// Load scans r and returns the extension patterns listed after the marker
// line, in file order. Duplicates are kept. A missing marker yields an
// empty slice.
func Load(r io.Reader, marker string) ([]string, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	scanner := bufio.NewScanner(r)
	inBlock := false
	patterns := []string{}

	for scanner.Scan() {
		line := scanner.Text()
		if !inBlock {
			inBlock = IsMarkerLine(line, marker)
			continue
		}
		if IsPatternLine(line) {
			patterns = append(patterns, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern block: %w", err)
	}

	return patterns, nil
}

// LoadFile reads the patterns from the ignore file at path
func LoadFile(path, marker string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, marker)
}

// WithoutSuffix drops patterns that select sidecar files themselves.
// Sidecars are collected for every selected path anyway.
func WithoutSuffix(patterns []string, suffix string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if suffix != "" && strings.EqualFold(p, "*"+suffix) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Extension returns the extension named by a pattern ("*.png" -> "png")
func Extension(pattern string) string {
	return strings.TrimPrefix(pattern, "*.")
}

// Describe returns the extensions of patterns separated by spaces
func Describe(patterns []string) string {
	exts := make([]string, len(patterns))
	for i, p := range patterns {
		exts[i] = Extension(p)
	}
	return strings.Join(exts, " ")
}
