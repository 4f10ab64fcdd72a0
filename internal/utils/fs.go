package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameLength is the maximum length for a filename
const MaxFilenameLength = 200

// Windows reserved names
var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// invalidCharsRegex matches invalid filename characters
var invalidCharsRegex = regexp.MustCompile(`[<>:"|?*\\/]`)

// multipleSpacesRegex matches multiple consecutive spaces/dashes
var multipleSpacesRegex = regexp.MustCompile(`[-_\s]+`)

// SanitizeFilename turns a user supplied backup name into a safe file name.
// It returns "" when nothing usable is left.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	name = invalidCharsRegex.ReplaceAllString(name, "-")
	name = multipleSpacesRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-. ")

	if name == "" {
		return ""
	}

	upper := strings.ToUpper(name)
	if windowsReserved[strings.TrimSuffix(upper, filepath.Ext(upper))] {
		name = "_" + name
	}

	if len(name) > MaxFilenameLength {
		name = strings.TrimRight(name[:MaxFilenameLength], "-. ")
	}

	return norm.NFC.String(name)
}

// IsValidFilename checks if a filename is valid
func IsValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if invalidCharsRegex.MatchString(name) {
		return false
	}

	upper := strings.ToUpper(name)
	baseName := strings.TrimSuffix(upper, filepath.Ext(upper))
	if windowsReserved[baseName] {
		return false
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}

	return true
}

// NormalizePath cleans p, converts separators to '/' and applies NFC
// normalization so that equal paths compare equal as strings.
func NormalizePath(p string) string {
	return norm.NFC.String(filepath.ToSlash(filepath.Clean(p)))
}

// RelPath returns path relative to root using only lexical operations.
// Neither path has to exist. The result uses '/' separators and keeps the
// spelling of path; "." means path is root itself. Components are compared
// after NFC normalization, and case-insensitively when foldCase is set.
func RelPath(root, path string, foldCase bool) (string, error) {
	if filepath.IsAbs(root) != filepath.IsAbs(path) {
		var err error
		if root, err = filepath.Abs(root); err != nil {
			return "", err
		}
		if path, err = filepath.Abs(path); err != nil {
			return "", err
		}
	}

	r := splitPath(root)
	p := splitPath(path)

	if len(r) > 0 && len(p) > 0 && r[0] == "" && p[0] == "" {
		// both absolute: drop the shared leading separator
		r, p = r[1:], p[1:]
	}
	if len(r) == 0 && len(p) > 0 && p[0] == ".." {
		return "", fmt.Errorf("%s is not under %s", path, root)
	}
	if len(p) < len(r) {
		return "", fmt.Errorf("%s is not under %s", path, root)
	}
	for i := range r {
		if !samePath(r[i], p[i], foldCase) {
			return "", fmt.Errorf("%s is not under %s", path, root)
		}
	}

	if len(p) == len(r) {
		return ".", nil
	}
	return strings.Join(p[len(r):], "/"), nil
}

// splitPath cleans p and returns its components. An absolute path starts
// with an empty component and "." yields none.
func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	if p == "." {
		return nil
	}
	parts := strings.Split(p, "/")
	if len(parts) == 2 && parts[0] == "" && parts[1] == "" {
		return parts[:1]
	}
	return parts
}

func samePath(a, b string, foldCase bool) bool {
	a, b = norm.NFC.String(a), norm.NFC.String(b)
	if foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir ensures the parent directory of path exists, creating it if necessary
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// CopyFile streams src to dst, creating parent directories and keeping
// the source permission bits.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	if err := EnsureDir(dst); err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, err
	}
	return n, out.Close()
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}
