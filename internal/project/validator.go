// Package project checks that a directory looks like a project that can
// be backed up: the required top-level directories exist and the ignore
// file carries a backup block.
package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/patterns"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
)

// Check names
const (
	CheckDirectory  = "directory"
	CheckIgnoreFile = "ignore file"
	CheckNotEmpty   = "ignore file not empty"
	CheckMarker     = "backup block"
)

// Check is the outcome of a single validation step
type Check struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// Report collects the checks run by Validate, in order
type Report struct {
	Root   string
	Checks []Check
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Failed returns the first failed check, if any
func (r *Report) Failed() (Check, bool) {
	for _, c := range r.Checks {
		if !c.Passed {
			return c, true
		}
	}
	return Check{}, false
}

// Err returns a *domain.ProjectError describing the first failed check,
// or nil when the project is valid
func (r *Report) Err() error {
	if c, ok := r.Failed(); ok {
		return domain.NewProjectError(c.Detail, c.Path)
	}
	if len(r.Checks) == 0 {
		return domain.NewProjectError("no checks run", r.Root)
	}
	return nil
}

func (r *Report) add(name, path string, passed bool, detail string) bool {
	r.Checks = append(r.Checks, Check{Name: name, Path: path, Passed: passed, Detail: detail})
	return passed
}

// Validator checks a project root
type Validator struct {
	RequiredDirs []string
	IgnoreFile   string
	Marker       string
	Logger       *utils.Logger
}

// Validate runs the checks against root. Directory checks stop at the
// first missing directory, and the ignore file is only inspected once
// all directories were found.
func (v *Validator) Validate(root string) *Report {
	logger := v.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	logger = logger.WithComponent("project")

	report := &Report{Root: root}

	for _, dir := range v.RequiredDirs {
		p := filepath.Join(root, dir)
		if !utils.DirExists(p) {
			report.add(CheckDirectory, p, false, "missing directory")
			logger.Debug().Str("path", p).Msg("Directory missing")
			return report
		}
		report.add(CheckDirectory, p, true, "found")
	}

	v.validateIgnoreFile(report, filepath.Join(root, v.ignoreFile()))

	if c, failed := report.Failed(); failed {
		logger.Debug().Str("check", c.Name).Str("path", c.Path).Msg("Project check failed")
	} else {
		logger.Debug().Str("root", root).Msg("Project is valid")
	}
	return report
}

func (v *Validator) validateIgnoreFile(report *Report, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		report.add(CheckIgnoreFile, path, false, "missing ignore file")
		return
	}
	report.add(CheckIgnoreFile, path, true, "found")

	if info.Size() == 0 {
		report.add(CheckNotEmpty, path, false, "ignore file is empty")
		return
	}
	report.add(CheckNotEmpty, path, true, "ok")

	found, err := hasBackupBlock(path, v.marker())
	switch {
	case err != nil:
		report.add(CheckMarker, path, false, err.Error())
	case !found:
		report.add(CheckMarker, path, false, fmt.Sprintf("backup block (%s) not found", v.marker()))
	default:
		report.add(CheckMarker, path, true, "found")
	}
}

// hasBackupBlock reports whether the file has a marker line followed by
// at least one more line
func hasBackupBlock(path, marker string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if patterns.IsMarkerLine(scanner.Text(), marker) {
			return scanner.Scan(), nil
		}
	}
	return false, scanner.Err()
}

func (v *Validator) ignoreFile() string {
	if v.IgnoreFile == "" {
		return ".gitignore"
	}
	return v.IgnoreFile
}

func (v *Validator) marker() string {
	if v.Marker == "" {
		return patterns.DefaultMarker
	}
	return v.Marker
}
