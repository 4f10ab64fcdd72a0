package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrProjectInvalid indicates the working directory is not a usable project
	ErrProjectInvalid = errors.New("project is invalid")

	// ErrNoPatternsConfigured indicates the backup block yielded no extension patterns.
	// It is not fatal: the run finishes with an empty manifest.
	ErrNoPatternsConfigured = errors.New("no file patterns configured")

	// ErrNoFilesFound indicates patterns were configured but nothing matched
	ErrNoFilesFound = errors.New("no files found")

	// ErrMissingMetadata indicates at least one file or directory lacks a sidecar
	ErrMissingMetadata = errors.New("missing metadata")

	// ErrOutsideAssetRoot indicates a file path does not live under the asset root
	ErrOutsideAssetRoot = errors.New("path is outside the asset root")

	// ErrWriteFailed indicates writing the archive failed
	ErrWriteFailed = errors.New("write failed")

	// ErrInvalidManifest indicates an empty or incomplete manifest was handed to a writer
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrDestinationExists indicates the backup destination is already taken
	ErrDestinationExists = errors.New("destination already exists")

	// ErrDestinationLocked indicates another process is writing the same destination
	ErrDestinationLocked = errors.New("destination is locked")

	// ErrInvalidBackupName indicates the backup name cannot be used as a file name
	ErrInvalidBackupName = errors.New("invalid backup name")
)

// ProjectError reports which project check failed
type ProjectError struct {
	Check string
	Path  string
}

func (e *ProjectError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("project is invalid: %s (%s)", e.Check, e.Path)
	}
	return fmt.Sprintf("project is invalid: %s", e.Check)
}

func (e *ProjectError) Unwrap() error {
	return ErrProjectInvalid
}

// NewProjectError creates a new ProjectError
func NewProjectError(check, path string) *ProjectError {
	return &ProjectError{Check: check, Path: path}
}

// MissingMetadataError lists every file or directory without a sidecar
type MissingMetadataError struct {
	Paths []string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("missing metadata for %d path(s): %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

func (e *MissingMetadataError) Unwrap() error {
	return ErrMissingMetadata
}

// NewMissingMetadataError creates a new MissingMetadataError
func NewMissingMetadataError(paths []string) *MissingMetadataError {
	return &MissingMetadataError{Paths: paths}
}

// WriteError represents an error while writing an archive
type WriteError struct {
	Destination string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for %s: %v", e.Destination, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrWriteFailed as well as the wrapped cause
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}

// NewWriteError creates a new WriteError
func NewWriteError(destination string, err error) *WriteError {
	return &WriteError{Destination: destination, Err: err}
}

// IsFatal reports whether err should fail the run
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNoPatternsConfigured)
}

// Process exit codes
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitProjectInvalid  = 2
	ExitNoFilesFound    = 3
	ExitMissingMetadata = 4
	ExitWriteFailed     = 5
)

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch {
	case !IsFatal(err):
		return ExitOK
	case errors.Is(err, ErrProjectInvalid):
		return ExitProjectInvalid
	case errors.Is(err, ErrNoFilesFound):
		return ExitNoFilesFound
	case errors.Is(err, ErrMissingMetadata):
		return ExitMissingMetadata
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteFailed
	default:
		return ExitFailure
	}
}
