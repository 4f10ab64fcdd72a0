package domain

import "context"

//go:generate mockgen -destination=../mocks/archive_writer.go -package=mocks . ArchiveWriter

// ArchiveWriter persists a valid manifest to a destination
type ArchiveWriter interface {
	// Write copies every directory, file and sidecar of m into a backup named name.
	// It returns the final destination path.
	Write(ctx context.Context, m *Manifest, name string, compress bool) (string, error)
}
