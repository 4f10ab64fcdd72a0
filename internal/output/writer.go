package output

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
	"github.com/quantmind-br/unitybackup-go/pkg/version"
)

// ArchiveExt is appended to the backup name in compressed mode
const ArchiveExt = ".tar.zst"

const partialSuffix = ".partial"

// Writer copies a manifest into a backup directory or a tar+zstd archive
type Writer struct {
	baseDir     string
	force       bool
	level       zstd.EncoderLevel
	progressOut io.Writer
	logger      *utils.Logger
	now         func() time.Time
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir          string
	Force            bool
	CompressionLevel zstd.EncoderLevel
	// Progress renders a progress bar on ProgressOut (stderr by default)
	Progress    bool
	ProgressOut io.Writer
	Logger      *utils.Logger
}

// NewWriter creates a new archive writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = "./backups"
	}
	if opts.CompressionLevel == 0 {
		opts.CompressionLevel = zstd.SpeedDefault
	}

	var out io.Writer
	if opts.Progress {
		out = opts.ProgressOut
		if out == nil {
			out = os.Stderr
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Writer{
		baseDir:     opts.BaseDir,
		force:       opts.Force,
		level:       opts.CompressionLevel,
		progressOut: out,
		logger:      logger.WithComponent("output"),
		now:         time.Now,
	}
}

// entry is one item of a backup, named relative to the backup root
type entry struct {
	name string
	src  string
	dir  bool
}

// Destination returns the path a backup called name is written to
func (w *Writer) Destination(name string, compress bool) (string, error) {
	clean := utils.SanitizeFilename(name)
	if clean == "" || !utils.IsValidFilename(clean) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidBackupName, name)
	}
	if compress {
		clean += ArchiveExt
	}
	return filepath.Join(w.baseDir, clean), nil
}

// Write stores m as a backup called name and returns its final path.
// The backup appears under its final name only once complete.
func (w *Writer) Write(ctx context.Context, m *domain.Manifest, name string, compress bool) (string, error) {
	if !m.Valid() {
		return "", domain.NewWriteError(name, domain.ErrInvalidManifest)
	}

	dest, err := w.Destination(name, compress)
	if err != nil {
		return "", domain.NewWriteError(name, err)
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", domain.NewWriteError(dest, err)
	}

	lock := flock.New(dest + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return "", domain.NewWriteError(dest, fmt.Errorf("acquire lock: %w", err))
	}
	if !locked {
		return "", domain.NewWriteError(dest, domain.ErrDestinationLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to release destination lock")
		}
	}()

	_, statErr := os.Lstat(dest)
	exists := statErr == nil
	if exists && !w.force {
		return "", domain.NewWriteError(dest, domain.ErrDestinationExists)
	}

	entries, err := w.entries(m)
	if err != nil {
		return "", domain.NewWriteError(dest, err)
	}

	idx := w.index(m, name, compress, entries)
	data, err := encodeIndex(idx)
	if err != nil {
		return "", domain.NewWriteError(dest, err)
	}

	partial := dest + partialSuffix
	if err := os.RemoveAll(partial); err != nil {
		return "", domain.NewWriteError(dest, err)
	}

	w.logger.Info().
		Str("destination", dest).
		Bool("compress", compress).
		Int("entries", len(entries)).
		Msg("Writing backup")

	if compress {
		err = w.writeArchive(ctx, partial, data, idx.CreatedAt, entries)
	} else {
		err = w.writeTree(ctx, partial, data, entries)
	}
	if err != nil {
		_ = os.RemoveAll(partial)
		return "", domain.NewWriteError(dest, err)
	}

	if exists {
		w.logger.Debug().Str("destination", dest).Msg("Replacing existing backup")
		if err := os.RemoveAll(dest); err != nil {
			_ = os.RemoveAll(partial)
			return "", domain.NewWriteError(dest, err)
		}
	}
	if err := os.Rename(partial, dest); err != nil {
		_ = os.RemoveAll(partial)
		return "", domain.NewWriteError(dest, err)
	}

	w.logger.Info().Str("destination", dest).Msg("Backup written")
	return dest, nil
}

// entries lists the asset root, the directories, then every file and
// sidecar once, in manifest order
func (w *Writer) entries(m *domain.Manifest) ([]entry, error) {
	base := filepath.Base(filepath.Clean(m.AssetRoot))
	entries := make([]entry, 0, 1+len(m.Directories)+len(m.Files)+len(m.Sidecars))
	entries = append(entries, entry{name: base, dir: true})

	for _, d := range m.Directories {
		entries = append(entries, entry{name: path.Join(base, d), dir: true})
	}

	seen := make(map[string]bool, len(m.Files)+len(m.Sidecars))
	for _, group := range [][]string{m.Files, m.Sidecars} {
		for _, src := range group {
			rel, err := utils.RelPath(m.AssetRoot, src, false)
			if err != nil || rel == "." {
				return nil, fmt.Errorf("%w: %s", domain.ErrOutsideAssetRoot, src)
			}
			name := path.Join(base, rel)
			if seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, entry{name: name, src: src})
		}
	}

	return entries, nil
}

func (w *Writer) index(m *domain.Manifest, name string, compress bool, entries []entry) *Index {
	idx := &Index{
		Name:       name,
		CreatedAt:  w.now().UTC().Truncate(time.Second),
		Tool:       version.Tool(),
		Compressed: compress,
		Patterns:   m.Patterns,
		Summary:    m.Summary(),
	}

	sidecars := make(map[string]bool, len(m.Sidecars))
	for _, s := range m.Sidecars {
		sidecars[s] = true
	}
	for _, e := range entries[1:] {
		switch {
		case e.dir:
			idx.Directories = append(idx.Directories, e.name)
		case sidecars[e.src]:
			idx.Sidecars = append(idx.Sidecars, e.name)
		default:
			idx.Files = append(idx.Files, e.name)
		}
	}
	return idx
}

func (w *Writer) writeTree(ctx context.Context, root string, index []byte, entries []entry) error {
	bar := utils.NewProgressBar(len(entries), utils.DescCopying, w.progressOut)
	defer bar.Finish()

	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, IndexFileName), index, 0644); err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		dst := filepath.Join(root, filepath.FromSlash(e.name))
		if e.dir {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return err
			}
		} else if _, err := utils.CopyFile(e.src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", e.src, err)
		}
		_ = bar.Add(1)
	}

	return nil
}

func (w *Writer) writeArchive(ctx context.Context, target string, index []byte, modTime time.Time, entries []entry) (err error) {
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(w.level))
	if err != nil {
		return err
	}

	tw := tar.NewWriter(zw)
	if err := w.fillArchive(ctx, tw, index, modTime, entries); err != nil {
		_ = zw.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func (w *Writer) fillArchive(ctx context.Context, tw *tar.Writer, index []byte, modTime time.Time, entries []entry) error {
	bar := utils.NewProgressBar(len(entries), utils.DescCompressing, w.progressOut)
	defer bar.Finish()

	err := writeTarFile(tw, &tar.Header{
		Name:    IndexFileName,
		Mode:    0644,
		Size:    int64(len(index)),
		ModTime: modTime,
	}, bytes.NewReader(index))
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addTarEntry(tw, e, modTime); err != nil {
			return fmt.Errorf("archive %s: %w", e.name, err)
		}
		_ = bar.Add(1)
	}
	return nil
}

func addTarEntry(tw *tar.Writer, e entry, modTime time.Time) error {
	if e.dir {
		return tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     e.name + "/",
			Mode:     0755,
			ModTime:  modTime,
		})
	}

	src, err := os.Open(e.src)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("not a regular file")
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = e.name
	return writeTarFile(tw, hdr, src)
}

func writeTarFile(tw *tar.Writer, hdr *tar.Header, r io.Reader) error {
	if hdr.Typeflag == 0 {
		hdr.Typeflag = tar.TypeReg
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, r)
	return err
}

var _ domain.ArchiveWriter = (*Writer)(nil)
