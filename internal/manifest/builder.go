package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/patterns"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
)

// DefaultMetaSuffix is appended to a path to locate its sidecar
const DefaultMetaSuffix = ".meta"

// Options configures a Builder
type Options struct {
	// MetaSuffix locates sidecars (default ".meta")
	MetaSuffix string
	// Workers bounds the concurrent sidecar checks
	Workers int
	// CaseInsensitive folds case when matching patterns and comparing paths
	CaseInsensitive bool
	Logger          *utils.Logger
}

// Builder produces manifests. It keeps no state between builds.
type Builder struct {
	suffix  string
	workers int
	fold    bool
	logger  *utils.Logger
}

// NewBuilder creates a new manifest builder
func NewBuilder(opts Options) *Builder {
	if opts.MetaSuffix == "" {
		opts.MetaSuffix = DefaultMetaSuffix
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Builder{
		suffix:  opts.MetaSuffix,
		workers: opts.Workers,
		fold:    opts.CaseInsensitive,
		logger:  logger.WithComponent("manifest"),
	}
}

// Build runs the file, directory and metadata stages in order and returns
// the complete manifest. Nothing is returned alongside a fatal error.
func (b *Builder) Build(ctx context.Context, pats []string, assetRoot string) (*domain.Manifest, error) {
	m := &domain.Manifest{
		AssetRoot: assetRoot,
		Patterns:  append([]string(nil), pats...),
	}

	if len(pats) == 0 {
		b.logger.Info().Msg("No file patterns configured, nothing to do")
		return m, domain.ErrNoPatternsConfigured
	}

	b.logger.Debug().
		Str("asset_root", assetRoot).
		Str("types", patterns.Describe(pats)).
		Msg("Searching files")

	files, total, err := b.BuildFiles(ctx, pats, assetRoot)
	if err != nil {
		return nil, err
	}

	dirs, err := b.BuildDirectories(files, assetRoot)
	if err != nil {
		return nil, err
	}
	directories := dirs.Sorted()

	b.logger.Debug().
		Int("files", len(files)).
		Int("directories", len(directories)).
		Msg("Checking metadata")

	sidecars, missing, err := b.BuildMetadata(ctx, files, directories, assetRoot)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		for _, p := range missing {
			b.logger.Warn().Str("path", p).Msg("Missing metadata")
		}
		return nil, domain.NewMissingMetadataError(missing)
	}

	m.Files = files
	m.Directories = directories
	m.Sidecars = sidecars
	m.TotalBytes = total

	b.logger.Info().
		Int("files", len(m.Files)).
		Int("directories", len(m.Directories)).
		Int("sidecars", len(m.Sidecars)).
		Int64("bytes", m.TotalBytes).
		Msg("Manifest built")

	return m, nil
}

// BuildFiles walks assetRoot once and returns every regular file matching
// a pattern, joined onto assetRoot, grouped by pattern in pattern order and
// in walk order within a pattern. A file matched by several patterns is
// listed (and counted) once per pattern.
func (b *Builder) BuildFiles(ctx context.Context, pats []string, assetRoot string) ([]string, int64, error) {
	matcher, err := patterns.Compile(pats, b.fold)
	if err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(assetRoot)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrNoFilesFound, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is not a directory", domain.ErrNoFilesFound, assetRoot)
	}

	buckets := make([][]string, matcher.Len())
	var total int64

	err = filepath.WalkDir(assetRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := utils.RelPath(assetRoot, p, b.fold)
		if err != nil {
			return err
		}
		hits := matcher.MatchAll(rel)
		if len(hits) == 0 {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		for _, i := range hits {
			buckets[i] = append(buckets[i], p)
			total += fi.Size()
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search %s: %w", assetRoot, err)
	}

	var files []string
	for i, bucket := range buckets {
		b.logger.Debug().
			Str("pattern", matcher.Pattern(i)).
			Int("matches", len(bucket)).
			Msg("Pattern searched")
		files = append(files, bucket...)
	}

	if len(files) == 0 {
		return nil, 0, fmt.Errorf("%w: nothing under %s matches %s", domain.ErrNoFilesFound, assetRoot, patterns.Describe(pats))
	}

	return files, total, nil
}

// BuildDirectories returns every ancestor directory of files up to, but
// excluding, assetRoot. Paths are computed lexically, so none of the
// directories has to exist.
func (b *Builder) BuildDirectories(files []string, assetRoot string) (*DirectorySet, error) {
	set := NewDirectorySet(b.fold)

	for _, f := range files {
		rel, err := utils.RelPath(assetRoot, f, b.fold)
		if err != nil || rel == "." {
			return nil, fmt.Errorf("%w: %s", domain.ErrOutsideAssetRoot, f)
		}

		// Ancestors of a directory already present were added with it
		for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
			if !set.Add(dir) {
				break
			}
		}
	}

	return set, nil
}

// BuildMetadata checks the sidecar of every file, then of every directory
// (relative to assetRoot). It returns the sidecars found, in that order,
// and every path whose sidecar is missing. The error is only set when ctx
// ends the checks early.
func (b *Builder) BuildMetadata(ctx context.Context, files, directories []string, assetRoot string) ([]string, []string, error) {
	candidates := make([]string, 0, len(files)+len(directories))
	candidates = append(candidates, files...)
	for _, d := range directories {
		candidates = append(candidates, filepath.Join(assetRoot, filepath.FromSlash(d)))
	}

	found := make([]bool, len(candidates))
	errs := utils.ParallelForEach(ctx, candidates, b.workers, func(ctx context.Context, i int, p string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		found[i] = utils.FileExists(p + b.suffix)
		return nil
	})
	if err := utils.FirstError(errs); err != nil {
		return nil, nil, err
	}

	sidecars := make([]string, 0, len(candidates))
	var missing []string
	for i, p := range candidates {
		if found[i] {
			sidecars = append(sidecars, p+b.suffix)
		} else {
			missing = append(missing, p)
		}
	}

	return sidecars, missing, nil
}
