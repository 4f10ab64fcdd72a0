package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/unitybackup-go/internal/config"
	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/manifest"
	"github.com/quantmind-br/unitybackup-go/internal/output"
	"github.com/quantmind-br/unitybackup-go/internal/patterns"
	"github.com/quantmind-br/unitybackup-go/internal/project"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
)

// Orchestrator coordinates a simulate or backup run
type Orchestrator struct {
	config    *config.Config
	validator *project.Validator
	builder   *manifest.Builder
	writer    domain.ArchiveWriter
	logger    *utils.Logger
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	domain.CommonOptions
	Config *config.Config
	// Writer overrides the archive writer built from Config
	Writer domain.ArchiveWriter
	// Logger overrides the logger built from Config
	Logger *utils.Logger
	// ProgressOut receives the writer progress bar (stderr when nil)
	ProgressOut io.Writer
}

// RunOptions selects what a run does
type RunOptions struct {
	Mode     domain.Mode
	Name     string
	Compress bool
}

// Validate checks that the options describe a runnable invocation
func (o RunOptions) Validate() error {
	switch o.Mode {
	case domain.ModeSimulate:
		return nil
	case domain.ModeBackup:
		if strings.TrimSpace(o.Name) == "" {
			return errors.New("backup requires a name")
		}
		return nil
	case "":
		return errors.New("no mode given (use simulate or backup)")
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	writer := opts.Writer
	if writer == nil {
		level, err := config.ParseCompressionLevel(cfg.Output.CompressionLevel)
		if err != nil {
			return nil, err
		}
		writer = output.NewWriter(output.WriterOptions{
			BaseDir:          utils.ExpandPath(cfg.Output.Directory),
			Force:            opts.Force || cfg.Output.Overwrite,
			CompressionLevel: level,
			Progress:         cfg.Output.Progress,
			ProgressOut:      opts.ProgressOut,
			Logger:           logger,
		})
	}

	return &Orchestrator{
		config: cfg,
		validator: &project.Validator{
			RequiredDirs: cfg.Project.RequiredDirs,
			IgnoreFile:   cfg.Project.IgnoreFile,
			Marker:       cfg.Project.Marker,
			Logger:       logger,
		},
		builder: manifest.NewBuilder(manifest.Options{
			MetaSuffix:      cfg.Manifest.MetaSuffix,
			Workers:         cfg.Manifest.Workers,
			CaseInsensitive: cfg.Manifest.CaseInsensitive,
			Logger:          logger,
		}),
		writer: writer,
		logger: logger.WithComponent("app"),
	}, nil
}

// ValidateProject runs the project checks without building anything
func (o *Orchestrator) ValidateProject() *project.Report {
	return o.validator.Validate(o.config.Project.Root)
}

// Run validates the project, builds the manifest and, in backup mode,
// writes it. An empty pattern list is not an error: the returned report
// is marked NothingToDo and nothing is written.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	root := o.config.Project.Root
	logger := o.logger.WithMode(string(opts.Mode)).WithProject(root)

	logger.Info().Msg("Checking project")
	if pr := o.ValidateProject(); !pr.OK() {
		return nil, pr.Err()
	}

	ignorePath := filepath.Join(root, o.config.Project.IgnoreFile)
	pats, err := patterns.LoadFile(ignorePath, o.config.Project.Marker)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	pats = patterns.WithoutSuffix(pats, o.config.Manifest.MetaSuffix)

	report := &Report{
		Mode:     opts.Mode,
		Name:     opts.Name,
		Root:     root,
		Patterns: pats,
	}

	if len(pats) > 0 {
		logger.Info().Str("types", patterns.Describe(pats)).Msg("File types to back up")
	}

	m, err := o.builder.Build(ctx, pats, o.config.AssetRoot())
	if errors.Is(err, domain.ErrNoPatternsConfigured) {
		logger.Info().Msg("Nothing to do")
		report.Manifest = m
		report.NothingToDo = true
		report.Duration = time.Since(startTime)
		return report, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("Run cancelled")
			return nil, ctx.Err()
		}
		return nil, err
	}
	report.Manifest = m

	if opts.Mode == domain.ModeBackup {
		dest, err := o.writer.Write(ctx, m, opts.Name, opts.Compress)
		if err != nil {
			if !errors.Is(err, domain.ErrWriteFailed) {
				err = domain.NewWriteError(opts.Name, err)
			}
			return nil, err
		}
		report.Destination = dest
		report.Compressed = opts.Compress
	}

	report.Duration = time.Since(startTime)
	logger.Info().
		Dur("duration", report.Duration).
		Str("destination", report.Destination).
		Msg("Run completed")

	return report, nil
}
