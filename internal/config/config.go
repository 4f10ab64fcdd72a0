package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Project  ProjectConfig  `mapstructure:"project" yaml:"project"`
	Manifest ManifestConfig `mapstructure:"manifest" yaml:"manifest"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ProjectConfig describes the layout of the project being backed up
type ProjectConfig struct {
	Root         string   `mapstructure:"root" yaml:"root"`
	AssetDir     string   `mapstructure:"asset_dir" yaml:"asset_dir"`
	RequiredDirs []string `mapstructure:"required_dirs" yaml:"required_dirs"`
	IgnoreFile   string   `mapstructure:"ignore_file" yaml:"ignore_file"`
	Marker       string   `mapstructure:"marker" yaml:"marker"`
}

// ManifestConfig contains manifest builder settings
type ManifestConfig struct {
	MetaSuffix      string `mapstructure:"meta_suffix" yaml:"meta_suffix"`
	Workers         int    `mapstructure:"workers" yaml:"workers"`
	CaseInsensitive bool   `mapstructure:"case_insensitive" yaml:"case_insensitive"`
}

// OutputConfig contains archive writer settings
type OutputConfig struct {
	Directory        string `mapstructure:"directory" yaml:"directory"`
	Overwrite        bool   `mapstructure:"overwrite" yaml:"overwrite"`
	CompressionLevel string `mapstructure:"compression_level" yaml:"compression_level"`
	Progress         bool   `mapstructure:"progress" yaml:"progress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, repairing values that have a sane default
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		c.Project.Root = DefaultProjectRoot
	}
	if c.Project.AssetDir == "" {
		c.Project.AssetDir = DefaultAssetDir
	}
	if len(c.Project.RequiredDirs) == 0 {
		c.Project.RequiredDirs = append([]string(nil), DefaultRequiredDirs...)
	}
	if c.Project.IgnoreFile == "" {
		c.Project.IgnoreFile = DefaultIgnoreFile
	}
	if c.Project.Marker == "" {
		c.Project.Marker = DefaultMarker
	}
	if filepath.IsAbs(c.Project.AssetDir) || strings.HasPrefix(filepath.ToSlash(filepath.Clean(c.Project.AssetDir)), "..") {
		return fmt.Errorf("invalid project.asset_dir %q: must be relative to the project root", c.Project.AssetDir)
	}

	if c.Manifest.MetaSuffix == "" {
		c.Manifest.MetaSuffix = DefaultMetaSuffix
	}
	if !strings.HasPrefix(c.Manifest.MetaSuffix, ".") || strings.ContainsAny(c.Manifest.MetaSuffix, `/\`) {
		return fmt.Errorf("invalid manifest.meta_suffix %q: must start with '.' and contain no separators", c.Manifest.MetaSuffix)
	}
	if c.Manifest.Workers < 1 {
		c.Manifest.Workers = DefaultWorkers
	}

	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Output.CompressionLevel == "" {
		c.Output.CompressionLevel = DefaultCompressionLevel
	}
	if _, err := ParseCompressionLevel(c.Output.CompressionLevel); err != nil {
		return fmt.Errorf("invalid output.compression_level: %w", err)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if !utils.ValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	if c.Logging.Format != "pretty" && c.Logging.Format != "json" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// AssetRoot returns the asset directory joined onto the project root
func (c *Config) AssetRoot() string {
	return filepath.Join(c.Project.Root, c.Project.AssetDir)
}

// ParseCompressionLevel maps a level name (fastest, default, better, best)
// to a zstd encoder level
func ParseCompressionLevel(s string) (zstd.EncoderLevel, error) {
	ok, level := zstd.EncoderLevelFromString(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return 0, fmt.Errorf("unknown compression level %q (use fastest, default, better or best)", s)
	}
	return level, nil
}
