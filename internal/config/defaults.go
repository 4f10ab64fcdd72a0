package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default values
const (
	// Project defaults
	DefaultProjectRoot = "."
	DefaultAssetDir    = "Assets"
	DefaultIgnoreFile  = ".gitignore"
	DefaultMarker      = "#!UBB!#"

	// Manifest defaults
	DefaultMetaSuffix = ".meta"
	DefaultWorkers    = 8

	// Output defaults
	DefaultOutputDir        = "./backups"
	DefaultCompressionLevel = "default"
	DefaultProgress         = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultRequiredDirs are the directories every project must contain
var DefaultRequiredDirs = []string{"Assets", "Library", "ProjectSettings"}

// DefaultCaseInsensitive reports whether the host file system usually folds case
func DefaultCaseInsensitive() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".unitybackup"
	}
	return filepath.Join(home, ".unitybackup")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Root:         DefaultProjectRoot,
			AssetDir:     DefaultAssetDir,
			RequiredDirs: append([]string(nil), DefaultRequiredDirs...),
			IgnoreFile:   DefaultIgnoreFile,
			Marker:       DefaultMarker,
		},
		Manifest: ManifestConfig{
			MetaSuffix:      DefaultMetaSuffix,
			Workers:         DefaultWorkers,
			CaseInsensitive: DefaultCaseInsensitive(),
		},
		Output: OutputConfig{
			Directory:        DefaultOutputDir,
			Overwrite:        false,
			CompressionLevel: DefaultCompressionLevel,
			Progress:         DefaultProgress,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
