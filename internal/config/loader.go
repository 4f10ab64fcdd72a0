package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (UNITYBACKUP_OUTPUT_DIRECTORY, ...)
const EnvPrefix = "UNITYBACKUP"

// LoadFrom loads configuration from file, environment, and defaults through v,
// which may carry CLI flag bindings. An empty file searches the default locations
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	return load(v, file)
}

// LoadFile loads configuration from an explicit file on a fresh viper instance
func LoadFile(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else if v.ConfigFileUsed() == "" {
		v.SetConfigName("unitybackup")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("project.root", d.Project.Root)
	v.SetDefault("project.asset_dir", d.Project.AssetDir)
	v.SetDefault("project.required_dirs", d.Project.RequiredDirs)
	v.SetDefault("project.ignore_file", d.Project.IgnoreFile)
	v.SetDefault("project.marker", d.Project.Marker)

	v.SetDefault("manifest.meta_suffix", d.Manifest.MetaSuffix)
	v.SetDefault("manifest.workers", d.Manifest.Workers)
	v.SetDefault("manifest.case_insensitive", d.Manifest.CaseInsensitive)

	v.SetDefault("output.directory", d.Output.Directory)
	v.SetDefault("output.overwrite", d.Output.Overwrite)
	v.SetDefault("output.compression_level", d.Output.CompressionLevel)
	v.SetDefault("output.progress", d.Output.Progress)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
