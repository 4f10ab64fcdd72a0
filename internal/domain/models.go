package domain

// Manifest is the validated selection of a backup run.
// It is produced once by the manifest builder and never mutated afterwards.
type Manifest struct {
	// AssetRoot is the asset directory the manifest was built from
	AssetRoot string `json:"asset_root" yaml:"asset_root"`
	// Patterns are the extension patterns, in configuration order
	Patterns []string `json:"patterns" yaml:"patterns"`
	// Files are matched asset paths joined onto AssetRoot, pattern order then discovery order
	Files []string `json:"files" yaml:"files"`
	// Directories are slash-separated paths relative to AssetRoot, sorted and unique
	Directories []string `json:"directories" yaml:"directories"`
	// Sidecars are the metadata files of Files followed by those of Directories
	Sidecars []string `json:"sidecars" yaml:"sidecars"`
	// TotalBytes is the summed size of Files
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
}

// Summary holds the counters of a manifest
type Summary struct {
	Files       int   `json:"files" yaml:"files"`
	Directories int   `json:"directories" yaml:"directories"`
	Sidecars    int   `json:"sidecars" yaml:"sidecars"`
	TotalBytes  int64 `json:"total_bytes" yaml:"total_bytes"`
}

// Empty reports whether the manifest selects nothing
func (m *Manifest) Empty() bool {
	return m == nil || len(m.Files) == 0
}

// Valid reports whether every file and directory has its sidecar
func (m *Manifest) Valid() bool {
	if m.Empty() {
		return false
	}
	return len(m.Sidecars) == len(m.Files)+len(m.Directories)
}

// Summary returns the manifest counters
func (m *Manifest) Summary() Summary {
	if m == nil {
		return Summary{}
	}
	return Summary{
		Files:       len(m.Files),
		Directories: len(m.Directories),
		Sidecars:    len(m.Sidecars),
		TotalBytes:  m.TotalBytes,
	}
}
