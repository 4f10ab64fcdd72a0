package domain

// Mode selects what a run does once the manifest is built
type Mode string

const (
	// ModeSimulate builds and reports the manifest without writing anything
	ModeSimulate Mode = "simulate"
	// ModeBackup builds the manifest and hands it to the archive writer
	ModeBackup Mode = "backup"
)

// CommonOptions contains shared options for orchestration.
type CommonOptions struct {
	Verbose bool
	Force   bool
}

// DefaultCommonOptions returns CommonOptions with default values:
// quiet output and no overwriting of existing backups.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{Verbose: false, Force: false}
}
