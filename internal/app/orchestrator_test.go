package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/unitybackup-go/internal/config"
	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/quantmind-br/unitybackup-go/internal/mocks"
	"github.com/quantmind-br/unitybackup-go/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const ignoreWithBlock = `[Ll]ibrary/
[Tt]emp/

# ---- #!UBB!# ----
*.png
*.meta
*.wav
`

// newProject creates a valid project with one texture and one sound
func newProject(t *testing.T, ignore string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"Assets/Tex/a.png":        "png",
		"Assets/Tex/a.png.meta":   "m",
		"Assets/Tex.meta":         "m",
		"Assets/Sfx/hit.wav":      "wave",
		"Assets/Sfx/hit.wav.meta": "m",
		"Assets/Sfx.meta":         "m",
		"Library/cache.bin":       "x",
		"ProjectSettings/a.asset": "x",
		".gitignore":              ignore,
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func newTestOrchestrator(t *testing.T, root string, writer domain.ArchiveWriter) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Manifest.CaseInsensitive = false
	cfg.Output.Directory = filepath.Join(t.TempDir(), "backups")
	cfg.Output.Progress = false

	o, err := NewOrchestrator(OrchestratorOptions{
		Config: cfg,
		Writer: writer,
		Logger: utils.NewNopLogger(),
	})
	require.NoError(t, err)
	return o
}

func TestNewOrchestrator(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorOptions{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Output.CompressionLevel = "ultra"
	_, err = NewOrchestrator(OrchestratorOptions{Config: cfg})
	assert.Error(t, err)

	o, err := NewOrchestrator(OrchestratorOptions{Config: config.Default(), Logger: utils.NewNopLogger()})
	require.NoError(t, err)
	assert.NotNil(t, o.writer)
}

func TestRunOptions_Validate(t *testing.T) {
	assert.NoError(t, RunOptions{Mode: domain.ModeSimulate}.Validate())
	assert.NoError(t, RunOptions{Mode: domain.ModeBackup, Name: "x"}.Validate())
	assert.Error(t, RunOptions{Mode: domain.ModeBackup}.Validate())
	assert.Error(t, RunOptions{Mode: domain.ModeBackup, Name: "  "}.Validate())
	assert.Error(t, RunOptions{}.Validate())
	assert.Error(t, RunOptions{Mode: "restore"}.Validate())
}

func TestOrchestrator_Simulate(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)
	writer.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	root := newProject(t, ignoreWithBlock)
	o := newTestOrchestrator(t, root, writer)

	report, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeSimulate})
	require.NoError(t, err)

	assert.Equal(t, []string{"*.png", "*.wav"}, report.Patterns)
	assert.Equal(t, domain.Summary{Files: 2, Directories: 2, Sidecars: 4, TotalBytes: 7}, report.Summary())
	assert.Empty(t, report.Destination)
	assert.False(t, report.NothingToDo)
	assert.Contains(t, report.Headline(), "2 file(s), 2 director(ies) and 4 metafile(s)")
}

func TestOrchestrator_Backup(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)

	root := newProject(t, ignoreWithBlock)
	o := newTestOrchestrator(t, root, writer)

	writer.EXPECT().
		Write(gomock.Any(), gomock.Any(), "nightly", true).
		DoAndReturn(func(_ context.Context, m *domain.Manifest, _ string, _ bool) (string, error) {
			assert.True(t, m.Valid())
			assert.Len(t, m.Files, 2)
			return "/backups/nightly.tar.zst", nil
		})

	report, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup, Name: "nightly", Compress: true})
	require.NoError(t, err)
	assert.Equal(t, "/backups/nightly.tar.zst", report.Destination)
	assert.True(t, report.Compressed)
}

func TestOrchestrator_BackupWithRealWriter(t *testing.T) {
	root := newProject(t, ignoreWithBlock)
	o := newTestOrchestrator(t, root, nil)

	report, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup, Name: "first"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(report.Destination, "Assets", "Tex", "a.png"))
	assert.FileExists(t, filepath.Join(report.Destination, "Assets", "Sfx.meta"))

	_, err = o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup, Name: "first"})
	assert.ErrorIs(t, err, domain.ErrDestinationExists)
	assert.Equal(t, domain.ExitWriteFailed, domain.ExitCode(err))
}

func TestOrchestrator_WriterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)
	writer.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("disk full"))

	o := newTestOrchestrator(t, newProject(t, ignoreWithBlock), writer)

	report, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup, Name: "x"})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestOrchestrator_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, root string)
		wantErr  error
		wantExit int
	}{
		{
			name: "missing project directory",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "ProjectSettings")))
			},
			wantErr:  domain.ErrProjectInvalid,
			wantExit: domain.ExitProjectInvalid,
		},
		{
			name: "no matching files",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("# #!UBB!#\n*.fbx\n"), 0644))
			},
			wantErr:  domain.ErrNoFilesFound,
			wantExit: domain.ExitNoFilesFound,
		},
		{
			name: "missing directory metadata",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "Assets", "Tex.meta")))
			},
			wantErr:  domain.ErrMissingMetadata,
			wantExit: domain.ExitMissingMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			writer := mocks.NewMockArchiveWriter(ctrl)

			root := newProject(t, ignoreWithBlock)
			tt.setup(t, root)
			o := newTestOrchestrator(t, root, writer)

			for _, mode := range []RunOptions{{Mode: domain.ModeSimulate}, {Mode: domain.ModeBackup, Name: "b"}} {
				report, err := o.Run(context.Background(), mode)
				assert.Nil(t, report)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantExit, domain.ExitCode(err))
			}
		})
	}
}

func TestOrchestrator_NothingToDo(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)

	// marker present, but the block only lists sidecars and junk
	root := newProject(t, "# #!UBB!#\n*.meta\nLibrary/\n")
	o := newTestOrchestrator(t, root, writer)

	report, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup, Name: "x"})
	require.NoError(t, err)
	assert.True(t, report.NothingToDo)
	assert.Equal(t, domain.Summary{}, report.Summary())
	assert.Equal(t, "Nothing to do: no file types configured.", report.Headline())
}

func TestOrchestrator_InvalidInvocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)

	// an invalid project proves the run stopped before validation
	o := newTestOrchestrator(t, t.TempDir(), writer)

	_, err := o.Run(context.Background(), RunOptions{Mode: domain.ModeBackup})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProjectInvalid)
	assert.Equal(t, domain.ExitFailure, domain.ExitCode(err))
}

func TestOrchestrator_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := mocks.NewMockArchiveWriter(ctrl)

	o := newTestOrchestrator(t, newProject(t, ignoreWithBlock), writer)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, RunOptions{Mode: domain.ModeBackup, Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_ValidateProject(t *testing.T) {
	o := newTestOrchestrator(t, newProject(t, ignoreWithBlock), nil)
	report := o.ValidateProject()
	assert.True(t, report.OK())
	assert.Len(t, report.Checks, 6)
}
