package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProject writes a small valid project and isolates config lookup
func newProject(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("UNITYBACKUP_OUTPUT_PROGRESS", "false")

	root := t.TempDir()
	files := map[string]string{
		"Assets/Art/hero.png":      "png-bytes",
		"Assets/Art/hero.png.meta": "guid: 1",
		"Assets/Art.meta":          "guid: 2",
		"Library/x":                "",
		"ProjectSettings/y":        "",
		".gitignore":               "Library/\n# #!UBB!#\n*.png\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_NoMode(t *testing.T) {
	code, stdout, _ := run()
	assert.Equal(t, domain.ExitFailure, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"backup without name", []string{"backup"}},
		{"backup with two names", []string{"backup", "a", "b"}},
		{"unknown command", []string{"restore"}},
		{"unknown flag", []string{"simulate", "--fast"}},
		{"simulate with argument", []string{"simulate", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(tt.args...)
			assert.Equal(t, domain.ExitFailure, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestExecute_Simulate(t *testing.T) {
	root := newProject(t)

	code, stdout, stderr := run("simulate", "-C", root)
	require.Equal(t, domain.ExitOK, code, stderr)
	assert.Contains(t, stdout, "1 file(s), 1 director(ies) and 2 metafile(s)")
	assert.Contains(t, stdout, "png")
}

func TestExecute_Backup(t *testing.T) {
	root := newProject(t)
	out := filepath.Join(t.TempDir(), "backups")

	code, stdout, stderr := run("backup", "nightly", "-C", root, "-o", out, "-z")
	require.Equal(t, domain.ExitOK, code, stderr)

	dest := filepath.Join(out, "nightly.tar.zst")
	assert.FileExists(t, dest)
	assert.Contains(t, stdout, "Backup written to "+dest)

	code, _, stderr = run("backup", "nightly", "-C", root, "-o", out, "-z")
	assert.Equal(t, domain.ExitWriteFailed, code)
	assert.Contains(t, stderr, "already exists")

	code, _, stderr = run("backup", "nightly", "-C", root, "-o", out, "-z", "--force")
	assert.Equal(t, domain.ExitOK, code, stderr)
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		want  int
	}{
		{
			name: "invalid project",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.RemoveAll(filepath.Join(root, "Library")))
			},
			want: domain.ExitProjectInvalid,
		},
		{
			name: "no files found",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("# #!UBB!#\n*.fbx\n"), 0644))
			},
			want: domain.ExitNoFilesFound,
		},
		{
			name: "missing metadata",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "Assets", "Art.meta")))
			},
			want: domain.ExitMissingMetadata,
		},
		{
			name: "nothing to do",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("# #!UBB!#\nLibrary/\n"), 0644))
			},
			want: domain.ExitOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t)
			tt.setup(t, root)

			code, _, _ := run("simulate", "--project", root)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestExecute_Validate(t *testing.T) {
	root := newProject(t)

	code, stdout, _ := run("validate", "-C", root)
	assert.Equal(t, domain.ExitOK, code)
	assert.Contains(t, stdout, "Project is valid.")

	require.NoError(t, os.Remove(filepath.Join(root, ".gitignore")))
	code, stdout, stderr := run("validate", "-C", root)
	assert.Equal(t, domain.ExitProjectInvalid, code)
	assert.Contains(t, stdout, "FAILED")
	assert.Contains(t, stderr, "missing ignore file")
}

func TestExecute_ConfigFile(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.Rename(filepath.Join(root, "Assets"), filepath.Join(root, "Content")))

	cfgPath := filepath.Join(t.TempDir(), "unitybackup.yaml")
	cfg := "project:\n  asset_dir: Content\n  required_dirs: [Content, Library]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	code, stdout, stderr := run("simulate", "--config", cfgPath, "-C", root)
	require.Equal(t, domain.ExitOK, code, stderr)
	assert.Contains(t, stdout, "1 file(s)")

	code, _, _ = run("simulate", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "-C", root)
	assert.Equal(t, domain.ExitFailure, code)
}

func TestExecute_Version(t *testing.T) {
	code, stdout, _ := run("version")
	assert.Equal(t, domain.ExitOK, code)
	assert.Contains(t, stdout, "unitybackup")
}
