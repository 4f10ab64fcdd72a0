package output

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/quantmind-br/unitybackup-go/internal/domain"
	"gopkg.in/yaml.v3"
)

// IndexFileName is the name of the index stored at the top of every backup
const IndexFileName = "backup.yaml"

// Index describes the content of a backup. Paths are slash-separated and
// relative to the backup root (Assets/...).
type Index struct {
	Name        string         `yaml:"name"`
	CreatedAt   time.Time      `yaml:"created_at"`
	Tool        string         `yaml:"tool"`
	Compressed  bool           `yaml:"compressed"`
	Patterns    []string       `yaml:"patterns"`
	Summary     domain.Summary `yaml:"summary"`
	Directories []string       `yaml:"directories"`
	Files       []string       `yaml:"files"`
	Sidecars    []string       `yaml:"sidecars"`
}

// Encode writes the index as YAML
func (i *Index) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(i); err != nil {
		return err
	}
	return enc.Close()
}

// LoadIndex reads an index written by Encode
func LoadIndex(r io.Reader) (*Index, error) {
	var idx Index
	if err := yaml.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to decode backup index: %w", err)
	}
	return &idx, nil
}

// encodeIndex serializes idx and reads it back to make sure the stored
// copy describes the same backup
func encodeIndex(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	if err := idx.Encode(&buf); err != nil {
		return nil, err
	}

	back, err := LoadIndex(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	if back.Summary != idx.Summary || len(back.Files) != len(idx.Files) {
		return nil, fmt.Errorf("backup index does not round-trip")
	}

	return buf.Bytes(), nil
}
