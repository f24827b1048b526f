package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/t77yq/bamcfg/internal/manifest"
	"github.com/t77yq/bamcfg/internal/objcfg"
)

// outputFile is the append-only target of one generator. The first block of
// a pass creates the file with a header; later blocks are appended.
type outputFile struct {
	path        string
	header      string
	accumulator *manifest.Accumulator
	written     bool
}

func newOutputFile(dir string, nodeID int, kind Kind, acc *manifest.Accumulator) *outputFile {
	return &outputFile{
		path:        filepath.Join(dir, kind.FileName()),
		header:      fmt.Sprintf("# %s\n# Generated by bamcfg for node %d. Do not edit.\n\n", kind.FileName(), nodeID),
		accumulator: acc,
	}
}

func (f *outputFile) append(block *objcfg.Block) error {
	flags := os.O_WRONLY | os.O_APPEND
	if !f.written {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return &OutputError{Path: f.path, Err: err}
		}
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	file, err := os.OpenFile(f.path, flags, 0o644)
	if err != nil {
		return &OutputError{Path: f.path, Err: err}
	}

	if !f.written {
		if _, err := file.WriteString(f.header); err != nil {
			file.Close()
			return &OutputError{Path: f.path, Err: err}
		}
	}
	if _, err := block.WriteTo(file); err != nil {
		file.Close()
		return &OutputError{Path: f.path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &OutputError{Path: f.path, Err: err}
	}

	if !f.written {
		f.written = true
		f.accumulator.AddPath(f.path)
	}
	return nil
}

func (f *outputFile) remove() error {
	f.written = false
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &OutputError{Path: f.path, Err: err}
	}
	return nil
}
