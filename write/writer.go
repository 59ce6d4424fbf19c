// Package write puts generated files on disk.
package write

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer stores generated content at a filesystem path.
type Writer interface {
	Write(path string, content []byte, options WriteOptions) error
	Copy(path string, r io.Reader, options WriteOptions) (int64, error)
}

type WriteOptions struct {
	CreateDirs bool
	Overwrite  bool
	Atomic     bool
}

// DefaultOptions creates parent directories and replaces existing files.
func DefaultOptions() WriteOptions {
	return WriteOptions{CreateDirs: true, Overwrite: true}
}

type BaseWriter struct{}

func NewBaseWriter() *BaseWriter {
	return &BaseWriter{}
}

func (bw *BaseWriter) Write(path string, content []byte, options WriteOptions) error {
	_, err := bw.Copy(path, bytes.NewReader(content), options)
	return err
}

// Copy streams r into the file at path and returns the number of bytes
// written.
func (bw *BaseWriter) Copy(path string, r io.Reader, options WriteOptions) (int64, error) {
	if options.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	if !options.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return 0, fmt.Errorf("file already exists and overwrite is false: %s", path)
		}
	}

	if options.Atomic {
		return bw.atomicCopy(path, r)
	}
	return bw.directCopy(path, r)
}

func (bw *BaseWriter) atomicCopy(path string, r io.Reader) (int64, error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tempPath := file.Name()

	n, err := io.Copy(file, r)
	if err != nil {
		file.Close()
		os.Remove(tempPath)
		return n, err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return n, err
	}

	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return n, err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return n, err
	}
	return n, nil
}

func (bw *BaseWriter) directCopy(path string, r io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(file, r)
	if err != nil {
		file.Close()
		return n, err
	}
	return n, file.Close()
}
