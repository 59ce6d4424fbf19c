// Package loomtest provides fixtures for exercising loom against small
// source trees: an in-memory archive, directory and zip archives built from
// a file map, and a reader that snapshots a generated output tree.
package loomtest

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/cpcf/loom/archive"
)

// Files maps slash-separated archive paths to file content.
type Files map[string]string

// MemoryArchive is an archive.Archive held entirely in memory.
type MemoryArchive struct {
	files  map[string][]byte
	rooted bool
	opened []string
}

// NewMemoryArchive returns a directory-style archive holding files.
func NewMemoryArchive(files Files) *MemoryArchive {
	return newMemoryArchive(files, false)
}

// NewRootedMemoryArchive returns a zip-style archive holding files. Its
// paths are listed with a leading "/".
func NewRootedMemoryArchive(files Files) *MemoryArchive {
	return newMemoryArchive(files, true)
}

func newMemoryArchive(files Files, rooted bool) *MemoryArchive {
	ma := &MemoryArchive{
		files:  make(map[string][]byte, len(files)),
		rooted: rooted,
	}
	for name, content := range files {
		ma.WriteFile(name, []byte(content))
	}
	return ma
}

// WriteFile adds or replaces an entry.
func (ma *MemoryArchive) WriteFile(name string, data []byte) {
	ma.files[clean(name)] = data
}

func (ma *MemoryArchive) Open(name string) (io.ReadCloser, error) {
	key := clean(name)
	data, ok := ma.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", archive.ErrNotFound, name)
	}
	ma.opened = append(ma.opened, key)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (ma *MemoryArchive) Paths() []string {
	paths := make([]string, 0, len(ma.files))
	for name := range ma.files {
		if ma.rooted {
			name = "/" + name
		}
		paths = append(paths, name)
	}
	sort.Strings(paths)
	return paths
}

func (ma *MemoryArchive) Rooted() bool {
	return ma.rooted
}

// Opened returns the normalized names passed to Open, in call order.
func (ma *MemoryArchive) Opened() []string {
	return append([]string(nil), ma.opened...)
}

func clean(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
