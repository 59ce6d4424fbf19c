package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ZipArchive is an Archive backed by a zip file. Its paths are rooted at "/".
type ZipArchive struct {
	entries map[string]*zip.File
	paths   []string
	closer  io.Closer
}

// OpenZip opens the zip file at name. The returned archive must be closed.
func OpenZip(name string) (*ZipArchive, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive %s: %w", name, err)
	}
	a := newZipArchive(&rc.Reader)
	a.closer = rc
	return a, nil
}

// NewZipArchive reads a zip archive of the given size from r.
func NewZipArchive(r io.ReaderAt, size int64) (*ZipArchive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}
	return newZipArchive(zr), nil
}

func newZipArchive(zr *zip.Reader) *ZipArchive {
	a := &ZipArchive{entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			continue
		}
		name := entryName(f.Name)
		if _, dup := a.entries[name]; dup {
			continue
		}
		a.entries[name] = f
		a.paths = append(a.paths, "/"+name)
	}
	sort.Strings(a.paths)
	return a
}

func (a *ZipArchive) Open(p string) (io.ReadCloser, error) {
	f, ok := a.entries[entryName(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open zip entry %s: %w", p, err)
	}
	return rc, nil
}

func (a *ZipArchive) Paths() []string {
	return append([]string(nil), a.paths...)
}

func (a *ZipArchive) Rooted() bool {
	return true
}

// Close releases the underlying file when the archive was opened by OpenZip.
func (a *ZipArchive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
