package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// DirArchive is an Archive backed by a billy filesystem.
type DirArchive struct {
	fs    billy.Filesystem
	paths []string
}

// OpenDir returns an archive over the directory at root.
func OpenDir(root string) (*DirArchive, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive root %s is not a directory", root)
	}
	return NewDirArchive(osfs.New(root))
}

// NewDirArchive indexes every regular file reachable from the root of fsys.
func NewDirArchive(fsys billy.Filesystem) (*DirArchive, error) {
	var paths []string
	err := util.Walk(fsys, "", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		paths = append(paths, entryName(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index archive directory: %w", err)
	}

	sort.Strings(paths)
	return &DirArchive{fs: fsys, paths: paths}, nil
}

func (a *DirArchive) Open(p string) (io.ReadCloser, error) {
	name := entryName(p)
	f, err := a.fs.Open(filepath.FromSlash(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return f, nil
}

func (a *DirArchive) Paths() []string {
	return append([]string(nil), a.paths...)
}

func (a *DirArchive) Rooted() bool {
	return false
}
