// Package archive provides read-only access to the source tree a scaffold is
// generated from.
//
// Two implementations are available: DirArchive, backed by a go-billy
// filesystem (usually a directory on disk), and ZipArchive, backed by a zip
// file. Both expose the same capability through the Archive interface so the
// rest of the pipeline never touches the raw filesystem.
//
// The two implementations differ in how they list paths. A zip archive lists
// its entries rooted at "/" ("/files/src/Main.java") while a directory
// archive lists them relative to its root ("files/src/Main.java"). Rooted
// reports which convention applies; consumers that match patterns against
// Paths must take it into account. Open accepts either form.
package archive

import (
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Open when the archive has no entry at the
// requested path.
var ErrNotFound = errors.New("archive entry not found")

// Archive is a read-only source of named byte streams.
type Archive interface {
	// Open returns a stream for the entry at path. The caller closes it.
	Open(path string) (io.ReadCloser, error)
	// Paths returns every file path in the archive, sorted.
	Paths() []string
	// Rooted reports whether Paths are rooted at "/".
	Rooted() bool
}

// entryName normalizes p to the slash-separated, unrooted form used as the
// lookup key by both implementations.
func entryName(p string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
}
