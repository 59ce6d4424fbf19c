// Package resolve selects archive paths with include and exclude glob
// patterns.
//
// Patterns use doublestar semantics: "*" and "?" stay within one path
// segment, "**" spans any number of segments, and character classes and
// alternatives ("[a-z]", "{a,b}") are supported. Every pattern is anchored at
// a base directory, so "**/*.java" under "files/src" selects
// "files/src/Main.java" and "files/src/a/b/C.java" but nothing outside
// "files/src".
package resolve

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cpcf/loom/archive"
)

var (
	// ErrInvalidPath reports a base directory that cannot be normalized to a
	// path inside the archive.
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidPattern reports a malformed glob pattern.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Includes returns the archive paths below base that match at least one
// include pattern and no exclude pattern. Paths are returned relative to base,
// in include order: pattern order first, then archive order. A path matched
// by several include patterns is returned once per pattern.
func Includes(base string, includes, excludes []string, a archive.Archive) ([]string, error) {
	dir, err := Directory(base, a.Rooted())
	if err != nil {
		return nil, err
	}

	paths := a.Paths()

	excluded := make(map[string]bool)
	for _, pattern := range excludes {
		matches, err := matchPattern(dir, pattern, paths)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			excluded[m] = true
		}
	}

	var result []string
	for _, pattern := range includes {
		matches, err := matchPattern(dir, pattern, paths)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !excluded[m] {
				result = append(result, m)
			}
		}
	}
	return result, nil
}

// Directory normalizes base to the form the archive lists its paths in:
// slash-separated, cleaned, and prefixed with "/" when rooted is set. The
// archive root is "" for unrooted archives and "/" for rooted ones.
func Directory(base string, rooted bool) (string, error) {
	if strings.ContainsRune(base, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidPath, base)
	}

	dir := strings.TrimPrefix(path.Clean(filepath.ToSlash(base)), "/")
	if dir == "." {
		dir = ""
	}
	if dir == ".." || strings.HasPrefix(dir, "../") {
		return "", fmt.Errorf("%w: %q escapes the archive root", ErrInvalidPath, base)
	}

	if rooted {
		return "/" + dir, nil
	}
	return dir, nil
}

// Match reports whether name matches the glob pattern.
func Match(pattern, name string) (bool, error) {
	if !doublestar.ValidatePattern(pattern) {
		return false, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return ok, nil
}

// matchPattern returns the paths matched by pattern anchored at dir, with dir
// stripped.
func matchPattern(dir, pattern string, paths []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	full := join(escape(dir), pattern)
	prefix := dir
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var matches []string
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		ok, err := doublestar.Match(full, p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		if ok {
			matches = append(matches, strings.TrimPrefix(p, prefix))
		}
	}
	return matches, nil
}

// join anchors pattern at dir, collapsing the separator between them.
func join(dir, pattern string) string {
	pattern = strings.TrimLeft(pattern, "/")
	if dir == "" {
		return pattern
	}
	return strings.TrimRight(dir, "/") + "/" + pattern
}

// escape quotes glob metacharacters so a directory name is matched literally.
func escape(dir string) string {
	var b strings.Builder
	for _, r := range dir {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
