package loomtest

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cpcf/loom/archive"
)

// WriteTree writes files below root, creating directories as needed.
func WriteTree(t testing.TB, root string, files Files) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(clean(name)))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// DirArchive writes files into a temporary directory and returns an archive
// over it.
func DirArchive(t testing.TB, files Files) *archive.DirArchive {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)

	a, err := archive.OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// ZipBytes builds a zip file holding files, in sorted name order.
func ZipBytes(t testing.TB, files Files) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(clean(name))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// ZipArchive returns a zip-backed archive holding files.
func ZipArchive(t testing.TB, files Files) *archive.ZipArchive {
	t.Helper()
	data := ZipBytes(t, files)
	a, err := archive.NewZipArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// ReadTree returns every regular file below root keyed by its slash-separated
// path relative to root.
func ReadTree(t testing.TB, root string) Files {
	t.Helper()
	out := Files{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}
