package loomtest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the environment variable that makes AssertSnapshot
// rewrite snapshots instead of comparing against them.
const UpdateEnv = "LOOM_UPDATE_SNAPSHOTS"

// Snapshot renders files as one text document, sorted by path:
//
//	-- README.md --
//	Project: demo
//
// A file's content is followed by a newline when it does not end in one.
func Snapshot(files Files) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString("-- " + name + " --\n")
		content := files[name]
		b.WriteString(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// AssertSnapshot compares the snapshot of files with the one stored at
// path. With UpdateEnv set to a non-empty value the stored snapshot is
// replaced instead.
func AssertSnapshot(t testing.TB, path string, files Files) {
	t.Helper()
	actual := Snapshot(files)

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create snapshot directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to write snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("snapshot does not exist: %s (set %s=1 to create it)", path, UpdateEnv)
	}
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	if diff := cmp.Diff(strings.Split(string(expected), "\n"), strings.Split(actual, "\n")); diff != "" {
		t.Errorf("snapshot mismatch for %s (-want +got):\n%s", path, diff)
	}
}
