package engine

import "github.com/cpcf/loom/flow"

// FileRecord describes one written file. Target is slash-separated and
// relative to the output directory.
type FileRecord struct {
	Kind     flow.Kind
	Source   string
	Target   string
	Rendered bool
	Size     int64
	Hash     string
}

// Report lists the files of a generation in the order they were written.
// Modified holds the files of the previous manifest that had changed before
// this run overwrote them.
type Report struct {
	OutputDir string
	Files     []FileRecord
	Modified  []string
}

// Targets returns the target path of every written file.
func (r *Report) Targets() []string {
	targets := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		targets = append(targets, f.Target)
	}
	return targets
}
