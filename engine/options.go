package engine

import (
	"log/slog"

	"github.com/cpcf/loom/postprocess"
	"github.com/cpcf/loom/render"
	"github.com/cpcf/loom/write"
)

// DefaultFilesRoot is the leading directory segment dropped from set
// directories when computing target paths.
const DefaultFilesRoot = "files"

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRenderer replaces the mustache renderer.
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithFilesRoot sets the leading directory segment stripped from set
// directories. An empty root disables stripping.
func WithFilesRoot(root string) Option {
	return func(e *Engine) {
		e.filesRoot = root
	}
}

func WithWriter(w write.Writer) Option {
	return func(e *Engine) {
		e.writer = w
	}
}

// WithAtomicWrites writes every file through a temporary file and a rename.
func WithAtomicWrites(atomic bool) Option {
	return func(e *Engine) {
		e.writeOptions.Atomic = atomic
	}
}

// WithPostProcessor appends a processor for rendered content. Verbatim
// copies are never post-processed.
func WithPostProcessor(p postprocess.Processor) Option {
	return func(e *Engine) {
		e.postprocessors.Add(p)
	}
}

// WithManifest records every written file in a manifest in the output
// directory.
func WithManifest(enabled bool) Option {
	return func(e *Engine) {
		e.manifest = enabled
	}
}
