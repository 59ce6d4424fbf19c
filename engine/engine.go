// Package engine turns an interpreter result into files on disk.
//
// New partitions the directives of every output block by kind, compiles the
// declared transformations, flattens the context into properties and merges
// the global model. Generate then processes, strictly in sequence, every
// Template, every TemplateSet, every FileCopy and finally every FileSet.
// The first failure aborts generation; files written before it stay on disk.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpcf/loom/flow"
	"github.com/cpcf/loom/model"
	"github.com/cpcf/loom/postprocess"
	"github.com/cpcf/loom/render"
	"github.com/cpcf/loom/resolve"
	"github.com/cpcf/loom/state"
	"github.com/cpcf/loom/transform"
	"github.com/cpcf/loom/write"
)

type Engine struct {
	logger         *slog.Logger
	renderer       render.Renderer
	writer         write.Writer
	writeOptions   write.WriteOptions
	postprocessors *postprocess.Chain
	filesRoot      string
	manifest       bool

	result     flow.Result
	registry   *transform.Registry
	properties map[string]string
	global     *model.Model

	templates    []flow.Template
	templateSets []flow.TemplateSet
	fileCopies   []flow.FileCopy
	fileSets     []flow.FileSet
}

func New(result flow.Result, opts ...Option) (*Engine, error) {
	if result.Archive == nil {
		return nil, errors.New("engine: result has no archive")
	}

	e := &Engine{
		logger:         slog.Default(),
		writer:         write.NewBaseWriter(),
		writeOptions:   write.DefaultOptions(),
		postprocessors: postprocess.NewChain(),
		filesRoot:      DefaultFilesRoot,
		result:         result,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = render.NewMustache(render.WithPartials(&render.ArchivePartials{Archive: result.Archive}))
	}

	var (
		transformations []transform.Transformation
		models          []*model.Model
	)
	for _, out := range result.Outputs {
		transformations = append(transformations, out.Transformations...)
		models = append(models, out.Models...)
		for _, d := range out.Directives {
			switch d := d.(type) {
			case flow.Template:
				e.templates = append(e.templates, d)
				models = append(models, d.Model)
			case flow.TemplateSet:
				e.templateSets = append(e.templateSets, d)
			case flow.FileCopy:
				e.fileCopies = append(e.fileCopies, d)
			case flow.FileSet:
				e.fileSets = append(e.fileSets, d)
			default:
				return nil, fmt.Errorf("engine: unsupported directive %T", d)
			}
		}
	}

	registry, err := transform.NewRegistry(transformations...)
	if err != nil {
		return nil, &GenerationError{Kind: InvalidRegex, Err: err}
	}
	e.registry = registry
	e.properties = Properties(result.Context)
	e.global = model.Global(models...)

	e.logger.Debug("engine ready",
		"templates", len(e.templates),
		"template_sets", len(e.templateSets),
		"files", len(e.fileCopies),
		"file_sets", len(e.fileSets),
		"transformations", len(transformations),
	)
	return e, nil
}

// Properties flattens context values into the property map used by
// transformation placeholders. Booleans become "true" or "false", text is
// used verbatim and lists are skipped.
func Properties(ctx map[string]flow.ContextValue) map[string]string {
	props := make(map[string]string, len(ctx))
	for name, v := range ctx {
		switch v := v.(type) {
		case flow.Bool:
			props[name] = strconv.FormatBool(bool(v))
		case flow.Text:
			props[name] = string(v)
		}
	}
	return props
}

// Model returns the global model.
func (e *Engine) Model() *model.Model {
	return e.global
}

// Generate writes every output file below outputDir.
func (e *Engine) Generate(outputDir string) (*Report, error) {
	if outputDir == "" {
		return nil, &GenerationError{Kind: InvalidPath, Err: fmt.Errorf("%w: empty output directory", resolve.ErrInvalidPath)}
	}

	g := &generation{Engine: e, writer: e.writer, outputDir: outputDir, report: &Report{OutputDir: outputDir}}
	if e.manifest {
		modified, err := e.Modified(outputDir)
		if err != nil {
			e.logger.Warn("cannot compare with previous manifest", "output", outputDir, "error", err)
		}
		for _, p := range modified {
			e.logger.Warn("file changed since last generation", "path", p)
		}
		g.report.Modified = modified
	}
	if err := g.run(); err != nil {
		return g.report, err
	}

	if e.manifest {
		if err := g.saveManifest(); err != nil {
			return g.report, err
		}
	}

	e.logger.Info("generation complete", "output", outputDir, "files", len(g.report.Files))
	return g.report, nil
}

// Modified lists the files recorded by the manifest in outputDir whose
// content changed since they were generated, deleted files included. Without
// a manifest nothing is reported.
func (e *Engine) Modified(outputDir string) ([]string, error) {
	mm := state.NewManifestManager(outputDir)
	previous, err := mm.LoadManifest()
	if err != nil {
		return nil, &GenerationError{Path: state.ManifestFile, Kind: IO, Err: err}
	}

	var modified []string
	for _, p := range previous.Paths() {
		changed, err := mm.HasChanged(previous, p)
		if err != nil {
			return modified, &GenerationError{Path: p, Kind: IO, Err: err}
		}
		if changed {
			modified = append(modified, p)
		}
	}
	return modified, nil
}

// Check runs generation without writing anything and reports every failing
// directive instead of stopping at the first one. A directive stops at its
// first failure.
func (e *Engine) Check() error {
	g := &generation{
		Engine:    e,
		writer:    write.Discard,
		outputDir: ".",
		report:    &Report{},
		errs:      &MultiError{},
	}
	if err := g.run(); err != nil {
		return err
	}
	if g.errs.HasErrors() {
		return g.errs
	}
	e.logger.Info("check passed", "files", len(g.report.Files))
	return nil
}

// Preview resolves the target path of every file a set directive selects,
// without reading or writing anything. Single-file directives map to their
// declared target.
func (e *Engine) Preview() ([]FileRecord, error) {
	var records []FileRecord
	add := func(d flow.Directive, source, target string, rendered bool) error {
		clean, err := cleanTarget(target)
		if err != nil {
			return fail(d, target, err)
		}
		records = append(records, FileRecord{Kind: d.Kind(), Source: source, Target: clean, Rendered: rendered})
		return nil
	}

	for _, d := range e.templates {
		if err := add(d, d.Source, d.Target, d.Engine == flow.MustacheEngine); err != nil {
			return nil, err
		}
	}
	for _, d := range e.templateSets {
		files, err := e.selectFiles(d, d.Location, d.Directory, d.Includes, d.Excludes, transform.SplitIDs(d.Transformation))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := add(d, f.source, f.target, true); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range e.fileCopies {
		if err := add(d, d.Source, d.Target, false); err != nil {
			return nil, err
		}
	}
	for _, d := range e.fileSets {
		files, err := e.selectFiles(d, d.Location, d.Directory, d.Includes, d.Excludes, d.Transformations)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := add(d, f.source, f.target, false); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

type selected struct {
	source string
	target string
}

// selectFiles resolves the sources of a set directive and computes their
// targets: the directory without its files root, joined with the path
// relative to the directory, rewritten by the transformations.
func (e *Engine) selectFiles(d flow.Directive, loc flow.Location, dir string, includes, excludes, ids []string) ([]selected, error) {
	root := loc.Resolve(dir)
	rels, err := resolve.Includes(root, includes, excludes, e.result.Archive)
	if err != nil {
		return nil, fail(d, root, err)
	}

	files := make([]selected, 0, len(rels))
	for _, rel := range rels {
		target, err := e.registry.Apply(path.Join(e.stripFilesRoot(dir), rel), ids, e.properties)
		if err != nil {
			return nil, fail(d, rel, err)
		}
		files = append(files, selected{source: path.Join(root, rel), target: target})
	}
	return files, nil
}

// stripFilesRoot drops the files root when it is the first segment of dir.
func (e *Engine) stripFilesRoot(dir string) string {
	dir = strings.TrimPrefix(path.Clean(filepath.ToSlash(dir)), "/")
	if dir == "." {
		return ""
	}
	if e.filesRoot == "" {
		return dir
	}
	if dir == e.filesRoot {
		return ""
	}
	return strings.TrimPrefix(dir, e.filesRoot+"/")
}
