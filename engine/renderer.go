package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cpcf/loom/flow"
	"github.com/cpcf/loom/model"
	"github.com/cpcf/loom/resolve"
	"github.com/cpcf/loom/state"
	"github.com/cpcf/loom/transform"
	"github.com/cpcf/loom/write"
)

// generation is the state of one Generate or Check call. With errs set,
// failures are collected and processing moves on to the next directive.
type generation struct {
	*Engine
	writer    write.Writer
	outputDir string
	report    *Report
	errs      *MultiError
}

func (g *generation) run() error {
	for _, d := range g.templates {
		if err := g.handle(g.template(d)); err != nil {
			return err
		}
	}
	for _, d := range g.templateSets {
		if err := g.handle(g.templateSet(d)); err != nil {
			return err
		}
	}
	for _, d := range g.fileCopies {
		if err := g.handle(g.fileCopy(d)); err != nil {
			return err
		}
	}
	for _, d := range g.fileSets {
		if err := g.handle(g.fileSet(d)); err != nil {
			return err
		}
	}
	return nil
}

func (g *generation) handle(err error) error {
	if err == nil || g.errs == nil {
		return err
	}
	g.errs.add(err)
	return nil
}

func (g *generation) template(d flow.Template) error {
	if d.Engine != flow.MustacheEngine {
		g.logger.Debug("copying template verbatim", "source", d.Source, "engine", d.Engine)
		return g.copyFile(d, d.Source, d.Target)
	}
	return g.renderFile(d, d.Source, d.Target, d.Source, g.global)
}

func (g *generation) templateSet(d flow.TemplateSet) error {
	files, err := g.selectFiles(d, d.Location, d.Directory, d.Includes, d.Excludes, transform.SplitIDs(d.Transformation))
	if err != nil {
		return err
	}

	m := g.global.Derive(d.Model)
	for _, f := range files {
		if err := g.renderFile(d, f.source, f.target, f.target, m); err != nil {
			return err
		}
	}
	g.logger.Info("rendered template set", "directive", d.String(), "files", len(files))
	return nil
}

func (g *generation) fileCopy(d flow.FileCopy) error {
	return g.copyFile(d, d.Source, d.Target)
}

func (g *generation) fileSet(d flow.FileSet) error {
	files, err := g.selectFiles(d, d.Location, d.Directory, d.Includes, d.Excludes, d.Transformations)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := g.copyFile(d, f.source, f.target); err != nil {
			return err
		}
	}
	g.logger.Info("copied file set", "directive", d.String(), "files", len(files))
	return nil
}

// renderFile renders source against m into target. label names the
// template in render errors.
func (g *generation) renderFile(d flow.Directive, source, target, label string, m *model.Model) error {
	g.logger.Debug("rendering template", "source", source, "target", target)

	clean, outputPath, err := g.outputPath(target)
	if err != nil {
		return fail(d, target, err)
	}
	target = clean

	text, err := g.read(source)
	if err != nil {
		return fail(d, source, err)
	}

	content, err := g.renderer.Render(string(text), label, m.Data())
	if err != nil {
		return &GenerationError{Directive: d, Path: source, Kind: Render, Err: err}
	}

	if g.postprocessors.Len() > 0 {
		processed, err := g.postprocessors.Process(target, content)
		if err != nil {
			g.logger.Warn("post-processing failed", "path", target, "error", err)
		} else {
			content = processed
		}
	}

	if err := g.writer.Write(outputPath, content, g.writeOptions); err != nil {
		return fail(d, target, fmt.Errorf("failed to write output file %s: %w", outputPath, err))
	}

	sum := sha256.Sum256(content)
	g.record(FileRecord{
		Kind:     d.Kind(),
		Source:   source,
		Target:   target,
		Rendered: true,
		Size:     int64(len(content)),
		Hash:     hex.EncodeToString(sum[:]),
	})
	return nil
}

// copyFile streams source to target byte for byte.
func (g *generation) copyFile(d flow.Directive, source, target string) error {
	g.logger.Debug("copying file", "source", source, "target", target)

	clean, outputPath, err := g.outputPath(target)
	if err != nil {
		return fail(d, target, err)
	}
	target = clean

	rc, err := g.result.Archive.Open(source)
	if err != nil {
		return fail(d, source, err)
	}
	defer rc.Close()

	h := sha256.New()
	n, err := g.writer.Copy(outputPath, io.TeeReader(rc, h), g.writeOptions)
	if err != nil {
		return fail(d, target, fmt.Errorf("failed to copy %s to %s: %w", source, outputPath, err))
	}

	g.record(FileRecord{
		Kind:   d.Kind(),
		Source: source,
		Target: target,
		Size:   n,
		Hash:   hex.EncodeToString(h.Sum(nil)),
	})
	return nil
}

func (g *generation) read(source string) ([]byte, error) {
	rc, err := g.result.Archive.Open(source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return buf.Bytes(), nil
}

// outputPath maps a target to a path inside the output directory and returns
// the cleaned target with it.
func (g *generation) outputPath(target string) (string, string, error) {
	clean, err := cleanTarget(target)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(g.outputDir, filepath.FromSlash(clean)), nil
}

// cleanTarget normalizes target to a slash-separated path relative to the
// output directory. A leading "/" anchors the target at the output
// directory. Empty targets and targets that climb out are rejected.
func cleanTarget(target string) (string, error) {
	clean := strings.TrimLeft(path.Clean(filepath.ToSlash(target)), "/")
	if target == "" || clean == "" || clean == "." || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: target %q escapes the output directory", resolve.ErrInvalidPath, target)
	}
	return clean, nil
}

func (g *generation) record(f FileRecord) {
	g.report.Files = append(g.report.Files, f)
	g.logger.Debug("wrote file", "target", f.Target, "kind", f.Kind, "bytes", f.Size)
}

func (g *generation) saveManifest() error {
	manifest := state.NewManifest()
	for _, f := range g.report.Files {
		manifest.Add(state.ManifestEntry{
			Path:   f.Target,
			Hash:   f.Hash,
			Size:   f.Size,
			Kind:   string(f.Kind),
			Source: f.Source,
		})
	}

	if err := state.NewManifestManager(g.outputDir).SaveManifest(manifest); err != nil {
		return &GenerationError{Path: state.ManifestFile, Kind: IO, Err: err}
	}
	g.logger.Debug("saved manifest", "run_id", manifest.RunID, "entries", len(manifest.Entries))
	return nil
}
