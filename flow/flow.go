// Package flow describes what the interpreter hands to the output generator:
// the output blocks it collected while walking the archetype, the resolved
// context values and the archive the archetype was read from.
//
// Directives are a closed set of variants (Template, TemplateSet, FileCopy,
// FileSet). They are built once and never modified afterwards.
package flow

import (
	"fmt"
	"path"
	"strings"

	"github.com/cpcf/loom/archive"
	"github.com/cpcf/loom/model"
	"github.com/cpcf/loom/transform"
)

// MustacheEngine is the template engine identifier rendered by loom.
const MustacheEngine = "mustache"

// Kind names a directive variant.
type Kind string

const (
	KindTemplate    Kind = "template"
	KindTemplateSet Kind = "templates"
	KindFileCopy    Kind = "file"
	KindFileSet     Kind = "files"
)

// Directive is one output-producing instruction.
type Directive interface {
	Kind() Kind
	fmt.Stringer

	directive()
}

// Location is the directory that was current when a directive was declared.
// Relative directories of the directive are resolved against it.
type Location struct {
	CurrentDirectory string
}

// Resolve anchors dir at the location. Absolute directories are returned
// cleaned and unchanged otherwise.
func (l Location) Resolve(dir string) string {
	if path.IsAbs(dir) {
		return path.Clean(dir)
	}
	return path.Join(l.CurrentDirectory, dir)
}

// Template renders, or copies, a single source file to a target.
type Template struct {
	Source string
	Target string
	Engine string
	Model  *model.Model
}

// TemplateSet renders every file of a directory selected by include and
// exclude patterns. Transformation is a comma-separated list of
// transformation ids applied to target paths.
type TemplateSet struct {
	Directory      string
	Includes       []string
	Excludes       []string
	Transformation string
	Location       Location
	Model          *model.Model
}

// FileCopy copies a single source file to a target.
type FileCopy struct {
	Source string
	Target string
}

// FileSet copies every file of a directory selected by include and exclude
// patterns, rewriting target paths with Transformations.
type FileSet struct {
	Directory       string
	Includes        []string
	Excludes        []string
	Transformations []string
	Location        Location
}

func (Template) Kind() Kind    { return KindTemplate }
func (TemplateSet) Kind() Kind { return KindTemplateSet }
func (FileCopy) Kind() Kind    { return KindFileCopy }
func (FileSet) Kind() Kind     { return KindFileSet }

func (Template) directive()    {}
func (TemplateSet) directive() {}
func (FileCopy) directive()    {}
func (FileSet) directive()     {}

func (t Template) String() string {
	return fmt.Sprintf("template %s -> %s (%s)", t.Source, t.Target, t.Engine)
}

func (t TemplateSet) String() string {
	return fmt.Sprintf("templates %s [%s]", t.Location.Resolve(t.Directory), strings.Join(t.Includes, ","))
}

func (f FileCopy) String() string {
	return fmt.Sprintf("file %s -> %s", f.Source, f.Target)
}

func (f FileSet) String() string {
	return fmt.Sprintf("files %s [%s]", f.Location.Resolve(f.Directory), strings.Join(f.Includes, ","))
}

// Output is one output block of the archetype: the transformations and
// models it declares and its directives, in declaration order.
type Output struct {
	Transformations []transform.Transformation
	Models          []*model.Model
	Directives      []Directive
}

// ContextValue is a resolved user choice: Bool, Text or List.
type ContextValue interface {
	contextValue()
}

// Bool is a yes/no choice.
type Bool bool

// Text is a free-form or selected text value.
type Text string

// List is a multi-valued choice. It has no property form.
type List []string

func (Bool) contextValue() {}
func (Text) contextValue() {}
func (List) contextValue() {}

// Result is the interpreter output consumed by the generator.
type Result struct {
	Outputs []Output
	Context map[string]ContextValue
	Archive archive.Archive
}
