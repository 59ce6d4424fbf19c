// Package plan reads generation plans from YAML or TOML files.
//
// A plan is the serialized form of an interpreter result: the resolved
// context and the output blocks with their transformations, models and
// directives. It lets the loom command drive generation without running an
// interpreter.
//
//	context:
//	  project.name: acme
//	  docker: true
//	outputs:
//	  - transformations:
//	      - id: pkg
//	        replacements:
//	          - {regex: Main, replacement: "${project.name}"}
//	    model:
//	      - {key: name, value: demo}
//	      - key: deps
//	        list: [{value: a, order: 10}]
//	    directives:
//	      - {kind: template, source: readme.mustache, target: README.md}
//	      - {kind: files, directory: files/src, includes: ["**/*.java"], transformations: [pkg]}
package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cpcf/loom/archive"
	"github.com/cpcf/loom/config"
	"github.com/cpcf/loom/flow"
	"github.com/cpcf/loom/model"
	"github.com/cpcf/loom/transform"
)

// Plan is the file form of a flow.Result without its archive.
type Plan struct {
	Context map[string]any `yaml:"context" toml:"context"`
	Outputs []Output       `yaml:"outputs" toml:"outputs"`
}

type Output struct {
	Transformations []transform.Transformation `yaml:"transformations" toml:"transformations"`
	Model           []Node                     `yaml:"model" toml:"model"`
	Directives      []Directive                `yaml:"directives" toml:"directives"`
}

// Directive holds the fields of every directive kind. Kind selects which
// of them apply.
type Directive struct {
	Kind            flow.Kind `yaml:"kind" toml:"kind"`
	Source          string    `yaml:"source" toml:"source"`
	Target          string    `yaml:"target" toml:"target"`
	Engine          string    `yaml:"engine" toml:"engine"`
	Directory       string    `yaml:"directory" toml:"directory"`
	Includes        []string  `yaml:"includes" toml:"includes"`
	Excludes        []string  `yaml:"excludes" toml:"excludes"`
	Transformations []string  `yaml:"transformations" toml:"transformations"`
	Location        string    `yaml:"location" toml:"location"`
	Model           []Node    `yaml:"model" toml:"model"`
}

// Node is a model node. Exactly one of Value, Bool, List and Map is set.
// Order defaults to model.DefaultOrder.
type Node struct {
	Key   string  `yaml:"key" toml:"key"`
	Order *int    `yaml:"order" toml:"order"`
	Value *string `yaml:"value" toml:"value"`
	Bool  *bool   `yaml:"bool" toml:"bool"`
	List  []Node  `yaml:"list" toml:"list"`
	Map   []Node  `yaml:"map" toml:"map"`
}

// Load reads a plan file. The format follows the file extension.
func Load(path string) (*Plan, error) {
	var p Plan
	if err := config.Load(path, &p); err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", path, err)
	}
	return &p, nil
}

func (p *Plan) Validate() error {
	var errs []error
	for i, out := range p.Outputs {
		for j, d := range out.Directives {
			if err := d.validate(); err != nil {
				errs = append(errs, fmt.Errorf("outputs[%d].directives[%d]: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (d Directive) validate() error {
	switch d.Kind {
	case flow.KindTemplate, flow.KindFileCopy:
		if d.Source == "" || d.Target == "" {
			return fmt.Errorf("%s needs a source and a target", d.Kind)
		}
	case flow.KindTemplateSet, flow.KindFileSet:
		if len(d.Includes) == 0 {
			return fmt.Errorf("%s needs at least one include", d.Kind)
		}
	default:
		return fmt.Errorf("unknown directive kind %q", d.Kind)
	}
	return nil
}

// Result builds the interpreter result the plan describes, reading from a.
func (p *Plan) Result(a archive.Archive) (flow.Result, error) {
	result := flow.Result{Archive: a, Context: contextValues(p.Context)}
	for i, out := range p.Outputs {
		o := flow.Output{Transformations: out.Transformations}

		if len(out.Model) > 0 {
			m, err := buildModel(out.Model)
			if err != nil {
				return flow.Result{}, fmt.Errorf("outputs[%d].model: %w", i, err)
			}
			o.Models = append(o.Models, m)
		}

		for j, d := range out.Directives {
			directive, err := d.directive()
			if err != nil {
				return flow.Result{}, fmt.Errorf("outputs[%d].directives[%d]: %w", i, j, err)
			}
			o.Directives = append(o.Directives, directive)
		}
		result.Outputs = append(result.Outputs, o)
	}
	return result, nil
}

func (d Directive) directive() (flow.Directive, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var m *model.Model
	if len(d.Model) > 0 {
		var err error
		if m, err = buildModel(d.Model); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	}
	loc := flow.Location{CurrentDirectory: d.Location}

	switch d.Kind {
	case flow.KindTemplate:
		engine := d.Engine
		if engine == "" {
			engine = flow.MustacheEngine
		}
		return flow.Template{Source: d.Source, Target: d.Target, Engine: engine, Model: m}, nil
	case flow.KindTemplateSet:
		return flow.TemplateSet{
			Directory:      d.Directory,
			Includes:       d.Includes,
			Excludes:       d.Excludes,
			Transformation: strings.Join(d.Transformations, ","),
			Location:       loc,
			Model:          m,
		}, nil
	case flow.KindFileCopy:
		return flow.FileCopy{Source: d.Source, Target: d.Target}, nil
	default:
		return flow.FileSet{
			Directory:       d.Directory,
			Includes:        d.Includes,
			Excludes:        d.Excludes,
			Transformations: d.Transformations,
			Location:        loc,
		}, nil
	}
}

func buildModel(nodes []Node) (*model.Model, error) {
	built := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		node, err := n.build()
		if err != nil {
			return nil, err
		}
		built = append(built, node)
	}
	return model.New(built...), nil
}

func (n Node) build() (model.Node, error) {
	order := model.DefaultOrder
	if n.Order != nil {
		order = *n.Order
	}

	set := 0
	for _, ok := range []bool{n.Value != nil, n.Bool != nil, n.List != nil, n.Map != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("node %q must set exactly one of value, bool, list and map", n.Key)
	}

	switch {
	case n.Value != nil:
		return model.NewValue(n.Key, *n.Value, order), nil
	case n.Bool != nil:
		return model.NewBool(n.Key, *n.Bool, order), nil
	}

	children := n.List
	if n.Map != nil {
		children = n.Map
	}
	built := make([]model.Node, 0, len(children))
	for _, c := range children {
		child, err := c.build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Key, err)
		}
		built = append(built, child)
	}
	if n.Map != nil {
		return model.NewMap(n.Key, order, built...), nil
	}
	return model.NewList(n.Key, order, built...), nil
}

// contextValues converts the plan context. Values that are not a bool, a
// string or a list of strings have no context form and are skipped.
func contextValues(raw map[string]any) map[string]flow.ContextValue {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := make(map[string]flow.ContextValue, len(raw))
	for _, name := range names {
		switch v := raw[name].(type) {
		case bool:
			ctx[name] = flow.Bool(v)
		case string:
			ctx[name] = flow.Text(v)
		case []any:
			if list, ok := textList(v); ok {
				ctx[name] = list
				continue
			}
			slog.Debug("ignoring context value", "name", name, "reason", "list items must be text")
		default:
			slog.Debug("ignoring context value", "name", name, "type", fmt.Sprintf("%T", v))
		}
	}
	return ctx
}

func textList(items []any) (flow.List, bool) {
	list := make(flow.List, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		list = append(list, s)
	}
	return list, true
}
