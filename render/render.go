// Package render turns template text and a data model into output bytes.
//
// The Renderer interface is all the generator knows about templating. The
// Mustache implementation parses templates with cbroglie/mustache, caches
// parsed templates by label and content, and resolves {{> partial}} tags
// through a PartialProvider, typically the archive being generated from.
package render

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/cbroglie/mustache"

	"github.com/cpcf/loom/archive"
)

// Renderer renders template text against data. label names the template in
// error messages.
type Renderer interface {
	Render(text, label string, data any) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(text, label string, data any) ([]byte, error)

func (f RendererFunc) Render(text, label string, data any) ([]byte, error) {
	return f(text, label, data)
}

type cacheKey struct {
	label string
	sum   [sha256.Size]byte
}

// Mustache renders mustache templates. It is safe for concurrent use.
type Mustache struct {
	partials mustache.PartialProvider

	mu        sync.RWMutex
	templates map[cacheKey]*mustache.Template
}

// Option configures a Mustache renderer.
type Option func(*Mustache)

// WithPartials sets the provider used to resolve partial tags.
func WithPartials(p mustache.PartialProvider) Option {
	return func(m *Mustache) {
		m.partials = p
	}
}

// NewMustache returns a mustache renderer.
func NewMustache(opts ...Option) *Mustache {
	m := &Mustache{
		templates: make(map[cacheKey]*mustache.Template),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mustache) Render(text, label string, data any) ([]byte, error) {
	tmpl, err := m.get(text, label)
	if err != nil {
		return nil, err
	}

	out, err := tmpl.Render(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", label, err)
	}
	return []byte(out), nil
}

func (m *Mustache) get(text, label string) (*mustache.Template, error) {
	key := cacheKey{label: label, sum: sha256.Sum256([]byte(text))}

	m.mu.RLock()
	if tmpl, ok := m.templates[key]; ok {
		m.mu.RUnlock()
		return tmpl, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if tmpl, ok := m.templates[key]; ok {
		return tmpl, nil
	}

	var (
		tmpl *mustache.Template
		err  error
	)
	if m.partials != nil {
		tmpl, err = mustache.ParseStringPartials(text, m.partials)
	} else {
		tmpl, err = mustache.ParseString(text)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", label, err)
	}

	m.templates[key] = tmpl
	return tmpl, nil
}

// Len returns the number of cached templates.
func (m *Mustache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// Clear drops every cached template.
func (m *Mustache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = make(map[cacheKey]*mustache.Template)
}

// ArchivePartials resolves partial names against an archive. A partial
// "header" is looked up as Dir/header.mustache, then Dir/header. Missing
// partials render as empty text.
type ArchivePartials struct {
	Archive archive.Archive
	Dir     string
}

func (p *ArchivePartials) Get(name string) (string, error) {
	for _, candidate := range []string{name + ".mustache", name} {
		rc, err := p.Archive.Open(path.Join(p.Dir, candidate))
		if errors.Is(err, archive.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read partial %s: %w", name, err)
		}
		return string(data), nil
	}
	return "", nil
}
