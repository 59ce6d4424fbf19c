package processors

import (
	"fmt"

	"mvdan.cc/gofumpt/format"
)

// GoFumpt formats generated Go sources with gofumpt, a stricter gofmt.
// Unlike GoImports it never touches the import list.
type GoFumpt struct {
	// LangVersion is the Go version the sources target, such as "go1.24".
	// Empty means the latest.
	LangVersion string
	ModulePath  string
	ExtraRules  bool
}

func NewGoFumpt() *GoFumpt {
	return &GoFumpt{}
}

func (g *GoFumpt) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if !isGoFile(filePath) {
		return content, nil
	}

	formatted, err := format.Source(content, format.Options{
		LangVersion: g.LangVersion,
		ModulePath:  g.ModulePath,
		ExtraRules:  g.ExtraRules,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format %s with gofumpt: %w", filePath, err)
	}
	return formatted, nil
}
