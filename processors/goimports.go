// Package processors holds post-processors for generated files.
package processors

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// GoImports fixes imports and formats generated Go sources. Files that are
// not Go sources pass through unchanged.
type GoImports struct {
	TabWidth  int
	TabIndent bool
	AllErrors bool
	Comments  bool
}

// NewGoImports returns a GoImports processor with gofmt defaults.
func NewGoImports() *GoImports {
	return &GoImports{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
	}
}

func (g *GoImports) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if !isGoFile(filePath) {
		return content, nil
	}

	options := &imports.Options{
		AllErrors: g.AllErrors,
		Comments:  g.Comments,
		TabIndent: g.TabIndent,
		TabWidth:  g.TabWidth,
	}

	formatted, err := imports.Process(filePath, content, options)
	if err == nil {
		return formatted, nil
	}

	// goimports gives up on sources it cannot type-check; plain gofmt may not.
	formatted, fmtErr := format.Source(content)
	if fmtErr != nil {
		return nil, fmt.Errorf("failed to format %s with goimports (%w) and gofmt (%w)", filePath, err, fmtErr)
	}
	return formatted, nil
}

func isGoFile(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".go")
}
