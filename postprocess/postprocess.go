// Package postprocess applies content transformations to rendered templates
// before they are written.
//
// Processors run in the order they were added. Each receives the target path
// of the file, relative to the output directory, so it can skip files it
// does not handle. ForPattern narrows a processor to target paths matching a
// glob.
//
//	eng, err := engine.New(result,
//		engine.WithPostProcessor(processors.NewGoImports()),
//		engine.WithPostProcessor(postprocess.ForPattern("**/*.md", processors.NewTrimTrailingSpace())),
//	)
package postprocess

import (
	"fmt"

	"github.com/cpcf/loom/resolve"
)

// Processor transforms the content of one file. Implementations return the
// content unchanged for files they do not apply to.
type Processor interface {
	ProcessContent(filePath string, content []byte) ([]byte, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(filePath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(filePath string, content []byte) ([]byte, error) {
	return f(filePath, content)
}

// ForPattern returns a processor that runs p only on paths matching the glob
// pattern. A malformed pattern fails every call.
func ForPattern(pattern string, p Processor) Processor {
	return ProcessorFunc(func(filePath string, content []byte) ([]byte, error) {
		ok, err := resolve.Match(pattern, filePath)
		if err != nil {
			return nil, err
		}
		if !ok {
			return content, nil
		}
		return p.ProcessContent(filePath, content)
	})
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain returns a chain of processors.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Add appends a processor.
func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
}

// AddFunc appends a function as a processor.
func (c *Chain) AddFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	c.processors = append(c.processors, ProcessorFunc(fn))
}

// Process feeds content through every processor. The first failure stops
// the chain.
func (c *Chain) Process(filePath string, content []byte) ([]byte, error) {
	result := content
	for i, p := range c.processors {
		processed, err := p.ProcessContent(filePath, result)
		if err != nil {
			return nil, fmt.Errorf("processor %d failed for %s: %w", i, filePath, err)
		}
		result = processed
	}
	return result, nil
}

// Len returns the number of processors.
func (c *Chain) Len() int {
	return len(c.processors)
}
