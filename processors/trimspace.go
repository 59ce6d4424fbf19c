package processors

import (
	"bytes"
)

// TrimTrailingSpace strips trailing spaces and tabs from every line and
// collapses trailing blank lines into a single final newline. Templates with
// section tags tend to leave both behind.
type TrimTrailingSpace struct{}

func NewTrimTrailingSpace() *TrimTrailingSpace {
	return &TrimTrailingSpace{}
}

func (TrimTrailingSpace) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if len(content) == 0 {
		return content, nil
	}

	lines := bytes.Split(content, []byte("\n"))
	for i, line := range lines {
		line = bytes.TrimRight(line, " \t")
		lines[i] = bytes.TrimSuffix(line, []byte("\r"))
	}

	out := bytes.TrimRight(bytes.Join(lines, []byte("\n")), "\n")
	if len(out) == 0 {
		return out, nil
	}
	return append(out, '\n'), nil
}
