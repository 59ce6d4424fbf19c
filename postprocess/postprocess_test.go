package postprocess

import (
	"errors"
	"strings"
	"testing"

	"github.com/cpcf/loom/resolve"
)

type prefixProcessor struct {
	name string
	err  error
}

func (p *prefixProcessor) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []byte(p.name + ":" + string(content)), nil
}

func TestChainProcess(t *testing.T) {
	tests := []struct {
		name       string
		processors []Processor
		input      string
		expected   string
		wantErr    bool
	}{
		{
			name:     "empty chain",
			input:    "hello",
			expected: "hello",
		},
		{
			name:       "single processor",
			processors: []Processor{&prefixProcessor{name: "A"}},
			input:      "hello",
			expected:   "A:hello",
		},
		{
			name:       "processors run in order",
			processors: []Processor{&prefixProcessor{name: "A"}, &prefixProcessor{name: "B"}},
			input:      "hello",
			expected:   "B:A:hello",
		},
		{
			name: "failure stops the chain",
			processors: []Processor{
				&prefixProcessor{name: "A", err: errors.New("boom")},
				&prefixProcessor{name: "B"},
			},
			input:   "hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(tt.processors...)
			result, err := chain.Process("README.md", []byte(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if !strings.Contains(err.Error(), "README.md") {
					t.Errorf("error should name the file: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestChainAdd(t *testing.T) {
	chain := NewChain()
	if chain.Len() != 0 {
		t.Fatalf("new chain should be empty, got %d", chain.Len())
	}

	chain.Add(&prefixProcessor{name: "A"})
	chain.AddFunc(func(filePath string, content []byte) ([]byte, error) {
		return []byte(strings.ToUpper(string(content))), nil
	})
	if chain.Len() != 2 {
		t.Fatalf("expected 2 processors, got %d", chain.Len())
	}

	out, err := chain.Process("x", []byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "A:HI" {
		t.Errorf("got %q", out)
	}
}

func TestForPattern(t *testing.T) {
	p := ForPattern("**/*.md", &prefixProcessor{name: "md"})

	tests := []struct {
		path string
		want string
	}{
		{"README.md", "md:x"},
		{"docs/guide/intro.md", "md:x"},
		{"src/Main.java", "x"},
	}
	for _, tt := range tests {
		got, err := p.ProcessContent(tt.path, []byte("x"))
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		if string(got) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestForPatternInvalid(t *testing.T) {
	p := ForPattern("[", &prefixProcessor{name: "never"})
	if _, err := p.ProcessContent("a", nil); !errors.Is(err, resolve.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}
