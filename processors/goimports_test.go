package processors

import (
	"strings"
	"testing"
)

func TestGoImportsProcessContent(t *testing.T) {
	processor := NewGoImports()

	tests := []struct {
		name     string
		filePath string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "removes unused imports",
			filePath: "cmd/app/main.go",
			input: `package main

import (
	"fmt"
	"context"
)

func main() {
	ctx := context.Background()
	_ = ctx
}
`,
			contains: []string{`"context"`},
			absent:   []string{`"fmt"`},
		},
		{
			name:     "keeps used imports",
			filePath: "main.go",
			input: `package main

import (
	"fmt"
	"context"
)

func main() {
	ctx := context.Background()
	fmt.Println("Hello")
	_ = ctx
}
`,
			contains: []string{`"context"`, `"fmt"`},
		},
		{
			name:     "formats code",
			filePath: "x.go",
			input:    "package x\nfunc  F( )  int {return 1}\n",
			contains: []string{"func F() int {\n\treturn 1\n}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := processor.ProcessContent(tt.filePath, []byte(tt.input))
			if err != nil {
				t.Fatalf("ProcessContent() error = %v", err)
			}
			output := string(result)
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("result missing %q\n%s", want, output)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(output, unwanted) {
					t.Errorf("result still contains %q\n%s", unwanted, output)
				}
			}
		})
	}
}

func TestGoImportsSkipsOtherFiles(t *testing.T) {
	input := "func  not go  "
	got, err := NewGoImports().ProcessContent("README.md", []byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != input {
		t.Errorf("non-Go file changed: %q", got)
	}
}

func TestGoImportsInvalidSource(t *testing.T) {
	_, err := NewGoImports().ProcessContent("broken.go", []byte("package x\nfunc {"))
	if err == nil {
		t.Fatal("expected error for invalid Go source")
	}
	if !strings.Contains(err.Error(), "broken.go") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestIsGoFile(t *testing.T) {
	tests := []struct {
		filePath string
		want     bool
	}{
		{"main.go", true},
		{"test_file.go", true},
		{"file.GO", true},
		{"file.txt", false},
		{"file", false},
		{"go.mod", false},
	}

	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			if got := isGoFile(tt.filePath); got != tt.want {
				t.Errorf("isGoFile() = %v, want %v", got, tt.want)
			}
		})
	}
}
