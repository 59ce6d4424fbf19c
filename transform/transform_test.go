package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRegistry(t *testing.T, ts ...Transformation) *Registry {
	t.Helper()
	r, err := NewRegistry(ts...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

func TestApplyEmptyIDsIsIdentity(t *testing.T) {
	r := mustRegistry(t, Transformation{
		ID:           "all",
		Replacements: []Replacement{{Regex: ".*", Replacement: "gone"}},
	})

	inputs := []string{"", "src/Main.java", "${not.evaluated}", "a/b/c"}
	for _, in := range inputs {
		got, err := r.Apply(in, nil, nil)
		if err != nil {
			t.Fatalf("Apply(%q) failed: %v", in, err)
		}
		if got != in {
			t.Errorf("Apply(%q, nil) = %q", in, got)
		}

		got, err = r.ApplyList(in, "", nil)
		if err != nil || got != in {
			t.Errorf("ApplyList(%q, \"\") = %q, %v", in, got, err)
		}
	}
}

func TestApplyChainsInRegistryOrder(t *testing.T) {
	r := mustRegistry(t,
		Transformation{ID: "mustache", Replacements: []Replacement{
			{Regex: `\.mustache$`, Replacement: ""},
		}},
		Transformation{ID: "packaged", Replacements: []Replacement{
			{Regex: `__pkg__`, Replacement: "${package}"},
			{Regex: `\.`, Replacement: "/"},
		}},
		Transformation{ID: "restore-ext", Replacements: []Replacement{
			{Regex: `/java$`, Replacement: ".java"},
		}},
	)
	props := map[string]string{"package": "io.acme"}

	// Requested order does not matter, registry order does.
	got, err := r.Apply("src/__pkg__/Main.java", []string{"restore-ext", "packaged"}, props)
	if err != nil {
		t.Fatal(err)
	}
	if want := "src/io/acme/Main.java"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = r.Apply("pom.xml.mustache", []string{"mustache"}, props)
	if err != nil {
		t.Fatal(err)
	}
	if want := "pom.xml"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyListMatchesApply(t *testing.T) {
	r := mustRegistry(t,
		Transformation{ID: "a", Replacements: []Replacement{{Regex: "x", Replacement: "y"}}},
		Transformation{ID: "b", Replacements: []Replacement{{Regex: "y", Replacement: "z"}}},
	)

	for _, ids := range []string{"a", "a,b", "b,a", " a , b ", "b"} {
		want, err := r.Apply("xxy", SplitIDs(ids), nil)
		if err != nil {
			t.Fatal(err)
		}
		got, err := r.ApplyList("xxy", ids, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ApplyList(%q) = %q, Apply = %q", ids, got, want)
		}
	}
}

func TestApplyDuplicateIDsContributeAllRules(t *testing.T) {
	r := mustRegistry(t,
		Transformation{ID: "x", Replacements: []Replacement{{Regex: "a", Replacement: "ab"}}},
		Transformation{ID: "x", Replacements: []Replacement{{Regex: "b", Replacement: "c"}}},
	)

	got, err := r.Apply("a", []string{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ac" {
		t.Errorf("got %q, want %q", got, "ac")
	}
}

func TestApplyPropertyReplacement(t *testing.T) {
	r := mustRegistry(t, Transformation{ID: "name", Replacements: []Replacement{
		{Regex: `__name__`, Replacement: "${project.name}-v1"},
	}})

	got, err := r.ApplyList("app/__name__.txt", "name", map[string]string{"project.name": "acme"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "app/acme-v1.txt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyGroupReferences(t *testing.T) {
	r := mustRegistry(t, Transformation{ID: "swap", Replacements: []Replacement{
		{Regex: `(\w+)-(?P<tail>\w+)`, Replacement: "${tail}_${1}_${suffix}"},
	}})

	got, err := r.Apply("left-right", []string{"swap"}, map[string]string{"suffix": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "right_left_x"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyUnresolvedPlaceholder(t *testing.T) {
	r := mustRegistry(t, Transformation{ID: "name", Replacements: []Replacement{
		{Regex: `x`, Replacement: "${missing}"},
	}})

	_, err := r.Apply("x", []string{"name"}, map[string]string{})
	if !errors.Is(err, ErrUnresolvedPlaceholder) {
		t.Errorf("expected ErrUnresolvedPlaceholder, got %v", err)
	}
}

func TestNewRegistryInvalidRegex(t *testing.T) {
	_, err := NewRegistry(Transformation{ID: "broken", Replacements: []Replacement{
		{Regex: `(unclosed`, Replacement: ""},
	}})
	if !errors.Is(err, ErrInvalidRegex) {
		t.Errorf("expected ErrInvalidRegex, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	props := map[string]string{"project.name": "acme", "flag": "true", "empty": ""}

	tests := []struct {
		tmpl string
		want string
	}{
		{"${project.name}-v1", "acme-v1"},
		{"plain", "plain"},
		{"${flag}/${project.name}", "true/acme"},
		{"[${empty}]", "[]"},
		{"$1 and ${2}", "$1 and ${2}"},
		{"$project.name", "$project.name"},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.tmpl, props)
		if err != nil {
			t.Errorf("Evaluate(%q) failed: %v", tt.tmpl, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
	}

	if _, err := Evaluate("${a}${b}", map[string]string{"a": "1"}); !errors.Is(err, ErrUnresolvedPlaceholder) {
		t.Errorf("expected ErrUnresolvedPlaceholder, got %v", err)
	}
}

func TestSplitIDs(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b"}, SplitIDs(" a,,b ,")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got := SplitIDs(""); got != nil {
		t.Errorf("SplitIDs(\"\") = %v, want nil", got)
	}
}

func TestIDs(t *testing.T) {
	r := mustRegistry(t, Transformation{ID: "one"}, Transformation{ID: "two"})
	if diff := cmp.Diff([]string{"one", "two"}, r.IDs()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
