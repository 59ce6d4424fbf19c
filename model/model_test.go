package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeScalarOrder(t *testing.T) {
	tests := []struct {
		name          string
		first, second int
		want          string
	}{
		{"increasing order takes the later value", 10, 20, "second"},
		{"equal order takes the incoming value", 50, 50, "second"},
		{"lower order keeps the existing value", 20, 10, "first"},
		{"default order ties", DefaultOrder, DefaultOrder, "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.MergeNode(NewValue("name", "first", tt.first))
			m.MergeNode(NewValue("name", "second", tt.second))

			if got := m.Data()["name"]; got != tt.want {
				t.Errorf("name = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeListConcatenatesAndSorts(t *testing.T) {
	m := New(NewList("deps", DefaultOrder,
		NewValue("", "b", 20),
		NewValue("", "d", 40),
		NewValue("", "x", 20),
	))
	m.MergeNode(NewList("deps", DefaultOrder,
		NewValue("", "a", 10),
		NewValue("", "c", 30),
		NewValue("", "y", 20),
	))

	n, ok := m.Lookup("deps")
	if !ok {
		t.Fatal("deps missing")
	}
	items := n.(*List).Items()
	if len(items) != 6 {
		t.Fatalf("len = %d, want 6", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Order() > items[i].Order() {
			t.Errorf("items not sorted at %d: %d > %d", i, items[i-1].Order(), items[i].Order())
		}
	}

	want := []any{"a", "b", "x", "y", "c", "d"}
	if diff := cmp.Diff(want, m.Data()["deps"]); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeListCreatesSortedList(t *testing.T) {
	m := New()
	m.MergeNode(NewList("l", DefaultOrder, NewValue("", "late", 90), NewValue("", "early", 1)))

	if diff := cmp.Diff([]any{"early", "late"}, m.Data()["l"]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMapRecursive(t *testing.T) {
	m := New(NewMap("project", DefaultOrder,
		NewValue("name", "demo", DefaultOrder),
		NewMap("build", DefaultOrder, NewValue("tool", "maven", DefaultOrder)),
		NewList("tags", DefaultOrder, NewValue("", "base", 10)),
	))

	m.MergeNode(NewMap("project", DefaultOrder,
		NewValue("version", "1.0", DefaultOrder),
		NewMap("build", DefaultOrder, NewValue("tool", "gradle", 200)),
		NewList("tags", DefaultOrder, NewValue("", "extra", 5)),
	))

	want := map[string]any{
		"project": map[string]any{
			"name":    "demo",
			"version": "1.0",
			"build":   map[string]any{"tool": "gradle"},
			"tags":    []any{"extra", "base"},
		},
	}
	if diff := cmp.Diff(want, m.Data()); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeKindConflictFollowsOrder(t *testing.T) {
	m := New(NewValue("thing", "scalar", 50))
	m.MergeNode(NewList("thing", 10, NewValue("", "ignored", 0)))
	if got := m.Data()["thing"]; got != "scalar" {
		t.Errorf("lower-order list replaced scalar: %v", got)
	}

	m.MergeNode(NewMap("thing", 60, NewValue("k", "v", 0)))
	if diff := cmp.Diff(map[string]any{"k": "v"}, m.Data()["thing"]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotAliasSource(t *testing.T) {
	src := New(NewList("items", DefaultOrder, NewValue("", "one", 1)))
	dst := New()
	dst.Merge(src)
	dst.MergeNode(NewList("items", DefaultOrder, NewValue("", "two", 2)))

	if diff := cmp.Diff([]any{"one"}, src.Data()["items"]); diff != "" {
		t.Errorf("source model was mutated (-want +got):\n%s", diff)
	}
}

func TestGlobalAndDerive(t *testing.T) {
	first := New(
		NewValue("name", "demo", DefaultOrder),
		NewList("modules", DefaultOrder, NewValue("", "core", 10)),
	)
	second := New(NewBool("docker", true, DefaultOrder))

	global := Global(first, nil, second)
	before := global.Data()

	local := New(
		NewValue("name", "local", DefaultOrder),
		NewList("modules", DefaultOrder, NewValue("", "web", 5)),
	)
	derived := global.Derive(local)

	wantDerived := map[string]any{
		"name":    "local",
		"modules": []any{"web", "core"},
		"docker":  true,
	}
	if diff := cmp.Diff(wantDerived, derived.Data()); diff != "" {
		t.Errorf("derived mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, global.Data()); diff != "" {
		t.Errorf("global model changed by Derive (-before +after):\n%s", diff)
	}

	if diff := cmp.Diff(global.Data(), global.Derive(nil).Data()); diff != "" {
		t.Errorf("Derive(nil) differs from global (-global +derived):\n%s", diff)
	}
}

func TestNewMapLaterChildWins(t *testing.T) {
	m := NewMap("m", DefaultOrder, NewValue("a", "1", 0), NewValue("a", "2", 0))
	if len(m.Children()) != 1 {
		t.Fatalf("children = %d, want 1", len(m.Children()))
	}
	n, _ := m.Get("a")
	if got := n.(*Value).Get(); got != "2" {
		t.Errorf("a = %v, want 2", got)
	}
}

func TestLookup(t *testing.T) {
	m := New(NewMap("a", DefaultOrder, NewMap("b", DefaultOrder, NewValue("c", "deep", DefaultOrder))))

	n, ok := m.Lookup("a", "b", "c")
	if !ok {
		t.Fatal("a.b.c not found")
	}
	if got := n.(*Value).Get(); got != "deep" {
		t.Errorf("a.b.c = %v", got)
	}

	if _, ok := m.Lookup("a", "b", "c", "d"); ok {
		t.Error("lookup through a scalar should fail")
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("lookup of missing key should fail")
	}
}

func TestString(t *testing.T) {
	m := New(
		NewValue("name", "demo", 0),
		NewBool("flag", false, 0),
		NewList("l", 0, NewValue("", "x", 0)),
	)
	want := "name: demo\nflag: false\nl []\n  -: x\n"
	if got := m.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
