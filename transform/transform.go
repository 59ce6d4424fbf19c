// Package transform rewrites strings, typically output paths, with named
// chains of regular-expression replacements.
//
// A Transformation owns an ordered list of Replacements. Applying a set of
// transformation ids collects the replacements of every matching
// transformation, in registry order, and runs them one after the other so
// each rule sees the output of the previous one.
//
// Replacement text may reference context properties with ${name}. They are
// expanded before the rule runs; a property that is not defined is an error.
// Regex group references ($1, ${1}, ${group}) pass through to the regexp
// engine untouched.
package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidRegex reports a replacement rule whose pattern does not compile.
	ErrInvalidRegex = errors.New("invalid regex")
	// ErrUnresolvedPlaceholder reports a ${name} placeholder with no matching
	// property.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

// Replacement is a single rewrite rule.
type Replacement struct {
	Regex       string `yaml:"regex" toml:"regex"`
	Replacement string `yaml:"replacement" toml:"replacement"`
}

// Transformation is a named, ordered list of replacements.
type Transformation struct {
	ID           string        `yaml:"id" toml:"id"`
	Replacements []Replacement `yaml:"replacements" toml:"replacements"`
}

type rule struct {
	re          *regexp.Regexp
	replacement string
	groups      map[string]bool
}

type entry struct {
	id    string
	rules []rule
}

// Registry holds compiled transformations in declaration order.
type Registry struct {
	entries []entry
}

// NewRegistry compiles every replacement of ts.
func NewRegistry(ts ...Transformation) (*Registry, error) {
	r := &Registry{entries: make([]entry, 0, len(ts))}
	for _, t := range ts {
		e := entry{id: t.ID, rules: make([]rule, 0, len(t.Replacements))}
		for i, rep := range t.Replacements {
			re, err := regexp.Compile(rep.Regex)
			if err != nil {
				return nil, fmt.Errorf("%w: transformation %q rule %d: %v", ErrInvalidRegex, t.ID, i, err)
			}
			groups := make(map[string]bool)
			for _, name := range re.SubexpNames() {
				if name != "" {
					groups[name] = true
				}
			}
			e.rules = append(e.rules, rule{re: re, replacement: rep.Replacement, groups: groups})
		}
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// IDs returns the transformation ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		ids = append(ids, e.id)
	}
	return ids
}

// Apply runs the replacements of the transformations named by ids over
// input. An empty id list returns input unchanged. Ids with no registered
// transformation contribute no rules.
func (r *Registry) Apply(input string, ids []string, props map[string]string) (string, error) {
	if len(ids) == 0 {
		return input, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	output := input
	for _, e := range r.entries {
		if !wanted[e.id] {
			continue
		}
		for _, rl := range e.rules {
			replacement, err := evaluate(rl.replacement, props, rl.groups)
			if err != nil {
				return "", fmt.Errorf("transformation %q: %w", e.id, err)
			}
			output = rl.re.ReplaceAllString(output, replacement)
		}
	}
	return output, nil
}

// ApplyList is Apply with the ids given as one comma-separated string.
func (r *Registry) ApplyList(input, ids string, props map[string]string) (string, error) {
	return r.Apply(input, SplitIDs(ids), props)
}

// SplitIDs splits a comma-separated id list, dropping blank items.
func SplitIDs(ids string) []string {
	var out []string
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
