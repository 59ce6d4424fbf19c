package transform

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^{}]*)\}`)

// Evaluate expands every ${name} placeholder in tmpl with props[name].
// Numeric placeholders such as ${1} are left for the regexp engine.
func Evaluate(tmpl string, props map[string]string) (string, error) {
	return evaluate(tmpl, props, nil)
}

func evaluate(tmpl string, props map[string]string, groups map[string]bool) (string, error) {
	if !strings.Contains(tmpl, "${") {
		return tmpl, nil
	}

	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[2 : len(m)-1]
		if isGroupRef(name) || groups[name] {
			return m
		}
		if v, ok := props[name]; ok {
			return v
		}
		missing = append(missing, name)
		return m
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s in %q", ErrUnresolvedPlaceholder, strings.Join(missing, ", "), tmpl)
	}
	return out, nil
}

func isGroupRef(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
