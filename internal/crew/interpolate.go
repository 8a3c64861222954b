package crew

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrMissingInput is returned when a template references a field that the
// kickoff inputs do not provide.
var ErrMissingInput = errors.New("crew: missing template input")

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_\-]*)\}`)

// Interpolate replaces {name} placeholders in template with inputs[name].
// Braces that do not wrap an identifier are left as-is. Values are inserted
// verbatim and never re-scanned.
func Interpolate(template string, inputs map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := inputs[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %v", ErrMissingInput, dedupe(missing))
	}
	return out, nil
}

// Placeholders lists the distinct field names referenced by template, sorted.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	sort.Strings(names)
	return dedupe(names)
}

func dedupe(sorted []string) []string {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
