package connector

import "strings"

// URLConcat joins URL segments with exactly one slash between them.
// Empty segments are skipped.
func URLConcat(base string, parts ...string) string {
	out := base
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
			continue
		}
		out = strings.TrimRight(out, "/") + "/" + strings.TrimLeft(p, "/")
	}
	return out
}
