package model

import "strings"

// SplitTags splits a semicolon-joined tag string into trimmed, non-empty
// parts. The order of parts is preserved.
func SplitTags(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags joins tag parts back into the canonical semicolon form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ";")
}
