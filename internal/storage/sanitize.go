package storage

import "strings"

// sanitizeFilename keeps only alphanumerics, '.', '_' and '-' from name,
// replacing everything else with '_'. Used to build the on-disk storage
// filename from an arbitrary, possibly hostile, original filename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "file"
	}
	return out
}
