// Package pathutil normalizes and decomposes the path strings that key the
// file tree. Every path stored in the tree goes through Normalize first, so
// the rest of the engine can treat paths as opaque map keys.
package pathutil

import "strings"

// Normalize converts backslashes to forward slashes and strips trailing
// separators. Windows drive roots lose their trailing slash too ("C:/" -> "C:")
// so a drive keys the same node regardless of how the backend spelled it.
func Normalize(p string) string {
	normalized := strings.ReplaceAll(p, "\\", "/")
	for len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = normalized[:len(normalized)-1]
	}
	return normalized
}

// ParentDir returns the parent directory of a normalized path, or "" when the
// path has no parent (roots, bare drives, "/").
func ParentDir(p string) string {
	normalized := Normalize(p)
	idx := strings.LastIndex(normalized, "/")
	if idx < 0 {
		return ""
	}
	if idx == 0 {
		if len(normalized) == 1 {
			return ""
		}
		return "/"
	}
	return normalized[:idx]
}

// Name returns the final path component of a normalized path.
func Name(p string) string {
	normalized := Normalize(p)
	idx := strings.LastIndex(normalized, "/")
	if idx < 0 {
		return normalized
	}
	return normalized[idx+1:]
}
