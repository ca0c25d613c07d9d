// Package search parses the search box query into structured filters and
// evaluates them against tree nodes. Queries support file:<name> and
// dir:<name> prefixes, auto-detected regular expressions, and plain text.
package search

import (
	"regexp"
	"strings"

	"github.com/nvail/promptree/internal/fuzzy"
)

// Filters is the parsed form of a search query. Unset fields match
// everything; set fields are ANDed together.
type Filters struct {
	FileName      string
	DirectoryName string
	Regex         *regexp.Regexp
	PlainText     string
}

// IsEmpty reports whether no filter fields are set.
func (f Filters) IsEmpty() bool {
	return f.FileName == "" && f.DirectoryName == "" && f.Regex == nil && f.PlainText == ""
}

// regexMetachars triggers regex interpretation of the free-text remainder.
const regexMetachars = ".*?[]()|^${}+\\"

// ParseQuery splits a query on whitespace, extracts file: and dir: tokens
// (later occurrences win), and classifies the rejoined remainder as either a
// case-insensitive regex or plain text. A remainder that looks like a regex
// but fails to compile silently falls back to plain text.
func ParseQuery(query string) Filters {
	var filters Filters

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return filters
	}

	var remaining []string
	for _, token := range strings.Fields(trimmed) {
		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "file:") && len(token) > 5:
			filters.FileName = token[5:]
		case strings.HasPrefix(lower, "dir:") && len(token) > 4:
			filters.DirectoryName = token[4:]
		default:
			remaining = append(remaining, token)
		}
	}

	rest := strings.Join(remaining, " ")
	if rest == "" {
		return filters
	}

	if strings.ContainsAny(rest, regexMetachars) {
		if re, err := regexp.Compile("(?i)" + rest); err == nil {
			filters.Regex = re
			return filters
		}
	}
	filters.PlainText = rest
	return filters
}

// Matches reports whether a node with the given name, path and kind passes
// every set filter. An empty Filters matches unconditionally.
func Matches(name, path string, isDir bool, filters Filters) bool {
	if filters.FileName != "" {
		if !fuzzy.Match(filters.FileName, name, fuzzy.DefaultThreshold) {
			return false
		}
	}

	if filters.DirectoryName != "" {
		if !matchesDirectoryTerm(name, path, isDir, filters.DirectoryName) {
			return false
		}
	}

	if filters.Regex != nil {
		if !filters.Regex.MatchString(name) && !filters.Regex.MatchString(path) {
			return false
		}
	}

	if filters.PlainText != "" {
		term := strings.ToLower(filters.PlainText)
		if !strings.Contains(strings.ToLower(name), term) &&
			!strings.Contains(strings.ToLower(path), term) {
			return false
		}
	}

	return true
}

// matchesDirectoryTerm applies the dir: filter. Directories and files use
// slightly different segment-boundary checks; the asymmetry is load-bearing
// for saved searches, so both variants are kept as-is rather than unified.
func matchesDirectoryTerm(name, path string, isDir bool, term string) bool {
	termLower := strings.ToLower(term)
	pathLower := strings.ToLower(path)

	if isDir {
		return strings.Contains(strings.ToLower(name), termLower) ||
			strings.Contains(pathLower, "/"+termLower+"/") ||
			strings.Contains(pathLower, "\\"+termLower+"\\") ||
			strings.HasSuffix(pathLower, "/"+termLower) ||
			strings.HasSuffix(pathLower, "\\"+termLower)
	}

	return strings.Contains(pathLower, "/"+termLower+"/") ||
		strings.Contains(pathLower, "\\"+termLower+"\\") ||
		strings.Contains(pathLower, "/"+termLower) ||
		strings.Contains(pathLower, "\\"+termLower)
}

// MatchScore ranks a matching node in [0, 1] for result ordering. It is not
// a predicate: a zero score does not imply the node failed Matches.
func MatchScore(name, path string, filters Filters) float64 {
	score := 1.0

	if filters.FileName != "" {
		score *= fuzzy.Score(filters.FileName, name)
	}

	if filters.PlainText != "" {
		score *= plainTextHeuristic(name, path, filters.PlainText)
	}

	return score
}

func plainTextHeuristic(name, path, term string) float64 {
	nameLower := strings.ToLower(name)
	termLower := strings.ToLower(term)

	switch {
	case nameLower == termLower:
		return 1.0
	case strings.HasPrefix(nameLower, termLower):
		return 0.9
	case strings.Contains(nameLower, termLower):
		return 0.7
	case strings.Contains(strings.ToLower(path), termLower):
		return 0.4
	}
	return 0
}
