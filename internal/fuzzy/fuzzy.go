// Package fuzzy scores how well a short query matches a file path. The
// scoring favors filename matches over path matches and prefixes over
// arbitrary substrings, which keeps search results ordered the way users
// expect when typing a few characters of a file name.
package fuzzy

import (
	"strings"
)

// DefaultThreshold is the score a candidate must exceed to count as a match.
const DefaultThreshold = 0.3

// Score returns a similarity score in [0, 1] between query and target.
// Target is usually a full path; the filename component dominates scoring.
func Score(query, target string) float64 {
	if query == "" || target == "" {
		return 0
	}

	queryLower := strings.ToLower(query)
	targetLower := strings.ToLower(target)

	if queryLower == targetLower {
		return 1.0
	}

	filename := targetLower
	if idx := strings.LastIndexAny(targetLower, "/\\"); idx >= 0 {
		filename = targetLower[idx+1:]
	}
	nameNoExt := filename
	if dot := strings.LastIndex(filename, "."); dot > 0 {
		nameNoExt = filename[:dot]
	}

	queryLen := float64(len([]rune(queryLower)))
	filenameLen := float64(len([]rune(filename)))

	if queryLower == nameNoExt {
		return 0.95
	}

	if strings.HasPrefix(filename, queryLower) {
		return 0.9*(queryLen/filenameLen) + 0.1
	}

	if strings.HasPrefix(nameNoExt, queryLower) {
		nameNoExtLen := float64(len([]rune(nameNoExt)))
		return 0.85*(queryLen/nameNoExtLen) + 0.1
	}

	if pos := strings.Index(filename, queryLower); pos >= 0 {
		position := float64(len([]rune(filename[:pos])))
		coverage := queryLen / filenameLen
		score := 0.8 * coverage * (1 - 0.5*position/filenameLen)
		if score < 0.4 {
			return 0.4
		}
		return score
	}

	if pos := strings.Index(targetLower, queryLower); pos >= 0 {
		targetLen := float64(len([]rune(targetLower)))
		coverage := queryLen / targetLen
		score := 0.5 * coverage
		if score < 0.3 {
			return 0.3
		}
		return score
	}

	// No direct containment: fall back to edit distance against the filename.
	distance := editDistance(queryLower, filename)
	maxLen := queryLen
	if filenameLen > maxLen {
		maxLen = filenameLen
	}
	score := 0.8 * (1 - float64(distance)/maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// Match reports whether query matches target above the given threshold.
// The comparison is strict: a score exactly at the threshold does not match.
func Match(query, target string, threshold float64) bool {
	return Score(query, target) > threshold
}

// editDistance computes the Levenshtein distance between two strings using
// a two-row rolling buffer.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
