package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"

	"github.com/nvail/promptree/internal/extract"
)

// ErrUnavailable indicates no clipboard utility was found
var ErrUnavailable = errors.New("clipboard unavailable - install xclip, xsel, or wl-clipboard")

// IsAvailable returns true if clipboard operations are supported
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// CopyFileRefs copies the selected paths as @-prefixed references, one per
// line, for pasting into a chat prompt.
func CopyFileRefs(paths []string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if len(paths) == 0 {
		return nil
	}
	refs := make([]string, len(paths))
	for i, path := range paths {
		refs[i] = "@" + path
	}
	return clipboard.WriteAll(strings.Join(refs, "\n"))
}

// CopyPrompt assembles the extracted file contents into fenced blocks and
// copies the result. Files that failed extraction are listed at the end so
// the reader knows what is missing. Returns the number of files included.
func CopyPrompt(files []extract.FileContent) (int, error) {
	if clipboard.Unsupported {
		return 0, ErrUnavailable
	}
	prompt, included := BuildPrompt(files)
	if included == 0 {
		return 0, nil
	}
	return included, clipboard.WriteAll(prompt)
}

// BuildPrompt renders files as markdown fenced blocks headed by their path.
func BuildPrompt(files []extract.FileContent) (string, int) {
	var b strings.Builder
	var failed []string
	included := 0

	for _, file := range files {
		if file.Err != nil {
			failed = append(failed, file.Path)
			continue
		}
		fmt.Fprintf(&b, "%s\n```\n%s", file.Path, file.Text)
		if !strings.HasSuffix(file.Text, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
		included++
	}

	if len(failed) > 0 {
		b.WriteString("Could not read:\n")
		for _, path := range failed {
			fmt.Fprintf(&b, "- %s\n", path)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n", included
}

// CopyRaw copies raw text to clipboard without any formatting
func CopyRaw(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// CopyLines copies lines from a slice, stripping ANSI codes and line numbers
// start and end are inclusive indices
func CopyLines(lines []string, start, end int, stripLineNumbers func(string) string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}

	if len(lines) == 0 || start < 0 || end < 0 {
		return nil // Nothing to copy, not an error
	}

	if start > end {
		start, end = end, start
	}

	// Clamp to valid range
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}

	// Extract selected lines, stripping ANSI codes and line numbers
	var cleanLines []string
	for i := start; i <= end; i++ {
		line := lines[i]
		// Strip ANSI codes first
		clean := ansi.Strip(line)
		// Strip line number prefix if function provided
		if stripLineNumbers != nil {
			clean = stripLineNumbers(clean)
		}
		cleanLines = append(cleanLines, clean)
	}

	return clipboard.WriteAll(strings.Join(cleanLines, "\n"))
}
