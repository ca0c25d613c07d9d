// Package filetype classifies files by extension for the category filter
// and detects binary content for preview and extraction.
package filetype

import (
	"os"
	"path/filepath"
	"strings"
)

// FilterType is a category the tree can be narrowed to.
type FilterType int

const (
	FilterAll FilterType = iota
	FilterCode
	FilterDocs
	FilterConfig
	FilterData
	FilterImages
)

// filterOrder is the cycle order used by the filter toggle key.
var filterOrder = []FilterType{FilterAll, FilterCode, FilterDocs, FilterConfig, FilterData, FilterImages}

// Next returns the filter that follows t in cycle order.
func (t FilterType) Next() FilterType {
	for i, ft := range filterOrder {
		if ft == t {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return FilterAll
}

func (t FilterType) String() string {
	switch t {
	case FilterCode:
		return "Code"
	case FilterDocs:
		return "Docs"
	case FilterConfig:
		return "Config"
	case FilterData:
		return "Data"
	case FilterImages:
		return "Images"
	default:
		return "All"
	}
}

// extensionCategories maps lowercase extensions to their filter category.
var extensionCategories = map[string]FilterType{
	// Code
	".go":    FilterCode,
	".rs":    FilterCode,
	".py":    FilterCode,
	".js":    FilterCode,
	".jsx":   FilterCode,
	".ts":    FilterCode,
	".tsx":   FilterCode,
	".c":     FilterCode,
	".h":     FilterCode,
	".cpp":   FilterCode,
	".hpp":   FilterCode,
	".cs":    FilterCode,
	".java":  FilterCode,
	".kt":    FilterCode,
	".rb":    FilterCode,
	".php":   FilterCode,
	".swift": FilterCode,
	".sh":    FilterCode,
	".sql":   FilterCode,
	".lua":   FilterCode,
	".zig":   FilterCode,

	// Docs
	".md":   FilterDocs,
	".mdx":  FilterDocs,
	".rst":  FilterDocs,
	".txt":  FilterDocs,
	".adoc": FilterDocs,
	".org":  FilterDocs,

	// Config
	".json":       FilterConfig,
	".yaml":       FilterConfig,
	".yml":        FilterConfig,
	".toml":       FilterConfig,
	".ini":        FilterConfig,
	".env":        FilterConfig,
	".properties": FilterConfig,
	".lock":       FilterConfig,

	// Data
	".csv":     FilterData,
	".tsv":     FilterData,
	".parquet": FilterData,
	".xml":     FilterData,
	".ndjson":  FilterData,
	".db":      FilterData,
	".sqlite":  FilterData,

	// Images
	".png":  FilterImages,
	".jpg":  FilterImages,
	".jpeg": FilterImages,
	".gif":  FilterImages,
	".webp": FilterImages,
	".svg":  FilterImages,
	".ico":  FilterImages,
}

// MatchesFilter reports whether a node passes the category filter.
// Directories always pass so the containers of matching files stay visible.
func MatchesFilter(path string, isDir bool, filter FilterType) bool {
	if filter == FilterAll || isDir {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return extensionCategories[ext] == filter
}

// IsTextPath reports whether a file looks like text, first by extension
// category and then by sniffing the leading bytes for NULs.
func IsTextPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch extensionCategories[ext] {
	case FilterCode, FilterDocs, FilterConfig:
		return true
	case FilterImages:
		return ext == ".svg"
	}
	return !IsBinary(path)
}

// IsBinary checks whether a file appears to be binary by looking for null
// bytes in its first 512 bytes.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}
