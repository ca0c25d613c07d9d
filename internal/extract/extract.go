// Package extract reads file text for previews, prompts, and token
// counting. Extracted text is held in a size-bounded LRU cache validated by
// the file's index fingerprint, so an unchanged file is read at most once.
package extract

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/pathutil"
)

// maxCacheBytes bounds the in-memory text cache at roughly 100MB.
const maxCacheBytes = 100 << 20

// FingerprintFunc reports the current index fingerprint for a path. An empty
// fingerprint means the path is not indexed; the text is then served
// uncached.
type FingerprintFunc func(ctx context.Context, path string) (string, error)

type cacheEntry struct {
	fingerprint string
	text        string
	lastUsed    int64
}

// Extractor reads and caches file text.
type Extractor struct {
	fingerprint FingerprintFunc
	log         *zap.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	total   int
	clock   int64
}

// New builds an Extractor over the given fingerprint source.
func New(fingerprint FingerprintFunc, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		fingerprint: fingerprint,
		log:         logger,
		entries:     make(map[string]*cacheEntry),
	}
}

// Text returns the UTF-8 text of the file at path. Binary files and files
// that are not valid UTF-8 are rejected.
func (e *Extractor) Text(ctx context.Context, path string) (string, error) {
	path = pathutil.Normalize(path)

	fingerprint := ""
	if e.fingerprint != nil {
		var err error
		fingerprint, err = e.fingerprint(ctx, path)
		if err != nil {
			return "", err
		}
	}

	if fingerprint != "" {
		if text, ok := e.cached(path, fingerprint); ok {
			e.log.Debug("text cache hit", zap.String("path", path))
			return text, nil
		}
	}

	text, err := readText(path)
	if err != nil {
		return "", err
	}

	if fingerprint != "" {
		e.store(path, fingerprint, text)
	}
	return text, nil
}

// FileContent is one file's extraction outcome. Err is set per file so a
// multi-file read can report partial results.
type FileContent struct {
	Path string
	Text string
	Err  error
}

// Contents extracts every path, continuing past individual failures.
func (e *Extractor) Contents(ctx context.Context, paths []string) []FileContent {
	results := make([]FileContent, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, FileContent{Path: path, Err: err})
			continue
		}
		text, err := e.Text(ctx, path)
		if err != nil {
			e.log.Warn("extraction failed", zap.String("path", path), zap.Error(err))
		}
		results = append(results, FileContent{Path: path, Text: text, Err: err})
	}
	return results
}

// Forget drops a path's cached text, forcing a re-read on next use.
func (e *Extractor) Forget(path string) {
	path = pathutil.Normalize(path)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evict(path)
}

// Reset drops the whole cache.
func (e *Extractor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = make(map[string]*cacheEntry)
	e.total = 0
}

func (e *Extractor) cached(path, fingerprint string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[path]
	if !ok {
		return "", false
	}
	if entry.fingerprint != fingerprint {
		// The file changed under the cache.
		e.evict(path)
		return "", false
	}
	e.clock++
	entry.lastUsed = e.clock
	return entry.text, true
}

func (e *Extractor) store(path, fingerprint, text string) {
	if len(text) > maxCacheBytes {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.evict(path)
	e.clock++
	e.entries[path] = &cacheEntry{
		fingerprint: fingerprint,
		text:        text,
		lastUsed:    e.clock,
	}
	e.total += len(text)

	for e.total > maxCacheBytes {
		lruPath := ""
		var lruUsed int64
		for p, entry := range e.entries {
			if lruPath == "" || entry.lastUsed < lruUsed {
				lruPath, lruUsed = p, entry.lastUsed
			}
		}
		if lruPath == "" || lruPath == path {
			break
		}
		e.log.Debug("evicting cached text", zap.String("path", lruPath))
		e.evict(lruPath)
	}
}

// evict removes path from the cache. Caller holds the lock.
func (e *Extractor) evict(path string) {
	if entry, ok := e.entries[path]; ok {
		e.total -= len(entry.text)
		delete(e.entries, path)
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", nil
	}
	if looksBinary(data) {
		return "", fmt.Errorf("%s: binary file", path)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: not valid UTF-8", path)
	}
	return string(data), nil
}

// looksBinary mirrors filetype.IsBinary but works on bytes already read.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	for i := 0; i < n; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
