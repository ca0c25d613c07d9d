// Package index maintains the SQLite file index behind the tree. Folders
// are walked and inserted as flat rows keyed by path; the tree reads roots,
// per-directory children, or the full listing back out of it.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nvail/promptree/internal/pathutil"
	"github.com/nvail/promptree/internal/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path        TEXT PRIMARY KEY,
	parent_path TEXT,
	name        TEXT NOT NULL,
	size        INTEGER,
	mtime       INTEGER,
	is_dir      INTEGER NOT NULL,
	token_count INTEGER,
	fingerprint TEXT
);
CREATE INDEX IF NOT EXISTS idx_files_parent ON files(parent_path);
`

// skipNames are never indexed. Dotfiles in general are indexed and hidden
// or shown at render time; .git and the app's own artifacts stay out of the
// index entirely so they cannot feed change notifications back into it.
var skipNames = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".git":         true,
}

// SkipName reports whether a directory entry with this name is excluded
// from the index. The watcher applies the same rule so the two stay in
// agreement about which subtrees exist.
func SkipName(name string) bool {
	return skipNames[name] || strings.HasPrefix(name, ".promptree.")
}

// Service owns the index database. All methods are safe for use from one
// goroutine at a time; the UI loop is the only caller.
type Service struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the index database at dbPath. Use ":memory:" for
// a throwaway index.
func Open(dbPath string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}
	return &Service{db: db, log: logger}, nil
}

// Close releases the database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// IndexFolder walks root and replaces its rows in the index. The root itself
// is stored with a NULL parent so it shows up as a tree root. Returns the
// number of entries indexed.
func (s *Service) IndexFolder(ctx context.Context, root string) (int64, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", root, err)
	}

	normRoot := pathutil.Normalize(absRoot)
	s.log.Info("indexing folder", zap.String("path", normRoot))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin index tx: %w", err)
	}
	defer tx.Rollback()

	// Drop stale rows for this subtree before re-walking it.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM files WHERE path = ? OR path LIKE ?`,
		normRoot, normRoot+"/%"); err != nil {
		return 0, fmt.Errorf("clear subtree %s: %w", normRoot, err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO files
			(path, parent_path, name, size, mtime, is_dir, token_count, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	var count int64
	insertEntry := func(path string, parent any, info os.FileInfo) error {
		mtime := info.ModTime().Unix()
		fingerprint := fmt.Sprintf("%d_%d", info.Size(), mtime)
		_, err := insert.ExecContext(ctx,
			path, parent, pathutil.Name(path),
			info.Size(), mtime, boolToInt(info.IsDir()), fingerprint)
		if err == nil {
			count++
		}
		return err
	}

	if err := insertEntry(normRoot, nil, info); err != nil {
		return 0, fmt.Errorf("index root %s: %w", normRoot, err)
	}
	if info.IsDir() {
		err = filepath.Walk(absRoot, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				s.log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
				return nil
			}
			if path == absRoot {
				return nil
			}
			if SkipName(fi.Name()) {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			norm := pathutil.Normalize(path)
			return insertEntry(norm, pathutil.ParentDir(norm), fi)
		})
		if err != nil {
			return 0, fmt.Errorf("walk %s: %w", absRoot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit index tx: %w", err)
	}

	s.log.Info("indexed folder", zap.String("path", normRoot), zap.Int64("entries", count))
	return count, nil
}

// Roots returns the indexed top-level entries.
func (s *Service) Roots(ctx context.Context) ([]tree.FileEntry, error) {
	return s.query(ctx, `
		SELECT path, parent_path, name, size, mtime, is_dir, token_count, fingerprint,
		       (SELECT COUNT(*) FROM files f2 WHERE f2.parent_path = files.path)
		FROM files
		WHERE parent_path IS NULL
		ORDER BY is_dir DESC, name ASC`)
}

// Children returns the direct children of parentPath, directories first.
func (s *Service) Children(ctx context.Context, parentPath string) ([]tree.FileEntry, error) {
	return s.query(ctx, `
		SELECT path, parent_path, name, size, mtime, is_dir, token_count, fingerprint,
		       (SELECT COUNT(*) FROM files f2 WHERE f2.parent_path = files.path)
		FROM files
		WHERE parent_path = ?
		ORDER BY is_dir DESC, name ASC`, pathutil.Normalize(parentPath))
}

// Entries returns the entire flat listing, roots first, then path order.
// This feeds the full rebuild after a refresh notification.
func (s *Service) Entries(ctx context.Context) ([]tree.FileEntry, error) {
	return s.query(ctx, `
		SELECT path, parent_path, name, size, mtime, is_dir, token_count, fingerprint,
		       (SELECT COUNT(*) FROM files f2 WHERE f2.parent_path = files.path)
		FROM files
		ORDER BY (parent_path IS NULL) DESC, path ASC`)
}

// Fingerprint returns the stored fingerprint for a path, or "" when the
// path is not indexed.
func (s *Service) Fingerprint(ctx context.Context, path string) (string, error) {
	var fingerprint sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM files WHERE path = ?`,
		pathutil.Normalize(path)).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fingerprint.String, nil
}

// SetTokenCount persists a resolved token count for a file.
func (s *Service) SetTokenCount(ctx context.Context, path string, count int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE files SET token_count = ? WHERE path = ?`,
		count, pathutil.Normalize(path))
	if err != nil {
		return fmt.Errorf("store token count for %s: %w", path, err)
	}
	return nil
}

// RemoveFolder deletes a root and its subtree from the index.
func (s *Service) RemoveFolder(ctx context.Context, root string) error {
	norm := pathutil.Normalize(root)
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE path = ? OR path LIKE ?`, norm, norm+"/%")
	if err != nil {
		return fmt.Errorf("remove %s from index: %w", root, err)
	}
	return nil
}

// Clear wipes the entire index.
func (s *Service) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

func (s *Service) query(ctx context.Context, q string, args ...any) ([]tree.FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	var entries []tree.FileEntry
	for rows.Next() {
		var (
			entry       tree.FileEntry
			parent      sql.NullString
			size        sql.NullInt64
			mtime       sql.NullInt64
			isDir       int
			tokenCount  sql.NullInt64
			fingerprint sql.NullString
			childCount  int64
		)
		if err := rows.Scan(&entry.Path, &parent, &entry.Name, &size, &mtime,
			&isDir, &tokenCount, &fingerprint, &childCount); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		entry.ParentPath = parent.String
		entry.Size = size.Int64
		entry.Mtime = mtime.Int64
		entry.IsDir = isDir != 0
		entry.Fingerprint = fingerprint.String
		entry.TokenCount = tree.Unknown
		if tokenCount.Valid {
			entry.TokenCount = tokenCount.Int64
		}
		entry.ChildCount = childCount
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
