package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/clipboard"
)

// indexNextFolder returns a command that indexes the head of the pending
// folder queue. Folders are processed one at a time; a failure does not stop
// the rest of the queue.
func (m Model) indexNextFolder() tea.Cmd {
	if len(m.pendingFolders) == 0 {
		return nil
	}
	svc := m.svc
	folder := m.pendingFolders[0]
	return func() tea.Msg {
		count, err := svc.IndexFolder(context.Background(), folder)
		return FolderIndexedMsg{Path: folder, Count: count, Err: err}
	}
}

// loadRootsAsync returns a command that loads the indexed top-level entries
func (m Model) loadRootsAsync() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		entries, err := svc.Roots(context.Background())
		return RootsLoadedMsg{Entries: entries, Err: err}
	}
}

// loadChildrenAsync returns a command that fetches a directory's children.
// The generation travels with the response so the state store can discard it
// if the directory was collapsed or re-expanded in the meantime.
func (m Model) loadChildrenAsync(path string, gen uint64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		entries, err := svc.Children(context.Background(), path)
		return ChildrenLoadedMsg{Path: path, Gen: gen, Entries: entries, Err: err}
	}
}

// reindexAsync returns a command that re-walks every root folder and then
// reads the full listing back, which the update loop turns into a rebuilt
// tree. Per-folder failures are logged and skipped.
func (m Model) reindexAsync() tea.Cmd {
	svc := m.svc
	log := m.log
	roots := append([]string(nil), m.state.RootPaths...)
	return func() tea.Msg {
		ctx := context.Background()
		for _, root := range roots {
			if _, err := svc.IndexFolder(ctx, root); err != nil {
				log.Warn("re-index failed", zap.String("path", root), zap.Error(err))
			}
		}
		entries, err := svc.Entries(ctx)
		return RebuildMsg{Entries: entries, IsReIndex: true, Err: err}
	}
}

// countTokensAsync returns a command that resolves the token total for the
// current selection snapshot. Resolved per-file counts are written back to
// the index so they survive restarts.
func (m Model) countTokensAsync(gen int) tea.Cmd {
	if m.tokens == nil {
		return nil
	}
	paths := m.state.SelectedFilePaths()
	tokens := m.tokens
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		total, err := tokens.CountAll(ctx, paths, 4)
		for _, path := range paths {
			if count, ok := tokens.Peek(path); ok {
				svc.SetTokenCount(ctx, path, count)
			}
		}
		return TokenTotalMsg{Gen: gen, Total: total, Err: err}
	}
}

// copyPromptAsync returns a command that extracts the given files and
// copies the assembled prompt to the clipboard.
func (m Model) copyPromptAsync(paths []string) tea.Cmd {
	extractor := m.extractor
	return func() tea.Msg {
		files := extractor.Contents(context.Background(), paths)
		included, err := clipboard.CopyPrompt(files)
		return PromptCopiedMsg{Included: included, Total: len(paths), Err: err}
	}
}
