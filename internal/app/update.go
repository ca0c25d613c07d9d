package app

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/clipboard"
	"github.com/nvail/promptree/internal/pathutil"
	"github.com/nvail/promptree/internal/search"
	"github.com/nvail/promptree/internal/tree"
)

// clearAllOverlays resets all overlay states to prevent conflicting modes
func (m *Model) clearAllOverlays() {
	m.showingHelp = false
	m.helpScrollOffset = 0
	m.searching = false
	m.searchInput.Blur()
	m.paletteOpen = false
	m.paletteInput.Blur()
	m.paletteMatches = nil
	m.paletteCursor = 0
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Filesystem events schedule a debounced re-index, then resume waiting
	if _, ok := msg.(FsEventMsg); ok {
		return m, tea.Batch(
			ScheduleFsReload(250*time.Millisecond),
			m.waitForFsEvent(),
		)
	}

	if _, ok := msg.(DebouncedFsEventMsg); ok {
		if m.indexing {
			// Startup indexing still running; it ends in a fresh load anyway
			return m, nil
		}
		m.loadingMessage = "Refreshing..."
		return m, tea.Batch(m.reindexAsync(), SpinnerTick())
	}

	if msg, ok := msg.(FolderIndexedMsg); ok {
		return m.handleFolderIndexed(msg)
	}

	if msg, ok := msg.(RootsLoadedMsg); ok {
		return m.handleRootsLoaded(msg)
	}

	if msg, ok := msg.(ChildrenLoadedMsg); ok {
		return m.handleChildrenLoaded(msg)
	}

	if msg, ok := msg.(RebuildMsg); ok {
		return m.handleRebuild(msg)
	}

	if msg, ok := msg.(TokenTotalMsg); ok {
		if msg.Gen == m.tokenGen {
			m.countingTokens = false
			m.totalTokens = msg.Total
			if msg.Err != nil {
				m.log.Warn("token counting incomplete", zap.Error(msg.Err))
			}
			m.refreshTree()
		}
		return m, nil
	}

	if msg, ok := msg.(PromptCopiedMsg); ok {
		switch {
		case msg.Err != nil:
			m.statusMessage = "Clipboard unavailable"
		case msg.Included == 0:
			m.statusMessage = "Nothing to copy"
		case msg.Included < msg.Total:
			m.statusMessage = "Copied " + strconv.Itoa(msg.Included) + " of " + strconv.Itoa(msg.Total) + " files"
		default:
			m.statusMessage = "Copied " + strconv.Itoa(msg.Included) + " files"
		}
		m.statusMessageTime = time.Now()
		return m, ClearStatusAfter(3 * time.Second)
	}

	if msg, ok := msg.(SearchDebounceMsg); ok {
		if msg.Gen == m.searchGen {
			m.applyQuery(m.searchInput.Value())
		}
		return m, nil
	}

	if _, ok := msg.(SpinnerTickMsg); ok {
		if m.loadingMessage != "" {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(SpinnerChars)
			return m, SpinnerTick()
		}
		return m, nil
	}

	if _, ok := msg.(ClearStatusMsg); ok {
		m.statusMessage = ""
		return m, nil
	}

	if msg, ok := msg.(FileLoadedMsg); ok {
		// Only update if this is still the file we're waiting for
		if msg.Path == m.previewPath {
			m.loading = false
			m.preview.SetContent(msg.Content)
			m.preview.GotoTop()
			m.previewLines = strings.Split(msg.Content, "\n")
			if !msg.ModTime.IsZero() {
				m.previewCache[msg.Path] = CachedPreview{
					Content: msg.Content,
					ModTime: msg.ModTime,
				}
			}
		}
		return m, nil
	}

	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sizeMsg.Width
		m.height = sizeMsg.Height
		paneHeight := m.height - 4
		if !m.ready {
			m.tree = viewport.New(m.LeftPaneWidth()-2, paneHeight)
			m.preview = viewport.New(m.RightPaneWidth()-2, paneHeight)
			m.ready = true
		} else {
			m.tree.Width = m.LeftPaneWidth() - 2
			m.tree.Height = paneHeight
			m.preview.Width = m.RightPaneWidth() - 2
			m.preview.Height = paneHeight
		}
		m.tree.SetContent(m.RenderTree())
		return m, nil
	}

	// Handle help toggle (works from any mode)
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "?" && !m.searching && !m.paletteOpen {
		m.showingHelp = !m.showingHelp
		if !m.showingHelp {
			m.helpScrollOffset = 0
		}
		return m, nil
	}

	if m.showingHelp {
		return m.updateHelp(msg)
	}

	if m.searching {
		return m.updateSearch(msg)
	}

	if m.paletteOpen {
		return m.updatePalette(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.saveConfig()
			return m, tea.Quit

		case "tab":
			if m.activePane == TreePane {
				m.activePane = PreviewPane
			} else {
				m.activePane = TreePane
			}

		case "j", "down":
			if m.activePane == TreePane {
				if m.cursor < len(m.rows)-1 {
					m.cursor++
					m.tree.SetContent(m.RenderTree())
					if m.cursor >= m.tree.YOffset+m.tree.Height {
						m.tree.LineDown(1)
					}
				}
			} else {
				var cmd tea.Cmd
				m.preview, cmd = m.preview.Update(msg)
				cmds = append(cmds, cmd)
			}

		case "k", "up":
			if m.activePane == TreePane {
				if m.cursor > 0 {
					m.cursor--
					m.tree.SetContent(m.RenderTree())
					if m.cursor < m.tree.YOffset {
						m.tree.LineUp(1)
					}
				}
			} else {
				var cmd tea.Cmd
				m.preview, cmd = m.preview.Update(msg)
				cmds = append(cmds, cmd)
			}

		case "enter", "l":
			if m.activePane == TreePane {
				if row := m.currentRow(); row != nil {
					if row.Node.IsDir {
						return m.toggleDir(row.Node.Path)
					}
					var cmd tea.Cmd
					m, cmd = m.UpdatePreview()
					cmds = append(cmds, cmd)
				}
			}

		case "h":
			if m.activePane == TreePane {
				if row := m.currentRow(); row != nil {
					if row.Node.IsDir && row.Node.Expanded {
						m.state.Collapse(row.Node.Path)
						m.refreshTree()
					} else if row.Node.ParentPath != "" {
						// Jump to parent
						m.moveCursorTo(row.Node.ParentPath)
					}
				}
			}

		case " ":
			// Toggle selection of the current node
			if row := m.currentRow(); row != nil {
				m.state.ToggleCheck(row.Node.Path, !row.Node.Checked())
				return m.selectionChanged()
			}

		case "x":
			if m.state.ClearAllSelections() {
				return m.selectionChanged()
			}

		case ".":
			// Toggle dotfile visibility
			m.showDotfiles = !m.showDotfiles
			m.saveConfig()
			m.refreshTree()
			if m.showDotfiles {
				m.statusMessage = "Showing dotfiles"
			} else {
				m.statusMessage = "Hiding dotfiles"
			}
			m.statusMessageTime = time.Now()
			return m, ClearStatusAfter(3 * time.Second)

		case "c":
			// Copy selected paths as @refs; falls back to the cursor entry
			paths := m.copyTargets()
			if err := clipboard.CopyFileRefs(paths); err != nil {
				m.statusMessage = "Clipboard unavailable"
			} else if len(paths) > 0 {
				m.statusMessage = "Copied " + strconv.Itoa(len(paths)) + " refs"
			}
			m.statusMessageTime = time.Now()
			return m, ClearStatusAfter(3 * time.Second)

		case "y":
			// Copy file contents as a prompt; same targets as "c"
			paths := m.copyTargets()
			if len(paths) == 0 {
				m.statusMessage = "Nothing selected"
				m.statusMessageTime = time.Now()
				return m, ClearStatusAfter(3 * time.Second)
			}
			m.loadingMessage = "Assembling prompt..."
			return m, tea.Batch(m.copyPromptAsync(paths), SpinnerTick())

		case "v":
			// Copy the previewed text with ANSI codes and gutters stripped
			if len(m.previewLines) > 0 {
				err := clipboard.CopyLines(m.previewLines, 0, len(m.previewLines)-1, StripLineNumbers)
				if err != nil {
					m.statusMessage = "Clipboard unavailable"
				} else {
					m.statusMessage = "Copied preview text"
				}
				m.statusMessageTime = time.Now()
				return m, ClearStatusAfter(3 * time.Second)
			}

		case "f":
			// Cycle the extension filter
			m.state.Filter = m.state.Filter.Next()
			m.saveConfig()
			m.refreshTree()

		case "R":
			m.loadingMessage = "Re-indexing..."
			return m, tea.Batch(m.reindexAsync(), SpinnerTick())

		case "/":
			m.clearAllOverlays()
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case "ctrl+p", "p":
			m.clearAllOverlays()
			m.paletteOpen = true
			m.paletteInput.Focus()
			m.paletteInput.SetValue("")
			m.paletteMatches = m.paletteCandidatesTop()
			m.paletteCursor = 0
			return m, textinput.Blink

		case "right":
			m.HandlePaneResize("right")

		case "left":
			m.HandlePaneResize("left")
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	divX := m.DividerX()

	// Handle divider dragging
	if m.draggingSplit {
		if msg.Action == tea.MouseActionRelease {
			m.draggingSplit = false
			m.saveConfig()
		} else if msg.Action == tea.MouseActionMotion {
			newRatio := float64(msg.X) / float64(m.width)
			if newRatio < 0.2 {
				newRatio = 0.2
			} else if newRatio > 0.8 {
				newRatio = 0.8
			}
			m.splitRatio = newRatio
			m.tree.Width = m.LeftPaneWidth() - 2
			m.preview.Width = m.RightPaneWidth() - 2
			m.tree.SetContent(m.RenderTree())
		}
		return m, nil
	}

	nearDivider := msg.X >= divX-2 && msg.X <= divX+2
	if msg.Button == tea.MouseButtonLeft && nearDivider {
		m.draggingSplit = true
		return m, nil
	}

	// Auto-switch pane based on mouse position relative to divider
	if msg.X < divX {
		m.activePane = TreePane
	} else {
		m.activePane = PreviewPane
	}

	if msg.Button == tea.MouseButtonWheelUp {
		if m.activePane == TreePane {
			m.tree.LineUp(3)
		} else {
			m.preview.LineUp(3)
		}
	} else if msg.Button == tea.MouseButtonWheelDown {
		if m.activePane == TreePane {
			m.tree.LineDown(3)
		} else {
			m.preview.LineDown(3)
		}
	} else if msg.Button == tea.MouseButtonLeft && m.activePane == TreePane {
		// Account for header (1 line) + border (1 line) + viewport scroll
		headerOffset := 2
		clickedIndex := msg.Y - headerOffset + m.tree.YOffset

		if clickedIndex >= 0 && clickedIndex < len(m.rows) {
			now := time.Now()
			isDoubleClick := clickedIndex == m.lastClickIndex &&
				now.Sub(m.lastClickTime) < 400*time.Millisecond

			if isDoubleClick {
				m.cursor = clickedIndex
				node := m.rows[clickedIndex].Node
				m.lastClickTime = time.Time{} // Reset to prevent triple-click
				m.lastClickIndex = clickedIndex
				if node.IsDir {
					return m.toggleDir(node.Path)
				}
				// Double-click on a file toggles its selection
				m.state.ToggleCheck(node.Path, !node.Checked())
				return m.selectionChanged()
			}

			m.cursor = clickedIndex
			m.tree.SetContent(m.RenderTree())
			var cmd tea.Cmd
			m, cmd = m.UpdatePreview()
			cmds = append(cmds, cmd)
			m.lastClickIndex = clickedIndex
			m.lastClickTime = now
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc":
			m.showingHelp = false
			m.helpScrollOffset = 0
		case "j", "down":
			m.helpScrollOffset++
		case "k", "up":
			if m.helpScrollOffset > 0 {
				m.helpScrollOffset--
			}
		}
	}
	return m, nil
}

// handleFolderIndexed advances the startup indexing queue. Failures are
// reported and skipped so one bad folder does not block the rest.
func (m Model) handleFolderIndexed(msg FolderIndexedMsg) (tea.Model, tea.Cmd) {
	if len(m.pendingFolders) > 0 && m.pendingFolders[0] == msg.Path {
		m.pendingFolders = m.pendingFolders[1:]
	}

	if msg.Err != nil {
		m.log.Warn("indexing failed", zap.String("path", msg.Path), zap.Error(msg.Err))
		m.statusMessage = "Failed to index " + pathutil.Name(msg.Path)
		m.statusMessageTime = time.Now()
	} else {
		m.log.Info("folder indexed",
			zap.String("path", msg.Path), zap.Int64("entries", msg.Count))
	}

	if len(m.pendingFolders) > 0 {
		// Refresh what we have, then keep going
		return m, tea.Batch(m.loadRootsAsync(), m.indexNextFolder())
	}

	m.indexing = false
	m.loadingMessage = ""
	return m, m.loadRootsAsync()
}

// handleRootsLoaded installs the top-level entries and opens the fresh root
// directories so their contents are visible immediately.
func (m Model) handleRootsLoaded(msg RootsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Error("loading roots failed", zap.Error(msg.Err))
		m.statusMessage = "Failed to load tree"
		m.statusMessageTime = time.Now()
		return m, ClearStatusAfter(5 * time.Second)
	}

	nodes, rootPaths := tree.BuildRootTreeState(msg.Entries, pathutil.ParentDir, pathutil.Name)
	m.state.Nodes = nodes
	m.state.RootPaths = rootPaths

	toExpand := tree.ComputePathsToExpand(nil, nil, false, msg.Entries, nodes, nil, pathutil.ParentDir)
	var cmds []tea.Cmd
	for path := range toExpand {
		if gen, needsFetch, ok := m.state.ExpandDir(path); ok && needsFetch {
			cmds = append(cmds, m.loadChildrenAsync(path, gen))
		}
	}

	m.refreshTree()
	return m, tea.Batch(cmds...)
}

// handleChildrenLoaded lands a children fetch. Stale generations are
// discarded inside the state store; a failed fetch reverts the optimistic
// expansion.
func (m Model) handleChildrenLoaded(msg ChildrenLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.state.ChildrenFetchFailed(msg.Path, msg.Gen) {
			m.log.Warn("children fetch failed",
				zap.String("path", msg.Path), zap.Error(msg.Err))
			m.statusMessage = "Failed to open " + pathutil.Name(msg.Path)
			m.statusMessageTime = time.Now()
			m.refreshTree()
			return m, ClearStatusAfter(5 * time.Second)
		}
		return m, nil
	}

	if !m.state.ApplyChildren(msg.Path, msg.Gen, msg.Entries) {
		return m, nil
	}
	m.refreshTree()

	// Children of a checked directory arrive already checked, which changes
	// what the selection totals cover
	if node := m.state.Node(msg.Path); node != nil && node.Checked() {
		return m.selectionChanged()
	}
	return m, nil
}

// handleRebuild swaps in a freshly indexed tree and restores expansion and
// selection for everything that survived the re-index.
func (m Model) handleRebuild(msg RebuildMsg) (tea.Model, tea.Cmd) {
	m.loadingMessage = ""
	if msg.Err != nil {
		m.log.Error("rebuild failed", zap.Error(msg.Err))
		m.statusMessage = "Refresh failed"
		m.statusMessageTime = time.Now()
		return m, ClearStatusAfter(5 * time.Second)
	}

	prevNodes := m.state.Nodes
	var prevExpanded []string
	for _, node := range prevNodes {
		if node.IsDir && node.Expanded {
			prevExpanded = append(prevExpanded, node.Path)
		}
	}
	prevChecked := m.state.SelectedFilePaths()

	newNodes, rootPaths := tree.BuildRootTreeState(msg.Entries, pathutil.ParentDir, pathutil.Name)

	var rootEntries []tree.FileEntry
	for _, entry := range msg.Entries {
		if entry.ParentPath == "" {
			rootEntries = append(rootEntries, entry)
		}
	}

	toExpand := tree.ComputePathsToExpand(
		prevExpanded, prevChecked, msg.IsReIndex,
		rootEntries, newNodes, prevNodes, pathutil.ParentDir)
	for path := range toExpand {
		if node := newNodes[path]; node != nil {
			node.Expanded = true
		}
	}

	// Drop caches for files whose content changed under us
	for path, node := range newNodes {
		if prev, ok := prevNodes[path]; ok && prev.Fingerprint != node.Fingerprint {
			if m.tokens != nil {
				m.tokens.Forget(path)
			}
			m.extractor.Forget(path)
			delete(m.previewCache, path)
		}
	}

	m.state.Nodes = newNodes
	m.state.RootPaths = rootPaths

	for _, path := range prevChecked {
		if node := newNodes[path]; node != nil && !node.IsDir {
			node.Selection = tree.Checked
			tree.UpdateParentSelection(newNodes, path)
		}
	}

	m.refreshTree()
	return m.selectionChanged()
}

// toggleDir expands or collapses a directory. Expansion is optimistic: the
// directory opens immediately and a fetch is issued if its children are not
// loaded yet.
func (m Model) toggleDir(path string) (Model, tea.Cmd) {
	node := m.state.Node(path)
	if node == nil || !node.IsDir {
		return m, nil
	}

	if node.Expanded {
		m.state.Collapse(path)
		m.refreshTree()
		return m, nil
	}

	gen, needsFetch, ok := m.state.ExpandDir(path)
	if !ok {
		return m, nil
	}
	m.refreshTree()
	if needsFetch {
		return m, m.loadChildrenAsync(path, gen)
	}
	return m, nil
}

// selectionChanged re-renders and kicks off a token recount for the new
// selection snapshot.
func (m Model) selectionChanged() (Model, tea.Cmd) {
	m.tokenGen++
	m.countingTokens = m.tokens != nil
	m.refreshTree()
	return m, m.countTokensAsync(m.tokenGen)
}

// copyTargets resolves what the copy keys act on: the checked files, or
// with nothing checked, the entry under the cursor. A directory under the
// cursor stands for its loaded descendant files.
func (m *Model) copyTargets() []string {
	paths := m.state.SelectedFilePaths()
	if len(paths) > 0 {
		return paths
	}
	row := m.currentRow()
	if row == nil {
		return nil
	}
	if !row.Node.IsDir {
		return []string{row.Node.Path}
	}
	files := tree.CollectDescendantFilePaths(m.state.Nodes, row.Node.Path)
	paths = make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// applyQuery parses and applies the search query to the visible rows.
func (m *Model) applyQuery(query string) {
	m.filters = search.ParseQuery(query)
	m.refreshTree()
}

func (m *Model) refreshTree() {
	m.rebuildRows()
	if m.ready {
		m.tree.SetContent(m.RenderTree())
	}
}

// moveCursorTo points the cursor at the row for path, if visible.
func (m *Model) moveCursorTo(path string) {
	for i, row := range m.rows {
		if row.Node.Path == path {
			m.cursor = i
			m.tree.SetContent(m.RenderTree())
			if m.cursor < m.tree.YOffset || m.cursor >= m.tree.YOffset+m.tree.Height {
				m.tree.SetYOffset(m.cursor)
			}
			return
		}
	}
}

