package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/config"
	"github.com/nvail/promptree/internal/extract"
	"github.com/nvail/promptree/internal/filetype"
	"github.com/nvail/promptree/internal/index"
	"github.com/nvail/promptree/internal/search"
	"github.com/nvail/promptree/internal/tokencount"
	"github.com/nvail/promptree/internal/tree"
)

// NewModel creates and initializes a new application model. folders are the
// paths to index on startup; the first one is also where per-project config
// is read from.
func NewModel(folders []string, svc *index.Service, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	rootPath := "."
	if len(folders) > 0 {
		rootPath = folders[0]
	}
	absPath, _ := filepath.Abs(rootPath)

	// Load user config
	cfg := config.Load(absPath)

	// Determine split ratio (config or default)
	splitRatio := 0.5
	if cfg.SplitRatio >= 0.2 && cfg.SplitRatio <= 0.8 {
		splitRatio = cfg.SplitRatio
	}

	state := tree.NewState()
	state.Filter = filterFromConfig(cfg.Filter)
	showDotfiles := cfg.ShowDotfiles

	extractor := extract.New(svc.Fingerprint, logger)

	var tokens *tokencount.Cache
	if counter, err := tokencount.NewCounter(); err == nil {
		tokens = tokencount.NewCache(counter, extractor.Text)
	} else {
		logger.Warn("tokenizer unavailable, token totals disabled", zap.Error(err))
	}

	// Set up search input, restoring the last session's query
	ti := textinput.New()
	ti.Placeholder = "file:name dir:name text or /regex/..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(cfg.LastQuery)

	pi := textinput.New()
	pi.Placeholder = "Jump to file..."
	pi.CharLimit = 100
	pi.Width = 40

	// Set up file watcher over the indexed folders
	watcher, _ := fsnotify.NewWatcher()
	if watcher != nil {
		for _, folder := range folders {
			abs, err := filepath.Abs(folder)
			if err != nil {
				continue
			}
			watchRecursive(watcher, abs)
		}
	}

	m := Model{
		log:          logger,
		svc:          svc,
		state:        state,
		extractor:    extractor,
		tokens:       tokens,
		rootPath:     absPath,
		activePane:   TreePane,
		splitRatio:   splitRatio,
		showDotfiles: showDotfiles,
		previewCache: make(map[string]CachedPreview),
		searchInput:  ti,
		paletteInput: pi,
		filters:      search.ParseQuery(cfg.LastQuery),
		watcher:      watcher,
	}

	for _, folder := range folders {
		if abs, err := filepath.Abs(folder); err == nil {
			m.pendingFolders = append(m.pendingFolders, abs)
		}
	}
	if len(m.pendingFolders) > 0 {
		m.indexing = true
		m.loadingMessage = "Indexing..."
	}

	return m
}

func filterFromConfig(name string) filetype.FilterType {
	candidates := []filetype.FilterType{
		filetype.FilterAll, filetype.FilterCode, filetype.FilterDocs,
		filetype.FilterConfig, filetype.FilterData, filetype.FilterImages,
	}
	for _, f := range candidates {
		if f.String() == name {
			return f
		}
	}
	return filetype.FilterAll
}

// watchRecursive adds root and every subdirectory the indexer would visit
// to the watcher, so a change anywhere in the indexed tree triggers a
// refresh.
func watchRecursive(watcher *fsnotify.Watcher, root string) {
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && index.SkipName(info.Name()) {
				return filepath.SkipDir
			}
			watcher.Add(path)
		}
		return nil
	})
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForFsEvent()}
	if m.indexing {
		cmds = append(cmds, m.indexNextFolder(), SpinnerTick())
	} else {
		cmds = append(cmds, m.loadRootsAsync())
	}
	return tea.Batch(cmds...)
}

// waitForFsEvent returns a command that waits for the next filesystem event
func (m Model) waitForFsEvent() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			// Drain any additional events that came in
			for {
				select {
				case <-m.watcher.Events:
				default:
					return FsEventMsg{}
				}
			}
		case <-m.watcher.Errors:
			return nil
		}
	}
}

// rebuildRows recomputes the visible rows from the tree state and the active
// filters. Depth falls out of the pre-order listing: a node's parent always
// appears before it.
func (m *Model) rebuildRows() {
	flat := tree.Flatten(m.state.RootPaths, m.state.Nodes, m.rowPredicate())

	depths := make(map[string]int, len(flat))
	rows := make([]Row, len(flat))
	for i, node := range flat {
		depth := 0
		if parentDepth, ok := depths[node.ParentPath]; ok {
			depth = parentDepth + 1
		}
		depths[node.Path] = depth
		rows[i] = Row{Node: node, Depth: depth}
	}
	m.rows = rows

	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) rowPredicate() tree.Predicate {
	filters := m.filters
	filter := m.state.Filter
	nodes := m.state.Nodes
	showDotfiles := m.showDotfiles
	if filters.IsEmpty() && filter == filetype.FilterAll && showDotfiles {
		return tree.All
	}
	return func(n *tree.Node) bool {
		if !showDotfiles && hiddenDotfile(nodes, n) {
			return false
		}
		if !filetype.MatchesFilter(n.Path, n.IsDir, filter) {
			return false
		}
		if filters.IsEmpty() {
			return true
		}
		return search.Matches(n.Name, n.Path, n.IsDir, filters)
	}
}

// hiddenDotfile reports whether n or any ancestor below a root is
// dot-named. The ancestor check matters because a visible descendant would
// otherwise drag its dot-named container back into view. Roots are exempt:
// an explicitly indexed dot directory still shows its contents.
func hiddenDotfile(nodes tree.NodesMap, n *tree.Node) bool {
	for node := n; node != nil && node.ParentPath != ""; node = nodes[node.ParentPath] {
		if strings.HasPrefix(node.Name, ".") {
			return true
		}
	}
	return false
}

// currentRow returns the row under the cursor, or nil when the list is empty.
func (m *Model) currentRow() *Row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

// saveConfig persists the current view preferences next to the first root.
func (m *Model) saveConfig() {
	config.Save(m.rootPath, config.Config{
		SplitRatio:   m.splitRatio,
		ShowDotfiles: m.showDotfiles,
		Filter:       m.state.Filter.String(),
		LastQuery:    m.searchInput.Value(),
	})
}

// LeftPaneWidth returns the width of the left (tree) pane
func (m Model) LeftPaneWidth() int {
	// Total usable width minus borders and gap
	usable := m.width - 4 // 2 for each pane's border
	return int(float64(usable) * m.splitRatio)
}

// RightPaneWidth returns the width of the right (preview) pane
func (m Model) RightPaneWidth() int {
	usable := m.width - 4
	return usable - m.LeftPaneWidth()
}

// DividerX returns the X position of the divider between panes
func (m Model) DividerX() int {
	return m.LeftPaneWidth() + 2 // +2 for left pane border
}

// HandlePaneResize adjusts the split ratio between left and right panes
func (m *Model) HandlePaneResize(direction string) {
	switch direction {
	case "left":
		if m.splitRatio > 0.2 {
			m.splitRatio -= 0.05
		}
	case "right":
		if m.splitRatio < 0.8 {
			m.splitRatio += 0.05
		}
	}
	m.tree.Width = m.LeftPaneWidth() - 2
	m.preview.Width = m.RightPaneWidth() - 2
	m.tree.SetContent(m.RenderTree())
	m.saveConfig()
}
