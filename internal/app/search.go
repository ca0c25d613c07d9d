package app

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/nvail/promptree/internal/search"
)

const searchDebounce = 300 * time.Millisecond

// maxPaletteResults caps the quick-open list
const maxPaletteResults = 50

// updateSearch handles input while the search box is focused. The query is
// applied after a debounce window; only the latest scheduled generation
// lands.
func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			// Cancel: drop the query and show the full tree again
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.applyQuery("")
			return m, nil

		case "enter":
			// Keep the filters, leave the box
			m.searching = false
			m.searchInput.Blur()
			m.applyQuery(m.searchInput.Value())
			return m, nil
		}
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	if m.searchInput.Value() != before {
		m.searchGen++
		return m, tea.Batch(cmd, ScheduleSearch(m.searchGen, searchDebounce))
	}
	return m, cmd
}

// updatePalette handles the quick-open overlay.
func (m Model) updatePalette(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.paletteOpen = false
			m.paletteInput.Blur()
			return m, nil

		case "enter":
			if m.paletteCursor < len(m.paletteMatches) {
				target := m.paletteMatches[m.paletteCursor].Path
				m.paletteOpen = false
				m.paletteInput.Blur()
				return m.jumpToFile(target)
			}
			m.paletteOpen = false
			m.paletteInput.Blur()
			return m, nil

		case "down", "ctrl+n":
			if m.paletteCursor < len(m.paletteMatches)-1 {
				m.paletteCursor++
			}
			return m, nil

		case "up", "ctrl+p":
			if m.paletteCursor > 0 {
				m.paletteCursor--
			}
			return m, nil
		}
	}

	before := m.paletteInput.Value()
	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(msg)

	if m.paletteInput.Value() != before {
		m.paletteMatches = m.paletteSearch(m.paletteInput.Value())
		m.paletteCursor = 0
	}
	return m, cmd
}

// paletteCandidates returns every loaded file path, sorted for determinism.
func (m Model) paletteCandidates() []string {
	var files []string
	for _, node := range m.state.Nodes {
		if !node.IsDir {
			files = append(files, node.Path)
		}
	}
	sort.Strings(files)
	return files
}

// paletteCandidatesTop is the unfiltered view shown before any input.
func (m Model) paletteCandidatesTop() []PaletteMatch {
	files := m.paletteCandidates()
	if len(files) > maxPaletteResults {
		files = files[:maxPaletteResults]
	}
	matches := make([]PaletteMatch, len(files))
	for i, path := range files {
		matches[i] = PaletteMatch{Path: path, Display: path}
	}
	return matches
}

func (m Model) paletteSearch(pattern string) []PaletteMatch {
	if pattern == "" {
		return m.paletteCandidatesTop()
	}

	candidates := m.paletteCandidates()
	ranked := fuzzy.Find(pattern, candidates)
	if len(ranked) > maxPaletteResults {
		ranked = ranked[:maxPaletteResults]
	}

	matches := make([]PaletteMatch, len(ranked))
	for i, match := range ranked {
		matches[i] = PaletteMatch{
			Path:           match.Str,
			Display:        match.Str,
			MatchedIndexes: match.MatchedIndexes,
		}
	}
	return matches
}

// rankedMatches orders the visible matching files by score for the search
// overlay. The tree itself keeps structural order; this is where the
// best-scoring hits surface.
func (m Model) rankedMatches(limit int) []string {
	if m.filters.IsEmpty() {
		return nil
	}

	type scored struct {
		path  string
		score float64
	}
	var results []scored
	for _, row := range m.rows {
		if row.Node.IsDir {
			continue
		}
		results = append(results, scored{
			path:  row.Node.Path,
			score: search.MatchScore(row.Node.Name, row.Node.Path, m.filters),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.path
	}
	return paths
}

// jumpToFile expands the ancestors of path and moves the cursor onto it.
// When the active filters hide the file, they are dropped first.
func (m Model) jumpToFile(path string) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	node := m.state.Node(path)
	if node == nil {
		return m, nil
	}

	for parent := node.ParentPath; parent != ""; {
		parentNode := m.state.Node(parent)
		if parentNode == nil {
			break
		}
		if gen, needsFetch, ok := m.state.ExpandDir(parent); ok && needsFetch {
			cmds = append(cmds, m.loadChildrenAsync(parent, gen))
		}
		parent = parentNode.ParentPath
	}

	m.rebuildRows()
	if !m.rowVisible(path) {
		// Filtered out; clear the query so the target can be shown
		m.searchInput.SetValue("")
		m.applyQuery("")
	}
	m.refreshTree()
	m.moveCursorTo(path)

	var cmd tea.Cmd
	m, cmd = m.UpdatePreview()
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) rowVisible(path string) bool {
	for _, row := range m.rows {
		if row.Node.Path == path {
			return true
		}
	}
	return false
}
