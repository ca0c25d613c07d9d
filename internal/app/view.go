package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvail/promptree/internal/filetype"
	"github.com/nvail/promptree/internal/pathutil"
	"github.com/nvail/promptree/internal/tree"
	"github.com/nvail/promptree/internal/ui/styles"
)

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Header
	headerStyle := styles.Header.Copy().Padding(0, 1)

	header := headerStyle.Render("promptree") +
		styles.Faint.Render(" "+m.rootPath)

	// Add loading spinner to header if loading
	if m.loadingMessage != "" {
		spinner := string(SpinnerChars[m.spinnerFrame])
		loadingIndicator := styles.StatusWarning.Render(spinner + " " + m.loadingMessage)
		headerLen := lipgloss.Width(header)
		loadingLen := lipgloss.Width(loadingIndicator)
		padding := m.width - headerLen - loadingLen - 2
		if padding > 0 {
			header = header + strings.Repeat(" ", padding) + loadingIndicator
		} else {
			header = header + " " + loadingIndicator
		}
	}

	paneHeight := m.height - 4 // header(1) + footer(1) + borders(2)
	footerStyle := styles.Faint

	leftWidth := m.LeftPaneWidth()
	rightWidth := m.RightPaneWidth()

	var treeStyle lipgloss.Style
	if m.activePane == TreePane {
		treeStyle = styles.ActiveBorder()
	} else {
		treeStyle = styles.InactiveBorder()
	}
	treeStyle = treeStyle.
		Width(leftWidth).
		Height(paneHeight).
		Padding(0, 1)

	treePane := treeStyle.Render(m.tree.View())

	var previewStyle lipgloss.Style
	if m.activePane == PreviewPane {
		previewStyle = styles.ActiveBorder()
	} else {
		previewStyle = styles.InactiveBorder()
	}
	previewStyle = previewStyle.
		Width(rightWidth).
		Height(paneHeight).
		Padding(0, 1)

	previewPane := previewStyle.Render(m.preview.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, treePane, previewPane)
	footer := m.renderSelectionStatus() +
		footerStyle.Render("space select  / search  p jump  f filter  y prompt  c refs  q quit  ? help")

	// Prepend status message to footer if present and recent
	if m.statusMessage != "" && time.Since(m.statusMessageTime) < 5*time.Second {
		footer = styles.StatusSuccess.Render(m.statusMessage) + "  " + footer
	}

	mainView := header + "\n" + body + "\n" + footer

	if m.showingHelp {
		return m.renderHelpOverlay(mainView)
	}
	if m.searching {
		return m.renderSearchOverlay(mainView)
	}
	if m.paletteOpen {
		return m.renderPaletteOverlay(mainView)
	}

	return mainView
}

// renderSelectionStatus summarizes the selection and the active filter for
// the footer.
func (m Model) renderSelectionStatus() string {
	var parts []string

	selected := len(m.state.SelectedFilePaths())
	if selected > 0 {
		tokenPart := ""
		if m.countingTokens {
			tokenPart = " ~ tokens"
		} else if m.tokens != nil {
			tokenPart = fmt.Sprintf(" %s tokens", formatCount(m.totalTokens))
		}
		parts = append(parts,
			styles.StatusSuccess.Render(fmt.Sprintf("%d selected%s", selected, tokenPart)))
	}

	if m.state.Filter != filetype.FilterAll {
		parts = append(parts, styles.Branch.Render("["+m.state.Filter.String()+"]"))
	}

	if !m.filters.IsEmpty() {
		parts = append(parts, styles.Branch.Render("/"+m.searchInput.Value()))
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ") + "  "
}

// RenderTree renders the tree pane content
func (m Model) RenderTree() string {
	var b strings.Builder
	tokenStyle := lipgloss.NewStyle().Foreground(styles.TextFaint)

	for i, row := range m.rows {
		node := row.Node
		indent := strings.Repeat("  ", row.Depth)

		checkbox := "[ ] "
		if node.Checked() {
			checkbox = "[x] "
		} else if node.Indeterminate() {
			checkbox = "[~] "
		}

		icon := "  "
		if node.IsDir {
			if node.Expanded {
				icon = "v "
			} else if node.HasChildren {
				icon = "> "
			} else {
				icon = "- "
			}
		}

		line := indent + checkbox + icon + node.Name

		// Token badge for files that have been counted
		if !node.IsDir {
			if count, ok := m.tokenBadge(node); ok {
				line += " " + tokenStyle.Render(count)
			}
		}

		if i == m.cursor {
			line = styles.Selected.Render(line)
		} else if node.IsDir {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}

		b.WriteString(line + "\n")
	}

	return b.String()
}

// tokenBadge prefers the live cache over the persisted count.
func (m Model) tokenBadge(node *tree.Node) (string, bool) {
	if m.tokens != nil {
		if count, ok := m.tokens.Peek(node.Path); ok {
			return formatCount(count), true
		}
	}
	if node.TokenCount != tree.Unknown {
		return formatCount(int(node.TokenCount)), true
	}
	return "", false
}

// formatCount renders token counts compactly (1234 -> 1.2k)
func formatCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// renderSearchOverlay draws the search box over the main view
func (m Model) renderSearchOverlay(background string) string {
	titleStyle := styles.Title
	metaStyle := styles.Faint

	var content strings.Builder
	content.WriteString(titleStyle.Render("Filter Tree"))
	content.WriteString("\n\n")
	content.WriteString(m.searchInput.View())
	content.WriteString("\n\n")
	content.WriteString(metaStyle.Render(fmt.Sprintf("%d matches", len(m.rows))))
	for _, path := range m.rankedMatches(5) {
		content.WriteString("\n")
		content.WriteString(metaStyle.Render("  " + pathutil.Name(path)))
	}
	content.WriteString("\n")
	content.WriteString(metaStyle.Render("file:<name> dir:<name> or free text; regex auto-detected"))
	content.WriteString("\n")
	content.WriteString(metaStyle.Render("[enter] apply  [esc] clear"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(1, 2).
		Width(64)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content.String()),
	)
}

// renderPaletteOverlay draws the quick-open picker
func (m Model) renderPaletteOverlay(background string) string {
	titleStyle := styles.Title
	selectedStyle := styles.Selected
	normalStyle := styles.Normal
	metaStyle := styles.Faint

	var lines []string
	lines = append(lines, titleStyle.Render("Jump to File"))
	lines = append(lines, "")
	lines = append(lines, m.paletteInput.View())
	lines = append(lines, "")

	maxVisible := m.height - 14
	if maxVisible < 5 {
		maxVisible = 5
	}

	start := 0
	if m.paletteCursor >= maxVisible {
		start = m.paletteCursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(m.paletteMatches) {
		end = len(m.paletteMatches)
	}

	for i := start; i < end; i++ {
		match := m.paletteMatches[i]
		display := match.Display
		if len(display) > 70 {
			display = "..." + display[len(display)-67:]
		}
		if i == m.paletteCursor {
			lines = append(lines, selectedStyle.Render(display))
		} else {
			lines = append(lines, normalStyle.Render(display))
		}
	}

	if len(m.paletteMatches) == 0 {
		lines = append(lines, metaStyle.Render("no matches"))
	}

	lines = append(lines, "")
	lines = append(lines, metaStyle.Render("[up/down] navigate  [enter] open  [esc] cancel"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(1, 2).
		Width(78).
		MaxHeight(m.height - 4)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}

// renderHelpOverlay draws the key binding reference
func (m Model) renderHelpOverlay(background string) string {
	titleStyle := styles.Title
	keyStyle := styles.Key
	descStyle := styles.Muted

	row := func(key, desc string) string {
		return keyStyle.Render(fmt.Sprintf("  %-12s", key)) + descStyle.Render(desc)
	}

	lines := []string{
		titleStyle.Render("Keys"),
		"",
		row("j/k", "move cursor"),
		row("enter/l", "open directory / preview file"),
		row("h", "collapse / jump to parent"),
		row("space", "select or deselect"),
		row("x", "clear all selections"),
		row("c", "copy selected paths as @refs"),
		row("y", "copy selected files as prompt"),
		row("/", "filter the tree"),
		row("p", "jump to file"),
		row("f", "cycle type filter"),
		row(".", "show or hide dotfiles"),
		row("R", "re-index folders"),
		row("tab", "switch pane"),
		row("left/right", "resize panes"),
		row("q", "quit"),
		"",
		descStyle.Render("  [q/esc] close"),
	}

	visible := lines
	maxVisible := m.height - 8
	if maxVisible > 4 && len(lines) > maxVisible {
		offset := m.helpScrollOffset
		if offset > len(lines)-maxVisible {
			offset = len(lines) - maxVisible
		}
		visible = lines[offset : offset+maxVisible]
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(1, 2).
		Width(56)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(strings.Join(visible, "\n")),
	)
}
