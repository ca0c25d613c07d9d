package app

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/extract"
	"github.com/nvail/promptree/internal/index"
	"github.com/nvail/promptree/internal/search"
	"github.com/nvail/promptree/internal/tokencount"
	"github.com/nvail/promptree/internal/tree"
)

// Pane identifies which pane is active
type Pane int

const (
	TreePane Pane = iota
	PreviewPane
)

// Row is one visible line of the tree pane: a node plus its indent depth in
// the current flattened listing.
type Row struct {
	Node  *tree.Node
	Depth int
}

// Model is the main application model implementing tea.Model
type Model struct {
	log       *zap.Logger
	svc       *index.Service
	state     *tree.State
	extractor *extract.Extractor
	tokens    *tokencount.Cache

	rootPath       string // where per-project config lives
	rows           []Row
	cursor         int
	activePane     Pane
	tree           viewport.Model
	preview        viewport.Model
	previewPath    string
	previewCache   map[string]CachedPreview
	previewLines   []string
	loading        bool
	width          int
	height         int
	ready          bool
	lastClickTime  time.Time
	lastClickIndex int

	// Pane resizing
	splitRatio    float64 // 0.2 to 0.8, left pane width ratio
	draggingSplit bool    // True when dragging the divider

	showDotfiles bool // dotfiles are always indexed, shown on demand

	// Search box (filters the tree in place)
	searching   bool
	searchInput textinput.Model
	filters     search.Filters
	searchGen   int // debounce generation; only the latest tick applies

	// Quick-open palette (jump to a loaded file)
	paletteOpen    bool
	paletteInput   textinput.Model
	paletteMatches []PaletteMatch
	paletteCursor  int

	// Folder indexing queue, processed one folder at a time
	pendingFolders []string
	indexing       bool

	// Token totals for the current selection
	totalTokens    int
	countingTokens bool
	tokenGen       int // stale total results are dropped by generation

	// File watcher
	watcher *fsnotify.Watcher

	// Help overlay
	showingHelp      bool
	helpScrollOffset int

	// Status message (transient feedback)
	statusMessage     string
	statusMessageTime time.Time

	// Loading indicator
	loadingMessage string
	spinnerFrame   int
}

// PaletteMatch is one ranked quick-open result.
type PaletteMatch struct {
	Path           string
	Display        string
	MatchedIndexes []int
}

// CachedPreview stores rendered preview content with modification time
type CachedPreview struct {
	Content string
	ModTime time.Time
}

// RootsLoadedMsg carries the indexed top-level entries.
type RootsLoadedMsg struct {
	Entries []tree.FileEntry
	Err     error
}

// ChildrenLoadedMsg carries a directory's fetched children together with the
// fetch generation the request was issued under.
type ChildrenLoadedMsg struct {
	Path    string
	Gen     uint64
	Entries []tree.FileEntry
	Err     error
}

// FolderIndexedMsg is sent when one queued folder finished indexing.
type FolderIndexedMsg struct {
	Path  string
	Count int64
	Err   error
}

// RebuildMsg carries the full flat listing after a re-index; the tree is
// rebuilt from it and expansion/selection reconciled.
type RebuildMsg struct {
	Entries   []tree.FileEntry
	IsReIndex bool
	Err       error
}

// TokenTotalMsg reports the token total for a selection snapshot.
type TokenTotalMsg struct {
	Gen   int
	Total int
	Err   error
}

// PromptCopiedMsg reports the outcome of assembling and copying the prompt.
type PromptCopiedMsg struct {
	Included int
	Total    int
	Err      error
}

// SearchDebounceMsg fires after the search input has settled.
type SearchDebounceMsg struct {
	Gen int
}

// FileLoadedMsg is sent when file content is loaded
type FileLoadedMsg struct {
	Path    string
	Content string
	ModTime time.Time // For cache validation
}

// FsEventMsg is sent when filesystem changes
type FsEventMsg struct{}

// DebouncedFsEventMsg triggers the re-index after fs events settle
type DebouncedFsEventMsg struct{}

// ClearStatusMsg is sent to clear the status message after delay
type ClearStatusMsg struct{}

// SpinnerTickMsg drives the loading spinner animation
type SpinnerTickMsg struct{}

// SpinnerChars are the braille spinner frames
var SpinnerChars = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// SpinnerTick returns a command that advances the spinner
func SpinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// ClearStatusAfter returns a command that clears the status message after a delay
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// ScheduleFsReload returns a command that fires the debounced reload
func ScheduleFsReload(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return DebouncedFsEventMsg{}
	})
}

// ScheduleSearch returns a command that applies the search query after the
// debounce window, tagged with the generation it was scheduled for.
func ScheduleSearch(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return SearchDebounceMsg{Gen: gen}
	})
}
