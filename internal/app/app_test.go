package app

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nvail/promptree/internal/filetype"
	"github.com/nvail/promptree/internal/pathutil"
	"github.com/nvail/promptree/internal/search"
	"github.com/nvail/promptree/internal/tree"
)

func testModel() Model {
	entries := []tree.FileEntry{
		{Path: "/repo", Name: "repo", IsDir: true, ChildCount: 5},
		{Path: "/repo/README.md", ParentPath: "/repo", Name: "README.md"},
		{Path: "/repo/main.go", ParentPath: "/repo", Name: "main.go"},
		{Path: "/repo/src", ParentPath: "/repo", Name: "src", IsDir: true, ChildCount: 1},
		{Path: "/repo/src/util.go", ParentPath: "/repo/src", Name: "util.go"},
		{Path: "/repo/.env", ParentPath: "/repo", Name: ".env"},
		{Path: "/repo/.cfg", ParentPath: "/repo", Name: ".cfg", IsDir: true, ChildCount: 1},
		{Path: "/repo/.cfg/secret.go", ParentPath: "/repo/.cfg", Name: "secret.go"},
	}
	state := tree.NewState()
	state.Nodes, state.RootPaths = tree.BuildRootTreeState(entries, pathutil.ParentDir, pathutil.Name)
	state.Nodes["/repo"].Expanded = true
	state.Nodes["/repo/src"].Expanded = true
	state.Nodes["/repo/.cfg"].Expanded = true
	return Model{state: state, log: zap.NewNop()}
}

func rowPaths(rows []Row) []string {
	paths := make([]string, len(rows))
	for i, row := range rows {
		paths[i] = row.Node.Path
	}
	return paths
}

func TestRebuildRowsDepths(t *testing.T) {
	m := testModel()
	m.rebuildRows()

	want := []struct {
		path  string
		depth int
	}{
		{"/repo", 0},
		{"/repo/README.md", 1},
		{"/repo/main.go", 1},
		{"/repo/src", 1},
		{"/repo/src/util.go", 2},
	}
	if len(m.rows) != len(want) {
		t.Fatalf("rows = %v", rowPaths(m.rows))
	}
	for i, w := range want {
		if m.rows[i].Node.Path != w.path || m.rows[i].Depth != w.depth {
			t.Errorf("row %d = %s depth %d, want %s depth %d",
				i, m.rows[i].Node.Path, m.rows[i].Depth, w.path, w.depth)
		}
	}
}

func TestSearchKeepsAncestorsVisible(t *testing.T) {
	m := testModel()
	m.filters = search.ParseQuery("util")
	m.rebuildRows()

	got := rowPaths(m.rows)
	want := []string{"/repo", "/repo/src", "/repo/src/util.go"}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTypeFilterHidesOtherCategories(t *testing.T) {
	m := testModel()
	m.state.Filter = filetype.FilterDocs
	m.rebuildRows()

	for _, row := range m.rows {
		if row.Node.Path == "/repo/main.go" || row.Node.Path == "/repo/src/util.go" {
			t.Errorf("code file %s visible under docs filter", row.Node.Path)
		}
	}
	found := false
	for _, row := range m.rows {
		if row.Node.Path == "/repo/README.md" {
			found = true
		}
	}
	if !found {
		t.Error("README.md hidden under docs filter")
	}
}

func TestCursorClampedWhenRowsShrink(t *testing.T) {
	m := testModel()
	m.rebuildRows()
	m.cursor = len(m.rows) - 1

	m.filters = search.ParseQuery("util")
	m.rebuildRows()

	if m.cursor >= len(m.rows) {
		t.Errorf("cursor %d out of range after filter (%d rows)", m.cursor, len(m.rows))
	}
}

func TestCollapsedDirHidesChildren(t *testing.T) {
	m := testModel()
	m.state.Collapse("/repo/src")
	m.rebuildRows()

	for _, row := range m.rows {
		if row.Node.Path == "/repo/src/util.go" {
			t.Error("child of collapsed directory is visible")
		}
	}
}

func TestPaletteSearchRanksBasenameMatch(t *testing.T) {
	m := testModel()
	matches := m.paletteSearch("util")
	if len(matches) == 0 {
		t.Fatal("no palette matches for util")
	}
	if matches[0].Path != "/repo/src/util.go" {
		t.Errorf("top match = %s", matches[0].Path)
	}
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.2k"},
		{2500000, "2.5M"},
	}
	for _, tc := range cases {
		if got := formatCount(tc.in); got != tc.want {
			t.Errorf("formatCount(%d) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestStripLineNumbers(t *testing.T) {
	if got := StripLineNumbers("   5 │ code here"); got != "code here" {
		t.Errorf("got %q", got)
	}
	if got := StripLineNumbers("no gutter"); got != "no gutter" {
		t.Errorf("got %q", got)
	}
}

func TestDotfilesHiddenByDefault(t *testing.T) {
	m := testModel()
	m.rebuildRows()

	for _, row := range m.rows {
		switch row.Node.Path {
		case "/repo/.env", "/repo/.cfg", "/repo/.cfg/secret.go":
			t.Errorf("dotfile entry %s visible by default", row.Node.Path)
		}
	}
}

func TestDotfileToggleShowsThem(t *testing.T) {
	m := testModel()
	m.showDotfiles = true
	m.rebuildRows()

	got := rowPaths(m.rows)
	want := map[string]bool{"/repo/.env": false, "/repo/.cfg": false, "/repo/.cfg/secret.go": false}
	for _, path := range got {
		if _, ok := want[path]; ok {
			want[path] = true
		}
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("%s hidden with dotfiles enabled (rows = %v)", path, got)
		}
	}
}

func TestSearchCannotSurfaceHiddenDotDirContents(t *testing.T) {
	m := testModel()
	m.filters = search.ParseQuery("secret")
	m.rebuildRows()

	// A match inside a hidden dot directory must not drag the directory
	// back into view.
	for _, row := range m.rows {
		if row.Node.Path == "/repo/.cfg" || row.Node.Path == "/repo/.cfg/secret.go" {
			t.Errorf("hidden entry %s surfaced by search", row.Node.Path)
		}
	}
}

func TestCopyTargetsFallsBackToDirectoryDescendants(t *testing.T) {
	m := testModel()
	m.rebuildRows()
	for i, row := range m.rows {
		if row.Node.Path == "/repo/src" {
			m.cursor = i
		}
	}

	got := m.copyTargets()
	if len(got) != 1 || got[0] != "/repo/src/util.go" {
		t.Errorf("copyTargets = %v, want the directory's files", got)
	}
}

func TestCopyTargetsPrefersSelection(t *testing.T) {
	m := testModel()
	m.rebuildRows()
	m.state.ToggleCheck("/repo/README.md", true)
	for i, row := range m.rows {
		if row.Node.Path == "/repo/src" {
			m.cursor = i
		}
	}

	got := m.copyTargets()
	if len(got) != 1 || got[0] != "/repo/README.md" {
		t.Errorf("copyTargets = %v, want the checked file", got)
	}
}

func TestRankedMatchesOrdersByScore(t *testing.T) {
	m := testModel()
	m.filters = search.ParseQuery("r")
	m.rebuildRows()

	got := m.rankedMatches(5)
	if len(got) == 0 {
		t.Fatal("no ranked matches")
	}
	// "r" is a name prefix of README.md but only a path substring for the
	// others, so README.md must rank first.
	if got[0] != "/repo/README.md" {
		t.Errorf("top match = %s, want /repo/README.md (all: %v)", got[0], got)
	}
}

func TestSelectionStatusOmitsFilterBadgeWhenAll(t *testing.T) {
	m := testModel()
	if got := m.renderSelectionStatus(); got != "" {
		t.Errorf("status with no filter = %q, want empty", got)
	}

	m.state.Filter = filetype.FilterCode
	if got := m.renderSelectionStatus(); !strings.Contains(got, "[Code]") {
		t.Errorf("status = %q, want a [Code] badge", got)
	}
}

func TestFilterFromConfigRoundTrip(t *testing.T) {
	for _, f := range []filetype.FilterType{filetype.FilterAll, filetype.FilterCode, filetype.FilterImages} {
		if got := filterFromConfig(f.String()); got != f {
			t.Errorf("filterFromConfig(%q) = %v", f.String(), got)
		}
	}
	if got := filterFromConfig("bogus"); got != filetype.FilterAll {
		t.Errorf("unknown filter name should fall back to all, got %v", got)
	}
}
