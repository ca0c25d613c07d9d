package tree

import "testing"

func lazyFixture() *State {
	// Roots listing only: /repo with an unloaded subdirectory hint.
	nodes, roots := BuildRootTreeState([]FileEntry{
		{Path: "/repo", IsDir: true, ChildCount: Unknown},
	}, parentOf, nil)
	state := NewState()
	state.Nodes = nodes
	state.RootPaths = roots
	return state
}

func TestExpandDirRequestsFetchWhenUnloaded(t *testing.T) {
	state := lazyFixture()

	gen, needsFetch, ok := state.ExpandDir("/repo")
	if !ok || !needsFetch {
		t.Fatalf("expected fetch request, got gen=%d needsFetch=%v ok=%v", gen, needsFetch, ok)
	}
	if !state.Node("/repo").Expanded {
		t.Error("directory should be optimistically expanded")
	}
}

func TestApplyChildrenInstallsListing(t *testing.T) {
	state := lazyFixture()
	gen, _, _ := state.ExpandDir("/repo")

	applied := state.ApplyChildren("/repo", gen, []FileEntry{
		{Path: "/repo/main.go", ParentPath: "/repo"},
		{Path: "/repo/docs", ParentPath: "/repo", IsDir: true, ChildCount: 3},
	})
	if !applied {
		t.Fatal("current-generation response was discarded")
	}

	repo := state.Node("/repo")
	if !repo.ChildrenLoaded() || len(repo.ChildPaths) != 2 {
		t.Errorf("children not installed: loaded=%v paths=%v", repo.ChildrenLoaded(), repo.ChildPaths)
	}
	docs := state.Node("/repo/docs")
	if docs == nil || !docs.HasChildren || docs.ChildrenLoaded() {
		t.Error("unloaded subdirectory should keep its has-children hint")
	}
}

func TestStaleChildrenResponseDiscarded(t *testing.T) {
	state := lazyFixture()
	staleGen, _, _ := state.ExpandDir("/repo")

	// Collapse and re-expand before the first response arrives.
	state.Collapse("/repo")
	currentGen, _, _ := state.ExpandDir("/repo")
	if currentGen == staleGen {
		t.Fatal("re-expand must issue a new generation")
	}

	if state.ApplyChildren("/repo", staleGen, []FileEntry{{Path: "/repo/old.go", ParentPath: "/repo"}}) {
		t.Error("stale response was applied")
	}
	if state.Node("/repo/old.go") != nil {
		t.Error("stale response left nodes behind")
	}

	if !state.ApplyChildren("/repo", currentGen, []FileEntry{{Path: "/repo/new.go", ParentPath: "/repo"}}) {
		t.Error("current response was discarded")
	}
}

func TestChildrenFetchFailedRevertsExpansion(t *testing.T) {
	state := lazyFixture()
	gen, _, _ := state.ExpandDir("/repo")

	if !state.ChildrenFetchFailed("/repo", gen) {
		t.Fatal("failure for current generation ignored")
	}
	if state.Node("/repo").Expanded {
		t.Error("expansion not reverted after fetch failure")
	}
}

func TestStaleFailureIgnored(t *testing.T) {
	state := lazyFixture()
	staleGen, _, _ := state.ExpandDir("/repo")
	state.Collapse("/repo")
	state.ExpandDir("/repo")

	if state.ChildrenFetchFailed("/repo", staleGen) {
		t.Error("stale failure applied")
	}
	if !state.Node("/repo").Expanded {
		t.Error("stale failure collapsed the re-expanded directory")
	}
}

func TestLateChildrenInheritParentCheck(t *testing.T) {
	state := lazyFixture()

	// Check the directory before its children are loaded.
	state.ToggleCheck("/repo", true)
	gen, _, _ := state.ExpandDir("/repo")
	state.ApplyChildren("/repo", gen, []FileEntry{
		{Path: "/repo/a.go", ParentPath: "/repo"},
		{Path: "/repo/b.go", ParentPath: "/repo"},
	})

	for _, path := range []string{"/repo/a.go", "/repo/b.go"} {
		if !state.Node(path).Checked() {
			t.Errorf("%s should inherit the parent's check on load", path)
		}
	}
	if got := state.SelectedFilePaths(); len(got) != 2 {
		t.Errorf("selected = %v, want both files", got)
	}
}

func TestResetDropsEverything(t *testing.T) {
	state := lazyFixture()
	state.ToggleCheck("/repo", true)
	state.Reset()

	if len(state.Nodes) != 0 || state.RootPaths != nil {
		t.Error("reset left state behind")
	}
}

func TestToggleCheckUnknownPath(t *testing.T) {
	state := lazyFixture()
	if state.ToggleCheck("/nope", true) {
		t.Error("toggling a missing path should report false")
	}
}
