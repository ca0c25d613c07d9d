package tree

import (
	"strings"
	"testing"
)

func flatPaths(flat []*Node) []string {
	paths := make([]string, len(flat))
	for i, n := range flat {
		paths[i] = n.Path
	}
	return paths
}

// flattenFixture: root R (dir) with file A and collapsed dir B holding C.
func flattenFixture() (*State, NodesMap) {
	entries := []FileEntry{
		{Path: "/r", IsDir: true, ChildCount: 2},
		{Path: "/r/a.txt", ParentPath: "/r"},
		{Path: "/r/b", ParentPath: "/r", IsDir: true, ChildCount: 1},
		{Path: "/r/b/c.txt", ParentPath: "/r/b"},
	}
	nodes, roots := BuildRootTreeState(entries, parentOf, nil)
	state := NewState()
	state.Nodes = nodes
	state.RootPaths = roots
	nodes["/r"].Expanded = true
	return state, nodes
}

func TestFlattenRespectsExpansion(t *testing.T) {
	state, nodes := flattenFixture()

	got := flatPaths(Flatten(state.RootPaths, nodes, All))
	want := "/r /r/a.txt /r/b"
	if strings.Join(got, " ") != want {
		t.Errorf("flat = %v, want %s", got, want)
	}

	nodes["/r/b"].Expanded = true
	got = flatPaths(Flatten(state.RootPaths, nodes, All))
	want = "/r /r/a.txt /r/b /r/b/c.txt"
	if strings.Join(got, " ") != want {
		t.Errorf("after expanding b: flat = %v, want %s", got, want)
	}
}

func TestFlattenCollapsedRootHidesEverything(t *testing.T) {
	state, nodes := flattenFixture()
	nodes["/r"].Expanded = false

	got := flatPaths(Flatten(state.RootPaths, nodes, All))
	if len(got) != 1 || got[0] != "/r" {
		t.Errorf("collapsed root should flatten to itself only, got %v", got)
	}
}

func TestFlattenPassThroughContainers(t *testing.T) {
	state, nodes := flattenFixture()
	nodes["/r/b"].Expanded = true

	// Predicate matches only c.txt; its ancestors must remain reachable.
	pred := func(n *Node) bool { return n.Path == "/r/b/c.txt" }
	got := flatPaths(Flatten(state.RootPaths, nodes, pred))
	want := "/r /r/b /r/b/c.txt"
	if strings.Join(got, " ") != want {
		t.Errorf("flat = %v, want %s", got, want)
	}
}

func TestFlattenExcludesNonMatchingFiles(t *testing.T) {
	state, nodes := flattenFixture()

	pred := func(n *Node) bool { return n.IsDir || strings.HasSuffix(n.Path, "c.txt") }
	got := flatPaths(Flatten(state.RootPaths, nodes, pred))
	for _, p := range got {
		if p == "/r/a.txt" {
			t.Error("a.txt should be filtered out")
		}
	}
}

func TestFlattenDirWithNoMatchingDescendantsDropped(t *testing.T) {
	state, nodes := flattenFixture()

	pred := func(n *Node) bool { return n.Path == "/r/a.txt" }
	got := flatPaths(Flatten(state.RootPaths, nodes, pred))
	want := "/r /r/a.txt"
	if strings.Join(got, " ") != want {
		t.Errorf("flat = %v, want %s (b has no matching descendants)", got, want)
	}
}
