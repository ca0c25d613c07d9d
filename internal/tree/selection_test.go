package tree

import (
	"reflect"
	"testing"
)

// buildFixture assembles a small loaded tree:
//
//	/repo            (dir, expanded)
//	  /repo/a.go     (file)
//	  /repo/src      (dir)
//	    /repo/src/b.go  (file)
//	    /repo/src/c.go  (file)
func buildFixture() (*State, NodesMap) {
	entries := []FileEntry{
		{Path: "/repo", IsDir: true, ChildCount: 2},
		{Path: "/repo/a.go", ParentPath: "/repo"},
		{Path: "/repo/src", ParentPath: "/repo", IsDir: true, ChildCount: 2},
		{Path: "/repo/src/b.go", ParentPath: "/repo/src"},
		{Path: "/repo/src/c.go", ParentPath: "/repo/src"},
	}
	nodes, roots := BuildRootTreeState(entries, parentOf, nil)
	state := NewState()
	state.Nodes = nodes
	state.RootPaths = roots
	return state, nodes
}

func parentOf(p string) string {
	if p == "/repo" || p == "/" || p == "" {
		return ""
	}
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			if i == 0 {
				return "/"
			}
			return p[:i]
		}
	}
	return ""
}

func TestUpdateChildrenSelectionChecksAllLoadedDescendants(t *testing.T) {
	_, nodes := buildFixture()

	UpdateChildrenSelection(nodes, "/repo", true)

	for path, node := range nodes {
		if !node.Checked() {
			t.Errorf("%s: not checked after checking the root", path)
		}
		if node.Indeterminate() {
			t.Errorf("%s: indeterminate after full check", path)
		}
	}
}

func TestUpdateChildrenSelectionUncheck(t *testing.T) {
	_, nodes := buildFixture()
	UpdateChildrenSelection(nodes, "/repo", true)
	UpdateChildrenSelection(nodes, "/repo/src", false)

	if nodes["/repo/src/b.go"].Checked() || nodes["/repo/src/c.go"].Checked() {
		t.Error("descendants still checked after unchecking the directory")
	}
	if !nodes["/repo/a.go"].Checked() {
		t.Error("sibling outside the subtree lost its check")
	}
}

func TestUpdateParentSelectionPartial(t *testing.T) {
	_, nodes := buildFixture()

	// Check both files under src, then uncheck one.
	UpdateChildrenSelection(nodes, "/repo/src", true)
	UpdateParentSelection(nodes, "/repo/src")

	UpdateChildrenSelection(nodes, "/repo/src/b.go", false)
	UpdateParentSelection(nodes, "/repo/src/b.go")

	src := nodes["/repo/src"]
	if src.Checked() {
		t.Error("src still fully checked with one child unchecked")
	}
	if !src.Indeterminate() {
		t.Error("src should be indeterminate with a checked sibling remaining")
	}

	repo := nodes["/repo"]
	if !repo.Indeterminate() {
		t.Error("repo should be indeterminate while src is partial")
	}
}

func TestUpdateParentSelectionAllUnchecked(t *testing.T) {
	_, nodes := buildFixture()

	UpdateChildrenSelection(nodes, "/repo/src", true)
	UpdateParentSelection(nodes, "/repo/src")
	UpdateChildrenSelection(nodes, "/repo/src", false)
	UpdateParentSelection(nodes, "/repo/src")

	if nodes["/repo/src"].Indeterminate() {
		t.Error("src indeterminate with no checked children")
	}
	if nodes["/repo"].Indeterminate() {
		t.Error("repo indeterminate with nothing selected")
	}
}

func TestUpdateParentSelectionFullCheckPropagatesUp(t *testing.T) {
	_, nodes := buildFixture()

	UpdateChildrenSelection(nodes, "/repo/src/b.go", true)
	UpdateParentSelection(nodes, "/repo/src/b.go")
	UpdateChildrenSelection(nodes, "/repo/src/c.go", true)
	UpdateParentSelection(nodes, "/repo/src/c.go")

	if !nodes["/repo/src"].Checked() {
		t.Error("src should be fully checked once every child is")
	}
	if !nodes["/repo"].Indeterminate() {
		t.Error("repo should be indeterminate: a.go is unchecked")
	}
}

func TestTriStateNeverBothSet(t *testing.T) {
	_, nodes := buildFixture()

	UpdateChildrenSelection(nodes, "/repo/src/b.go", true)
	UpdateParentSelection(nodes, "/repo/src/b.go")

	for path, node := range nodes {
		if node.Checked() && node.Indeterminate() {
			t.Errorf("%s: checked and indeterminate simultaneously", path)
		}
	}
}

func TestClearSelectionIsIdempotent(t *testing.T) {
	_, nodes := buildFixture()
	UpdateChildrenSelection(nodes, "/repo", true)

	if !ClearSelection(nodes) {
		t.Error("first clear should report changes")
	}
	if ClearSelection(nodes) {
		t.Error("second clear should be a no-op")
	}
}

func TestCollectSelectedPathsFilesOnlyInTreeOrder(t *testing.T) {
	state, nodes := buildFixture()
	UpdateChildrenSelection(nodes, "/repo", true)

	selected := CollectSelectedPaths(nodes, state.RootPaths)
	want := []string{"/repo/a.go", "/repo/src/b.go", "/repo/src/c.go"}
	if !reflect.DeepEqual(selected, want) {
		t.Errorf("selected = %v, want %v", selected, want)
	}
	for _, path := range selected {
		if nodes[path].IsDir {
			t.Errorf("directory %s collected as selected", path)
		}
	}
}

func TestCollectDescendantFilePaths(t *testing.T) {
	_, nodes := buildFixture()

	files := CollectDescendantFilePaths(nodes, "/repo/src")
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	for _, path := range []string{"/repo/src/b.go", "/repo/src/c.go"} {
		if _, ok := files[path]; !ok {
			t.Errorf("missing %s", path)
		}
	}

	// Collecting a file path yields just that file.
	single := CollectDescendantFilePaths(nodes, "/repo/a.go")
	if len(single) != 1 {
		t.Errorf("file collection = %v, want only the file itself", single)
	}

	// Collection must not mutate selection.
	for path, node := range nodes {
		if node.Selection != Unchecked {
			t.Errorf("%s: selection mutated by collection", path)
		}
	}
}
