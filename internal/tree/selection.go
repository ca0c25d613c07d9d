package tree

// Selection propagation. The invariants maintained here:
//
//   - a directory is Checked iff every currently-loaded child is Checked
//   - a directory is Indeterminate iff it is not fully checked but at least
//     one loaded child is Checked or Indeterminate
//
// Unloaded descendants are untouched by downward propagation; they are
// synced to the parent's value when their fetch completes (see store.go).

// UpdateChildrenSelection sets the checked state on the node at path and
// every loaded descendant, clearing any indeterminate state along the way.
func UpdateChildrenSelection(nodes NodesMap, path string, checked bool) {
	node, ok := nodes[path]
	if !ok {
		return
	}

	target := Unchecked
	if checked {
		target = Checked
	}

	node.Selection = target
	for _, childPath := range node.ChildPaths {
		UpdateChildrenSelection(nodes, childPath, checked)
	}
}

// UpdateParentSelection walks upward from the changed node's parent,
// recomputing each ancestor's tri-state from its loaded children. The walk
// stops early once a level's state is unchanged, since nothing above it can
// change either.
func UpdateParentSelection(nodes NodesMap, changedChildPath string) {
	child, ok := nodes[changedChildPath]
	if !ok {
		return
	}

	parentPath := child.ParentPath
	for parentPath != "" {
		parent, ok := nodes[parentPath]
		if !ok {
			return
		}

		next := deriveFromChildren(nodes, parent)
		if next == parent.Selection {
			return
		}
		parent.Selection = next
		parentPath = parent.ParentPath
	}
}

// deriveFromChildren computes a directory's selection from its loaded
// children. A directory with no loaded children keeps its current state.
func deriveFromChildren(nodes NodesMap, dir *Node) Selection {
	if len(dir.ChildPaths) == 0 {
		return dir.Selection
	}

	allChecked := true
	anySelected := false
	for _, childPath := range dir.ChildPaths {
		child, ok := nodes[childPath]
		if !ok {
			continue
		}
		switch child.Selection {
		case Checked:
			anySelected = true
		case Indeterminate:
			anySelected = true
			allChecked = false
		default:
			allChecked = false
		}
	}

	switch {
	case allChecked:
		return Checked
	case anySelected:
		return Indeterminate
	default:
		return Unchecked
	}
}

// ClearSelection unsets checked and indeterminate state everywhere and
// reports whether anything actually changed, so callers can skip redraws on
// a no-op clear.
func ClearSelection(nodes NodesMap) bool {
	hasChanges := false
	for _, node := range nodes {
		if node.Selection != Unchecked {
			node.Selection = Unchecked
			hasChanges = true
		}
	}
	return hasChanges
}

// CollectSelectedPaths returns the checked file paths in depth-first tree
// order. Directories are never collected; a fully-checked directory is
// represented by its files.
func CollectSelectedPaths(nodes NodesMap, rootPaths []string) []string {
	var selected []string
	var walk func(path string)
	walk = func(path string) {
		node, ok := nodes[path]
		if !ok {
			return
		}
		if !node.IsDir && node.Selection == Checked {
			selected = append(selected, node.Path)
		}
		for _, childPath := range node.ChildPaths {
			walk(childPath)
		}
	}
	for _, rootPath := range rootPaths {
		walk(rootPath)
	}
	return selected
}

// CollectDescendantFilePaths returns the set of loaded descendant file paths
// under path, including path itself when it names a file. Used to preview
// what a toggle would select without mutating anything.
func CollectDescendantFilePaths(nodes NodesMap, path string) map[string]struct{} {
	files := make(map[string]struct{})
	var walk func(path string)
	walk = func(path string) {
		node, ok := nodes[path]
		if !ok {
			return
		}
		if !node.IsDir {
			files[node.Path] = struct{}{}
			return
		}
		for _, childPath := range node.ChildPaths {
			walk(childPath)
		}
	}
	walk(path)
	return files
}
