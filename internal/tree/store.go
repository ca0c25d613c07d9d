package tree

// State mutation entry points. All of these run on the UI loop; fetches
// started here complete as messages that come back through ApplyChildren or
// ChildrenFetchFailed carrying the generation they were issued with.

// Reset drops every node. This is the CLEAR_ALL path; nothing else removes
// nodes short of a full rebuild.
func (s *State) Reset() {
	s.Nodes = make(NodesMap)
	s.RootPaths = nil
	s.IsLoading = false
}

// Node looks up a node by path.
func (s *State) Node(path string) *Node {
	return s.Nodes[path]
}

// ExpandDir marks a directory expanded. When its children are not loaded yet
// it bumps the node's fetch generation and asks the caller to issue a fetch;
// the returned generation must accompany the eventual ApplyChildren or
// ChildrenFetchFailed call so stale responses can be told apart.
func (s *State) ExpandDir(path string) (gen uint64, needsFetch bool, ok bool) {
	node, found := s.Nodes[path]
	if !found || !node.IsDir {
		return 0, false, false
	}

	node.Expanded = true
	if node.childrenLoaded {
		return node.fetchGen, false, true
	}

	node.fetchGen++
	return node.fetchGen, true, true
}

// Collapse folds a directory back up. The fetch generation is bumped so an
// in-flight children response for the collapsed directory is discarded
// instead of landing out of order after a re-expand.
func (s *State) Collapse(path string) bool {
	node, found := s.Nodes[path]
	if !found || !node.IsDir || !node.Expanded {
		return false
	}
	node.Expanded = false
	node.fetchGen++
	return true
}

// ApplyChildren installs a fetched children listing on a directory. The
// response is discarded when the directory is gone or the generation no
// longer matches the node's current expectation. Freshly loaded children of
// a checked directory inherit the check, which is how unloaded descendants
// catch up with a selection made before they were fetched.
func (s *State) ApplyChildren(path string, gen uint64, entries []FileEntry) bool {
	node, found := s.Nodes[path]
	if !found || node.fetchGen != gen {
		return false
	}

	childPaths := make([]string, 0, len(entries))
	for _, entry := range entries {
		child := newNode(entry)
		child.ParentPath = node.Path
		if node.Selection == Checked {
			child.Selection = Checked
		}
		s.Nodes[child.Path] = child
		childPaths = append(childPaths, child.Path)
	}

	node.ChildPaths = childPaths
	node.HasChildren = len(childPaths) > 0
	node.childrenLoaded = true
	return true
}

// ChildrenFetchFailed reverts the optimistic expansion after a failed fetch.
// A directory must never be observably expanded with no children and no
// pending error. Stale failures are ignored like stale successes.
func (s *State) ChildrenFetchFailed(path string, gen uint64) bool {
	node, found := s.Nodes[path]
	if !found || node.fetchGen != gen {
		return false
	}
	node.Expanded = false
	return true
}

// ToggleCheck sets the checked state of a node, propagates it down through
// loaded descendants, and recomputes ancestors.
func (s *State) ToggleCheck(path string, checked bool) bool {
	if _, found := s.Nodes[path]; !found {
		return false
	}
	UpdateChildrenSelection(s.Nodes, path, checked)
	UpdateParentSelection(s.Nodes, path)
	return true
}

// SelectedFilePaths returns the checked file paths in tree order.
func (s *State) SelectedFilePaths() []string {
	return CollectSelectedPaths(s.Nodes, s.RootPaths)
}

// ClearAllSelections unsets every selection and reports whether any state
// changed.
func (s *State) ClearAllSelections() bool {
	return ClearSelection(s.Nodes)
}
