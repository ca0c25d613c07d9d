package tree

import "github.com/nvail/promptree/internal/pathutil"

// Rebuild and restore. Re-indexing replaces the whole node map; the helpers
// here rebuild it from a flat backend listing and work out which directories
// must be expanded so surviving selection and expansion stay visible. Paths
// that no longer exist in the new map are dropped silently — re-indexing
// both adds and removes nodes, and that is expected.

// BuildRootTreeState converts a flat backend listing into a node map plus
// the ordered root paths. Entries are grouped by parent path to populate
// ChildPaths; listing order is preserved, so identical input produces
// structurally equal output. An entry whose parent is absent from the
// listing is treated as a root rather than dropped.
func BuildRootTreeState(entries []FileEntry, parentPathOf func(string) string, nameOf func(string) string) (NodesMap, []string) {
	nodes := make(NodesMap, len(entries))
	order := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Name == "" && nameOf != nil {
			entry.Name = nameOf(entry.Path)
		}
		node := newNode(entry)
		if _, dup := nodes[node.Path]; dup {
			continue
		}
		nodes[node.Path] = node
		order = append(order, node.Path)
	}

	var rootPaths []string
	for _, path := range order {
		node := nodes[path]
		parent, found := nodes[node.ParentPath]
		if node.ParentPath == "" || !found {
			rootPaths = append(rootPaths, path)
			continue
		}
		parent.ChildPaths = append(parent.ChildPaths, path)
	}

	for _, path := range order {
		node := nodes[path]
		if !node.IsDir {
			continue
		}
		if len(node.ChildPaths) > 0 {
			node.HasChildren = true
			node.childrenLoaded = true
		}
	}

	return nodes, rootPaths
}

// ComputePathsToExpand determines which directories to expand after a
// rebuild so that everything the user had open or checked remains reachable.
// For every previously expanded directory and every ancestor of a previously
// checked file that still exists in the new map, the full ancestor chain up
// to a root is marked. On a first load (not a re-index) the fresh root
// directories are opened as well, so a newly added folder shows its
// contents immediately.
func ComputePathsToExpand(
	prevExpandedPaths []string,
	prevCheckedFilePaths []string,
	isReIndex bool,
	rootEntries []FileEntry,
	newNodes NodesMap,
	prevNodes NodesMap,
	parentPathOf func(string) string,
) map[string]struct{} {
	toExpand := make(map[string]struct{})

	markAncestors := func(path string) {
		for parent := parentPathOf(path); parent != ""; parent = parentPathOf(parent) {
			node, found := newNodes[parent]
			if !found {
				continue
			}
			if node.IsDir {
				toExpand[parent] = struct{}{}
			}
		}
	}

	for _, path := range prevExpandedPaths {
		node, found := newNodes[path]
		if !found || !node.IsDir {
			continue
		}
		if prevNodes != nil {
			if prev, ok := prevNodes[path]; ok && !prev.IsDir {
				continue
			}
		}
		toExpand[path] = struct{}{}
		markAncestors(path)
	}

	for _, path := range prevCheckedFilePaths {
		if _, found := newNodes[path]; !found {
			continue
		}
		markAncestors(path)
	}

	if !isReIndex {
		for _, entry := range rootEntries {
			if !entry.IsDir {
				continue
			}
			rootPath := pathutil.Normalize(entry.Path)
			if node, found := newNodes[rootPath]; found && node.IsDir {
				toExpand[rootPath] = struct{}{}
			}
		}
	}

	return toExpand
}
