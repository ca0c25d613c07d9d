package tree

// Predicate decides whether a node is visible in the flattened listing.
type Predicate func(*Node) bool

// All is the predicate that keeps every node.
func All(*Node) bool { return true }

// Flatten produces the pre-order depth-first listing the viewport renders.
// A directory's children are visited only while it is expanded. A node is
// included when the predicate passes, or — for directories — when any loaded
// descendant passes, so filtered results stay reachable through their
// ancestor chain.
func Flatten(rootPaths []string, nodes NodesMap, pred Predicate) []*Node {
	var flat []*Node
	for _, rootPath := range rootPaths {
		flat = flattenInto(flat, nodes, rootPath, pred)
	}
	return flat
}

func flattenInto(flat []*Node, nodes NodesMap, path string, pred Predicate) []*Node {
	node, ok := nodes[path]
	if !ok {
		return flat
	}

	include := pred(node)
	if !include && node.IsDir {
		include = anyDescendantPasses(nodes, node, pred)
	}
	if !include {
		return flat
	}

	flat = append(flat, node)
	if node.IsDir && node.Expanded {
		for _, childPath := range node.ChildPaths {
			flat = flattenInto(flat, nodes, childPath, pred)
		}
	}
	return flat
}

// anyDescendantPasses scans all loaded descendants, expanded or not. The
// pass-through rule keys off what is loaded, not what is visible.
func anyDescendantPasses(nodes NodesMap, dir *Node, pred Predicate) bool {
	for _, childPath := range dir.ChildPaths {
		child, ok := nodes[childPath]
		if !ok {
			continue
		}
		if pred(child) {
			return true
		}
		if child.IsDir && anyDescendantPasses(nodes, child, pred) {
			return true
		}
	}
	return false
}
