// Package tree holds the in-memory model of the file hierarchy: a path-keyed
// node map, tri-state selection propagation, depth-first flattening for the
// viewport, and the reconciliation that restores expansion and selection
// after the index is rebuilt.
//
// Parent/child links are path strings, never pointers. A child does not own
// its parent; looking either one up is a map access. That makes full-tree
// replacement on re-index a plain map swap with no dangling references.
package tree

import (
	"github.com/nvail/promptree/internal/filetype"
	"github.com/nvail/promptree/internal/pathutil"
)

// Unknown marks nullable numeric fields the backend did not populate.
const Unknown = -1

// FileEntry is a single row from the indexer. Path is the node's identity;
// ParentPath is empty only for roots. TokenCount and ChildCount use Unknown
// when the backend has not computed them.
type FileEntry struct {
	Path        string
	ParentPath  string
	Name        string
	Size        int64
	Mtime       int64
	Fingerprint string
	IsDir       bool
	TokenCount  int64
	ChildCount  int64
}

// Selection is the tri-state selection tag. Representing it as one value
// makes the invalid "checked and indeterminate" combination unrepresentable.
type Selection uint8

const (
	Unchecked Selection = iota
	Checked
	Indeterminate
)

// Node is a FileEntry plus the UI state tracked per path.
type Node struct {
	FileEntry

	Expanded  bool
	Selection Selection

	// ChildPaths is the ordered list of child identities, empty until the
	// directory's children have been fetched.
	ChildPaths []string

	// HasChildren reports whether the directory is believed to have
	// children, from the loaded ChildPaths or the backend's count hint.
	HasChildren bool

	childrenLoaded bool
	fetchGen       uint64
}

// Checked reports whether the node is fully selected.
func (n *Node) Checked() bool { return n.Selection == Checked }

// Indeterminate reports whether the node is partially selected through
// its descendants.
func (n *Node) Indeterminate() bool { return n.Selection == Indeterminate }

// ChildrenLoaded reports whether the node's children have been fetched.
func (n *Node) ChildrenLoaded() bool { return n.childrenLoaded }

// NodesMap is the single source of truth for the tree, keyed by normalized
// path.
type NodesMap map[string]*Node

// State is the complete tree state owned by the UI loop.
type State struct {
	Nodes     NodesMap
	RootPaths []string
	Filter    filetype.FilterType
	IsLoading bool
}

// NewState returns an empty tree state.
func NewState() *State {
	return &State{Nodes: make(NodesMap)}
}

// newNode builds a Node from a backend entry, normalizing its identity and
// filling Name from the path when the backend left it blank.
func newNode(entry FileEntry) *Node {
	entry.Path = pathutil.Normalize(entry.Path)
	if entry.ParentPath != "" {
		entry.ParentPath = pathutil.Normalize(entry.ParentPath)
	}
	if entry.Name == "" {
		entry.Name = pathutil.Name(entry.Path)
	}

	node := &Node{FileEntry: entry}
	if entry.IsDir {
		// Unknown counts are treated as "probably has children" so the
		// expander stays visible until a fetch proves otherwise.
		node.HasChildren = entry.ChildCount != 0
		node.childrenLoaded = entry.ChildCount == 0
	}
	return node
}
