package bsp

import (
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
)

// NodeIndex addresses a node inside a Tree.
type NodeIndex int32

// NoNode marks an absent child (or an empty tree).
const NoNode NodeIndex = -1

// Node is one BSP node. Walls are the walls lying on the node's splitting
// plane (internal nodes) or the walls bounding a convex region (leaves).
type Node struct {
	Walls []room.WallIndex
	Front NodeIndex
	Back  NodeIndex
	Leaf  bool
	// Plane is the splitting plane. Unset for leaves.
	Plane geom.Plane
}

// Tree is an arena of nodes. Each internal node owns its children by index.
type Tree struct {
	Nodes []Node
	Root  NodeIndex
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Root: NoNode}
}

// Node returns the node at i. It panics for NoNode.
func (t *Tree) Node(i NodeIndex) *Node { return &t.Nodes[i] }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.Nodes) }

// Empty reports whether the tree has no root.
func (t *Tree) Empty() bool { return t.Root == NoNode }

func (t *Tree) reserve() NodeIndex {
	t.Nodes = append(t.Nodes, Node{Front: NoNode, Back: NoNode})
	return NodeIndex(len(t.Nodes) - 1)
}

// Walk visits nodes in pre-order, front subtree before back subtree.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(i NodeIndex, n *Node, depth int) bool) {
	t.walk(t.Root, 0, fn)
}

func (t *Tree) walk(i NodeIndex, depth int, fn func(NodeIndex, *Node, int) bool) {
	if i == NoNode {
		return
	}
	n := t.Node(i)
	if !fn(i, n, depth) {
		return
	}
	t.walk(n.Front, depth+1, fn)
	t.walk(n.Back, depth+1, fn)
}
