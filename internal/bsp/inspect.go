package bsp

import (
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/roombsp/internal/room"
)

// Height returns the number of nodes on the longest root-to-leaf path.
// An empty tree has height 0. Traversal code sizes its visited-node buffers
// from this value.
func Height(t *Tree) int {
	return height(t, t.Root)
}

func height(t *Tree, i NodeIndex) int {
	if i == NoNode {
		return 0
	}
	n := t.Node(i)
	front := height(t, n.Front)
	back := height(t, n.Back)
	if front >= back {
		return front + 1
	}
	return back + 1
}

// DepthProfile returns the number of nodes at each depth, root first.
func DepthProfile(t *Tree) []int {
	var profile []int
	t.Walk(func(_ NodeIndex, _ *Node, depth int) bool {
		for len(profile) <= depth {
			profile = append(profile, 0)
		}
		profile[depth]++
		return true
	})
	return profile
}

// Fprint writes an indented drawing of the tree, one node per line listing
// the ids of its walls. Front children are drawn with "|---", back
// children with "'---".
func Fprint(w io.Writer, t *Tree, walls *room.Store) error {
	return fprint(w, t, walls, t.Root, "", false)
}

func fprint(w io.Writer, t *Tree, walls *room.Store, i NodeIndex, prefix string, front bool) error {
	if i == NoNode {
		return nil
	}
	n := t.Node(i)

	branch, indent := "'---", "    "
	if front {
		branch, indent = "|---", "|   "
	}
	ids := make([]string, 0, len(n.Walls))
	for _, wi := range n.Walls {
		ids = append(ids, fmt.Sprint(walls.At(wi).ID))
	}
	if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, strings.Join(ids, " ")); err != nil {
		return err
	}
	if err := fprint(w, t, walls, n.Front, prefix+indent, true); err != nil {
		return err
	}
	return fprint(w, t, walls, n.Back, prefix+indent, false)
}
