package bsp

import (
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kernel is the geometric kernel the builder depends on. geom.Kernel
// implements it.
type Kernel interface {
	Classify(pl geom.Plane, p r3.Vec) geom.Side
	Split(poly geom.Polygon, pl geom.Plane) (above, on, below []geom.Polygon)
}

// Builder holds the state of one tree construction: the input walls, the
// output wall store every produced wall is appended to, and the tree arena.
// A Builder is single use.
type Builder struct {
	kernel    Kernel
	threshold float64

	input *room.Store
	out   *room.Store
	tree  *Tree

	// produced counts walls emitted per parent, for provisional ids.
	produced map[int]int
}

// NewBuilder prepares a build over the enabled walls of input. threshold is
// the Ranta-Eskola balance threshold, nominally in [0,1].
func NewBuilder(k Kernel, input *room.Store, threshold float64) *Builder {
	return &Builder{
		kernel:    k,
		threshold: threshold,
		input:     input,
		out:       room.NewStore(nil),
		tree:      NewTree(),
		produced:  make(map[int]int),
	}
}

// Build partitions the input and returns the tree together with the store
// of post-split walls, in production order. Every produced wall is
// referenced by exactly one node.
func (b *Builder) Build() (*Tree, *room.Store) {
	b.tree.Root = b.build(ToPolygons(b.input))
	return b.tree, b.out
}

// build returns the root of a subtree covering exactly polys, or NoNode for
// empty input.
func (b *Builder) build(polys []geom.Polygon) NodeIndex {
	if len(polys) == 0 {
		return NoNode
	}

	if isConvex(b.kernel, polys) {
		idx := b.tree.reserve()
		walls := b.appendWalls(polys)
		*b.tree.Node(idx) = Node{Walls: walls, Front: NoNode, Back: NoNode, Leaf: true}
		return idx
	}

	best := pickSplitter(b.kernel, polys, b.threshold)
	splitter := polys[best]

	onPlane := []geom.Polygon{splitter}
	var above, below []geom.Polygon
	for i, p := range polys {
		if i == best {
			continue
		}
		a, o, bl := b.kernel.Split(p, splitter.Plane)
		above = append(above, a...)
		onPlane = append(onPlane, o...)
		below = append(below, bl...)
	}

	idx := b.tree.reserve()
	front := b.build(above)
	back := b.build(below)

	walls := b.appendWalls(onPlane)
	InitBlockers(b.kernel, b.out, walls, b.out.Indices())

	*b.tree.Node(idx) = Node{
		Walls: walls,
		Front: front,
		Back:  back,
		Plane: splitter.Plane,
	}
	return idx
}
