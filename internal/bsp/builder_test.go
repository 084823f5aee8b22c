package bsp

import (
	"testing"

	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"github.com/banshee-data/roombsp/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var testKernel = geom.NewKernel(1e-9)

// shape is a pointer view of a tree used for golden comparisons.
type shape struct {
	IDs   []int
	Leaf  bool
	Front *shape
	Back  *shape
}

func shapeOf(t *Tree, walls *room.Store, i NodeIndex) *shape {
	if i == NoNode {
		return nil
	}
	n := t.Node(i)
	s := &shape{Leaf: n.Leaf}
	for _, wi := range n.Walls {
		s.IDs = append(s.IDs, walls.At(wi).ID)
	}
	s.Front = shapeOf(t, walls, n.Front)
	s.Back = shapeOf(t, walls, n.Back)
	return s
}

func build(walls []room.Wall, threshold float64) (*Tree, *room.Store, *room.Store) {
	input := room.NewStore(walls)
	tree, out := NewBuilder(testKernel, input, threshold).Build()
	return tree, out, input
}

func TestBuild_EmptyInput(t *testing.T) {
	tree, out, _ := build(nil, 0.5)
	assert.True(t, tree.Empty())
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 0, Height(tree))
}

func TestBuild_ConvexRoomIsSingleLeaf(t *testing.T) {
	t.Parallel()
	box := testutil.ShoeboxRoom(4, 3, 2.5)
	tree, out, input := build(box, 0.5)

	require.Equal(t, 1, tree.Len())
	root := tree.Node(tree.Root)
	assert.True(t, root.Leaf)
	assert.Equal(t, NoNode, root.Front)
	assert.Equal(t, NoNode, root.Back)
	require.Len(t, root.Walls, len(box))
	require.Equal(t, len(box), out.Len())

	for i, wi := range root.Walls {
		w := out.At(wi)
		parent := input.At(room.WallIndex(i))
		assert.Equal(t, i, w.ParentID)
		assert.Equal(t, room.WallIndex(i), w.Parent)
		assert.Equal(t, parent.Corners, w.Corners)
		assert.Equal(t, parent.Normal, w.Normal)
		assert.Equal(t, parent.Offset, w.Offset)
		assert.Same(t, parent.Material, w.Material)
		assert.True(t, w.ForceLoaded)
		assert.True(t, w.Enabled)
	}
	assert.Equal(t, 1, Height(tree))
}

func TestBuild_DisabledWallsAreNotPartitioned(t *testing.T) {
	input := room.NewStore(testutil.ShoeboxRoom(4, 3, 2.5))
	require.NoError(t, input.Disable([]int{1, 4}))

	tree, out := NewBuilder(testKernel, input, 0.5).Build()
	assert.Equal(t, 4, out.Len())
	for _, wi := range out.Indices() {
		p := out.At(wi).ParentID
		assert.NotEqual(t, 1, p)
		assert.NotEqual(t, 4, p)
	}
	assert.Equal(t, 1, Height(tree))
}

// Three mutually crossing squares can never satisfy a threshold of 1.0, so
// every split falls back to the minimal-deviation candidate.
func TestBuild_CrossingSquaresGolden(t *testing.T) {
	tree, out, _ := build(testutil.CrossingSquares(), 1.0)

	want := &shape{
		IDs: []int{0},
		Front: &shape{
			IDs:   []int{10000},
			Front: &shape{IDs: []int{20000}, Leaf: true},
			Back:  &shape{IDs: []int{20001}, Leaf: true},
		},
		Back: &shape{
			IDs:   []int{10001},
			Front: &shape{IDs: []int{20002}, Leaf: true},
			Back:  &shape{IDs: []int{20003}, Leaf: true},
		},
	}
	if diff := cmp.Diff(want, shapeOf(tree, out, tree.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}

	// Production order is post-order: subtrees before their node.
	var produced []int
	for _, wi := range out.Indices() {
		produced = append(produced, out.At(wi).ID)
	}
	assert.Equal(t, []int{20000, 20001, 10000, 20002, 20003, 10001, 0}, produced)

	assert.Equal(t, 3, Height(tree))
	assert.Equal(t, []int{1, 2, 4}, DepthProfile(tree))
	assert.Equal(t, NodeIndex(0), tree.Root)
}

func TestBuild_GoldenIsReproducible(t *testing.T) {
	first, firstOut, _ := build(testutil.CrossingSquares(), 1.0)
	for i := 0; i < 5; i++ {
		again, againOut, _ := build(testutil.CrossingSquares(), 1.0)
		if diff := cmp.Diff(shapeOf(first, firstOut, first.Root), shapeOf(again, againOut, again.Root)); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestBuild_NodeWallsAreSplitterPlusCoplanar(t *testing.T) {
	walls := testutil.CrossingSquares()[:2]
	// A second square on x=0, clear of the first, sharing its plane.
	walls = append(walls, testutil.PlaneWall(2, r3.Vec{X: 1},
		r3.Vec{X: 0, Y: 2, Z: -1}, r3.Vec{X: 0, Y: 4, Z: -1}, r3.Vec{X: 0, Y: 4, Z: 1}, r3.Vec{X: 0, Y: 2, Z: 1}))

	tree, out, _ := build(walls, 1.0)
	root := tree.Node(tree.Root)
	require.False(t, root.Leaf)

	var parents []int
	for _, wi := range root.Walls {
		parents = append(parents, out.At(wi).ParentID)
	}
	assert.Equal(t, []int{0, 2}, parents, "splitter first, then coplanar polygons")

	front := tree.Node(root.Front)
	back := tree.Node(root.Back)
	assert.True(t, front.Leaf)
	assert.True(t, back.Leaf)
	assert.Equal(t, 1, out.At(front.Walls[0]).ParentID)
	assert.Equal(t, 1, out.At(back.Walls[0]).ParentID)
}

func TestBuild_LRoomInvariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		threshold float64
		nodes     int
		height    int
	}{
		// A zero threshold accepts the floor, which leaves everything in
		// front, so the tree degenerates into a chain.
		{0, 7, 6},
		{0.3, 3, 2},
		{0.5, 3, 2},
		{0.8, 3, 2},
		{1, 3, 2},
	}
	for _, tt := range tests {
		threshold := tt.threshold
		tree, out, input := build(testutil.LRoom(), threshold)
		require.False(t, tree.Empty())
		assert.Equal(t, tt.nodes, tree.Len(), "threshold %v", threshold)
		assert.Equal(t, tt.height, Height(tree), "threshold %v", threshold)

		seen := make(map[room.WallIndex]int)
		tree.Walk(func(_ NodeIndex, n *Node, _ int) bool {
			for _, wi := range n.Walls {
				seen[wi]++
			}
			if n.Leaf {
				assert.Equal(t, NoNode, n.Front)
				assert.Equal(t, NoNode, n.Back)
				assert.True(t, isConvex(testKernel, leafPolygons(out, n)), "leaf not convex at threshold %v", threshold)
			} else {
				// Every wall of an internal node lies on the node plane.
				for _, wi := range n.Walls {
					for _, c := range out.At(wi).Corners {
						assert.Equal(t, geom.On, testKernel.Classify(n.Plane, c))
					}
				}
			}
			return true
		})

		assert.Len(t, seen, out.Len(), "every produced wall is in the tree")
		for wi, count := range seen {
			assert.Equal(t, 1, count, "wall %d referenced more than once", wi)
			w := out.At(wi)
			parent := input.At(w.Parent)
			assert.Equal(t, parent.Normal, w.Normal)
			assert.Equal(t, parent.Offset, w.Offset)
			assert.Greater(t, r3.Norm(geom.NewellNormal(w.Corners))/2, testKernel.Epsilon, "wall %d has no area", w.ID)
		}
	}
}

// Splitting the L along its inner wall leaves two convex arms, each of
// which must become exactly one leaf.
func TestBuild_LRoomArmsAreSingleLeaves(t *testing.T) {
	tree, out, _ := build(testutil.LRoom(), 0.5)

	want := &shape{
		IDs:   []int{40000},
		Front: &shape{IDs: []int{0, 10000, 20000, 30000, 70000}, Leaf: true},
		Back:  &shape{IDs: []int{1, 10001, 50000, 60000, 70001}, Leaf: true},
	}
	if diff := cmp.Diff(want, shapeOf(tree, out, tree.Root)); diff != "" {
		t.Errorf("tree shape mismatch (-want +got):\n%s", diff)
	}

	back := tree.Node(tree.Node(tree.Root).Back)
	floorArm := out.At(back.Walls[0])
	assert.Equal(t, []r3.Vec{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 1}}, floorArm.Corners)
}

func TestBuild_InternalNodeWallsHaveSortedBlockers(t *testing.T) {
	tree, out, _ := build(testutil.LRoom(), 0.5)
	tree.Walk(func(_ NodeIndex, n *Node, _ int) bool {
		if n.Leaf {
			return true
		}
		for _, wi := range n.Walls {
			w := out.At(wi)
			c := w.Centroid()
			prev := -1.0
			for _, bi := range w.Blockers {
				assert.NotEqual(t, wi, bi)
				d := r3.Norm(r3.Sub(out.At(bi).Centroid(), c))
				assert.GreaterOrEqual(t, d, prev)
				prev = d
			}
		}
		return true
	})
}

func leafPolygons(s *room.Store, n *Node) []geom.Polygon {
	polys := make([]geom.Polygon, 0, len(n.Walls))
	for _, wi := range n.Walls {
		w := s.At(wi)
		polys = append(polys, geom.Polygon{Points: w.Corners, Plane: w.Plane(), Parent: w.ParentID})
	}
	return polys
}
