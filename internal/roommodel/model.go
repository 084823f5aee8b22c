// Package roommodel assembles the acoustic room model: it runs the BSP
// build over a room's walls and derives the data image-source lookups need
// from the result.
//
// Pipeline: bsp.Builder -> HarmonizeIDs -> BuildPlanePolygonMap ->
// blocker and direct-reflectable computation -> AggregateReflectables ->
// bsp.Height. The model is built once per room and rebuilt from scratch
// whenever the geometry changes.
package roommodel

import (
	"github.com/banshee-data/roombsp/internal/bsp"
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/monitoring"
	"github.com/banshee-data/roombsp/internal/room"
)

const logComponent = "roommodel"

// Options configure SetUp.
type Options struct {
	// Threshold is the Ranta-Eskola balance threshold in [0,1].
	Threshold float64
	// Kernel defaults to geom.NewKernel(geom.DefaultEpsilon).
	Kernel bsp.Kernel
}

// Model is a built room. Walls owns every post-split wall; Tree and
// PlaneMap refer into it by index. Input is kept for parent lookups and
// must not be modified while the model is in use.
type Model struct {
	Input     *room.Store
	Walls     *room.Store
	Tree      *bsp.Tree
	Height    int
	PlaneMap  *PlanePolygonMap
	Threshold float64
}

// SetUp builds the room model from the enabled walls of input.
func SetUp(input *room.Store, opts Options) *Model {
	k := opts.Kernel
	if k == nil {
		k = geom.NewKernel(geom.DefaultEpsilon)
	}

	m := &Model{Input: input, Threshold: opts.Threshold}

	func() {
		defer monitoring.Timed(logComponent, "bsp build")()
		m.Tree, m.Walls = bsp.NewBuilder(k, input, opts.Threshold).Build()
	}()

	HarmonizeIDs(input.Len(), m.Walls)

	func() {
		defer monitoring.Timed(logComponent, "plane map")()
		m.PlaneMap = BuildPlanePolygonMap(m.Walls)
	}()

	func() {
		defer monitoring.Timed(logComponent, "reflectables")()
		all := m.Walls.Indices()
		bsp.InitBlockers(k, m.Walls, all, all)
		ComputeDirectReflectables(k, m.Tree, m.Walls)
		AggregateReflectables(m.Walls, m.PlaneMap)
	}()

	m.Height = bsp.Height(m.Tree)
	monitoring.Logf("Done building BSP tree, tree height: %d (%d walls, %d nodes, %d plane groups)",
		m.Height, m.Walls.Len(), m.Tree.Len(), len(m.PlaneMap.Groups))
	return m
}
