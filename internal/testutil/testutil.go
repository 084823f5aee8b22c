// Package testutil provides shared test utilities and room fixtures.
//
// This package centralises the room geometries used across the bsp,
// roommodel and storage tests so every package exercises the same shapes.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// Concrete is the material shared by every fixture wall.
var Concrete = &room.Material{Name: "concrete", Absorption: []float64{0.01, 0.01, 0.02, 0.02, 0.02, 0.03}}

// PlaneWall builds an enabled input wall with an explicit normal. The
// offset is taken from the first corner.
func PlaneWall(id int, normal r3.Vec, corners ...r3.Vec) room.Wall {
	return room.Wall{
		ID:         id,
		Corners:    corners,
		Normal:     normal,
		Offset:     r3.Dot(normal, corners[0]),
		Material:   Concrete,
		Enabled:    true,
		ParentID:   -1,
		Parent:     room.NoWall,
		PlaneGroup: room.NoPlaneGroup,
	}
}

// CrossingSquares returns three 2x2 squares centred on the origin in the
// planes x=0, y=0 and z=0, each cutting through the other two.
func CrossingSquares() []room.Wall {
	return []room.Wall{
		PlaneWall(0, r3.Vec{X: 1},
			r3.Vec{X: 0, Y: -1, Z: -1}, r3.Vec{X: 0, Y: 1, Z: -1}, r3.Vec{X: 0, Y: 1, Z: 1}, r3.Vec{X: 0, Y: -1, Z: 1}),
		PlaneWall(1, r3.Vec{Y: 1},
			r3.Vec{X: -1, Y: 0, Z: -1}, r3.Vec{X: 1, Y: 0, Z: -1}, r3.Vec{X: 1, Y: 0, Z: 1}, r3.Vec{X: -1, Y: 0, Z: 1}),
		PlaneWall(2, r3.Vec{Z: 1},
			r3.Vec{X: -1, Y: -1, Z: 0}, r3.Vec{X: 1, Y: -1, Z: 0}, r3.Vec{X: 1, Y: 1, Z: 0}, r3.Vec{X: -1, Y: 1, Z: 0}),
	}
}

// ExtrudedRoom builds a closed room from a counter-clockwise floor plan
// extruded to height. Wall order: floor, ceiling, then one side wall per
// plan edge. Every normal points into the room.
func ExtrudedRoom(plan [][2]float64, height float64) []room.Wall {
	n := len(plan)
	floor := make([]r3.Vec, n)
	ceiling := make([]r3.Vec, n)
	for i, p := range plan {
		floor[i] = r3.Vec{X: p[0], Y: p[1], Z: 0}
		ceiling[n-1-i] = r3.Vec{X: p[0], Y: p[1], Z: height}
	}

	walls := []room.Wall{
		PlaneWall(0, r3.Vec{Z: 1}, floor...),
		PlaneWall(1, r3.Vec{Z: -1}, ceiling...),
	}
	for i := range plan {
		a, b := plan[i], plan[(i+1)%n]
		d := r3.Unit(r3.Vec{X: b[0] - a[0], Y: b[1] - a[1]})
		normal := r3.Vec{X: 0 - d.Y, Y: d.X} // 0 - d.Y avoids a negative zero
		walls = append(walls, PlaneWall(len(walls), normal,
			r3.Vec{X: a[0], Y: a[1], Z: 0},
			r3.Vec{X: b[0], Y: b[1], Z: 0},
			r3.Vec{X: b[0], Y: b[1], Z: height},
			r3.Vec{X: a[0], Y: a[1], Z: height},
		))
	}
	return walls
}

// ShoeboxRoom is a convex w x d x h box.
func ShoeboxRoom(w, d, h float64) []room.Wall {
	return ExtrudedRoom([][2]float64{{0, 0}, {w, 0}, {w, d}, {0, d}}, h)
}

// LRoom is a non-convex L-shaped room, 2x2 with the (1..2, 1..2) quadrant
// removed, 1 high.
func LRoom() []room.Wall {
	return ExtrudedRoom([][2]float64{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}, 1)
}
