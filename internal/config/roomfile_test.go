package config

import (
	"errors"
	"testing"

	"github.com/banshee-data/roombsp/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const twoWalls = `{
  "name": "corner",
  "materials": [
    {"name": "concrete", "absorption": [0.01, 0.02]},
    {"name": "wood", "absorption": [0.15, 0.11], "scattering": 0.2}
  ],
  "walls": [
    {"material": "concrete", "corners": [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]},
    {"material": "wood", "corners": [[0, 0, 0], [0, 0, 1], [1, 0, 1], [1, 0, 0]]}
  ]
}`

func TestLoadRoomFile(t *testing.T) {
	rf, err := LoadRoomFile(writeFile(t, "corner.json", twoWalls))
	require.NoError(t, err)
	assert.Equal(t, "corner", rf.Name)

	walls, err := rf.InputWalls()
	require.NoError(t, err)
	require.Len(t, walls, 2)

	floor := walls[0]
	assert.Equal(t, 0, floor.ID)
	assert.True(t, floor.Enabled)
	assert.Equal(t, r3.Vec{Z: 1}, floor.Normal)
	assert.Equal(t, 0.0, floor.Offset)
	assert.Equal(t, -1, floor.ParentID)
	assert.Equal(t, room.NoWall, floor.Parent)
	assert.Equal(t, "concrete", floor.Material.Name)

	side := walls[1]
	assert.Equal(t, 1, side.ID)
	assert.InDelta(t, 1.0, side.Normal.Y, 1e-12)
	assert.Equal(t, 0.2, side.Material.Scattering)
}

func TestRoomFileWalls_SharedMaterial(t *testing.T) {
	rf := &RoomFile{
		Materials: []MaterialSpec{{Name: "m"}},
		Walls: []WallSpec{
			{Material: "m", Corners: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
			{Material: "m", Corners: [][3]float64{{0, 0, 1}, {0, 1, 1}, {1, 0, 1}}},
		},
	}
	walls, err := rf.InputWalls()
	require.NoError(t, err)
	assert.Same(t, walls[0].Material, walls[1].Material)
}

func TestRoomFileWalls_Errors(t *testing.T) {
	tri := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	t.Run("unknown material", func(t *testing.T) {
		rf := &RoomFile{Walls: []WallSpec{{Material: "glass", Corners: tri}}}
		_, err := rf.InputWalls()
		assert.True(t, errors.Is(err, ErrUnknownMaterial), "got %v", err)
	})

	t.Run("duplicate material", func(t *testing.T) {
		rf := &RoomFile{Materials: []MaterialSpec{{Name: "a"}, {Name: "a"}}}
		_, err := rf.InputWalls()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate material")
	})

	t.Run("degenerate wall", func(t *testing.T) {
		rf := &RoomFile{
			Materials: []MaterialSpec{{Name: "a"}},
			Walls:     []WallSpec{{Material: "a", Corners: [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}}},
		}
		_, err := rf.InputWalls()
		assert.True(t, errors.Is(err, room.ErrDegenerateWall), "got %v", err)
	})
}

func TestLoadRoomFile_ExampleRoom(t *testing.T) {
	rf, err := LoadRoomFile("../../config/rooms/lroom.json")
	require.NoError(t, err)

	walls, err := rf.InputWalls()
	require.NoError(t, err)
	require.Len(t, walls, 8)

	// Every normal points towards the room's interior point (0.5, 0.5, 1.5).
	inside := r3.Vec{X: 0.5, Y: 0.5, Z: 1.5}
	for _, w := range walls {
		assert.Greater(t, r3.Dot(w.Normal, inside)-w.Offset, 0.0, "wall %d", w.ID)
	}
}
