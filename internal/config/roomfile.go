package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/roombsp/internal/room"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownMaterial is returned when a wall names a material the room file
// does not define.
var ErrUnknownMaterial = errors.New("unknown material")

// RoomFile is the JSON description of a room's geometry.
type RoomFile struct {
	Name      string         `json:"name"`
	Materials []MaterialSpec `json:"materials"`
	Walls     []WallSpec     `json:"walls"`
}

// MaterialSpec describes one acoustic material.
type MaterialSpec struct {
	Name       string    `json:"name"`
	Absorption []float64 `json:"absorption"`
	Scattering float64   `json:"scattering,omitempty"`
}

// WallSpec describes one wall. Corners are listed counter-clockwise as seen
// from inside the room, so the derived normal points into the room.
type WallSpec struct {
	Material string       `json:"material"`
	Corners  [][3]float64 `json:"corners"`
}

// LoadRoomFile reads a room file. The same extension and size limits as
// LoadRoomConfig apply.
func LoadRoomFile(path string) (*RoomFile, error) {
	data, err := readJSONFile("room", path)
	if err != nil {
		return nil, err
	}
	var rf RoomFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse room JSON: %w", err)
	}
	return &rf, nil
}

// InputWalls converts the room file into input walls. Wall ids are positions in
// the file.
func (rf *RoomFile) InputWalls() ([]room.Wall, error) {
	materials := make(map[string]*room.Material, len(rf.Materials))
	for _, m := range rf.Materials {
		if _, dup := materials[m.Name]; dup {
			return nil, fmt.Errorf("duplicate material %q", m.Name)
		}
		materials[m.Name] = &room.Material{
			Name:       m.Name,
			Absorption: append([]float64(nil), m.Absorption...),
			Scattering: m.Scattering,
		}
	}

	walls := make([]room.Wall, 0, len(rf.Walls))
	for i, ws := range rf.Walls {
		m, ok := materials[ws.Material]
		if !ok {
			return nil, fmt.Errorf("wall %d: %w %q", i, ErrUnknownMaterial, ws.Material)
		}
		corners := make([]r3.Vec, len(ws.Corners))
		for j, c := range ws.Corners {
			corners[j] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
		}
		w, err := room.NewWall(i, corners, m)
		if err != nil {
			return nil, fmt.Errorf("load room %q: %w", rf.Name, err)
		}
		walls = append(walls, w)
	}
	return walls, nil
}
