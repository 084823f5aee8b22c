package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roombsp/internal/bsp"
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"github.com/banshee-data/roombsp/internal/roommodel"
)

// ErrBuildNotFound is returned for unknown build ids.
var ErrBuildNotFound = errors.New("build not found")

// Build summarises one persisted room model.
type Build struct {
	BuildID        string  `json:"build_id"`
	RoomName       string  `json:"room_name"`
	SplitThreshold float64 `json:"split_threshold"`
	InputWalls     int     `json:"input_walls"`
	WallCount      int     `json:"wall_count"`
	NodeCount      int     `json:"node_count"`
	RootNode       int     `json:"root_node"`
	TreeHeight     int     `json:"tree_height"`
	PlaneGroups    int     `json:"plane_groups"`
	CreatedAt      int64   `json:"created_at"`
}

type materialRecord struct {
	Name       string    `json:"name"`
	Absorption []float64 `json:"absorption"`
	Scattering float64   `json:"scattering,omitempty"`
}

// ModelStore provides persistence for built room models.
type ModelStore struct {
	db *sql.DB
}

// NewModelStore creates a new ModelStore.
func NewModelStore(db *sql.DB) *ModelStore {
	return &ModelStore{db: db}
}

// InsertModel persists m under a new build id and returns the id. The
// whole model is written in one transaction.
func (s *ModelStore) InsertModel(roomName string, m *roommodel.Model) (string, error) {
	b := &Build{
		BuildID:        uuid.New().String(),
		RoomName:       roomName,
		SplitThreshold: m.Threshold,
		WallCount:      m.Walls.Len(),
		NodeCount:      m.Tree.Len(),
		RootNode:       int(m.Tree.Root),
		TreeHeight:     m.Height,
		PlaneGroups:    len(m.PlaneMap.Groups),
		CreatedAt:      time.Now().UnixNano(),
	}
	if m.Input != nil {
		b.InputWalls = m.Input.Len()
	}

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := insertBuild(tx, b); err != nil {
			return err
		}
		if err := insertWalls(tx, b.BuildID, m.Walls); err != nil {
			return err
		}
		if err := insertNodes(tx, b.BuildID, m.Tree); err != nil {
			return err
		}
		if err := insertPlaneGroups(tx, b.BuildID, m.PlaneMap); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("insert model: %w", err)
	}
	return b.BuildID, nil
}

func insertBuild(tx *sql.Tx, b *Build) error {
	_, err := tx.Exec(`
		INSERT INTO room_builds (
			build_id, room_name, split_threshold, input_walls, wall_count,
			node_count, root_node, tree_height, plane_groups, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BuildID, b.RoomName, b.SplitThreshold, b.InputWalls, b.WallCount,
		b.NodeCount, b.RootNode, b.TreeHeight, b.PlaneGroups, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

func insertWalls(tx *sql.Tx, buildID string, walls *room.Store) error {
	stmt, err := tx.Prepare(`
		INSERT INTO room_walls (
			build_id, wall_index, wall_id, parent_id, parent_index, enabled,
			force_loaded, plane_group, normal_x, normal_y, normal_z, plane_offset,
			material, material_json, corners_json, reflectables_json, blockers_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare wall insert: %w", err)
	}
	defer stmt.Close()

	for _, wi := range walls.Indices() {
		w := walls.At(wi)

		var matName, matJSON interface{}
		if w.Material != nil {
			matName = w.Material.Name
			raw, err := json.Marshal(materialRecord{
				Name:       w.Material.Name,
				Absorption: w.Material.Absorption,
				Scattering: w.Material.Scattering,
			})
			if err != nil {
				return fmt.Errorf("encode material of wall %d: %w", wi, err)
			}
			matJSON = string(raw)
		}
		corners, err := json.Marshal(w.Corners)
		if err != nil {
			return fmt.Errorf("encode corners of wall %d: %w", wi, err)
		}
		reflectables, err := marshalIndices(w.DirectReflectables)
		if err != nil {
			return err
		}
		blockers, err := marshalIndices(w.Blockers)
		if err != nil {
			return err
		}

		_, err = stmt.Exec(
			buildID, int(wi), w.ID, w.ParentID, int(w.Parent), w.Enabled,
			w.ForceLoaded, w.PlaneGroup, w.Normal.X, w.Normal.Y, w.Normal.Z, w.Offset,
			matName, matJSON, string(corners), reflectables, blockers,
		)
		if err != nil {
			return fmt.Errorf("insert wall %d: %w", wi, err)
		}
	}
	return nil
}

func insertNodes(tx *sql.Tx, buildID string, tree *bsp.Tree) error {
	stmt, err := tx.Prepare(`
		INSERT INTO room_nodes (
			build_id, node_index, front_node, back_node, is_leaf,
			plane_x, plane_y, plane_z, plane_offset, walls_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer stmt.Close()

	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		walls, err := json.Marshal(n.Walls)
		if err != nil {
			return fmt.Errorf("encode walls of node %d: %w", i, err)
		}
		_, err = stmt.Exec(
			buildID, i, int(n.Front), int(n.Back), n.Leaf,
			n.Plane.Normal.X, n.Plane.Normal.Y, n.Plane.Normal.Z, n.Plane.Offset,
			string(walls),
		)
		if err != nil {
			return fmt.Errorf("insert node %d: %w", i, err)
		}
	}
	return nil
}

func insertPlaneGroups(tx *sql.Tx, buildID string, pm *roommodel.PlanePolygonMap) error {
	for _, g := range pm.Groups {
		walls, err := json.Marshal(g.Walls)
		if err != nil {
			return fmt.Errorf("encode plane group %d: %w", g.ID, err)
		}
		reflectables, err := marshalIndices(g.DirectReflectables)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO room_plane_groups (build_id, group_id, walls_json, reflectables_json)
			VALUES (?, ?, ?, ?)`,
			buildID, g.ID, string(walls), reflectables,
		); err != nil {
			return fmt.Errorf("insert plane group %d: %w", g.ID, err)
		}
	}
	return nil
}

// marshalIndices encodes a wall index list; nil lists are stored as NULL.
func marshalIndices(idx []room.WallIndex) (interface{}, error) {
	if idx == nil {
		return nil, nil
	}
	raw, err := json.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("encode wall indices: %w", err)
	}
	return string(raw), nil
}

func unmarshalIndices(s sql.NullString) ([]room.WallIndex, error) {
	if !s.Valid {
		return nil, nil
	}
	var idx []room.WallIndex
	if err := json.Unmarshal([]byte(s.String), &idx); err != nil {
		return nil, fmt.Errorf("decode wall indices: %w", err)
	}
	return idx, nil
}

const buildColumns = `build_id, room_name, split_threshold, input_walls, wall_count,
	node_count, root_node, tree_height, plane_groups, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row scanner) (*Build, error) {
	var b Build
	err := row.Scan(
		&b.BuildID, &b.RoomName, &b.SplitThreshold, &b.InputWalls, &b.WallCount,
		&b.NodeCount, &b.RootNode, &b.TreeHeight, &b.PlaneGroups, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBuild returns the summary of one build.
func (s *ModelStore) GetBuild(buildID string) (*Build, error) {
	row := s.db.QueryRow(`SELECT `+buildColumns+` FROM room_builds WHERE build_id = ?`, buildID)
	b, err := scanBuild(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
		}
		return nil, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}

// ListBuilds returns the builds of a room, newest first. An empty roomName
// lists every build.
func (s *ModelStore) ListBuilds(roomName string) ([]*Build, error) {
	rows, err := s.db.Query(`
		SELECT `+buildColumns+`
		FROM room_builds
		WHERE ? = '' OR room_name = ?
		ORDER BY created_at DESC, rowid DESC`, roomName, roomName)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// LatestBuild returns the most recent build of a room.
func (s *ModelStore) LatestBuild(roomName string) (*Build, error) {
	row := s.db.QueryRow(`
		SELECT `+buildColumns+`
		FROM room_builds
		WHERE room_name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, roomName)
	b, err := scanBuild(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %q: %w", roomName, ErrBuildNotFound)
		}
		return nil, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}

// LoadModel rebuilds a persisted model. The returned model has no Input
// store; walls sharing a material name share one Material.
func (s *ModelStore) LoadModel(buildID string) (*roommodel.Model, error) {
	b, err := s.GetBuild(buildID)
	if err != nil {
		return nil, err
	}

	walls, err := s.loadWalls(buildID)
	if err != nil {
		return nil, err
	}
	tree, err := s.loadTree(buildID, bsp.NodeIndex(b.RootNode))
	if err != nil {
		return nil, err
	}
	pm, err := s.loadPlaneMap(buildID)
	if err != nil {
		return nil, err
	}

	return &roommodel.Model{
		Walls:     walls,
		Tree:      tree,
		Height:    b.TreeHeight,
		PlaneMap:  pm,
		Threshold: b.SplitThreshold,
	}, nil
}

func (s *ModelStore) loadWalls(buildID string) (*room.Store, error) {
	rows, err := s.db.Query(`
		SELECT wall_id, parent_id, parent_index, enabled, force_loaded, plane_group,
		       normal_x, normal_y, normal_z, plane_offset,
		       material_json, corners_json, reflectables_json, blockers_json
		FROM room_walls
		WHERE build_id = ?
		ORDER BY wall_index`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query walls: %w", err)
	}
	defer rows.Close()

	materials := make(map[string]*room.Material)
	walls := room.NewStore(nil)
	for rows.Next() {
		var w room.Wall
		var parent int
		var matJSON, reflectables, blockers sql.NullString
		var corners string
		if err := rows.Scan(
			&w.ID, &w.ParentID, &parent, &w.Enabled, &w.ForceLoaded, &w.PlaneGroup,
			&w.Normal.X, &w.Normal.Y, &w.Normal.Z, &w.Offset,
			&matJSON, &corners, &reflectables, &blockers,
		); err != nil {
			return nil, fmt.Errorf("scan wall: %w", err)
		}
		w.Parent = room.WallIndex(parent)

		if matJSON.Valid {
			var rec materialRecord
			if err := json.Unmarshal([]byte(matJSON.String), &rec); err != nil {
				return nil, fmt.Errorf("decode material of wall %d: %w", w.ID, err)
			}
			m, ok := materials[rec.Name]
			if !ok {
				m = &room.Material{Name: rec.Name, Absorption: rec.Absorption, Scattering: rec.Scattering}
				materials[rec.Name] = m
			}
			w.Material = m
		}
		if err := json.Unmarshal([]byte(corners), &w.Corners); err != nil {
			return nil, fmt.Errorf("decode corners of wall %d: %w", w.ID, err)
		}
		if w.DirectReflectables, err = unmarshalIndices(reflectables); err != nil {
			return nil, err
		}
		if w.Blockers, err = unmarshalIndices(blockers); err != nil {
			return nil, err
		}
		walls.Add(w)
	}
	return walls, rows.Err()
}

func (s *ModelStore) loadTree(buildID string, root bsp.NodeIndex) (*bsp.Tree, error) {
	rows, err := s.db.Query(`
		SELECT front_node, back_node, is_leaf, plane_x, plane_y, plane_z, plane_offset, walls_json
		FROM room_nodes
		WHERE build_id = ?
		ORDER BY node_index`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	tree := bsp.NewTree()
	tree.Root = root
	for rows.Next() {
		var n bsp.Node
		var front, back int
		var normal r3.Vec
		var offset float64
		var walls string
		if err := rows.Scan(&front, &back, &n.Leaf, &normal.X, &normal.Y, &normal.Z, &offset, &walls); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Front, n.Back = bsp.NodeIndex(front), bsp.NodeIndex(back)
		n.Plane = geom.Plane{Normal: normal, Offset: offset}
		if err := json.Unmarshal([]byte(walls), &n.Walls); err != nil {
			return nil, fmt.Errorf("decode node walls: %w", err)
		}
		tree.Nodes = append(tree.Nodes, n)
	}
	return tree, rows.Err()
}

func (s *ModelStore) loadPlaneMap(buildID string) (*roommodel.PlanePolygonMap, error) {
	rows, err := s.db.Query(`
		SELECT group_id, walls_json, reflectables_json
		FROM room_plane_groups
		WHERE build_id = ?
		ORDER BY group_id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query plane groups: %w", err)
	}
	defer rows.Close()

	pm := &roommodel.PlanePolygonMap{}
	for rows.Next() {
		var g roommodel.PlaneGroup
		var walls string
		var reflectables sql.NullString
		if err := rows.Scan(&g.ID, &walls, &reflectables); err != nil {
			return nil, fmt.Errorf("scan plane group: %w", err)
		}
		if err := json.Unmarshal([]byte(walls), &g.Walls); err != nil {
			return nil, fmt.Errorf("decode plane group %d: %w", g.ID, err)
		}
		if g.DirectReflectables, err = unmarshalIndices(reflectables); err != nil {
			return nil, err
		}
		pm.Groups = append(pm.Groups, g)
	}
	return pm, rows.Err()
}

// DeleteBuild removes a build and everything stored with it.
func (s *ModelStore) DeleteBuild(buildID string) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, table := range []string{"room_plane_groups", "room_nodes", "room_walls"} {
			if _, err := tx.Exec(`DELETE FROM `+table+` WHERE build_id = ?`, buildID); err != nil {
				return fmt.Errorf("delete from %s: %w", table, err)
			}
		}
		result, err := tx.Exec(`DELETE FROM room_builds WHERE build_id = ?`, buildID)
		if err != nil {
			return fmt.Errorf("delete build: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
		}
		return tx.Commit()
	})
}
