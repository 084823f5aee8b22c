// Package sqlite persists built room models in SQLite.
//
// A build is stored as one room_builds row plus its post-split walls, BSP
// nodes and plane groups, so a room can be reloaded without rebuilding the
// tree until its geometry changes. The schema is managed by golang-migrate
// from the embedded migrations directory.
package sqlite
