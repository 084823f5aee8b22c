// Package bsp builds a binary space partitioning tree from room walls.
//
// Responsibilities: converting walls to kernel polygons and back
// (adapter.go), choosing splitting planes with the Ranta-Eskola balance
// criterion (picker.go), recursive partitioning into convex leaves
// (builder.go), blocker candidate bookkeeping (blockers.go) and read-only
// inspection of the finished tree (inspect.go).
//
// Nodes live in a Tree arena and reference walls by room.WallIndex into a
// single output room.Store. Dropping the Tree drops every node.
//
// Construction is single-threaded and runs to completion; nothing here
// performs I/O or logs.
package bsp
