// Package geom is the geometric kernel used by the BSP builder.
//
// Responsibilities: plane representation, exact three-way classification
// of points against a plane (with a configurable tolerance), and splitting
// a planar polygon by a plane into above/on/below fragments.
// Key types: Plane, Polygon, Side, Kernel.
//
// All vectors are gonum r3.Vec. The package holds no state and performs
// no I/O.
package geom
