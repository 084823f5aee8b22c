package roommodel

import "github.com/banshee-data/roombsp/internal/room"

// IDStride is the id multiplier reserved per input wall. A wall split into
// IDStride or more fragments would collide with the next parent's ids;
// that is not checked.
const IDStride = 1000

// HarmonizeIDs relabels produced walls so each id reveals its lineage:
// the k-th wall (in production order) cut from input wall p gets id
// p*IDStride + k.
func HarmonizeIDs(inputCount int, walls *room.Store) {
	for parent := 0; parent < inputCount; parent++ {
		seq := 0
		for _, wi := range walls.Indices() {
			w := walls.At(wi)
			if w.ParentID != parent {
				continue
			}
			w.ID = parent*IDStride + seq
			seq++
		}
	}
}
