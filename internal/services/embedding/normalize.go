package embedding

import (
	"github.com/viant/vec/search"
)

// Normalize scales v to unit length in place and returns it, so that inner
// product over normalized vectors equals cosine similarity. A zero vector is
// returned unchanged.
func Normalize(v []float32) []float32 {
	mag := search.Float32s(v).Magnitude()
	if mag == 0 {
		return v
	}
	for i := range v {
		v[i] /= mag
	}
	return v
}
