package catalog

import (
	"math/rand/v2"

	"github.com/ukydev/carbvium/internal/models"
)

// DefaultTopN is the number of vehicles shown on the comparison chart.
const DefaultTopN = 15

// Source yields uniform random ints in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Shuffler picks a randomized top-N from a candidate list.
type Shuffler struct {
	src Source
}

// NewShuffler creates a shuffler. A nil source uses the global math/rand generator.
func NewShuffler(src Source) *Shuffler {
	if src == nil {
		src = globalSource{}
	}
	return &Shuffler{src: src}
}

// SelectRandomTopN keeps the first n vehicles in input order and returns
// them in a uniformly random order. The input slice is not modified.
func (s *Shuffler) SelectRandomTopN(vehicles []models.Vehicle, n int) []models.Vehicle {
	if n < 0 {
		n = 0
	}
	if len(vehicles) < n {
		n = len(vehicles)
	}

	out := make([]models.Vehicle, n)
	copy(out, vehicles[:n])

	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j := s.src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

var defaultShuffler = NewShuffler(nil)

// SelectRandomTopN uses the package default shuffler.
func SelectRandomTopN(vehicles []models.Vehicle, n int) []models.Vehicle {
	return defaultShuffler.SelectRandomTopN(vehicles, n)
}
