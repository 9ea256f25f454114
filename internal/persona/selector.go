package persona

import (
	"math/rand"

	"buzzmill/internal/types"
)

// selector samples personas without replacement within one reply round.
// The exclusion set is seeded with the post author so authors never reply to
// themselves. Once every pool member is used, selection falls back to
// unrestricted random over the full pool.
type selector struct {
	pool []*types.Persona
	used map[string]bool
	rng  *rand.Rand
}

func newSelector(pool []*types.Persona, rng *rand.Rand, exclude ...string) *selector {
	s := &selector{
		pool: pool,
		used: make(map[string]bool, len(pool)),
		rng:  rng,
	}
	for _, id := range exclude {
		s.used[id] = true
	}
	return s
}

// pick returns the next persona and marks it used.
func (s *selector) pick() *types.Persona {
	available := make([]*types.Persona, 0, len(s.pool))
	for _, p := range s.pool {
		if !s.used[p.ID] {
			available = append(available, p)
		}
	}

	var chosen *types.Persona
	if len(available) > 0 {
		chosen = available[s.rng.Intn(len(available))]
	} else {
		chosen = s.pool[s.rng.Intn(len(s.pool))]
	}
	s.used[chosen.ID] = true
	return chosen
}
