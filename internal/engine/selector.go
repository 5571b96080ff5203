// Package engine - selector.go
// Weighted-random game selection biased toward cross-domain variety.
package engine

import (
	"math/rand"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

// crossDomainWeight and sameDomainWeight bias the draw toward games that
// force a cognitive context switch.
const (
	crossDomainWeight = 2
	sameDomainWeight  = 1
)

// Selector draws the next mini-game. The RNG is injected so sessions can be
// replayed deterministically under a fixed seed.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector over the given RNG.
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// SelectWeighted picks the next game from the pool, never re-picking the
// current one when an alternative exists. Candidates in a different cognitive
// domain than the current game count double.
func (s *Selector) SelectWeighted(current game.ID, pool []game.ID) game.ID {
	currentDomain := game.ProfileOf(current).Domain

	type candidate struct {
		id     game.ID
		weight int
	}
	var candidates []candidate
	total := 0

	for _, id := range pool {
		if id == current {
			continue
		}
		w := sameDomainWeight
		if game.ProfileOf(id).Domain != currentDomain {
			w = crossDomainWeight
		}
		candidates = append(candidates, candidate{id: id, weight: w})
		total += w
	}

	if len(candidates) == 0 {
		// Single-game pool: staying put is the only option.
		return current
	}

	roll := s.rng.Intn(total)
	for _, c := range candidates {
		roll -= c.weight
		if roll < 0 {
			return c.id
		}
	}
	return candidates[len(candidates)-1].id
}

// SelectUnderserved picks uniformly among games absent from the recent
// window, keeping every game in rotation. Falls back to the weighted draw
// when the whole pool has been seen recently.
func (s *Selector) SelectUnderserved(current game.ID, pool []game.ID, recent []game.ID) game.ID {
	seen := make(map[game.ID]bool, len(recent))
	for _, id := range recent {
		seen[id] = true
	}

	var starved []game.ID
	for _, id := range pool {
		if id != current && !seen[id] {
			starved = append(starved, id)
		}
	}

	if len(starved) == 0 {
		return s.SelectWeighted(current, pool)
	}
	return starved[s.rng.Intn(len(starved))]
}

// excludeRecent returns the pool minus the most recently played games.
// Never empties the pool entirely.
func excludeRecent(pool []game.ID, recent []game.ID, keepOut int) []game.ID {
	if keepOut > len(recent) {
		keepOut = len(recent)
	}
	blocked := make(map[game.ID]bool, keepOut)
	for _, id := range recent[len(recent)-keepOut:] {
		blocked[id] = true
	}

	var out []game.ID
	for _, id := range pool {
		if !blocked[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return pool
	}
	return out
}
