package engine

import (
	"math/rand"
	"testing"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

func TestSelectWeightedNeverRepeatsCurrent(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(7)))
	pool := game.All()

	for i := 0; i < 500; i++ {
		next := sel.SelectWeighted(game.MathBlitz, pool)
		if next == game.MathBlitz {
			t.Fatalf("Draw %d re-picked the current game", i)
		}
	}
}

func TestSelectWeightedSingleGamePool(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(7)))

	// With no alternative, staying put is the only legal outcome.
	next := sel.SelectWeighted(game.MathBlitz, []game.ID{game.MathBlitz})
	if next != game.MathBlitz {
		t.Errorf("Expected MathBlitz from a single-game pool, got %s", next)
	}
}

func TestSelectWeightedPrefersCrossDomain(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(99)))

	// Current is Logic; one candidate shares the domain, one does not.
	pool := []game.ID{game.ChainLogic, game.PatternSpot, game.ReactionTap}

	counts := map[game.ID]int{}
	for i := 0; i < 3000; i++ {
		counts[sel.SelectWeighted(game.ChainLogic, pool)]++
	}

	// ReactionTap carries double weight: expect roughly a 2:1 split.
	if counts[game.ReactionTap] <= counts[game.PatternSpot] {
		t.Errorf("Cross-domain candidate should dominate: cross=%d same=%d",
			counts[game.ReactionTap], counts[game.PatternSpot])
	}
}

func TestSelectUnderservedPicksStarvedGame(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(3)))
	pool := game.All()
	recent := []game.ID{
		game.MathBlitz, game.StroopShift, game.MemoryGrid,
		game.PatternSpot, game.WordSearch, game.ReactionTap, game.ChainLogic,
	}

	// Only CubeCount is absent from the window.
	for i := 0; i < 50; i++ {
		next := sel.SelectUnderserved(game.MathBlitz, pool, recent)
		if next != game.CubeCount {
			t.Fatalf("Expected the starved game, got %s", next)
		}
	}
}

func TestSelectUnderservedFallsBackWhenAllSeen(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(3)))
	pool := game.All()

	// Every pool game is recent: the weighted draw still produces something.
	next := sel.SelectUnderserved(game.MathBlitz, pool, pool)
	if next == game.MathBlitz {
		t.Errorf("Fallback draw re-picked the current game")
	}
	found := false
	for _, id := range pool {
		if id == next {
			found = true
		}
	}
	if !found {
		t.Errorf("Fallback draw produced a game outside the pool: %s", next)
	}
}

func TestExcludeRecentKeepsPoolNonEmpty(t *testing.T) {
	pool := []game.ID{game.MathBlitz, game.StroopShift}
	recent := []game.ID{game.StroopShift, game.MathBlitz}

	// Blocking both would empty the pool; the filter must refuse to.
	out := excludeRecent(pool, recent, 2)
	if len(out) == 0 {
		t.Fatal("Recency filter emptied the pool")
	}
}

func TestExcludeRecentBlocksTail(t *testing.T) {
	pool := game.All()
	recent := []game.ID{game.MathBlitz, game.StroopShift, game.MemoryGrid}

	out := excludeRecent(pool, recent, 2)
	for _, id := range out {
		if id == game.StroopShift || id == game.MemoryGrid {
			t.Errorf("Recently played %s survived the filter", id)
		}
	}
	// Only the last two are barred; older games stay eligible.
	found := false
	for _, id := range out {
		if id == game.MathBlitz {
			found = true
		}
	}
	if !found {
		t.Error("Game outside the exclusion tail was filtered out")
	}
}
