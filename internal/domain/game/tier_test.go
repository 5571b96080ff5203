package game

import "testing"

func TestValidateTables(t *testing.T) {
	if err := ValidateTables(); err != nil {
		t.Fatalf("Catalog integrity check failed: %v", err)
	}
}

func TestTierOfClampsOutOfBand(t *testing.T) {
	low := TierOf(MathBlitz, -3)
	if low != TierTable[MathBlitz][0] {
		t.Errorf("Tier below band should clamp to tier 1, got %+v", low)
	}

	high := TierOf(MathBlitz, 42)
	if high != TierTable[MathBlitz][MaxTier-1] {
		t.Errorf("Tier above band should clamp to tier 5, got %+v", high)
	}
}

func TestTierOfUnknownGame(t *testing.T) {
	cfg := TierOf(ID("TeaBrewing"), 3)
	if cfg != TierTable[MathBlitz][0] {
		t.Errorf("Unknown game should get the safe default, got %+v", cfg)
	}
}

func TestTiersGetHarder(t *testing.T) {
	// The answer window never grows with tier; that is the one monotonic
	// guarantee every game shares.
	for id, table := range TierTable {
		for i := 1; i < MaxTier; i++ {
			if table[i].TimerMS > table[i-1].TimerMS {
				t.Errorf("%s tier %d window grew: %d -> %d", id, i+1, table[i-1].TimerMS, table[i].TimerMS)
			}
		}
	}
}

func TestProfileOfFallsBackToNeutral(t *testing.T) {
	p := ProfileOf(ID("TeaBrewing"))
	if p.GenerationWeight != 0.5 || p.SusceptibilityWeight != 0.5 {
		t.Errorf("Expected neutral fallback profile, got %+v", p)
	}

	// Every catalog game resolves to its own profile, never the fallback.
	for _, id := range All() {
		if ProfileOf(id) != Profiles[id] {
			t.Errorf("Profile lookup missed for %s", id)
		}
	}
}
