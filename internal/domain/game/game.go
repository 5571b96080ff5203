// Package game defines the core domain entities for the mini-game catalog.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package game

// CognitiveDomain is the mental faculty a mini-game primarily exercises.
type CognitiveDomain string

const (
	DomainMath       CognitiveDomain = "Math"
	DomainMemory     CognitiveDomain = "Memory"
	DomainSpatial    CognitiveDomain = "Spatial"
	DomainLinguistic CognitiveDomain = "Linguistic"
	DomainReaction   CognitiveDomain = "Reaction"
	DomainLogic      CognitiveDomain = "Logic"
	DomainPerception CognitiveDomain = "Perception"
)

// ID identifies a mini-game in the catalog.
type ID string

const (
	MathBlitz   ID = "MathBlitz"   // Rapid-fire arithmetic
	StroopShift ID = "StroopShift" // Color-word interference
	MemoryGrid  ID = "MemoryGrid"  // Flash-and-recall tile grid
	PatternSpot ID = "PatternSpot" // Odd-one-out sequence spotting
	WordSearch  ID = "WordSearch"  // Find the word in a letter grid
	ReactionTap ID = "ReactionTap" // Tap on cue, hold on fake-out
	ChainLogic  ID = "ChainLogic"  // If-then deduction chains
	CubeCount   ID = "CubeCount"   // Count cubes in an isometric stack
)

// Profile holds the static tension characteristics of a mini-game.
type Profile struct {
	Domain CognitiveDomain `json:"domain"`

	// GenerationWeight scales how much a correct answer in this game raises
	// cross-domain tension. 0-1.
	GenerationWeight float64 `json:"generation_weight"`

	// SusceptibilityWeight scales how strongly existing tension overclocks
	// this game's pacing. 0-1.
	SusceptibilityWeight float64 `json:"susceptibility_weight"`
}

// Profiles maps every catalog game to its tension profile.
// Lookup tables, not switch statements: adding a game means adding rows here
// and in TierTable, nothing else.
var Profiles = map[ID]Profile{
	MathBlitz:   {Domain: DomainMath, GenerationWeight: 1.0, SusceptibilityWeight: 0.9},
	StroopShift: {Domain: DomainPerception, GenerationWeight: 0.8, SusceptibilityWeight: 1.0},
	MemoryGrid:  {Domain: DomainMemory, GenerationWeight: 0.9, SusceptibilityWeight: 0.5},
	PatternSpot: {Domain: DomainLogic, GenerationWeight: 0.7, SusceptibilityWeight: 0.7},
	WordSearch:  {Domain: DomainLinguistic, GenerationWeight: 0.6, SusceptibilityWeight: 0.4},
	ReactionTap: {Domain: DomainReaction, GenerationWeight: 0.5, SusceptibilityWeight: 1.0},
	ChainLogic:  {Domain: DomainLogic, GenerationWeight: 0.9, SusceptibilityWeight: 0.6},
	CubeCount:   {Domain: DomainSpatial, GenerationWeight: 0.8, SusceptibilityWeight: 0.6},
}

// All returns the full catalog in a stable order.
func All() []ID {
	return []ID{
		MathBlitz, StroopShift, MemoryGrid, PatternSpot,
		WordSearch, ReactionTap, ChainLogic, CubeCount,
	}
}

// ProfileOf returns the tension profile for a game. Unknown games get a
// neutral profile rather than a panic; the selector filters those out anyway.
func ProfileOf(id ID) Profile {
	if p, ok := Profiles[id]; ok {
		return p
	}
	return Profile{Domain: DomainLogic, GenerationWeight: 0.5, SusceptibilityWeight: 0.5}
}
