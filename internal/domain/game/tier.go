package game

import "fmt"

// MinTier and MaxTier bound the per-game difficulty scale.
const (
	MinTier = 1
	MaxTier = 5
)

// TierConfig holds the per-tier parameters handed to a mini-game before a
// round starts. Fields are a union across games; each game reads the ones it
// cares about and ignores the rest.
type TierConfig struct {
	GridW        int  `json:"grid_w"`        // Board width (MemoryGrid, WordSearch, CubeCount)
	GridH        int  `json:"grid_h"`        // Board height
	Targets      int  `json:"targets"`       // Tiles/words/cubes the player must find
	TimerMS      int  `json:"timer_ms"`      // Base answer window before overclock
	OperandMax   int  `json:"operand_max"`   // Largest operand (MathBlitz, ChainLogic)
	LetterPool   int  `json:"letter_pool"`   // Distinct letters in play (WordSearch)
	Choices      int  `json:"choices"`       // Answer buttons shown
	Interference bool `json:"interference"`  // Mismatched ink/word, decoy cues
	Rotation     bool `json:"rotation"`      // Rotated presentation (CubeCount, PatternSpot)
}

// TierTable maps each game to its five difficulty tiers, index 0 = tier 1.
var TierTable = map[ID][MaxTier]TierConfig{
	MathBlitz: {
		{OperandMax: 10, Choices: 3, TimerMS: 8000},
		{OperandMax: 25, Choices: 3, TimerMS: 7000},
		{OperandMax: 50, Choices: 4, TimerMS: 6000},
		{OperandMax: 99, Choices: 4, TimerMS: 5000},
		{OperandMax: 999, Choices: 4, TimerMS: 5000, Interference: true},
	},
	StroopShift: {
		{Choices: 3, TimerMS: 5000},
		{Choices: 4, TimerMS: 4500},
		{Choices: 4, TimerMS: 4000, Interference: true},
		{Choices: 5, TimerMS: 3500, Interference: true},
		{Choices: 6, TimerMS: 3000, Interference: true},
	},
	MemoryGrid: {
		{GridW: 3, GridH: 3, Targets: 3, TimerMS: 9000},
		{GridW: 4, GridH: 4, Targets: 4, TimerMS: 9000},
		{GridW: 4, GridH: 4, Targets: 5, TimerMS: 8000},
		{GridW: 5, GridH: 5, Targets: 6, TimerMS: 8000},
		{GridW: 5, GridH: 5, Targets: 8, TimerMS: 7000},
	},
	PatternSpot: {
		{Targets: 1, Choices: 4, TimerMS: 7000},
		{Targets: 1, Choices: 6, TimerMS: 6500},
		{Targets: 1, Choices: 6, TimerMS: 6000, Interference: true},
		{Targets: 1, Choices: 8, TimerMS: 5500, Rotation: true},
		{Targets: 1, Choices: 9, TimerMS: 5000, Rotation: true, Interference: true},
	},
	WordSearch: {
		{GridW: 5, GridH: 5, Targets: 1, LetterPool: 12, TimerMS: 12000},
		{GridW: 6, GridH: 6, Targets: 1, LetterPool: 16, TimerMS: 11000},
		{GridW: 7, GridH: 7, Targets: 2, LetterPool: 20, TimerMS: 10000},
		{GridW: 8, GridH: 8, Targets: 2, LetterPool: 24, TimerMS: 9000},
		{GridW: 9, GridH: 9, Targets: 3, LetterPool: 26, TimerMS: 9000},
	},
	ReactionTap: {
		{Targets: 3, TimerMS: 4000},
		{Targets: 4, TimerMS: 3500},
		{Targets: 5, TimerMS: 3000, Interference: true},
		{Targets: 6, TimerMS: 2500, Interference: true},
		{Targets: 8, TimerMS: 2000, Interference: true},
	},
	ChainLogic: {
		{OperandMax: 2, Choices: 2, TimerMS: 10000},
		{OperandMax: 3, Choices: 3, TimerMS: 9000},
		{OperandMax: 3, Choices: 4, TimerMS: 8500},
		{OperandMax: 4, Choices: 4, TimerMS: 8000},
		{OperandMax: 5, Choices: 4, TimerMS: 7500},
	},
	CubeCount: {
		{GridW: 3, GridH: 3, Targets: 6, TimerMS: 9000},
		{GridW: 3, GridH: 3, Targets: 10, TimerMS: 8500},
		{GridW: 4, GridH: 4, Targets: 14, TimerMS: 8000, Rotation: true},
		{GridW: 4, GridH: 4, Targets: 20, TimerMS: 7500, Rotation: true},
		{GridW: 5, GridH: 5, Targets: 28, TimerMS: 7000, Rotation: true},
	},
}

// TierOf returns the config for a game at the given tier, clamping the tier
// into the valid band. Unknown games get MathBlitz tier 1 as a safe default.
func TierOf(id ID, tier int) TierConfig {
	if tier < MinTier {
		tier = MinTier
	}
	if tier > MaxTier {
		tier = MaxTier
	}
	table, ok := TierTable[id]
	if !ok {
		return TierTable[MathBlitz][0]
	}
	return table[tier-1]
}

// ValidateTables checks catalog integrity at startup. Every game needs a
// profile and a full tier table with positive timers.
func ValidateTables() error {
	for _, id := range All() {
		if _, ok := Profiles[id]; !ok {
			return fmt.Errorf("game %s has no profile", id)
		}
		table, ok := TierTable[id]
		if !ok {
			return fmt.Errorf("game %s has no tier table", id)
		}
		for i, cfg := range table {
			if cfg.TimerMS <= 0 {
				return fmt.Errorf("game %s tier %d has no timer", id, i+1)
			}
		}
	}
	return nil
}
