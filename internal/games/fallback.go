// Package games - fallback.go
// Known-good questions served when procedural generation keeps failing.
// Hand-checked; a round degrades to one of these rather than stalling.
package games

import (
	"math/rand"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

var fallbackPool = map[game.ID][]Question{
	game.MathBlitz: {
		{Game: game.MathBlitz, Prompt: "7 + 5 = ?", Choices: []string{"11", "12", "13"}, AnswerIndex: 1},
		{Game: game.MathBlitz, Prompt: "9 × 6 = ?", Choices: []string{"54", "56", "52"}, AnswerIndex: 0},
		{Game: game.MathBlitz, Prompt: "48 ÷ 8 = ?", Choices: []string{"8", "7", "6"}, AnswerIndex: 2},
	},
	game.StroopShift: {
		{Game: game.StroopShift, Prompt: "Word \"RED\" shown in BLUE ink. What color is the ink?", Choices: []string{"RED", "BLUE", "GREEN"}, AnswerIndex: 1},
		{Game: game.StroopShift, Prompt: "Word \"GREEN\" shown in GREEN ink. What color is the ink?", Choices: []string{"GREEN", "YELLOW", "RED"}, AnswerIndex: 0},
	},
	game.MemoryGrid: {
		{Game: game.MemoryGrid, Prompt: "Which cell was lit?", Board: []string{"#..", "...", "..."}, Choices: []string{"A1", "B2", "C3", "C1"}, AnswerIndex: 0},
		{Game: game.MemoryGrid, Prompt: "Which cell was lit?", Board: []string{"...", ".#.", "..."}, Choices: []string{"A1", "B2", "A3", "C2"}, AnswerIndex: 1},
	},
	game.PatternSpot: {
		{Game: game.PatternSpot, Prompt: "Which position breaks the pattern?", Board: []string{"●●▲●"}, Choices: []string{"1", "2", "3", "4"}, AnswerIndex: 2},
	},
	game.WordSearch: {
		{Game: game.WordSearch, Prompt: "Which word is hidden in the grid?", Board: []string{"XMINDQ", "ZQPLRK", "TBWNSA"}, Choices: []string{"MIND", "FOCUS", "SPARK", "LOGIC"}, AnswerIndex: 0},
	},
	game.ReactionTap: {
		{Game: game.ReactionTap, Prompt: "Cue: GO", Choices: []string{"TAP", "HOLD"}, AnswerIndex: 0},
		{Game: game.ReactionTap, Prompt: "Cue: WAIT", Choices: []string{"TAP", "HOLD"}, AnswerIndex: 1},
	},
	game.ChainLogic: {
		{Game: game.ChainLogic, Prompt: "Ada is taller than Bo. Bo is taller than Cleo. Who is tallest?", Choices: []string{"Ada", "Bo", "Cleo"}, AnswerIndex: 0},
	},
	game.CubeCount: {
		{Game: game.CubeCount, Prompt: "How many cubes are in the stack?", Board: []string{"21", "11"}, Choices: []string{"4", "5", "6"}, AnswerIndex: 1},
	},
}

// fallbackFor returns a copy of a pooled question for the game.
func fallbackFor(id game.ID, rng *rand.Rand) Question {
	pool, ok := fallbackPool[id]
	if !ok || len(pool) == 0 {
		pool = fallbackPool[game.MathBlitz]
	}
	return pool[rng.Intn(len(pool))]
}
