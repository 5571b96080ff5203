// Package games holds the question generators for every mini-game in the
// catalog. Generators are pure with respect to the injected RNG: the same
// seed and tier config always produce the same question.
//
// Generation can fail (procedural boards occasionally come out unsolvable);
// failures are retried a bounded number of times and then replaced from a
// precomputed fallback pool. A round never stalls on a bad generator.
package games

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

// maxAttempts bounds regeneration before falling back to the known-good pool.
const maxAttempts = 5

// Question is a single generated challenge handed to the presentation layer.
type Question struct {
	Game        game.ID  `json:"game"`
	Tier        int      `json:"tier"`
	Prompt      string   `json:"prompt"`
	Board       []string `json:"board,omitempty"` // Row-major grid, when the game has one
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`

	// TimeAllowanceMS is the answer window after overclock compression.
	TimeAllowanceMS int `json:"time_allowance_ms"`
}

// Generator produces one question under the given tier parameters.
type Generator func(cfg game.TierConfig, rng *rand.Rand) (Question, error)

// generators maps every catalog game to its generator.
var generators = map[game.ID]Generator{
	game.MathBlitz:   generateMathBlitz,
	game.StroopShift: generateStroopShift,
	game.MemoryGrid:  generateMemoryGrid,
	game.PatternSpot: generatePatternSpot,
	game.WordSearch:  generateWordSearch,
	game.ReactionTap: generateReactionTap,
	game.ChainLogic:  generateChainLogic,
	game.CubeCount:   generateCubeCount,
}

// ErrUnknownGame reports a game id with no registered generator.
var ErrUnknownGame = errors.New("games: no generator registered")

// Generate builds a question for the game at the given tier, compressing the
// answer window by the overclock factor. Bad generations are retried, then
// satisfied from the fallback pool.
func Generate(id game.ID, tier int, overclock float64, rng *rand.Rand) (Question, error) {
	gen, ok := generators[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}

	cfg := game.TierOf(id, tier)

	var q Question
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		q, err = safeGenerate(gen, cfg, rng)
		if err == nil && validate(q) {
			q.Game = id
			q.Tier = tier
			q.TimeAllowanceMS = allowance(cfg.TimerMS, overclock)
			return q, nil
		}
	}

	q = fallbackFor(id, rng)
	q.Tier = tier
	q.TimeAllowanceMS = allowance(cfg.TimerMS, overclock)
	return q, nil
}

// safeGenerate isolates a misbehaving generator: a panic becomes an error
// and counts as a failed attempt.
func safeGenerate(gen Generator, cfg game.TierConfig, rng *rand.Rand) (q Question, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("games: generator panic: %v", r)
		}
	}()
	return gen(cfg, rng)
}

// validate rejects structurally broken questions before they reach a player.
func validate(q Question) bool {
	if len(q.Choices) < 2 {
		return false
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
		return false
	}
	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if c == "" || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func allowance(baseMS int, overclock float64) int {
	if overclock < 1.0 {
		overclock = 1.0
	}
	return int(float64(baseMS) / overclock)
}

// shuffleIn places the answer among decoys and returns its final index.
func shuffleIn(answer string, decoys []string, rng *rand.Rand) ([]string, int) {
	choices := append([]string{answer}, decoys...)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	for i, c := range choices {
		if c == answer {
			return choices, i
		}
	}
	return choices, 0
}
