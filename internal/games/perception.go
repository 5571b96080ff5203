// Package games - perception.go
// Interference and reflex generators: StroopShift, PatternSpot, ReactionTap.
package games

import (
	"fmt"
	"math/rand"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

var stroopColors = []string{"RED", "BLUE", "GREEN", "YELLOW", "PURPLE", "ORANGE"}

// generateStroopShift builds a color-word interference question: the word
// names one color, the ink is another, and the player must answer the ink.
// Below the interference tiers the word and ink agree.
func generateStroopShift(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	pool := stroopColors[:cfg.Choices]

	word := pool[rng.Intn(len(pool))]
	ink := word
	if cfg.Interference {
		for ink == word {
			ink = pool[rng.Intn(len(pool))]
		}
	}

	var decoys []string
	for _, c := range pool {
		if c != ink {
			decoys = append(decoys, c)
		}
	}
	choices, idx := shuffleIn(ink, decoys, rng)

	return Question{
		Prompt:      fmt.Sprintf("Word %q shown in %s ink. What color is the ink?", word, ink),
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

var patternSymbols = []string{"◆", "●", "▲", "■", "★", "✚"}

// generatePatternSpot builds an odd-one-out row: every slot repeats one
// symbol except a single intruder the player must locate.
func generatePatternSpot(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	base := patternSymbols[rng.Intn(len(patternSymbols))]
	odd := base
	for odd == base {
		odd = patternSymbols[rng.Intn(len(patternSymbols))]
	}

	slots := cfg.Choices
	oddAt := rng.Intn(slots)

	row := ""
	choices := make([]string, slots)
	for i := 0; i < slots; i++ {
		sym := base
		if i == oddAt {
			sym = odd
		}
		row += sym
		choices[i] = fmt.Sprintf("%d", i+1)
	}

	prompt := "Which position breaks the pattern?"
	if cfg.Rotation {
		prompt = "Which position breaks the rotated pattern?"
	}

	return Question{
		Prompt:      prompt,
		Board:       []string{row},
		Choices:     choices,
		AnswerIndex: oddAt,
	}, nil
}

// generateReactionTap builds a go/no-go cue. Interference tiers mix in
// fake-out cues the player must hold through.
func generateReactionTap(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	goCue := rng.Intn(2) == 0
	if !cfg.Interference {
		goCue = true
	}

	cue := "GO"
	answer := "TAP"
	if !goCue {
		cue = "WAIT"
		answer = "HOLD"
	}

	decoys := []string{"HOLD"}
	if answer == "HOLD" {
		decoys = []string{"TAP"}
	}
	choices, idx := shuffleIn(answer, decoys, rng)

	return Question{
		Prompt:      fmt.Sprintf("Cue: %s", cue),
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}
