// Package games - grid.go
// Board-based generators: MemoryGrid, WordSearch.
package games

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

// generateMemoryGrid builds a flash-and-recall board. The board is shown then
// blanked; the player names the cell that was lit.
func generateMemoryGrid(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	cells := cfg.GridW * cfg.GridH
	if cfg.Targets >= cells {
		return Question{}, errUnsatisfiable
	}

	lit := make(map[int]bool, cfg.Targets)
	for len(lit) < cfg.Targets {
		lit[rng.Intn(cells)] = true
	}

	board := make([]string, cfg.GridH)
	for y := 0; y < cfg.GridH; y++ {
		row := make([]byte, cfg.GridW)
		for x := 0; x < cfg.GridW; x++ {
			if lit[y*cfg.GridW+x] {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		board[y] = string(row)
	}

	// Quiz one lit cell against unlit decoys. Collect lit cells in index
	// order; ranging over the map would leak map-iteration randomness into
	// the draw and break seeded replays.
	var litCells []int
	for c := 0; c < cells; c++ {
		if lit[c] {
			litCells = append(litCells, c)
		}
	}
	target := litCells[rng.Intn(len(litCells))]

	var decoys []string
	for len(decoys) < 3 {
		c := rng.Intn(cells)
		if lit[c] {
			continue
		}
		name := cellName(c, cfg.GridW)
		dup := false
		for _, d := range decoys {
			if d == name {
				dup = true
			}
		}
		if !dup {
			decoys = append(decoys, name)
		}
	}

	choices, idx := shuffleIn(cellName(target, cfg.GridW), decoys, rng)

	return Question{
		Prompt:      "Which cell was lit?",
		Board:       board,
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

func cellName(cell, width int) string {
	return fmt.Sprintf("%c%d", 'A'+cell%width, 1+cell/width)
}

var searchWords = []string{
	"MIND", "FOCUS", "SHARP", "QUICK", "BRAIN",
	"LOGIC", "RECALL", "SPARK", "AGILE", "PRIME",
}

// generateWordSearch hides one word in a letter grid, left to right, and asks
// which of several candidates is actually present.
func generateWordSearch(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	word := searchWords[rng.Intn(len(searchWords))]
	if len(word) > cfg.GridW {
		return Question{}, errUnsatisfiable
	}

	pool := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"[:cfg.LetterPool]

	board := make([]string, cfg.GridH)
	for y := 0; y < cfg.GridH; y++ {
		row := make([]byte, cfg.GridW)
		for x := 0; x < cfg.GridW; x++ {
			row[x] = pool[rng.Intn(len(pool))]
		}
		board[y] = string(row)
	}

	// Plant the word on a random row.
	rowIdx := rng.Intn(cfg.GridH)
	start := rng.Intn(cfg.GridW - len(word) + 1)
	planted := []byte(board[rowIdx])
	copy(planted[start:], word)
	board[rowIdx] = string(planted)

	var decoys []string
	for _, w := range searchWords {
		if w == word || len(decoys) == 3 {
			continue
		}
		// A decoy accidentally present in the grid would make two right answers.
		if !gridContains(board, w) {
			decoys = append(decoys, w)
		}
	}
	if len(decoys) < 3 {
		return Question{}, errUnsatisfiable
	}

	choices, idx := shuffleIn(word, decoys, rng)

	return Question{
		Prompt:      "Which word is hidden in the grid?",
		Board:       board,
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

func gridContains(board []string, word string) bool {
	for _, row := range board {
		if strings.Contains(row, word) {
			return true
		}
	}
	return false
}
