// Package games - math.go
// Arithmetic and deduction generators: MathBlitz, ChainLogic, CubeCount.
package games

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

var errUnsatisfiable = errors.New("games: question constraints unsatisfiable")

// generateMathBlitz builds a rapid arithmetic question. Division rounds must
// come out to whole numbers; anything else is rejected and regenerated.
func generateMathBlitz(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	ops := []string{"+", "-", "×"}
	if cfg.Interference {
		ops = append(ops, "÷")
	}
	op := ops[rng.Intn(len(ops))]

	a := 1 + rng.Intn(cfg.OperandMax)
	b := 1 + rng.Intn(cfg.OperandMax)

	var result int
	switch op {
	case "+":
		result = a + b
	case "-":
		if b > a {
			a, b = b, a // Keep answers non-negative
		}
		result = a - b
	case "×":
		// Large multiplications overwhelm tier pacing; shrink one side.
		b = 1 + rng.Intn(12)
		result = a * b
	case "÷":
		if b == 0 || a%b != 0 {
			return Question{}, errUnsatisfiable
		}
		result = a / b
	}

	answer := strconv.Itoa(result)
	decoys := numericDecoys(result, cfg.Choices-1, rng)
	choices, idx := shuffleIn(answer, decoys, rng)

	return Question{
		Prompt:      fmt.Sprintf("%d %s %d = ?", a, op, b),
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

// generateChainLogic builds an if-then deduction chain: a strict ordering of
// names, asking for the extreme element.
func generateChainLogic(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	names := []string{"Ada", "Bo", "Cleo", "Dev", "Eli", "Finn"}
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	links := cfg.OperandMax // Chain length grows with tier
	if links+1 > len(names) {
		links = len(names) - 1
	}
	chain := names[:links+1]

	prompt := ""
	for i := 0; i < links; i++ {
		prompt += fmt.Sprintf("%s is taller than %s. ", chain[i], chain[i+1])
	}
	prompt += "Who is tallest?"

	answer := chain[0]
	decoyCount := cfg.Choices - 1
	if decoyCount > links {
		decoyCount = links
	}
	decoys := append([]string(nil), chain[1:1+decoyCount]...)
	choices, idx := shuffleIn(answer, decoys, rng)

	return Question{
		Prompt:      prompt,
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

// generateCubeCount builds an isometric cube-stack count. The board encodes
// column heights; the player counts total cubes, hidden ones included.
func generateCubeCount(cfg game.TierConfig, rng *rand.Rand) (Question, error) {
	total := 0
	board := make([]string, cfg.GridH)
	maxHeight := 1 + cfg.Targets/(cfg.GridW*cfg.GridH) + 2

	for y := 0; y < cfg.GridH; y++ {
		row := ""
		for x := 0; x < cfg.GridW; x++ {
			h := rng.Intn(maxHeight + 1)
			total += h
			row += strconv.Itoa(h)
		}
		board[y] = row
	}

	if total == 0 {
		return Question{}, errUnsatisfiable
	}

	prompt := "How many cubes are in the stack?"
	if cfg.Rotation {
		prompt = "How many cubes are in the rotated stack?"
	}

	answer := strconv.Itoa(total)
	decoys := numericDecoys(total, 3, rng)
	choices, idx := shuffleIn(answer, decoys, rng)

	return Question{
		Prompt:      prompt,
		Board:       board,
		Choices:     choices,
		AnswerIndex: idx,
	}, nil
}

// numericDecoys returns n distinct wrong answers near the real one.
func numericDecoys(answer, n int, rng *rand.Rand) []string {
	used := map[int]bool{answer: true}
	var decoys []string
	for len(decoys) < n {
		offset := 1 + rng.Intn(10)
		if rng.Intn(2) == 0 {
			offset = -offset
		}
		v := answer + offset
		if v < 0 || used[v] {
			continue
		}
		used[v] = true
		decoys = append(decoys, strconv.Itoa(v))
	}
	return decoys
}
