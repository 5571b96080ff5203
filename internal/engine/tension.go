// Package engine - tension.go
// Cross-domain tension tracking. A decaying scalar stands in for how
// cognitively loaded the player is from recent domain switching; it feeds
// back into pacing (overclock), scoring (bonus), and game selection.
//
// This system DOES NOT talk to transport or storage - it mutates its own
// state and nothing else. The session serializes all access.
package engine

import (
	"math"
	"time"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
)

// Tension band and feedback constants.
const (
	TensionFloor   = 0.1 // Resting load; also the anti-frustration reset target
	TensionCeiling = 3.0

	// GainRate scales how fast correct answers build tension.
	GainRate = 0.7

	// IdleDecayRate is tension lost per second between game switches.
	IdleDecayRate = 0.02

	// OverclockScale and OverclockMax bound the pacing multiplier.
	OverclockScale = 0.35
	OverclockMax   = 2.0

	// BonusScale converts tension into a scoring multiplier.
	BonusScale = 0.25

	// SameDomainFactor damps overclock when the player stays in one domain.
	// Switching cognitive context under load is harder than staying put.
	SameDomainFactor = 0.3

	// historyCap bounds the analytics sample window.
	historyCap = 100
)

// TensionEngine owns the decaying load scalar and its bookkeeping.
type TensionEngine struct {
	tension          float64
	peakTension      float64
	history          []float64
	consecutiveWrong int

	lastDomain    game.CognitiveDomain // Domain of the previously active game
	hasLastDomain bool
	currentGame   game.ID
	hasCurrent    bool

	overclockFactor float64 // Cached for the current game; always recomputable
	lastSwitch      time.Time

	now func() time.Time // Clock hook for deterministic tests
}

// NewTensionEngine creates an engine at resting load.
func NewTensionEngine() *TensionEngine {
	te := &TensionEngine{now: time.Now}
	te.Reset()
	return te
}

// Reset returns the engine to its initial state. Idempotent; called at
// session start.
func (te *TensionEngine) Reset() {
	te.tension = TensionFloor
	te.peakTension = TensionFloor
	te.history = te.history[:0]
	te.consecutiveWrong = 0
	te.lastDomain = ""
	te.hasLastDomain = false
	te.currentGame = ""
	te.hasCurrent = false
	te.overclockFactor = 1.0
	te.lastSwitch = te.now()
}

// tensionTierMultiplier maps a difficulty tier to its tension contribution.
// Tier 5 contributes 0.10 per unit of complexity.
func tensionTierMultiplier(tier int) float64 {
	if tier < game.MinTier {
		tier = game.MinTier
	}
	if tier > game.MaxTier {
		tier = game.MaxTier
	}
	return float64(tier) * 0.02
}

// ProcessCorrectAnswer raises tension in proportion to how hard the answered
// question was and how tension-generative its game is.
func (te *TensionEngine) ProcessCorrectAnswer(id game.ID, tier int, speedBonus float64) {
	clamped := speedBonus
	if clamped < 0.5 {
		clamped = 0.5
	}
	if clamped > 2.0 {
		clamped = 2.0
	}

	complexity := tensionTierMultiplier(tier) * clamped * game.ProfileOf(id).GenerationWeight
	te.tension = clampTension(te.tension + complexity*GainRate)

	if te.tension > te.peakTension {
		te.peakTension = te.tension
	}

	te.history = append(te.history, te.tension)
	if len(te.history) > historyCap {
		te.history = te.history[len(te.history)-historyCap:]
	}

	te.consecutiveWrong = 0
	te.recomputeOverclock()
}

// ProcessWrongAnswer decays tension. Errors shed load fast; three in a row
// trip the anti-frustration breaker and slam tension back to the floor.
func (te *TensionEngine) ProcessWrongAnswer() {
	te.consecutiveWrong++

	switch {
	case te.consecutiveWrong >= 3:
		te.tension = TensionFloor
	case te.consecutiveWrong >= 2:
		te.tension = clampTension(te.tension * 0.5)
	default:
		te.tension = clampTension(te.tension * 0.7)
	}

	te.recomputeOverclock()
}

// SwitchToGame applies idle decay, records the outgoing game's domain, and
// makes the next game current. The idle clock restarts here.
func (te *TensionEngine) SwitchToGame(next game.ID) {
	idle := te.now().Sub(te.lastSwitch).Seconds()
	if idle > 0 {
		te.tension = clampTension(te.tension * (1 - IdleDecayRate*idle))
	}

	if te.hasCurrent {
		te.lastDomain = game.ProfileOf(te.currentGame).Domain
		te.hasLastDomain = true
	}
	te.currentGame = next
	te.hasCurrent = true
	te.lastSwitch = te.now()
	te.recomputeOverclock()
}

// OverclockForGame answers how fast a given game should run under the current
// load. Pure query: no state changes, same inputs always give the same output.
func (te *TensionEngine) OverclockForGame(id game.ID) float64 {
	profile := game.ProfileOf(id)

	crossDomain := 1.0
	if te.hasLastDomain && te.lastDomain == profile.Domain {
		crossDomain = SameDomainFactor
	}

	oc := 1.0 + te.tension*profile.SusceptibilityWeight*crossDomain*OverclockScale
	return math.Min(math.Max(oc, 1.0), OverclockMax)
}

// TensionBonus is the scoring multiplier earned by playing under load.
func (te *TensionEngine) TensionBonus() float64 {
	return 1.0 + te.tension*BonusScale
}

// Tension exposes the raw scalar for snapshots and analytics.
func (te *TensionEngine) Tension() float64 { return te.tension }

// PeakTension is the session high-water mark, for end-of-session reporting.
func (te *TensionEngine) PeakTension() float64 { return te.peakTension }

// ConsecutiveWrong exposes the error counter feeding the breaker.
func (te *TensionEngine) ConsecutiveWrong() int { return te.consecutiveWrong }

// Overclock returns the cached factor for the current game.
func (te *TensionEngine) Overclock() float64 { return te.overclockFactor }

// History returns the bounded tension sample window.
func (te *TensionEngine) History() []float64 { return te.history }

func (te *TensionEngine) recomputeOverclock() {
	if !te.hasCurrent {
		te.overclockFactor = 1.0
		return
	}
	te.overclockFactor = te.OverclockForGame(te.currentGame)
}

func clampTension(v float64) float64 {
	if v < TensionFloor {
		return TensionFloor
	}
	if v > TensionCeiling {
		return TensionCeiling
	}
	return v
}
