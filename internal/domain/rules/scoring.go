// Package rules contains the pure calculation logic for scoring and tier
// progression. This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"math"
	"time"
)

// BasePoints is the raw value of a correct answer before multipliers.
const BasePoints = 100

// TimedWrongPenalty is the flat score deduction for a wrong answer in timed mode.
const TimedWrongPenalty = 50

// tierMultipliers index by tier-1. Tier 5 answers are worth 5x base.
var tierMultipliers = [5]float64{1.0, 1.5, 2.5, 3.0, 5.0}

// TierMultiplier returns the score weight of a difficulty tier (1-5).
func TierMultiplier(tier int) float64 {
	if tier < 1 {
		tier = 1
	}
	if tier > 5 {
		tier = 5
	}
	return tierMultipliers[tier-1]
}

// StreakMultiplier grows 10% per consecutive correct answer, capped at 2x.
func StreakMultiplier(streak int) float64 {
	m := 1.0 + float64(streak)*0.1
	if m > 2.0 {
		m = 2.0
	}
	return m
}

// ClampSpeedBonus bounds a raw speed bonus into the band the engine accepts.
// Below 0.5 a sluggish answer still earns half credit; above 2.0 there is
// nothing left to reward.
func ClampSpeedBonus(v float64) float64 {
	if v < 0.5 {
		return 0.5
	}
	if v > 2.0 {
		return 2.0
	}
	return v
}

// ScoreParams carries everything that feeds a single point award.
type ScoreParams struct {
	Streak       int
	SpeedBonus   float64 // Raw, unclamped
	Tier         int
	TensionBonus float64 // >= 1.0, from the tension engine
	ModeMult     float64 // Per-mode scalar
}

// CalculatePoints computes the integer score delta for a correct answer.
// Multiplicative stack, floored at the end so tests can assert exact values.
func CalculatePoints(p ScoreParams) int {
	pts := float64(BasePoints) *
		StreakMultiplier(p.Streak) *
		ClampSpeedBonus(p.SpeedBonus) *
		TierMultiplier(p.Tier) *
		p.TensionBonus *
		p.ModeMult
	return int(math.Floor(pts))
}

// TierParams carries the inputs to the tier derivation.
type TierParams struct {
	StartTier     int
	Streak        int
	Elapsed       time.Duration
	TierPenalty   int
	SurpriseBoost bool // Transient +1 injected every 10th question
}

// DeriveTier recomputes the current difficulty tier. Progress comes from
// whichever of streak or elapsed time is further along; a hot streak adds a
// boost and accumulated penalties subtract. Always lands in [1, 5].
func DeriveTier(p TierParams) int {
	progress := p.Streak / 4
	byTime := int(p.Elapsed.Minutes()) / 2
	if byTime > progress {
		progress = byTime
	}

	tier := 1 + progress
	if p.StartTier > tier {
		tier = p.StartTier
	}
	if p.Streak >= 5 {
		tier++
	}
	if p.SurpriseBoost {
		tier++
	}
	tier -= p.TierPenalty

	if tier < 1 {
		tier = 1
	}
	if tier > 5 {
		tier = 5
	}
	return tier
}
