package engine

import (
	"testing"
	"time"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/rules"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/events"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/logger"
)

// fakeClock makes debounce windows and idle decay advance on demand.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestSession builds a session already in the playing phase with the first
// question served, skipping the countdown.
func newTestSession(t *testing.T, cfg SessionConfig) (*Session, *fakeClock) {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 12345
	}
	clk := &fakeClock{t: time.Unix(1700000000, 0)}

	s := NewSession(cfg, events.NewEventLog(nil), logger.NewLogger())
	s.now = clk.Now
	s.tension.now = clk.Now

	s.mu.Lock()
	s.startedAt = clk.Now()
	s.tension.Reset()
	s.phase = PhasePlaying
	s.switchGame(s.firstGame())
	s.beginQuestion()
	s.mu.Unlock()

	t.Cleanup(s.End)
	return s, clk
}

// answer advances the clock past both debounce windows and submits.
func answer(s *Session, clk *fakeClock, correct bool, speedBonus float64) {
	clk.Advance(time.Second)
	s.HandleAnswer(correct, speedBonus, 0)
}

// forceSwap runs the post-wrong game swap immediately instead of waiting out
// the real visual-pause timer.
func forceSwap(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhasePlaying && s.answered {
		s.switchGame(s.pickNextGame())
		s.beginQuestion()
	}
}

func TestSessionStartsInCountdown(t *testing.T) {
	s := NewSession(SessionConfig{Mode: ModeTimed, StartTier: 1, Seed: 1},
		events.NewEventLog(nil), logger.NewLogger())

	if s.Phase() != PhaseCountdown {
		t.Errorf("Expected countdown phase, got %s", s.Phase())
	}

	// Answers during the countdown must be dropped.
	s.HandleAnswer(true, 1.0, 1)
	if sum := s.Summary(); sum.Correct != 0 || sum.Score != 0 {
		t.Errorf("Countdown accepted an answer: %+v", sum)
	}
}

func TestCorrectAnswerAwardsExactPoints(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	s.mu.Lock()
	gid := s.currentGame
	tier := s.currentTier
	s.mu.Unlock()
	if tier != 1 {
		t.Fatalf("Expected opening tier 1, got %d", tier)
	}

	answer(s, clk, true, 2.0)

	// The tension feed lands before scoring, so the award already includes
	// the bonus from this answer's own tension rise.
	gw := game.ProfileOf(gid).GenerationWeight
	tension := clampTension(TensionFloor + tensionTierMultiplier(tier)*2.0*gw*GainRate)
	want := rules.CalculatePoints(rules.ScoreParams{
		Streak:       0,
		SpeedBonus:   2.0,
		Tier:         tier,
		TensionBonus: 1.0 + tension*BonusScale,
		ModeMult:     1.0,
	})

	sum := s.Summary()
	if sum.Score != want {
		t.Errorf("Expected %d points, got %d", want, sum.Score)
	}
	if sum.Correct != 1 || sum.BestStreak != 1 {
		t.Errorf("Bookkeeping off: %+v", sum)
	}

	// A new question was served immediately.
	if r := s.CurrentRound(); r.Number != 2 {
		t.Errorf("Expected question 2 active, got %d", r.Number)
	}
}

func TestTimedWrongAnswerCostsScore(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	answer(s, clk, true, 2.0)
	before := s.Summary().Score
	if before < rules.TimedWrongPenalty {
		t.Fatalf("Setup failed: expected a bankable score, got %d", before)
	}

	answer(s, clk, false, 0)

	sum := s.Summary()
	if sum.Score != before-rules.TimedWrongPenalty {
		t.Errorf("Expected %d after penalty, got %d", before-rules.TimedWrongPenalty, sum.Score)
	}
	if sum.Wrong != 1 {
		t.Errorf("Expected 1 wrong, got %d", sum.Wrong)
	}
	if s.Phase() != PhasePlaying {
		t.Errorf("Timed mode should survive a wrong answer, got %s", s.Phase())
	}
	if sum.BestStreak != 1 {
		t.Errorf("Best streak should survive the miss, got %d", sum.BestStreak)
	}
}

func TestScoreNeverGoesNegative(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	answer(s, clk, false, 0)
	if sum := s.Summary(); sum.Score != 0 {
		t.Errorf("Expected score floored at 0, got %d", sum.Score)
	}
}

func TestThreeWrongInARowZeroesXP(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	answer(s, clk, true, 1.0)
	if s.Summary().SessionXP == 0 {
		t.Fatal("Setup failed: expected banked XP")
	}

	for i := 0; i < 3; i++ {
		answer(s, clk, false, 0)
		forceSwap(s)
	}

	s.mu.Lock()
	penalty, wrongStreak := s.tierPenalty, s.wrongStreak
	s.mu.Unlock()

	if sum := s.Summary(); sum.SessionXP != 0 {
		t.Errorf("Expected session XP wiped, got %d", sum.SessionXP)
	}
	if penalty != 1 {
		t.Errorf("Expected one tier penalty, got %d", penalty)
	}
	if wrongStreak != 0 {
		t.Errorf("Expected wrong streak reset after punishment, got %d", wrongStreak)
	}
}

func TestPenaltyRecoveryEveryThirdCorrect(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	s.mu.Lock()
	s.tierPenalty = 2
	s.mu.Unlock()

	for i := 0; i < 3; i++ {
		answer(s, clk, true, 1.0)
	}
	s.mu.Lock()
	penalty := s.tierPenalty
	s.mu.Unlock()
	if penalty != 1 {
		t.Errorf("Expected penalty 1 after three in a row, got %d", penalty)
	}

	for i := 0; i < 3; i++ {
		answer(s, clk, true, 1.0)
	}
	s.mu.Lock()
	penalty = s.tierPenalty
	s.mu.Unlock()
	if penalty != 0 {
		t.Errorf("Expected penalty cleared after six in a row, got %d", penalty)
	}

	// Recovery never drives the penalty negative.
	for i := 0; i < 3; i++ {
		answer(s, clk, true, 1.0)
	}
	s.mu.Lock()
	penalty = s.tierPenalty
	s.mu.Unlock()
	if penalty != 0 {
		t.Errorf("Penalty went negative: %d", penalty)
	}
}

func TestEndlessWrongGrantsContinue(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeEndless, StartTier: 1})

	answer(s, clk, false, 0)
	if s.Phase() != PhasePendingContinue {
		t.Fatalf("Expected pending-continue, got %s", s.Phase())
	}

	// Answers are frozen while the offer is on screen.
	answer(s, clk, true, 1.0)
	if s.Summary().Correct != 0 {
		t.Error("Pending-continue accepted an answer")
	}

	if !s.UseContinue() {
		t.Fatal("Continue grant refused")
	}
	if s.Phase() != PhasePlaying {
		t.Errorf("Expected playing after continue, got %s", s.Phase())
	}

	// The grant is one-time: the next miss is sudden death.
	answer(s, clk, false, 0)
	if s.Phase() != PhaseGameOver {
		t.Errorf("Expected game over on the second miss, got %s", s.Phase())
	}
	if s.UseContinue() {
		t.Error("Continue granted twice")
	}
}

func TestDeclineContinueEndsSession(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeEndless, StartTier: 1})

	answer(s, clk, false, 0)
	s.DeclineContinue()
	if s.Phase() != PhaseGameOver {
		t.Errorf("Expected game over after declining, got %s", s.Phase())
	}
}

func TestDuplicateAnswersDebounced(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	answer(s, clk, true, 1.0)
	// An immediate second emission, inside the debounce window.
	s.HandleAnswer(false, 0, 0)

	sum := s.Summary()
	if sum.Correct != 1 || sum.Wrong != 0 {
		t.Errorf("Duplicate emission was accepted: %+v", sum)
	}
}

func TestPauseAndResume(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	before := s.CurrentRound().Number
	s.Pause()
	if s.Phase() != PhasePaused {
		t.Fatalf("Expected paused, got %s", s.Phase())
	}

	answer(s, clk, true, 1.0)
	if s.Summary().Correct != 0 {
		t.Error("Paused session accepted an answer")
	}

	s.Resume()
	if s.Phase() != PhasePlaying {
		t.Fatalf("Expected playing after resume, got %s", s.Phase())
	}
	// Resume serves a fresh question rather than reviving the stale timer.
	if after := s.CurrentRound().Number; after != before+1 {
		t.Errorf("Expected question %d after resume, got %d", before+1, after)
	}
}

func TestSurpriseBoostOnTenthQuestion(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	// Nine straight under a 1s-per-answer clock: streak 9, so question 10 is
	// derived at tier 4 plus the surprise boost.
	for i := 0; i < 9; i++ {
		answer(s, clk, true, 1.0)
	}

	s.mu.Lock()
	count, tier := s.questionCount, s.currentTier
	s.mu.Unlock()
	if count != 10 {
		t.Fatalf("Expected question 10 active, got %d", count)
	}
	if tier != 5 {
		t.Errorf("Expected surprise-boosted tier 5, got %d", tier)
	}

	// The boost clears itself on question 11.
	answer(s, clk, true, 1.0)
	s.mu.Lock()
	tier = s.currentTier
	s.mu.Unlock()
	if tier != 4 {
		t.Errorf("Expected tier 4 on question 11, got %d", tier)
	}
}

func TestEverySeventhQuestionBreaksTheRecentWindow(t *testing.T) {
	// With a full catalog the underserved draw always finds a candidate, so
	// every 7th question must land outside the five games played before it.
	for seed := int64(1); seed <= 20; seed++ {
		s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1, Seed: seed})

		var history []game.ID
		for len(history) < 30 {
			s.mu.Lock()
			history = append(history, s.currentGame)
			s.mu.Unlock()
			answer(s, clk, true, 1.0)
		}

		for n := starvationPeriod; n <= len(history); n += starvationPeriod {
			forced := history[n-1]
			for _, prev := range history[n-6 : n-1] {
				if prev == forced {
					t.Fatalf("Seed %d: question %d re-served %s from the recent window %v",
						seed, n, forced, history[n-6:n-1])
				}
			}
		}
	}
}

func TestRotationEventuallyServesEveryGame(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	served := map[game.ID]bool{}
	for i := 0; i < 80; i++ {
		s.mu.Lock()
		served[s.currentGame] = true
		s.mu.Unlock()
		answer(s, clk, true, 1.0)
	}

	for _, id := range game.All() {
		if !served[id] {
			t.Errorf("Game %s was starved out of 80 questions", id)
		}
	}
}

func TestEndSessionIsTerminal(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeTimed, StartTier: 1})

	answer(s, clk, true, 1.0)
	s.End()

	if s.Phase() != PhaseGameOver {
		t.Fatalf("Expected game over, got %s", s.Phase())
	}

	final := s.Summary()
	answer(s, clk, true, 1.0)
	s.Pause()
	s.Resume()
	if got := s.Summary(); got.Score != final.Score || got.Correct != final.Correct {
		t.Errorf("Terminal session mutated: %+v vs %+v", got, final)
	}

	// The ledger carries the terminal event with its reason.
	found := false
	for _, e := range s.eventLog.GetBySession(s.ID()) {
		if e.Type == events.EventTypeSessionEnd {
			found = true
		}
	}
	if !found {
		t.Error("No SESSION_END event in the ledger")
	}
}

func TestSummaryTracksDuration(t *testing.T) {
	s, clk := newTestSession(t, SessionConfig{Mode: ModeEndless, StartTier: 2})

	answer(s, clk, true, 1.5)
	answer(s, clk, true, 0.8)

	sum := s.Summary()
	if sum.DurationSeconds != 2.0 {
		t.Errorf("Expected 2s elapsed, got %f", sum.DurationSeconds)
	}
	if sum.Mode != ModeEndless {
		t.Errorf("Expected endless mode in summary, got %s", sum.Mode)
	}
	if sum.PeakSpeed != 1.5 {
		t.Errorf("Expected peak speed 1.5, got %f", sum.PeakSpeed)
	}
	total := 0
	for _, st := range sum.PerGame {
		total += st.Correct + st.Wrong
	}
	if total != 2 {
		t.Errorf("Per-game tallies should sum to 2, got %d", total)
	}
}
