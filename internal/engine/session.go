// Package engine - session.go
// The session orchestrator. Owns score, streak, tier progression, and the
// active mini-game; consumes answer events, feeds the tension engine, and
// drives game selection.
//
// ARCHITECTURAL RULE: one explicit phase enum, one transition path per
// question. Once an answer is accepted, every other completion path for that
// question (expiry timer, duplicate tap) must be a no-op.
package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/game"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/domain/rules"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/events"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/games"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/logger"
	"github.com/NeuroForgeLabs/BrainRush/server/internal/platform/metrics"
)

// Phase is the explicit session state.
type Phase string

const (
	PhaseCountdown       Phase = "COUNTDOWN"
	PhasePlaying         Phase = "PLAYING"
	PhasePaused          Phase = "PAUSED"
	PhasePendingContinue Phase = "PENDING_CONTINUE"
	PhaseGameOver        Phase = "GAME_OVER"
)

// Mode selects the session ruleset.
type Mode string

const (
	// ModeTimed runs for a fixed duration; wrong answers cost score.
	ModeTimed Mode = "TIMED"
	// ModeEndless is sudden-death: one wrong answer ends the session unless
	// the one-time continue grant is still available.
	ModeEndless Mode = "ENDLESS"
)

// Pacing constants.
const (
	countdownDuration = 3 * time.Second

	// Debounce windows absorb duplicate answer emissions from mini-games.
	correctCooldown = 300 * time.Millisecond
	wrongCooldown   = 700 * time.Millisecond

	// wrongSwapDelay is the visual-pause window before a timed-mode game swap.
	wrongSwapDelay = 900 * time.Millisecond

	recentWindow      = 5 // Games remembered for anti-repeat
	recencyExclusion  = 2 // Most recent games barred from selection
	starvationPeriod  = 7 // Every Nth question pulls from underserved games
	surprisePeriod    = 10
	endlessModeMult   = 1.5
	timedModeMult     = 1.0
	xpPerTier         = 10
)

// SessionConfig carries the knobs a session is created with.
type SessionConfig struct {
	Mode      Mode
	StartTier int
	Duration  time.Duration // Timed mode only
	Seed      int64         // 0 means non-deterministic
	Pool      []game.ID     // Defaults to the full catalog
}

// GameStats is the per-game answer tally for the end-of-session breakdown.
type GameStats struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Summary is the plain data snapshot handed out at session end.
type Summary struct {
	SessionID       string               `json:"session_id"`
	Mode            Mode                 `json:"mode"`
	Score           int                  `json:"score"`
	BestStreak      int                  `json:"best_streak"`
	Correct         int                  `json:"correct"`
	Wrong           int                  `json:"wrong"`
	PeakSpeed       float64              `json:"peak_speed"`
	DurationSeconds float64              `json:"duration_seconds"`
	SessionXP       int                  `json:"session_xp"`
	PeakTension     float64              `json:"peak_tension"`
	PerGame         map[game.ID]GameStats `json:"per_game"`
}

// RoundParams is what the presentation layer needs to run one question.
type RoundParams struct {
	SessionID string          `json:"session_id"`
	Question  games.Question  `json:"question"`
	TierCfg   game.TierConfig `json:"tier_cfg"`
	Tier      int             `json:"tier"`
	Overclock float64         `json:"overclock"`
	Number    int             `json:"number"` // 1-indexed question counter
}

// Session is the orchestrator state machine for one play session.
type Session struct {
	mu sync.Mutex

	id        string
	mode      Mode
	startTier int
	duration  time.Duration
	pool      []game.ID

	tension  *TensionEngine
	selector *Selector
	rng      *rand.Rand
	eventLog *events.EventLog
	logger   *logger.Logger

	phase Phase

	score       int
	streak      int
	bestStreak  int
	wrongStreak int
	tierPenalty int
	sessionXP   int
	correct     int
	wrong       int
	peakSpeed   float64

	currentGame   game.ID
	recentGames   []game.ID
	perGame       map[game.ID]GameStats
	questionCount int // 1-indexed, increments per question served
	questionSeq   int // Monotonic, validates late timer fires
	answered      bool

	currentQuestion games.Question
	currentTier     int
	questionSentAt  time.Time

	continueAvailable bool

	startedAt      time.Time
	lastAnswerAt   time.Time
	lastAnswerOK   bool

	questionTimer  *TimerHandle
	swapTimer      *TimerHandle
	countdownTimer *TimerHandle
	sessionTimer   *TimerHandle

	now func() time.Time
}

// NewSession wires a fresh session in the countdown phase. Start launches it.
func NewSession(cfg SessionConfig, eventLog *events.EventLog, log *logger.Logger) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pool := cfg.Pool
	if len(pool) == 0 {
		pool = game.All()
	}
	startTier := cfg.StartTier
	if startTier < game.MinTier || startTier > game.MaxTier {
		startTier = game.MinTier
	}

	rng := rand.New(rand.NewSource(seed))
	return &Session{
		id:                uuid.NewString(),
		mode:              cfg.Mode,
		startTier:         startTier,
		duration:          cfg.Duration,
		pool:              pool,
		tension:           NewTensionEngine(),
		selector:          NewSelector(rng),
		rng:               rng,
		eventLog:          eventLog,
		logger:            log,
		phase:             PhaseCountdown,
		perGame:           make(map[game.ID]GameStats),
		continueAvailable: cfg.Mode == ModeEndless,
		now:               time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current state-machine phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start arms the countdown and, in timed mode, the session clock.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseCountdown {
		return
	}
	s.startedAt = s.now()
	s.tension.Reset()
	metrics.Get().RecordSessionStart()

	s.emit(events.EventTypeSessionStart, map[string]any{
		"mode":       s.mode,
		"start_tier": s.startTier,
	})

	s.countdownTimer = schedule(countdownDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.phase != PhaseCountdown {
			return
		}
		s.phase = PhasePlaying
		if s.mode == ModeTimed && s.duration > 0 {
			s.sessionTimer = schedule(s.duration, func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.endSession("TIME_UP")
			})
		}
		s.switchGame(s.firstGame())
		s.beginQuestion()
	})
}

// HandleAnswer is the single inbound transition for answer events.
// correct reports whether the player answered right; speedBonus is the raw
// speed reward (>= 0); tier is the difficulty the question was served at.
func (s *Session) HandleAnswer(correct bool, speedBonus float64, tier int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handleAnswerLocked(correct, speedBonus, tier, false)
}

// SubmitChoice resolves a choice index against the active question and feeds
// the result through HandleAnswer semantics. Transport entry point.
func (s *Session) SubmitChoice(choice int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.answered {
		return
	}
	q := s.currentQuestion
	correct := choice == q.AnswerIndex

	// Speed bonus: full window remaining = 2.0, expired = 0.
	elapsed := s.now().Sub(s.questionSentAt)
	allowance := time.Duration(q.TimeAllowanceMS) * time.Millisecond
	speedBonus := 0.0
	if allowance > 0 && elapsed < allowance {
		speedBonus = 2.0 * float64(allowance-elapsed) / float64(allowance)
	}

	s.handleAnswerLocked(correct, speedBonus, q.Tier, false)
}

// handleAnswerLocked is the state-machine transition. Caller holds s.mu.
// fromTimer marks the expiry path, which skips the debounce window.
func (s *Session) handleAnswerLocked(correct bool, speedBonus float64, tier int, fromTimer bool) {
	// Guard: only the playing phase accepts answers.
	if s.phase != PhasePlaying {
		return
	}
	// Guard: at most one accepted transition per question.
	if s.answered {
		return
	}
	// Debounce duplicate emissions from mini-games.
	if !fromTimer && !s.lastAnswerAt.IsZero() {
		cooldown := wrongCooldown
		if s.lastAnswerOK {
			cooldown = correctCooldown
		}
		if s.now().Sub(s.lastAnswerAt) < cooldown {
			return
		}
	}

	s.answered = true
	s.lastAnswerAt = s.now()
	s.lastAnswerOK = correct
	if s.questionTimer != nil {
		s.questionTimer.Cancel()
	}

	if tier < game.MinTier || tier > game.MaxTier {
		tier = s.currentTier
	}

	metrics.Get().RecordAnswer(correct)
	if correct {
		s.onCorrect(speedBonus, tier)
	} else {
		s.onWrong(tier)
	}
}

func (s *Session) onCorrect(speedBonus float64, tier int) {
	s.tension.ProcessCorrectAnswer(s.currentGame, tier, speedBonus)

	points := rules.CalculatePoints(rules.ScoreParams{
		Streak:       s.streak,
		SpeedBonus:   speedBonus,
		Tier:         tier,
		TensionBonus: s.tension.TensionBonus(),
		ModeMult:     s.modeMultiplier(),
	})

	s.streak++
	if s.streak > s.bestStreak {
		s.bestStreak = s.streak
	}
	s.correct++
	s.score += points
	s.sessionXP += tier * xpPerTier
	s.wrongStreak = 0
	if speedBonus > s.peakSpeed {
		s.peakSpeed = speedBonus
	}

	// Recovery rule: every third consecutive correct claws back one penalty.
	if s.tierPenalty > 0 && s.streak%3 == 0 {
		s.tierPenalty--
	}

	stats := s.perGame[s.currentGame]
	stats.Correct++
	s.perGame[s.currentGame] = stats

	s.emit(events.EventTypeAnswer, map[string]any{
		"correct": true,
		"points":  points,
		"streak":  s.streak,
		"tier":    tier,
	})
	s.emitTension()

	s.switchGame(s.pickNextGame())
	s.beginQuestion()
}

func (s *Session) onWrong(tier int) {
	s.tension.ProcessWrongAnswer()

	s.wrong++
	s.streak = 0
	s.wrongStreak++

	stats := s.perGame[s.currentGame]
	stats.Wrong++
	s.perGame[s.currentGame] = stats

	// Escalating punishment: three wrong in a row costs the session currency
	// and a difficulty step, not just the streak.
	if s.wrongStreak >= 3 {
		s.tierPenalty++
		s.sessionXP = 0
		s.wrongStreak = 0
	}

	s.emit(events.EventTypeAnswer, map[string]any{
		"correct":      false,
		"streak":       0,
		"wrong_streak": s.wrongStreak,
		"tier":         tier,
	})
	s.emitTension()

	if s.mode == ModeEndless {
		if s.continueAvailable {
			s.phase = PhasePendingContinue
			return
		}
		s.endSession("SUDDEN_DEATH")
		return
	}

	// Timed mode: flat penalty, brief visual pause, then a fresh game.
	s.score -= rules.TimedWrongPenalty
	if s.score < 0 {
		s.score = 0
	}

	seq := s.questionSeq
	s.swapTimer = schedule(wrongSwapDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.phase != PhasePlaying || s.questionSeq != seq {
			return
		}
		s.switchGame(s.pickNextGame())
		s.beginQuestion()
	})
}

// UseContinue consumes the one-time endless-mode grant and resumes play.
func (s *Session) UseContinue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePendingContinue || !s.continueAvailable {
		return false
	}
	s.continueAvailable = false
	s.phase = PhasePlaying
	s.emit(events.EventTypeContinueUsed, nil)

	s.switchGame(s.pickNextGame())
	s.beginQuestion()
	return true
}

// DeclineContinue ends a pending-continue session.
func (s *Session) DeclineContinue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePendingContinue {
		return
	}
	s.endSession("SUDDEN_DEATH")
}

// Pause freezes the session. The active question timer is cancelled; Resume
// serves a fresh question rather than guessing at remaining time.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return
	}
	s.phase = PhasePaused
	if s.questionTimer != nil {
		s.questionTimer.Cancel()
	}
	if s.swapTimer != nil {
		s.swapTimer.Cancel()
	}
}

// Resume returns a paused session to play with a new question.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePaused {
		return
	}
	s.phase = PhasePlaying
	s.beginQuestion()
}

// End force-terminates the session (disconnect, client quit).
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSession("ABORTED")
}

// CurrentRound returns the parameters of the active question.
func (s *Session) CurrentRound() RoundParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RoundParams{
		SessionID: s.id,
		Question:  s.currentQuestion,
		TierCfg:   game.TierOf(s.currentGame, s.currentTier),
		Tier:      s.currentTier,
		Overclock: s.tension.Overclock(),
		Number:    s.questionCount,
	}
}

// HotState is the live, frequently-polled slice of session state handed to
// the cache layer, so spectator reads never sit on the engine lock.
type HotState struct {
	Phase       Phase
	Streak      int
	Tier        int
	Tension     float64
	CurrentGame game.ID
}

// Hot snapshots the live state.
func (s *Session) Hot() HotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HotState{
		Phase:       s.phase,
		Streak:      s.streak,
		Tier:        s.currentTier,
		Tension:     s.tension.Tension(),
		CurrentGame: s.currentGame,
	}
}

// Summary snapshots the session for the results layer. Valid at any time;
// final once the phase is GameOver.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	perGame := make(map[game.ID]GameStats, len(s.perGame))
	for id, st := range s.perGame {
		perGame[id] = st
	}
	elapsed := 0.0
	if !s.startedAt.IsZero() {
		elapsed = s.now().Sub(s.startedAt).Seconds()
	}
	return Summary{
		SessionID:       s.id,
		Mode:            s.mode,
		Score:           s.score,
		BestStreak:      s.bestStreak,
		Correct:         s.correct,
		Wrong:           s.wrong,
		PeakSpeed:       s.peakSpeed,
		DurationSeconds: elapsed,
		SessionXP:       s.sessionXP,
		PeakTension:     s.tension.PeakTension(),
		PerGame:         perGame,
	}
}

// --- internals (caller holds s.mu) ---

func (s *Session) modeMultiplier() float64 {
	if s.mode == ModeEndless {
		return endlessModeMult
	}
	return timedModeMult
}

// deriveTier recomputes the difficulty tier for the next question. The
// surprise boost lands on every 10th question and clears itself on the 11th.
func (s *Session) deriveTier() int {
	surprise := s.questionCount > 0 && s.questionCount%surprisePeriod == 0
	return rules.DeriveTier(rules.TierParams{
		StartTier:     s.startTier,
		Streak:        s.streak,
		Elapsed:       s.now().Sub(s.startedAt),
		TierPenalty:   s.tierPenalty,
		SurpriseBoost: surprise,
	})
}

// firstGame draws the opening game uniformly.
func (s *Session) firstGame() game.ID {
	return s.pool[s.rng.Intn(len(s.pool))]
}

// pickNextGame layers the recency filter and the anti-starvation rule on top
// of the weighted selector.
func (s *Session) pickNextGame() game.ID {
	// Every Nth question forces a game the recent window has not seen.
	if (s.questionCount+1)%starvationPeriod == 0 {
		return s.selector.SelectUnderserved(s.currentGame, s.pool, s.recentGames)
	}
	candidates := excludeRecent(s.pool, s.recentGames, recencyExclusion)
	return s.selector.SelectWeighted(s.currentGame, candidates)
}

func (s *Session) switchGame(next game.ID) {
	prev := s.currentGame
	s.tension.SwitchToGame(next)
	s.currentGame = next

	s.recentGames = append(s.recentGames, next)
	if len(s.recentGames) > recentWindow {
		s.recentGames = s.recentGames[len(s.recentGames)-recentWindow:]
	}

	if prev != next {
		s.emit(events.EventTypeGameSwitch, map[string]any{
			"from":      prev,
			"to":        next,
			"overclock": s.tension.Overclock(),
		})
	}
}

// beginQuestion serves the next question: bump the sequence, cancel stale
// timers, generate under the current tier and overclock, arm the expiry.
func (s *Session) beginQuestion() {
	if s.phase != PhasePlaying {
		return
	}

	if s.questionTimer != nil {
		s.questionTimer.Cancel()
	}
	if s.swapTimer != nil {
		s.swapTimer.Cancel()
	}

	s.questionSeq++
	s.questionCount++
	s.answered = false

	prevTier := s.currentTier
	tier := s.deriveTier()
	s.currentTier = tier
	if prevTier != 0 && prevTier != tier {
		s.emit(events.EventTypeTierChange, map[string]any{
			"from": prevTier,
			"to":   tier,
		})
	}

	overclock := s.tension.Overclock()
	q, err := games.Generate(s.currentGame, tier, overclock, s.rng)
	if err != nil {
		// A broken mini-game is a signal to switch, never a session fault.
		s.logger.Errorf("generator failed for %s, switching game: %v", s.currentGame, err)
		s.switchGame(s.selector.SelectWeighted(s.currentGame, s.pool))
		q, err = games.Generate(s.currentGame, tier, overclock, s.rng)
		if err != nil {
			s.endSession("NO_PLAYABLE_GAME")
			return
		}
	}
	s.currentQuestion = q
	s.questionSentAt = s.now()
	metrics.Get().RecordQuestionServed()

	s.emit(events.EventTypeRoundStart, map[string]any{
		"game":      s.currentGame,
		"tier":      tier,
		"overclock": overclock,
		"timer_ms":  q.TimeAllowanceMS,
	})

	// Expiry timer: a timeout is a wrong answer, but only for this question.
	seq := s.questionSeq
	s.questionTimer = schedule(time.Duration(q.TimeAllowanceMS)*time.Millisecond, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.questionSeq != seq || s.answered {
			return
		}
		s.handleAnswerLocked(false, 0, q.Tier, true)
	})
}

func (s *Session) endSession(reason string) {
	if s.phase == PhaseGameOver {
		return
	}
	s.phase = PhaseGameOver
	metrics.Get().RecordSessionEnd()

	for _, h := range []*TimerHandle{s.questionTimer, s.swapTimer, s.countdownTimer, s.sessionTimer} {
		h.Cancel()
	}

	s.emit(events.EventTypeSessionEnd, map[string]any{
		"reason":  reason,
		"summary": s.summaryLocked(),
	})
	if s.logger != nil {
		s.logger.Event("SESSION_END", s.id, fmt.Sprintf("Reason:%s Score:%d Peak:%.2f", reason, s.score, s.tension.PeakTension()))
	}
}

func (s *Session) emit(t events.EventType, payload any) {
	if s.eventLog == nil {
		return
	}
	s.eventLog.Append(events.SessionEvent{
		ID:        events.GenerateEventID(),
		SessionID: s.id,
		Timestamp: s.now(),
		Type:      t,
		GameID:    string(s.currentGame),
		Question:  s.questionCount,
		Payload:   payload,
	})
}

func (s *Session) emitTension() {
	s.emit(events.EventTypeTensionChange, map[string]any{
		"tension":   s.tension.Tension(),
		"peak":      s.tension.PeakTension(),
		"overclock": s.tension.Overclock(),
	})
}
