package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/heartapi"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

var (
	// ErrNotAcceptingAnswers is returned by Submit outside a running countdown.
	ErrNotAcceptingAnswers = errors.New("not accepting answers")
	// ErrInvalidTransition is returned when an action does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyStarted    = errors.New("game already started")
)

const (
	DefaultReward       = 10
	DefaultCredits      = 3
	DefaultMiniGameTime = 20 * time.Second
)

// Player identifies who is playing.
type Player struct {
	UserID   string
	Username string
	Token    string
}

// QuestionSource loads main-game questions.
type QuestionSource interface {
	NextQuestion(ctx context.Context) (Question, error)
}

// QuestionSourceFunc adapts a function to QuestionSource.
type QuestionSourceFunc func(ctx context.Context) (Question, error)

func (f QuestionSourceFunc) NextQuestion(ctx context.Context) (Question, error) {
	return f(ctx)
}

// HeartSource serves main-game questions from the heart puzzle API.
func HeartSource(f heartapi.Fetcher) QuestionSource {
	return QuestionSourceFunc(func(ctx context.Context) (Question, error) {
		p, err := f.FetchPuzzle(ctx)
		if err != nil {
			return Question{}, err
		}
		return Question{Prompt: p.Question, Solution: p.Solution}, nil
	})
}

// Reporter persists sessions and final scores.
type Reporter interface {
	StartSession(ctx context.Context, in models.StartSessionInput) (*models.SessionRecord, error)
	SaveScore(ctx context.Context, in models.SaveScoreInput) (*models.ScoreRecord, error)
	UpdateSession(ctx context.Context, sessionID string, update models.SessionUpdate) (*models.SessionRecord, error)
}

type Config struct {
	Difficulty   models.Difficulty
	Reward       int
	Credits      int
	MiniGameTime time.Duration
	// OnExpire, if set, is called after a countdown runs out.
	OnExpire func(Snapshot)
}

func (c Config) withDefaults() Config {
	if !c.Difficulty.Valid() {
		c.Difficulty = models.DifficultyEasy
	}
	if c.Reward <= 0 {
		c.Reward = DefaultReward
	}
	if c.Credits <= 0 {
		c.Credits = DefaultCredits
	}
	if c.MiniGameTime <= 0 {
		c.MiniGameTime = DefaultMiniGameTime
	}
	return c
}

// Engine runs one player's game. It is safe for concurrent use; countdown
// expiry runs on the clock's goroutine.
type Engine struct {
	cfg       Config
	player    Player
	questions QuestionSource
	pearls    PearlBank
	reporter  Reporter
	clock     clock.Clock

	mu          sync.Mutex
	ctx         context.Context
	state       State
	question    *Question
	score       int
	correct     int
	attempted   int
	credits     int
	sessionID   string
	startedAt   time.Time
	deadline    time.Time
	timer       clock.Timer
	seq         uint64
	generation  uint64
	lastOutcome Outcome
	finalized   bool
	once        *sync.Once
}

func New(cfg Config, player Player, questions QuestionSource, pearls PearlBank, reporter Reporter, clk clock.Clock) *Engine {
	if pearls == nil {
		pearls = NewPearlBank(nil, nil)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		player:    player,
		questions: questions,
		pearls:    pearls,
		reporter:  reporter,
		clock:     clk,
	}
}

// Start opens a session and loads the first question.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	gen := e.resetLocked(ctx)
	e.mu.Unlock()

	e.openSession(ctx, gen)
	return e.Next(ctx)
}

// Restart finalizes any unfinished game, then starts over with fresh
// counters, full credits and a new session.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	unfinished := e.state != nil && !e.finalized
	e.mu.Unlock()
	if unfinished {
		e.finalize(ctx)
	}

	e.mu.Lock()
	gen := e.resetLocked(ctx)
	e.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("game").Debug("restarting game for user_id=%s", e.player.UserID)
	e.openSession(ctx, gen)
	return e.Next(ctx)
}

func (e *Engine) resetLocked(ctx context.Context) uint64 {
	e.stopTimerLocked()
	e.ctx = ctx
	e.state = MainLoop{P: PhaseLoading}
	e.question = nil
	e.score = 0
	e.correct = 0
	e.attempted = 0
	e.credits = e.cfg.Credits
	e.sessionID = ""
	e.startedAt = e.clock.Now()
	e.lastOutcome = OutcomeNone
	e.finalized = false
	e.once = &sync.Once{}
	e.generation++
	return e.generation
}

func (e *Engine) openSession(ctx context.Context, gen uint64) {
	log := logger.FromContext(ctx).WithPrefix("game")

	e.mu.Lock()
	startedAt := e.startedAt
	e.mu.Unlock()

	sess, err := e.reporter.StartSession(ctx, models.StartSessionInput{
		UserID:     e.player.UserID,
		Username:   e.player.Username,
		Difficulty: e.cfg.Difficulty,
		GameType:   models.GameTypeMain,
		StartTime:  &startedAt,
		Status:     models.SessionActive,
	})
	if err != nil {
		log.Warn("failed to start session, continuing without one: %v", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation == gen {
		e.sessionID = sess.SessionID
		log.Debug("session started: session_id=%s", sess.SessionID)
	}
}

// Next loads the next main-game question and starts its countdown. It is
// valid while loading or after a correct answer.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	main, ok := e.state.(MainLoop)
	if !ok || (main.P != PhaseLoading && main.P != PhaseCorrect) {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.state = MainLoop{P: PhaseLoading}
	gen := e.generation
	e.mu.Unlock()

	q, err := e.questions.NextQuestion(ctx)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("game").Error("failed to load question: %v", err)
		return fmt.Errorf("load question: %w", err)
	}
	if q.Reward <= 0 {
		q.Reward = e.cfg.Reward
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen || e.state != State(MainLoop{P: PhaseLoading}) {
		return ErrInvalidTransition
	}
	e.attempted++
	e.question = &q
	e.lastOutcome = OutcomeNone
	e.armLocked(e.cfg.Difficulty.QuestionTime())
	e.state = MainLoop{P: PhasePlaying}
	return nil
}

// Submit answers the current question.
func (e *Engine) Submit(answer int) (Outcome, error) {
	e.mu.Lock()
	if e.state == nil || e.state.Phase() != PhasePlaying || e.question == nil {
		e.mu.Unlock()
		return OutcomeNone, ErrNotAcceptingAnswers
	}
	e.stopTimerLocked()
	q := *e.question

	var outcome Outcome
	var finish bool
	switch s := e.state.(type) {
	case MainLoop:
		if answer == q.Solution {
			outcome = OutcomeCorrect
			e.score += q.Reward
			e.correct++
			e.state = MainLoop{P: PhaseCorrect}
		} else {
			outcome = OutcomeWrong
			finish = e.missLocked()
		}
	case MiniGameLoop:
		e.credits--
		if answer == q.Solution {
			outcome = OutcomeCorrect
			e.score += q.Reward
			e.state = s.Return
		} else {
			outcome = OutcomeWrong
			finish = e.miniMissLocked()
		}
	}
	e.lastOutcome = outcome
	ctx := e.ctx
	e.mu.Unlock()

	if finish {
		e.finalize(ctx)
	}
	return outcome, nil
}

// AcceptSecondChance enters the mini-game from an offer.
func (e *Engine) AcceptSecondChance(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.state.Phase() != PhaseOffer || e.credits <= 0 {
		return ErrInvalidTransition
	}
	q := e.pearls.Pick()
	e.question = &q
	e.lastOutcome = OutcomeNone
	e.armLocked(e.cfg.MiniGameTime)
	e.state = MiniGameLoop{P: PhasePlaying, Return: MainLoop{P: PhaseLoading}, CreditsRemaining: e.credits}
	logger.FromContext(ctx).WithPrefix("game").Debug("second chance accepted, credits=%d", e.credits)
	return nil
}

// DeclineSecondChance ends the game from an offer.
func (e *Engine) DeclineSecondChance(ctx context.Context) error {
	e.mu.Lock()
	if e.state == nil || e.state.Phase() != PhaseOffer {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.mu.Unlock()
	e.finalize(ctx)
	return nil
}

// Quit ends the game on request.
func (e *Engine) Quit(ctx context.Context) error {
	return e.end(ctx, "quit")
}

// Abandon ends the game when the player leaves without quitting.
func (e *Engine) Abandon(ctx context.Context) error {
	return e.end(ctx, "abandon")
}

func (e *Engine) end(ctx context.Context, reason string) error {
	e.mu.Lock()
	started := e.state != nil
	e.mu.Unlock()
	if !started {
		return ErrInvalidTransition
	}
	logger.FromContext(ctx).WithPrefix("game").Debug("ending game: reason=%s", reason)
	e.finalize(ctx)
	return nil
}

// Snapshot returns the current view of the game.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:       e.state,
		Score:       e.score,
		Correct:     e.correct,
		Attempted:   e.attempted,
		Credits:     e.credits,
		SessionID:   e.sessionID,
		LastOutcome: e.lastOutcome,
		Finalized:   e.finalized,
	}
	if e.question != nil {
		q := *e.question
		s.Question = &q
	}
	if e.state != nil && e.state.Phase() == PhasePlaying {
		left := e.deadline.Sub(e.clock.Now())
		if left > 0 {
			s.Remaining = int((left + time.Second - 1) / time.Second)
		}
	}
	return s
}

// missLocked resolves a wrong or timed-out main answer. It reports whether
// the game is over.
func (e *Engine) missLocked() bool {
	if e.credits > 0 {
		e.state = MainLoop{P: PhaseOffer}
		return false
	}
	e.state = MainLoop{P: PhaseGameOver}
	return true
}

// miniMissLocked resolves a lost mini-game round after its credit was spent.
func (e *Engine) miniMissLocked() bool {
	if e.credits <= 0 {
		e.state = MainLoop{P: PhaseGameOver}
		return true
	}
	e.state = MiniGameLoop{P: PhaseOffer, Return: MainLoop{P: PhaseLoading}, CreditsRemaining: e.credits}
	return false
}

func (e *Engine) armLocked(d time.Duration) {
	e.stopTimerLocked()
	seq := e.seq
	e.deadline = e.clock.Now().Add(d)
	e.timer = e.clock.AfterFunc(d, func() { e.expire(seq) })
}

// stopTimerLocked cancels the countdown and invalidates any expiry already in flight.
func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.seq++
}

func (e *Engine) expire(seq uint64) {
	e.mu.Lock()
	if seq != e.seq || e.state == nil || e.state.Phase() != PhasePlaying {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.seq++

	var finish bool
	switch e.state.(type) {
	case MainLoop:
		finish = e.missLocked()
	case MiniGameLoop:
		e.credits--
		finish = e.miniMissLocked()
	}
	e.lastOutcome = OutcomeTimeout
	ctx := e.ctx
	notify := e.cfg.OnExpire
	e.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("game").Debug("countdown expired")
	if finish {
		e.finalize(ctx)
	}
	if notify != nil {
		notify(e.Snapshot())
	}
}

type result struct {
	score     int
	correct   int
	attempted int
	sessionID string
	startedAt time.Time
	endedAt   time.Time
}

// finalize moves the game to gameOver and persists it once per game.
func (e *Engine) finalize(ctx context.Context) {
	e.mu.Lock()
	if e.once == nil {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	e.state = MainLoop{P: PhaseGameOver}
	e.finalized = true
	once := e.once
	res := result{
		score:     e.score,
		correct:   e.correct,
		attempted: e.attempted,
		sessionID: e.sessionID,
		startedAt: e.startedAt,
		endedAt:   e.clock.Now(),
	}
	e.mu.Unlock()

	once.Do(func() { e.persist(ctx, res) })
}

func (e *Engine) persist(ctx context.Context, res result) {
	log := logger.FromContext(ctx).WithPrefix("game")
	log.Info("game over: user_id=%s, score=%d, correct=%d/%d", e.player.UserID, res.score, res.correct, res.attempted)

	var sessionID *string
	if res.sessionID != "" {
		sessionID = &res.sessionID
	}
	score := res.score
	_, err := e.reporter.SaveScore(ctx, models.SaveScoreInput{
		UserID:         e.player.UserID,
		Username:       e.player.Username,
		Score:          &score,
		Difficulty:     e.cfg.Difficulty,
		Status:         models.ScoreCompleted,
		CorrectAnswers: res.correct,
		TotalQuestions: res.attempted,
		GameType:       models.GameTypeMain,
		SessionID:      sessionID,
		TimeSpent:      int(res.endedAt.Sub(res.startedAt) / time.Second),
	})
	if err != nil {
		log.Warn("failed to save score: %v", err)
	}

	if sessionID == nil {
		return
	}
	status := models.SessionCompleted
	end := res.endedAt
	correct, attempted := res.correct, res.attempted
	_, err = e.reporter.UpdateSession(ctx, res.sessionID, models.SessionUpdate{
		EndTime:        &end,
		Status:         &status,
		FinalScore:     &score,
		CorrectAnswers: &correct,
		TotalQuestions: &attempted,
	})
	if err != nil {
		log.Warn("failed to update session %s: %v", res.sessionID, err)
	}
}
