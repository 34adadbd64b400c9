package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/testutil/mocks"
)

func init() {
	logger.SetDefault(logger.Discard())
}

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingReporter struct {
	mu         sync.Mutex
	startErr   error
	saveErr    error
	started    []models.StartSessionInput
	saved      []models.SaveScoreInput
	updates    map[string][]models.SessionUpdate
	nextID     int
	sessionIDs []string
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{updates: make(map[string][]models.SessionUpdate)}
}

func (r *recordingReporter) StartSession(_ context.Context, in models.StartSessionInput) (*models.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.started = append(r.started, in)
	r.nextID++
	id := []string{"s-1", "s-2", "s-3", "s-4"}[r.nextID-1]
	r.sessionIDs = append(r.sessionIDs, id)
	return &models.SessionRecord{SessionID: id, UserID: in.UserID, Status: models.SessionActive}, nil
}

func (r *recordingReporter) SaveScore(_ context.Context, in models.SaveScoreInput) (*models.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, in)
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	return &models.ScoreRecord{ID: "rec", Score: *in.Score}, nil
}

func (r *recordingReporter) UpdateSession(_ context.Context, id string, u models.SessionUpdate) (*models.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[id] = append(r.updates[id], u)
	return &models.SessionRecord{SessionID: id}, nil
}

func (r *recordingReporter) savedScores() []models.SaveScoreInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SaveScoreInput(nil), r.saved...)
}

// fixedSource always asks the same question.
func fixedSource(solution int) QuestionSource {
	return QuestionSourceFunc(func(context.Context) (Question, error) {
		return Question{Prompt: "hearts.png", Solution: solution}, nil
	})
}

// pearlsOf always picks the pearl with the given count.
func pearlsOf(count int) PearlBank {
	return NewPearlBank(nil, RandomFunc(func(int) int { return count }))
}

type fixture struct {
	engine   *Engine
	clock    *mocks.MockClock
	reporter *recordingReporter
}

func newFixture(t *testing.T, cfg Config) fixture {
	t.Helper()
	clk := mocks.NewMockClock(start)
	rep := newRecordingReporter()
	e := New(cfg, Player{UserID: "u1", Username: "finn"}, fixedSource(4), pearlsOf(6), rep, clk)
	return fixture{engine: e, clock: clk, reporter: rep}
}

func TestStartLoadsQuestion(t *testing.T) {
	f := newFixture(t, Config{Difficulty: models.DifficultyMedium})
	require.NoError(t, f.engine.Start(context.Background()))

	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhasePlaying}, snap.State)
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, 3, snap.Credits)
	assert.Equal(t, 40, snap.Remaining)
	assert.Equal(t, "s-1", snap.SessionID)
	require.NotNil(t, snap.Question)
	assert.Equal(t, DefaultReward, snap.Question.Reward)

	require.Len(t, f.reporter.started, 1)
	assert.Equal(t, models.DifficultyMedium, f.reporter.started[0].Difficulty)
	assert.Equal(t, models.GameTypeMain, f.reporter.started[0].GameType)

	assert.ErrorIs(t, f.engine.Start(context.Background()), ErrAlreadyStarted)
}

func TestCountdownPerDifficulty(t *testing.T) {
	cases := map[models.Difficulty]int{
		models.DifficultyEasy:   60,
		models.DifficultyMedium: 40,
		models.DifficultyHard:   30,
		models.DifficultyExpert: 15,
	}
	for d, want := range cases {
		t.Run(string(d), func(t *testing.T) {
			f := newFixture(t, Config{Difficulty: d})
			require.NoError(t, f.engine.Start(context.Background()))
			assert.Equal(t, want, f.engine.Snapshot().Remaining)

			f.clock.Advance(time.Duration(want-1) * time.Second)
			assert.Equal(t, MainLoop{P: PhasePlaying}, f.engine.Snapshot().State)
			f.clock.Advance(time.Second)
			assert.Equal(t, MainLoop{P: PhaseOffer}, f.engine.Snapshot().State)
		})
	}
}

func TestCorrectAnswersAccumulate(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))

	for i := 0; i < 3; i++ {
		out, err := f.engine.Submit(4)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCorrect, out)
		assert.Equal(t, MainLoop{P: PhaseCorrect}, f.engine.Snapshot().State)
		require.NoError(t, f.engine.Next(ctx))
	}

	snap := f.engine.Snapshot()
	assert.Equal(t, 30, snap.Score)
	assert.Equal(t, 3, snap.Correct)
	assert.Equal(t, 4, snap.Attempted)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestSubmitCancelsCountdown(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.engine.Start(context.Background()))

	_, err := f.engine.Submit(4)
	require.NoError(t, err)
	assert.Equal(t, 0, f.clock.Pending())

	f.clock.Advance(2 * time.Minute)
	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhaseCorrect}, snap.State)
	assert.Equal(t, OutcomeCorrect, snap.LastOutcome)
}

func TestSubmitAfterTimeoutIsRejected(t *testing.T) {
	f := newFixture(t, Config{Difficulty: models.DifficultyExpert})
	require.NoError(t, f.engine.Start(context.Background()))

	f.clock.Advance(15 * time.Second)
	snap := f.engine.Snapshot()
	assert.Equal(t, OutcomeTimeout, snap.LastOutcome)
	assert.Equal(t, MainLoop{P: PhaseOffer}, snap.State)

	_, err := f.engine.Submit(4)
	assert.ErrorIs(t, err, ErrNotAcceptingAnswers)
	assert.Equal(t, 0, snap.Score)
}

func TestStaleExpiryDoesNotAffectNextQuestion(t *testing.T) {
	f := newFixture(t, Config{Difficulty: models.DifficultyExpert})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))

	// Capture the first question's expiry before it can be stopped.
	f.engine.mu.Lock()
	staleSeq := f.engine.seq
	f.engine.mu.Unlock()

	_, err := f.engine.Submit(4)
	require.NoError(t, err)
	require.NoError(t, f.engine.Next(ctx))

	f.engine.expire(staleSeq)
	assert.Equal(t, MainLoop{P: PhasePlaying}, f.engine.Snapshot().State)

	out, err := f.engine.Submit(4)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out)
}

func TestWrongAnswerOffersSecondChance(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.engine.Start(context.Background()))

	out, err := f.engine.Submit(1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrong, out)

	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhaseOffer}, snap.State)
	assert.Equal(t, 3, snap.Credits)
	assert.False(t, snap.Finalized)
	assert.Empty(t, f.reporter.savedScores())
}

func TestMiniGameWinResumesMainLoop(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, err := f.engine.Submit(4)
	require.NoError(t, err)
	require.NoError(t, f.engine.Next(ctx))
	_, err = f.engine.Submit(0)
	require.NoError(t, err)

	require.NoError(t, f.engine.AcceptSecondChance(ctx))
	snap := f.engine.Snapshot()
	assert.True(t, snap.InMiniGame())
	assert.Equal(t, MiniGameLoop{P: PhasePlaying, Return: MainLoop{P: PhaseLoading}, CreditsRemaining: 3}, snap.State)
	assert.Equal(t, 20, snap.Remaining)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "💎💎💎💎💎💎", snap.Question.Prompt)

	out, err := f.engine.Submit(6)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out)

	snap = f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhaseLoading}, snap.State)
	assert.Equal(t, 2, snap.Credits)
	assert.Equal(t, 10+20, snap.Score)
	assert.Equal(t, 1, snap.Correct)

	require.NoError(t, f.engine.Next(ctx))
	assert.Equal(t, 3, f.engine.Snapshot().Attempted)
}

func TestMiniGameLossesExhaustCredits(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, err := f.engine.Submit(0)
	require.NoError(t, err)

	for credits := 2; credits >= 1; credits-- {
		require.NoError(t, f.engine.AcceptSecondChance(ctx))
		out, err := f.engine.Submit(99)
		require.NoError(t, err)
		assert.Equal(t, OutcomeWrong, out)
		assert.Equal(t, MiniGameLoop{P: PhaseOffer, Return: MainLoop{P: PhaseLoading}, CreditsRemaining: credits}, f.engine.Snapshot().State)
	}

	require.NoError(t, f.engine.AcceptSecondChance(ctx))
	f.clock.Advance(20 * time.Second)

	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhaseGameOver}, snap.State)
	assert.Equal(t, 0, snap.Credits)
	assert.True(t, snap.Finalized)
	assert.ErrorIs(t, f.engine.AcceptSecondChance(ctx), ErrInvalidTransition)

	saved := f.reporter.savedScores()
	require.Len(t, saved, 1)
	assert.Equal(t, 0, *saved[0].Score)
	assert.Equal(t, 0, saved[0].CorrectAnswers)
	assert.Equal(t, 1, saved[0].TotalQuestions)
}

func TestOutOfCreditsEndsGameOnMiss(t *testing.T) {
	f := newFixture(t, Config{Credits: 1})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, _ = f.engine.Submit(0)
	require.NoError(t, f.engine.AcceptSecondChance(ctx))
	_, err := f.engine.Submit(6)
	require.NoError(t, err)
	require.NoError(t, f.engine.Next(ctx))

	_, err = f.engine.Submit(0)
	require.NoError(t, err)
	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhaseGameOver}, snap.State)
	assert.Equal(t, 20, snap.Score)
	require.Len(t, f.reporter.savedScores(), 1)
}

func TestDeclineSecondChanceFinalizes(t *testing.T) {
	f := newFixture(t, Config{Difficulty: models.DifficultyHard})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, _ = f.engine.Submit(4)
	require.NoError(t, f.engine.Next(ctx))
	f.clock.Advance(10 * time.Second)
	_, _ = f.engine.Submit(3)

	require.NoError(t, f.engine.DeclineSecondChance(ctx))
	assert.Equal(t, MainLoop{P: PhaseGameOver}, f.engine.Snapshot().State)
	assert.ErrorIs(t, f.engine.DeclineSecondChance(ctx), ErrInvalidTransition)

	saved := f.reporter.savedScores()
	require.Len(t, saved, 1)
	in := saved[0]
	assert.Equal(t, "u1", in.UserID)
	assert.Equal(t, "finn", in.Username)
	assert.Equal(t, 10, *in.Score)
	assert.Equal(t, 1, in.CorrectAnswers)
	assert.Equal(t, 2, in.TotalQuestions)
	assert.Equal(t, models.DifficultyHard, in.Difficulty)
	assert.Equal(t, models.ScoreCompleted, in.Status)
	assert.Equal(t, models.GameTypeMain, in.GameType)
	assert.Equal(t, 10, in.TimeSpent)
	require.NotNil(t, in.SessionID)
	assert.Equal(t, "s-1", *in.SessionID)

	updates := f.reporter.updates["s-1"]
	require.Len(t, updates, 1)
	assert.Equal(t, models.SessionCompleted, *updates[0].Status)
	assert.Equal(t, 10, *updates[0].FinalScore)
	assert.Equal(t, 1, *updates[0].CorrectAnswers)
	assert.Equal(t, 2, *updates[0].TotalQuestions)
	assert.Equal(t, start.Add(10*time.Second), *updates[0].EndTime)
}

func TestFinalizeRunsOnce(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, _ = f.engine.Submit(4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = f.engine.Quit(ctx)
			} else {
				_ = f.engine.Abandon(ctx)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.reporter.savedScores(), 1)
	assert.Len(t, f.reporter.updates["s-1"], 1)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestQuitBeforeStart(t *testing.T) {
	f := newFixture(t, Config{})
	assert.ErrorIs(t, f.engine.Quit(context.Background()), ErrInvalidTransition)
	assert.Empty(t, f.reporter.savedScores())
}

func TestSessionFailureDoesNotStopGame(t *testing.T) {
	f := newFixture(t, Config{})
	f.reporter.startErr = errors.New("offline")
	f.reporter.saveErr = errors.New("offline")
	ctx := context.Background()

	require.NoError(t, f.engine.Start(ctx))
	assert.Empty(t, f.engine.Snapshot().SessionID)
	_, _ = f.engine.Submit(4)
	require.NoError(t, f.engine.Quit(ctx))

	saved := f.reporter.savedScores()
	require.Len(t, saved, 1)
	assert.Nil(t, saved[0].SessionID)
	assert.Empty(t, f.reporter.updates)
}

func TestRestartResetsCounters(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, _ = f.engine.Submit(4)
	require.NoError(t, f.engine.Next(ctx))
	_, _ = f.engine.Submit(0)
	require.NoError(t, f.engine.AcceptSecondChance(ctx))
	_, _ = f.engine.Submit(0)

	require.NoError(t, f.engine.Restart(ctx))

	snap := f.engine.Snapshot()
	assert.Equal(t, MainLoop{P: PhasePlaying}, snap.State)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Correct)
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, 3, snap.Credits)
	assert.Equal(t, "s-2", snap.SessionID)
	assert.False(t, snap.Finalized)

	saved := f.reporter.savedScores()
	require.Len(t, saved, 1)
	assert.Equal(t, 10, *saved[0].Score)
	assert.Equal(t, "s-1", *saved[0].SessionID)
}

func TestRestartAfterGameOverSavesOnce(t *testing.T) {
	f := newFixture(t, Config{Credits: 1})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	_, _ = f.engine.Submit(0)
	require.NoError(t, f.engine.DeclineSecondChance(ctx))

	require.NoError(t, f.engine.Restart(ctx))
	_, _ = f.engine.Submit(4)
	require.NoError(t, f.engine.Quit(ctx))

	saved := f.reporter.savedScores()
	require.Len(t, saved, 2)
	assert.Equal(t, 0, *saved[0].Score)
	assert.Equal(t, 10, *saved[1].Score)
	assert.Equal(t, "s-2", *saved[1].SessionID)
}

func TestNextRequiresLoadingOrCorrect(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx))
	assert.ErrorIs(t, f.engine.Next(ctx), ErrInvalidTransition)

	_, _ = f.engine.Submit(0)
	assert.ErrorIs(t, f.engine.Next(ctx), ErrInvalidTransition)
}

func TestQuestionLoadFailureStaysLoading(t *testing.T) {
	clk := mocks.NewMockClock(start)
	calls := 0
	src := QuestionSourceFunc(func(context.Context) (Question, error) {
		calls++
		if calls == 1 {
			return Question{}, errors.New("api down")
		}
		return Question{Prompt: "q", Solution: 2, Reward: 15}, nil
	})
	e := New(Config{}, Player{UserID: "u1"}, src, nil, newRecordingReporter(), clk)
	ctx := context.Background()

	require.Error(t, e.Start(ctx))
	assert.Equal(t, MainLoop{P: PhaseLoading}, e.Snapshot().State)
	assert.Equal(t, 0, e.Snapshot().Attempted)

	require.NoError(t, e.Next(ctx))
	_, err := e.Submit(2)
	require.NoError(t, err)
	assert.Equal(t, 15, e.Snapshot().Score)
}

func TestOnExpireNotifies(t *testing.T) {
	var got []Snapshot
	clk := mocks.NewMockClock(start)
	cfg := Config{Difficulty: models.DifficultyExpert, OnExpire: func(s Snapshot) { got = append(got, s) }}
	e := New(cfg, Player{UserID: "u1"}, fixedSource(1), pearlsOf(0), newRecordingReporter(), clk)
	require.NoError(t, e.Start(context.Background()))

	clk.Advance(15 * time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, OutcomeTimeout, got[0].LastOutcome)
	assert.Equal(t, MainLoop{P: PhaseOffer}, got[0].State)
}

func TestPearlBankTable(t *testing.T) {
	for i, p := range DefaultPearls {
		q := NewPearlBank(nil, RandomFunc(func(int) int { return i })).Pick()
		assert.Equal(t, p.Count, q.Solution)
		assert.Equal(t, p.Reward, q.Reward)
	}
	q := NewPearlBank(nil, RandomFunc(func(n int) int {
		assert.Equal(t, 9, n)
		return 0
	})).Pick()
	assert.Equal(t, 0, q.Solution)
	assert.Equal(t, 5, q.Reward)
}
