package game

// Phase is the step a loop is in.
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhasePlaying  Phase = "playing"
	PhaseCorrect  Phase = "correct"
	PhaseWrong    Phase = "wrong"
	PhaseTimeout  Phase = "timeout"
	PhaseOffer    Phase = "offer"
	PhaseGameOver Phase = "gameOver"
)

// State is either a MainLoop or a MiniGameLoop.
type State interface {
	Phase() Phase
	isState()
}

// MainLoop is the regular question loop.
type MainLoop struct {
	P Phase
}

func (s MainLoop) Phase() Phase { return s.P }
func (MainLoop) isState()       {}

// MiniGameLoop is a second-chance round. Return is where the main loop
// resumes when the round is won.
type MiniGameLoop struct {
	P                Phase
	Return           MainLoop
	CreditsRemaining int
}

func (s MiniGameLoop) Phase() Phase { return s.P }
func (MiniGameLoop) isState()       {}

// Outcome is how a single question ended.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomeTimeout Outcome = "timeout"
)

// Question is what the player is asked. Reward is the score for a correct
// main answer, or the number of pearls for a mini-game answer.
type Question struct {
	Prompt   string
	Solution int
	Reward   int
}

// Snapshot is a read-only view of the engine for display.
type Snapshot struct {
	State       State
	Score       int
	Correct     int
	Attempted   int
	Credits     int
	Remaining   int // whole seconds left on the countdown
	Question    *Question
	SessionID   string
	LastOutcome Outcome
	Finalized   bool
}

// InMiniGame reports whether the snapshot was taken during a second-chance round.
func (s Snapshot) InMiniGame() bool {
	_, ok := s.State.(MiniGameLoop)
	return ok
}
