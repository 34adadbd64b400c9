package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/game"
	"github.com/vytor/heartgame/internal/heartapi"
	"github.com/vytor/heartgame/internal/models"
)

func newPlayCmd() *cobra.Command {
	var difficulty string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round of heart counting",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDifficulty(difficulty)
			if err != nil {
				return err
			}
			session, err := cfg.Session()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			expired := make(chan game.Snapshot, 1)
			engine := game.New(
				game.Config{Difficulty: d, OnExpire: notifyExpired(expired)},
				game.Player{UserID: session.UserID, Username: session.Username, Token: cfg.Token},
				game.HeartSource(heartapi.New(cfg.HeartAPIURL, cfg.HeartAPITimeout)),
				nil,
				apiClient,
				clock.New(),
			)
			return runPlay(ctx, engine, expired, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", string(models.DifficultyEasy), "Easy, Medium, Hard or Expert")

	return cmd
}

func parseDifficulty(s string) (models.Difficulty, error) {
	for _, d := range models.Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// notifyExpired forwards countdown expiries without ever blocking the clock.
func notifyExpired(ch chan<- game.Snapshot) func(game.Snapshot) {
	return func(s game.Snapshot) {
		select {
		case ch <- s:
		default:
		}
	}
}

// runPlay drives engine from line based input until the game is over, the
// player quits, input ends or ctx is cancelled.
func runPlay(ctx context.Context, engine *game.Engine, expired <-chan game.Snapshot, in io.Reader, out io.Writer) error {
	lines, done := readLines(in)
	defer close(done)

	fmt.Fprintln(out, "Count the hearts in each picture. Type q to quit.")
	if err := engine.Start(ctx); err != nil {
		if errors.Is(err, game.ErrAlreadyStarted) {
			return err
		}
		fmt.Fprintf(out, "Could not load a question: %v\n", err)
	}

	for {
		snap := engine.Snapshot()
		if snap.Finalized {
			printSummary(out, snap)
			return nil
		}

		switch snap.State.Phase() {
		case game.PhaseCorrect, game.PhaseLoading:
			err := engine.Next(ctx)
			if err == nil {
				continue
			}
			fmt.Fprintf(out, "Could not load a question: %v\n", err)
			fmt.Fprint(out, "Press enter to try again: ")
		case game.PhasePlaying:
			printQuestion(out, snap)
		case game.PhaseOffer:
			fmt.Fprintf(out, "Take a second chance? %d credits left [y/n]: ", snap.Credits)
		}

		select {
		case <-ctx.Done():
			_ = engine.Abandon(context.WithoutCancel(ctx))
			printSummary(out, engine.Snapshot())
			return ctx.Err()
		case s := <-expired:
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Time's up!")
			printAnswer(out, s)
		case line, ok := <-lines:
			if !ok {
				_ = engine.Abandon(ctx)
				printSummary(out, engine.Snapshot())
				return nil
			}
			handleLine(ctx, engine, expired, snap, strings.TrimSpace(line), out)
		}
	}
}

func handleLine(ctx context.Context, engine *game.Engine, expired <-chan game.Snapshot, snap game.Snapshot, line string, out io.Writer) {
	switch strings.ToLower(line) {
	case "q", "quit":
		_ = engine.Quit(ctx)
		return
	}

	switch snap.State.Phase() {
	case game.PhasePlaying:
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			fmt.Fprintln(out, "Enter a number.")
			return
		}
		outcome, err := engine.Submit(n)
		if errors.Is(err, game.ErrNotAcceptingAnswers) {
			fmt.Fprintln(out, "Too late!")
			select {
			case s := <-expired:
				printAnswer(out, s)
			default:
			}
			return
		}
		if outcome == game.OutcomeCorrect {
			fmt.Fprintf(out, "Correct! +%d\n", snap.Question.Reward)
			return
		}
		fmt.Fprintln(out, "Wrong!")
		printAnswer(out, snap)
	case game.PhaseOffer:
		switch strings.ToLower(line) {
		case "y", "yes":
			if err := engine.AcceptSecondChance(ctx); err != nil {
				fmt.Fprintf(out, "Could not start the second chance: %v\n", err)
			}
		case "n", "no":
			_ = engine.DeclineSecondChance(ctx)
		default:
			fmt.Fprintln(out, "Answer y or n.")
		}
	}
}

func printQuestion(out io.Writer, s game.Snapshot) {
	if s.Question == nil {
		return
	}
	fmt.Fprintln(out)
	if s.InMiniGame() {
		fmt.Fprintf(out, "Second chance, %ds left. How many pearls?\n%s\n> ", s.Remaining, s.Question.Prompt)
		return
	}
	fmt.Fprintf(out, "Question %d  score %d  %ds left\n%s\nHow many hearts? ", s.Attempted, s.Score, s.Remaining, s.Question.Prompt)
}

func printAnswer(out io.Writer, s game.Snapshot) {
	if s.Question != nil {
		fmt.Fprintf(out, "The answer was %d.\n", s.Question.Solution)
	}
}

func printSummary(out io.Writer, s game.Snapshot) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Game over. Final score: %d (%d of %d correct)\n", s.Score, s.Correct, s.Attempted)
}

// readLines scans in on its own goroutine. The returned channel is closed at
// end of input; closing done releases the scanner.
func readLines(in io.Reader) (<-chan string, chan<- struct{}) {
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines, done
}
