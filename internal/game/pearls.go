package game

import (
	"math/rand/v2"
	"strings"
)

// Random picks an index in [0, n).
type Random interface {
	IntN(n int) int
}

// RandomFunc adapts a function to Random.
type RandomFunc func(n int) int

func (f RandomFunc) IntN(n int) int { return f(n) }

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }

// PearlBank supplies mini-game questions.
type PearlBank interface {
	Pick() Question
}

// Pearl is one entry of the mini-game table: a count of pearls to show and
// the score they are worth.
type Pearl struct {
	Count  int
	Reward int
}

// DefaultPearls is the mini-game table keyed by solution.
var DefaultPearls = []Pearl{
	{Count: 0, Reward: 5},
	{Count: 1, Reward: 5},
	{Count: 2, Reward: 10},
	{Count: 3, Reward: 10},
	{Count: 4, Reward: 10},
	{Count: 5, Reward: 15},
	{Count: 6, Reward: 20},
	{Count: 7, Reward: 25},
	{Count: 8, Reward: 30},
}

const pearlGlyph = "💎"

type tableBank struct {
	table  []Pearl
	random Random
}

// NewPearlBank returns a bank that picks uniformly from table. A nil random
// uses math/rand; an empty table uses DefaultPearls.
func NewPearlBank(table []Pearl, random Random) PearlBank {
	if len(table) == 0 {
		table = DefaultPearls
	}
	if random == nil {
		random = defaultRandom{}
	}
	return &tableBank{table: table, random: random}
}

func (b *tableBank) Pick() Question {
	p := b.table[b.random.IntN(len(b.table))]
	prompt := strings.Repeat(pearlGlyph, p.Count)
	if prompt == "" {
		prompt = "(no pearls)"
	}
	return Question{Prompt: prompt, Solution: p.Count, Reward: p.Reward}
}
