package bot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pokerpit/holdem/card"
)

func seeded(p *Profile, seed int64) *DecisionEngine {
	return NewDecisionEngine(p, WithRand(rand.New(rand.NewSource(seed))))
}

func holeCards(a, b string) []card.Card {
	return []card.Card{card.MustParse(a), card.MustParse(b)}
}

func TestPreflopStrength_Bands(t *testing.T) {
	e := seeded(DefaultProfile("bot-1"), 1)

	for i := 0; i < 50; i++ {
		s := e.preflopStrength(holeCards("AS", "AH"))
		assert.GreaterOrEqual(t, s, 0.8)
		assert.LessOrEqual(t, s, 0.95)

		s = e.preflopStrength(holeCards("8S", "8H"))
		assert.GreaterOrEqual(t, s, 0.6)
		assert.LessOrEqual(t, s, 0.8)

		s = e.preflopStrength(holeCards("AS", "KS"))
		assert.GreaterOrEqual(t, s, 0.7)
		assert.LessOrEqual(t, s, 0.9)

		s = e.preflopStrength(holeCards("7S", "2H"))
		assert.GreaterOrEqual(t, s, 0.1)
		assert.LessOrEqual(t, s, 0.3)
	}
}

func TestPositionFactor(t *testing.T) {
	e := seeded(DefaultProfile("bot-1"), 1)

	// Heads-up position is flat.
	assert.Equal(t, 0.5, e.positionFactor(&Context{ActiveSeats: 2, DealerDistance: 1}))

	// Dealer is last, so max distance scores 1.0.
	assert.Equal(t, 0.0, e.positionFactor(&Context{ActiveSeats: 4, DealerDistance: 0}))
	assert.Equal(t, 1.0, e.positionFactor(&Context{ActiveSeats: 4, DealerDistance: 3}))
}

func TestPotOdds(t *testing.T) {
	e := seeded(DefaultProfile("bot-1"), 1)

	assert.True(t, e.potOdds(&Context{Pot: 100, CurrentBet: 10, SeatBet: 10}) > 1e9)
	assert.Equal(t, 5.0, e.potOdds(&Context{Pot: 100, CurrentBet: 30, SeatBet: 10}))
	assert.Equal(t, 0.0, e.potOdds(&Context{Pot: 0, CurrentBet: 30, SeatBet: 10}))
}

func TestMakeDecision_AlwaysLegal(t *testing.T) {
	profiles := []*Profile{
		{PlayerID: "b", Difficulty: Difficulty_Basic, PlayStyle: PlayStyle_TightAggressive, Aggression: 0.3, BluffFrequency: 0.2},
		{PlayerID: "i", Difficulty: Difficulty_Intermediate, PlayStyle: PlayStyle_LoosePassive, Aggression: 0.5, BluffFrequency: 0.3},
		{PlayerID: "a", Difficulty: Difficulty_Advanced, PlayStyle: PlayStyle_LooseAggressive, Aggression: 0.9, BluffFrequency: 0.4},
	}

	legalSets := [][]Action{
		{Action_Fold, Action_Check, Action_Bet},
		{Action_Fold, Action_Call, Action_Raise},
		{Action_Fold, Action_Call},
		{Action_Fold, Action_Check},
	}

	for seed := int64(0); seed < 20; seed++ {
		for _, p := range profiles {
			e := seeded(p, seed)
			for _, legal := range legalSets {
				d := e.MakeDecision(&Context{
					HoleCards:      holeCards("AS", "KS"),
					CommunityCards: []card.Card{card.MustParse("AH"), card.MustParse("KD"), card.MustParse("2C")},
					Pot:            60,
					CurrentBet:     20,
					SeatBet:        0,
					Stack:          200,
					BigBlind:       2,
					ActiveSeats:    3,
					DealerDistance: 2,
					LegalActions:   legal,
				})
				assert.Contains(t, legal, d.Action, "difficulty %s", p.Difficulty)
				if d.Action == Action_Bet || d.Action == Action_Raise {
					assert.Greater(t, d.Amount, int64(0))
					assert.LessOrEqual(t, d.Amount, int64(200))
				}
			}
		}
	}
}

func TestMakeDecision_StrongHandAggresses(t *testing.T) {
	p := &Profile{
		PlayerID:   "bot-1",
		Difficulty: Difficulty_Basic,
		PlayStyle:  PlayStyle_TightAggressive,
		Aggression: 0.8,
	}
	e := seeded(p, 7)

	// Quads on the board edge: strength is far above every threshold.
	d := e.MakeDecision(&Context{
		HoleCards:      holeCards("AS", "AH"),
		CommunityCards: []card.Card{card.MustParse("AD"), card.MustParse("AC"), card.MustParse("2C"), card.MustParse("7H"), card.MustParse("9D")},
		Pot:            40,
		CurrentBet:     10,
		SeatBet:        0,
		Stack:          500,
		BigBlind:       2,
		ActiveSeats:    2,
		DealerDistance: 1,
		LegalActions:   []Action{Action_Fold, Action_Call, Action_Raise},
	})
	assert.Equal(t, Action_Raise, d.Action)
	assert.GreaterOrEqual(t, d.Amount, int64(20), "raise floors at double the current bet")
}

func TestMakeDecision_WeakHandGivesUp(t *testing.T) {
	p := &Profile{
		PlayerID:   "bot-1",
		Difficulty: Difficulty_Basic,
		PlayStyle:  PlayStyle_TightPassive,
		Aggression: 0.1,
	}
	e := seeded(p, 3)

	ctx := &Context{
		HoleCards:      holeCards("7S", "2H"),
		CommunityCards: []card.Card{card.MustParse("KD"), card.MustParse("QC"), card.MustParse("9H"), card.MustParse("4S"), card.MustParse("3D")},
		Pot:            100,
		CurrentBet:     50,
		SeatBet:        0,
		Stack:          200,
		BigBlind:       2,
		ActiveSeats:    3,
		DealerDistance: 1,
		LegalActions:   []Action{Action_Fold, Action_Call, Action_Raise},
	}
	d := e.MakeDecision(ctx)
	assert.Equal(t, Action_Fold, d.Action)

	// With a free option the same hand checks instead.
	ctx.CurrentBet = 0
	ctx.LegalActions = []Action{Action_Fold, Action_Check, Action_Bet}
	d = e.MakeDecision(ctx)
	assert.Equal(t, Action_Check, d.Action)
}

func TestBetSize_Bounds(t *testing.T) {
	e := seeded(DefaultProfile("bot-1"), 1)

	// Raise floors at double the current bet.
	size := e.betSize(&Context{Pot: 10, CurrentBet: 20, Stack: 500, BigBlind: 2}, 0.5)
	assert.Equal(t, int64(40), size)

	// Opening bet floors at the big blind.
	size = e.betSize(&Context{Pot: 0, CurrentBet: 0, Stack: 500, BigBlind: 2}, 0.5)
	assert.Equal(t, int64(2), size)

	// Stack caps everything.
	size = e.betSize(&Context{Pot: 1000, CurrentBet: 0, Stack: 50, BigBlind: 2}, 1.0)
	assert.Equal(t, int64(50), size)
}

func TestThinkingTime_Window(t *testing.T) {
	p := DefaultProfile("bot-1")
	p.ThinkingTimeMin = 100 * time.Millisecond
	p.ThinkingTimeMax = 300 * time.Millisecond
	e := seeded(p, 9)

	for i := 0; i < 20; i++ {
		d := e.ThinkingTime()
		assert.GreaterOrEqual(t, d, p.ThinkingTimeMin)
		assert.Less(t, d, p.ThinkingTimeMax)
	}
}
