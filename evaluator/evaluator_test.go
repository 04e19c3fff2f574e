package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pokerpit/holdem/card"
)

func cards(tokens ...string) []card.Card {
	out := make([]card.Card, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, card.MustParse(tok))
	}
	return out
}

func TestEvaluate_Categories(t *testing.T) {
	testCases := []struct {
		name     string
		tokens   []string
		category Category
	}{
		{"straight flush", []string{"9S", "8S", "7S", "6S", "5S"}, StraightFlush},
		{"four of a kind", []string{"9S", "9H", "9D", "9C", "5S"}, FourOfAKind},
		{"full house", []string{"9S", "9H", "9D", "5C", "5S"}, FullHouse},
		{"flush", []string{"KS", "10S", "7S", "6S", "2S"}, Flush},
		{"straight", []string{"9S", "8H", "7D", "6C", "5S"}, Straight},
		{"three of a kind", []string{"9S", "9H", "9D", "6C", "5S"}, ThreeOfAKind},
		{"two pair", []string{"9S", "9H", "6D", "6C", "5S"}, TwoPair},
		{"one pair", []string{"9S", "9H", "7D", "6C", "5S"}, OnePair},
		{"high card", []string{"KS", "9H", "7D", "6C", "5S"}, HighCard},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Evaluate(cards(tc.tokens...))
			assert.NoError(t, err)
			assert.Equal(t, tc.category, r.Category)
			assert.Equal(t, tc.category.String(), r.Name)
		})
	}
}

func TestEvaluate_Wheel(t *testing.T) {
	r, err := Evaluate(cards("AS", "2H", "3D", "4C", "5S"))
	assert.NoError(t, err)
	assert.Equal(t, Straight, r.Category)
	assert.Equal(t, []int{5}, r.Tiebreak)

	// A wheel loses to a six-high straight.
	six, err := Evaluate(cards("2S", "3H", "4D", "5C", "6S"))
	assert.NoError(t, err)
	assert.True(t, six.Beats(r))
}

func TestEvaluate_SteelWheel(t *testing.T) {
	r, err := Evaluate(cards("AS", "2S", "3S", "4S", "5S"))
	assert.NoError(t, err)
	assert.Equal(t, StraightFlush, r.Category)
	assert.Equal(t, []int{5}, r.Tiebreak)
}

func TestEvaluate_BestOfSeven(t *testing.T) {
	// Board holds a flush, the pocket pair is a decoy.
	r, err := Evaluate(cards("AH", "AD", "KS", "QS", "9S", "5S", "2S"))
	assert.NoError(t, err)
	assert.Equal(t, Flush, r.Category)
	assert.Equal(t, []int{13, 12, 9, 5, 2}, r.Tiebreak)

	// Straight flush beats four of a kind out of the same seven cards.
	r, err = Evaluate(cards("9S", "8S", "7S", "6S", "5S", "9H", "9D"))
	assert.NoError(t, err)
	assert.Equal(t, StraightFlush, r.Category)
}

func TestEvaluate_TenToken(t *testing.T) {
	r, err := Evaluate(cards("10S", "10H", "10D", "10C", "AS"))
	assert.NoError(t, err)
	assert.Equal(t, FourOfAKind, r.Category)
	assert.Equal(t, []int{10, 14}, r.Tiebreak)

	// Broadway uses the "10" rank token.
	r, err = Evaluate(cards("AS", "KH", "QD", "JC", "10S"))
	assert.NoError(t, err)
	assert.Equal(t, Straight, r.Category)
	assert.Equal(t, []int{14}, r.Tiebreak)
}

func TestEvaluate_CardCount(t *testing.T) {
	_, err := Evaluate(cards("AS", "KH", "QD", "JC"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	_, err = Evaluate(cards("AS", "KH", "QD", "JC", "10S", "9S", "8S", "7S"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)
}

func TestCompare_Kickers(t *testing.T) {
	a, _ := Evaluate(cards("AS", "AH", "KD", "QC", "9S"))
	b, _ := Evaluate(cards("AD", "AC", "KH", "QS", "8S"))
	assert.True(t, a.Beats(b))
	assert.False(t, b.Beats(a))

	// Identical ranks across suits tie exactly.
	c, _ := Evaluate(cards("AD", "AC", "KH", "QS", "9D"))
	assert.True(t, a.Ties(c))
}

func TestCompare_CategoryOrder(t *testing.T) {
	ordered := [][]string{
		{"9S", "8S", "7S", "6S", "5S"},
		{"9S", "9H", "9D", "9C", "5S"},
		{"9S", "9H", "9D", "5C", "5S"},
		{"KS", "10S", "7S", "6S", "2S"},
		{"9S", "8H", "7D", "6C", "5S"},
		{"9S", "9H", "9D", "6C", "5S"},
		{"9S", "9H", "6D", "6C", "5S"},
		{"9S", "9H", "7D", "6C", "5S"},
		{"KS", "9H", "7D", "6C", "5S"},
	}

	var prev *Result
	for _, tokens := range ordered {
		r, err := Evaluate(cards(tokens...))
		assert.NoError(t, err)
		if prev != nil {
			assert.True(t, prev.Beats(r), "%s should beat %s", prev.Name, r.Name)
		}
		prev = r
	}
}

func TestEvaluate_Stability(t *testing.T) {
	hand := cards("AH", "AD", "KS", "QS", "9S", "5S", "2S")
	first, err := Evaluate(hand)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Evaluate(hand)
		assert.NoError(t, err)
		assert.Equal(t, first.Category, again.Category)
		assert.Equal(t, first.Tiebreak, again.Tiebreak)
		assert.Equal(t, first.Best, again.Best)
	}
}
