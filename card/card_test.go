package card

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCard_Parse(t *testing.T) {
	c, err := Parse("AS")
	assert.NoError(t, err)
	assert.Equal(t, "A", c.Rank)
	assert.Equal(t, "S", c.Suit)
	assert.Equal(t, 14, c.Value())

	c, err = Parse("10h")
	assert.NoError(t, err)
	assert.Equal(t, "10", c.Rank)
	assert.Equal(t, "H", c.Suit)
	assert.Equal(t, 10, c.Value())
	assert.Equal(t, "10H", c.String())

	_, err = Parse("1S")
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = Parse("AX")
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestDeck_FullAndUnique(t *testing.T) {
	d := NewDeck()
	assert.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool)
	cards, err := d.Deal(52)
	assert.NoError(t, err)
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Equal(t, 52, len(seen))
}

func TestDeck_DealWithoutReplacement(t *testing.T) {
	d := NewShuffledDeck()

	hole, err := d.Deal(2)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(hole))
	assert.Equal(t, 50, d.Remaining())

	flop, err := d.Deal(3)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(flop))

	for _, h := range hole {
		for _, f := range flop {
			assert.NotEqual(t, h, f)
		}
	}
}

func TestDeck_Exhausted(t *testing.T) {
	d := NewDeck()
	_, err := d.Deal(53)
	assert.ErrorIs(t, err, ErrDeckExhausted)

	_, err = d.Deal(52)
	assert.NoError(t, err)

	_, err = d.Deal(1)
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeck_DeterministicShuffle(t *testing.T) {
	d1 := NewDeck()
	d1.Shuffle(rand.New(rand.NewSource(42)))
	d2 := NewDeck()
	d2.Shuffle(rand.New(rand.NewSource(42)))

	assert.Equal(t, d1.Cards(), d2.Cards())
}

func TestDeck_Restore(t *testing.T) {
	d := NewShuffledDeck()
	_, err := d.Deal(7)
	assert.NoError(t, err)

	restored := NewDeckFromCards(d.Cards())
	assert.Equal(t, d.Remaining(), restored.Remaining())

	next, err := restored.Deal(1)
	assert.NoError(t, err)
	assert.Equal(t, d.Cards()[0], next[0])
}
