package card

import (
	"errors"
	"math/rand"
)

var (
	ErrDeckExhausted = errors.New("card: not enough cards left in deck")
)

// Deck is a pile of cards dealt from the top. A fresh deck holds all 52
// cards in rank-major order; shuffle before dealing.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{cards: cards}
}

// NewShuffledDeck returns a full deck in random order.
func NewShuffledDeck() *Deck {
	d := NewDeck()
	d.Shuffle(nil)
	return d
}

// NewDeckFromCards builds a deck over an existing remainder, used when a
// partially dealt deck is restored from persisted state.
func NewDeckFromCards(cards []Card) *Deck {
	remaining := make([]Card, len(cards))
	copy(remaining, cards)
	return &Deck{cards: remaining}
}

// Shuffle randomizes the deck in place. Pass a source for deterministic
// ordering, nil for the default source.
func (d *Deck) Shuffle(r *rand.Rand) {
	swap := func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	if r != nil {
		r.Shuffle(len(d.cards), swap)
	} else {
		rand.Shuffle(len(d.cards), swap)
	}
}

// Deal removes and returns the top n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	dealt := d.cards[:n]
	d.cards = d.cards[n:]
	return dealt, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undealt remainder, top card first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
