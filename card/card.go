package card

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCard = errors.New("card: invalid card string")
)

// Suits use single-letter symbols, ranks use face tokens. Ten is "10",
// the only two-character rank.
var (
	Suits = []string{"S", "H", "D", "C"}
	Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

var rankValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// Card is a single playing card. Cards are comparable values and can be
// used as map keys.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func New(rank, suit string) Card {
	return Card{Rank: rank, Suit: suit}
}

// Parse reads a compact card string such as "AS", "10H" or "7c".
func Parse(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 3 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rank := s[:len(s)-1]
	suit := s[len(s)-1:]

	if _, ok := rankValues[rank]; !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	validSuit := false
	for _, su := range Suits {
		if su == suit {
			validSuit = true
			break
		}
	}
	if !validSuit {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MustParse is Parse for hardcoded card literals in tests.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// Value returns the numeric rank, 2 through 14 with ace high. Ace-low
// handling is the evaluator's job.
func (c Card) Value() int {
	return rankValues[c.Rank]
}
