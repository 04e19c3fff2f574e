package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pokerpit/holdem/card"
)

var (
	ErrInvalidCardCount = errors.New("evaluator: need between 5 and 7 cards")
)

// Category ranks hand classes, 1 strongest through 9 weakest.
type Category int

const (
	StraightFlush Category = iota + 1
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	OnePair
	HighCard
)

var categoryNames = map[Category]string{
	StraightFlush: "Straight Flush",
	FourOfAKind:   "Four of a Kind",
	FullHouse:     "Full House",
	Flush:         "Flush",
	Straight:      "Straight",
	ThreeOfAKind:  "Three of a Kind",
	TwoPair:       "Two Pair",
	OnePair:       "One Pair",
	HighCard:      "High Card",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Result is the strength of the best five-card hand found in the input.
// Tiebreak lists rank values most significant first; two results of the
// same category compare lexicographically on it, higher winning.
type Result struct {
	Category Category    `json:"category"`
	Name     string      `json:"name"`
	Tiebreak []int       `json:"tiebreak"`
	Best     []card.Card `json:"best"`
}

// Compare orders two results. Negative means a is the stronger hand,
// positive means b is, zero means they tie exactly.
func Compare(a, b *Result) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			return b.Tiebreak[i] - a.Tiebreak[i]
		}
	}
	return 0
}

func (r *Result) Beats(o *Result) bool {
	return Compare(r, o) < 0
}

func (r *Result) Ties(o *Result) bool {
	return Compare(r, o) == 0
}

// Evaluate finds the strongest five-card hand among 5 to 7 cards.
func Evaluate(cards []card.Card) (*Result, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCardCount, len(cards))
	}

	var best *Result
	for _, combo := range combinations(cards, 5) {
		r := evaluateFive(combo)
		if best == nil || r.Beats(best) {
			best = r
		}
	}
	return best, nil
}

// combinations returns every k-card subset, preserving input order
// within each subset.
func combinations(cards []card.Card, k int) [][]card.Card {
	var out [][]card.Card
	n := len(cards)
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]card.Card, k)
		for i, j := range idx {
			combo[i] = cards[j]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

func evaluateFive(five []card.Card) *Result {
	sorted := make([]card.Card, len(five))
	copy(sorted, five)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	values := make([]int, len(sorted))
	flush := true
	for i, c := range sorted {
		values[i] = c.Value()
		if c.Suit != sorted[0].Suit {
			flush = false
		}
	}

	straight, straightHigh := straightHighCard(values)

	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}

	// Group ranks by multiplicity, then by rank, both descending.
	type group struct {
		value int
		count int
	}
	groups := make([]group, 0, len(counts))
	for v, n := range counts {
		groups = append(groups, group{value: v, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})

	result := func(cat Category, tiebreak []int) *Result {
		return &Result{
			Category: cat,
			Name:     cat.String(),
			Tiebreak: tiebreak,
			Best:     sorted,
		}
	}

	switch {
	case straight && flush:
		return result(StraightFlush, []int{straightHigh})
	case groups[0].count == 4:
		return result(FourOfAKind, []int{groups[0].value, groups[1].value})
	case groups[0].count == 3 && groups[1].count == 2:
		return result(FullHouse, []int{groups[0].value, groups[1].value})
	case flush:
		return result(Flush, values)
	case straight:
		return result(Straight, []int{straightHigh})
	case groups[0].count == 3:
		return result(ThreeOfAKind, []int{groups[0].value, groups[1].value, groups[2].value})
	case groups[0].count == 2 && groups[1].count == 2:
		return result(TwoPair, []int{groups[0].value, groups[1].value, groups[2].value})
	case groups[0].count == 2:
		return result(OnePair, []int{groups[0].value, groups[1].value, groups[2].value, groups[3].value})
	default:
		return result(HighCard, values)
	}
}

// straightHighCard reports whether five descending values form a
// straight and, if so, its high card. The wheel (A-2-3-4-5) counts as a
// five-high straight.
func straightHighCard(desc []int) (bool, int) {
	run := true
	for i := 1; i < len(desc); i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return true, desc[0]
	}

	// Wheel: ace plays low below the 5.
	if desc[0] == 14 && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
		return true, 5
	}
	return false, 0
}
