package holdem

import (
	"encoding/json"
	"time"

	"github.com/thoas/go-funk"

	"github.com/pokerpit/holdem/card"
)

// TableConfig is the immutable table setup a game is created with.
type TableConfig struct {
	MaxSeats   int   `json:"max_seats"`
	SmallBlind int64 `json:"small_blind"`
	BigBlind   int64 `json:"big_blind"`
	MinBuyIn   int64 `json:"min_buy_in"`
	MaxBuyIn   int64 `json:"max_buy_in"`
}

// SeatRequest seats one player at game creation.
type SeatRequest struct {
	PlayerID string `json:"player_id"`
	BuyIn    int64  `json:"buy_in"`
	IsBot    bool   `json:"is_bot"`
}

// Game is the aggregate the engine guards. All mutation happens under
// the per-game lock; callers receive clones or treat it as read-only.
type Game struct {
	ID           string      `json:"id"`
	Config       TableConfig `json:"config"`
	State        *GameState  `json:"state"`
	UpdateAt     int64       `json:"update_at"`
	UpdateSerial int64       `json:"update_serial"`
}

type GameState struct {
	Status         GameStatus   `json:"status"`
	Phase          GamePhase    `json:"phase"`
	Pot            int64        `json:"pot"`
	CurrentBet     int64        `json:"current_bet"`
	DealerPosition int          `json:"dealer_position"`
	CurrentActor   string       `json:"current_actor"`
	CommunityCards []card.Card  `json:"community_cards"`
	Deck           []card.Card  `json:"deck"`
	HandCount      int          `json:"hand_count"`
	ActionSeq      int64        `json:"action_seq"`
	Seats          []*Seat      `json:"seats"`
	Actions        []*GameAction `json:"actions"`
	Result         *HandResult  `json:"result,omitempty"`
	Summary        *GameSummary `json:"summary,omitempty"`
}

// Seat is one player's standing at the table. Stack is not debited for
// CurrentBet until the betting round ends (delayed pot collection), so
// CurrentBet <= Stack always holds during a round.
type Seat struct {
	PlayerID      string      `json:"player_id"`
	SeatPosition  int         `json:"seat_position"`
	IsBot         bool        `json:"is_bot"`
	Stack         int64       `json:"stack"`
	StartingStack int64       `json:"starting_stack"`
	BuyBackTotal  int64       `json:"buy_back_total"`
	FinalStack    int64       `json:"final_stack"`
	CurrentBet    int64       `json:"current_bet"`
	TotalBet      int64       `json:"total_bet"`
	HoleCards     []card.Card `json:"hole_cards"`
	IsActive      bool        `json:"is_active"`
	CashedOut     bool        `json:"cashed_out"`
	Ready         bool        `json:"ready"`
}

// AllIn reports whether the seat has committed its whole stack for the
// current round.
func (s *Seat) AllIn() bool {
	return s.CurrentBet >= s.Stack
}

// InHand reports whether the seat is still contesting the current hand.
func (s *Seat) InHand() bool {
	return s.IsActive && !s.CashedOut
}

// GameAction is one entry of the per-hand action log. Seq is strictly
// increasing per game, so it orders actions that share a timestamp.
type GameAction struct {
	Seq       int64      `json:"seq"`
	PlayerID  string     `json:"player_id"`
	SeatPos   int        `json:"seat_position"`
	Kind      ActionKind `json:"kind"`
	Amount    int64      `json:"amount"`
	Phase     GamePhase  `json:"phase"`
	Timestamp int64      `json:"timestamp"`
}

// Winner is one pot share of a settled hand.
type Winner struct {
	PlayerID  string      `json:"player_id"`
	Amount    int64       `json:"amount"`
	HandName  string      `json:"hand_name,omitempty"`
	HoleCards []card.Card `json:"hole_cards,omitempty"`
	BestHand  []card.Card `json:"best_hand,omitempty"`
}

// ShowdownHand is one contesting seat's revealed hand.
type ShowdownHand struct {
	PlayerID  string      `json:"player_id"`
	Category  int         `json:"category"`
	HandName  string      `json:"hand_name"`
	Tiebreak  []int       `json:"tiebreak"`
	HoleCards []card.Card `json:"hole_cards"`
	BestHand  []card.Card `json:"best_hand"`
}

// HandResult is the settlement of one hand.
type HandResult struct {
	Type           string         `json:"type"`
	PotAmount      int64          `json:"pot_amount"`
	Winners        []Winner       `json:"winners"`
	RevealOrder    []string       `json:"reveal_order,omitempty"`
	Hands          []ShowdownHand `json:"hands,omitempty"`
	CommunityCards []card.Card    `json:"community_cards"`
}

// HandHistory is the immutable record written when a hand settles,
// before the pot resets.
type HandHistory struct {
	GameID         string                 `json:"game_id"`
	HandNumber     int                    `json:"hand_number"`
	FinalPhase     GamePhase              `json:"final_phase"`
	PotAmount      int64                  `json:"pot_amount"`
	CommunityCards []card.Card            `json:"community_cards"`
	HoleCards      map[string][]card.Card `json:"hole_cards"`
	Actions        []*GameAction          `json:"actions"`
	Result         *HandResult            `json:"result"`
	CompletedAt    int64                  `json:"completed_at"`
}

// GameSummary is the per-player accounting produced when a game ends.
type GameSummary struct {
	GameID      string          `json:"game_id"`
	TotalHands  int             `json:"total_hands"`
	Players     []PlayerSummary `json:"players"`
	CompletedAt int64           `json:"completed_at"`
}

type PlayerSummary struct {
	PlayerID      string `json:"player_id"`
	StartingStack int64  `json:"starting_stack"`
	BuyBackTotal  int64  `json:"buy_back_total"`
	FinalStack    int64  `json:"final_stack"`
	WinLoss       int64  `json:"win_loss"`
	Status        string `json:"status"`
}

// ActiveSeats returns the seats still contesting the current hand,
// ordered by seat position.
func (g *Game) ActiveSeats() []*Seat {
	return funk.Filter(g.State.Seats, func(s *Seat) bool {
		return s.InHand()
	}).([]*Seat)
}

// EligibleSeats returns the seats able to play the next hand.
func (g *Game) EligibleSeats() []*Seat {
	return funk.Filter(g.State.Seats, func(s *Seat) bool {
		return !s.CashedOut && s.Stack > 0
	}).([]*Seat)
}

func (g *Game) FindSeat(playerID string) *Seat {
	for _, s := range g.State.Seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// CurrentActorSeat returns the seat whose turn it is, nil between hands.
func (g *Game) CurrentActorSeat() *Seat {
	if g.State.CurrentActor == "" {
		return nil
	}
	return g.FindSeat(g.State.CurrentActor)
}

// HandActions returns the current hand's log entries for one phase.
func (g *Game) HandActions(phase GamePhase) []*GameAction {
	return funk.Filter(g.State.Actions, func(a *GameAction) bool {
		return a.Phase == phase
	}).([]*GameAction)
}

// TotalChips sums all chips the game currently holds: seat stacks of
// everyone not cashed out plus the pot. Uncollected round bets still
// sit inside stacks, so they are not added separately.
func (g *Game) TotalChips() int64 {
	total := g.State.Pot
	for _, s := range g.State.Seats {
		if !s.CashedOut {
			total += s.Stack
		}
	}
	return total
}

// TotalBuyIns sums everything ever brought to the table, including
// chips taken away again by cash-outs.
func (g *Game) TotalBuyIns() int64 {
	var total int64
	for _, s := range g.State.Seats {
		total += s.StartingStack + s.BuyBackTotal
	}
	return total
}

func (g *Game) RefreshUpdateAt() {
	g.UpdateAt = time.Now().UnixNano()
	g.UpdateSerial++
}

// Clone deep-copies the aggregate through its JSON form.
func (g *Game) Clone() *Game {
	encoded, err := json.Marshal(g)
	if err != nil {
		return nil
	}
	var cloned Game
	if err := json.Unmarshal(encoded, &cloned); err != nil {
		return nil
	}
	return &cloned
}

// GetJSON dumps the aggregate for persistence or debugging.
func (g *Game) GetJSON() (string, error) {
	encoded, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
