package holdem

const (
	// General
	UnsetValue = -1
)

// GameStatus is the table lifecycle state.
type GameStatus string

const (
	GameStatus_Waiting  GameStatus = "waiting"
	GameStatus_Playing  GameStatus = "playing"
	GameStatus_Finished GameStatus = "finished"
)

// GamePhase is the hand lifecycle state. Betting phases run preflop
// through river; waiting_for_players sits between hands.
type GamePhase string

const (
	GamePhase_Preflop           GamePhase = "preflop"
	GamePhase_Flop              GamePhase = "flop"
	GamePhase_Turn              GamePhase = "turn"
	GamePhase_River             GamePhase = "river"
	GamePhase_Showdown          GamePhase = "showdown"
	GamePhase_WaitingForPlayers GamePhase = "waiting_for_players"
)

// IsBettingPhase reports whether seats act in this phase.
func (p GamePhase) IsBettingPhase() bool {
	switch p {
	case GamePhase_Preflop, GamePhase_Flop, GamePhase_Turn, GamePhase_River:
		return true
	}
	return false
}

// ActionKind is the closed set of wager actions.
type ActionKind string

const (
	ActionKind_Fold  ActionKind = "fold"
	ActionKind_Check ActionKind = "check"
	ActionKind_Call  ActionKind = "call"
	ActionKind_Bet   ActionKind = "bet"
	ActionKind_Raise ActionKind = "raise"
)

// Hand result kinds.
const (
	HandResultType_SingleWinner = "single_winner"
	HandResultType_Showdown     = "showdown"
)

// Seat exit reasons recorded on the player summary.
const (
	SeatStatus_Active    = "active"
	SeatStatus_CashedOut = "cashed_out"
	SeatStatus_Busted    = "busted"
)
