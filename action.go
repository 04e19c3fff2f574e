package holdem

// Action is a player's move for one turn. Amount is the total chips the
// seat commits for the round and is meaningful for bet and raise only.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int64      `json:"amount,omitempty"`
}

func Fold() Action {
	return Action{Kind: ActionKind_Fold}
}

func Check() Action {
	return Action{Kind: ActionKind_Check}
}

func Call() Action {
	return Action{Kind: ActionKind_Call}
}

func Bet(amount int64) Action {
	return Action{Kind: ActionKind_Bet, Amount: amount}
}

func Raise(amount int64) Action {
	return Action{Kind: ActionKind_Raise, Amount: amount}
}
