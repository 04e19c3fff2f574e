package holdem

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"

	"github.com/pokerpit/holdem/card"
)

// processAction is the single entry point for every wager action, human
// or bot. Caller holds the game lock. Returns the bot seat to schedule
// next, if any.
func (e *gameEngine) processAction(g *Game, playerID string, action Action) (string, error) {
	if g.State.Status != GameStatus_Playing || !g.State.Phase.IsBettingPhase() {
		return "", e.emitError(g, ErrGameNotActive)
	}

	seat := g.FindSeat(playerID)
	if seat == nil || !seat.InHand() {
		return "", e.emitError(g, ErrPlayerNotSeated)
	}

	if g.State.CurrentActor != playerID {
		return "", e.emitError(g, ErrNotPlayersTurn)
	}

	if !funk.Contains(validActions(g, seat), action.Kind) {
		return "", e.emitError(g, fmt.Errorf("%w: %s", ErrIllegalAction, action.Kind))
	}

	var committed int64
	var err error
	switch action.Kind {
	case ActionKind_Fold:
		err = e.handleFold(g, seat)
	case ActionKind_Check:
		err = e.handleCheck(g, seat)
	case ActionKind_Call:
		committed, err = e.handleCall(g, seat)
	case ActionKind_Bet:
		committed, err = e.handleBet(g, seat, action.Amount)
	case ActionKind_Raise:
		committed, err = e.handleRaise(g, seat, action.Amount)
	default:
		err = fmt.Errorf("%w: %s", ErrIllegalAction, action.Kind)
	}
	if err != nil {
		return "", e.emitError(g, err)
	}

	e.recordAction(g, seat, action.Kind, committed)

	e.logger.WithFields(logrus.Fields{
		"game_id":   g.ID,
		"player_id": playerID,
		"action":    action.Kind,
		"amount":    committed,
		"phase":     g.State.Phase,
	}).Debug("action processed")

	if err := e.advanceGame(g); err != nil {
		return "", e.emitError(g, err)
	}

	if err := e.commit(g); err != nil {
		return "", err
	}

	return e.pendingBot(g), nil
}

func (e *gameEngine) handleFold(g *Game, seat *Seat) error {
	seat.IsActive = false
	return nil
}

func (e *gameEngine) handleCheck(g *Game, seat *Seat) error {
	if g.State.CurrentBet > seat.CurrentBet {
		return fmt.Errorf("%w: cannot check when facing a bet", ErrIllegalAction)
	}
	return nil
}

// handleCall matches the round bet, capped at the stack for an
// all-in-for-less call.
func (e *gameEngine) handleCall(g *Game, seat *Seat) (int64, error) {
	toCall := g.State.CurrentBet - seat.CurrentBet
	if toCall <= 0 {
		return 0, fmt.Errorf("%w: nothing to call", ErrIllegalAction)
	}

	available := seat.Stack - seat.CurrentBet
	if available <= 0 {
		return 0, fmt.Errorf("%w: no chips left to call", ErrIllegalAction)
	}

	pay := toCall
	if pay > available {
		pay = available
	}
	seat.CurrentBet += pay
	seat.TotalBet += pay
	return pay, nil
}

// handleBet opens the betting for a round. Amount is the round total,
// floored at the big blind unless it is the whole stack.
func (e *gameEngine) handleBet(g *Game, seat *Seat, amount int64) (int64, error) {
	if g.State.CurrentBet > 0 {
		return 0, fmt.Errorf("%w: bet not allowed when facing a bet", ErrIllegalAction)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: bet amount must be positive", ErrIllegalAction)
	}

	total := amount
	if total > seat.Stack {
		total = seat.Stack
	}
	if total < g.Config.BigBlind && total < seat.Stack {
		return 0, fmt.Errorf("%w: bet below big blind", ErrIllegalAction)
	}

	seat.TotalBet += total - seat.CurrentBet
	seat.CurrentBet = total
	g.State.CurrentBet = total
	return total, nil
}

// handleRaise sets the seat's round total. The total must reach double
// the current bet unless the raise puts the seat all-in.
func (e *gameEngine) handleRaise(g *Game, seat *Seat, amount int64) (int64, error) {
	if g.State.CurrentBet <= 0 {
		return 0, fmt.Errorf("%w: nothing to raise", ErrIllegalAction)
	}

	total := amount
	if total > seat.Stack {
		total = seat.Stack
	}
	if total <= g.State.CurrentBet {
		return 0, fmt.Errorf("%w: raise must exceed the current bet", ErrIllegalAction)
	}

	minRaise := g.State.CurrentBet * 2
	if total < minRaise && total < seat.Stack {
		return 0, fmt.Errorf("%w: raise below minimum", ErrIllegalAction)
	}

	seat.TotalBet += total - seat.CurrentBet
	seat.CurrentBet = total
	g.State.CurrentBet = total
	return total, nil
}

func (e *gameEngine) recordAction(g *Game, seat *Seat, kind ActionKind, amount int64) {
	g.State.ActionSeq++
	entry := &GameAction{
		Seq:       g.State.ActionSeq,
		PlayerID:  seat.PlayerID,
		SeatPos:   seat.SeatPosition,
		Kind:      kind,
		Amount:    amount,
		Phase:     g.State.Phase,
		Timestamp: time.Now().UnixNano(),
	}
	g.State.Actions = append(g.State.Actions, entry)

	if err := e.store.AppendAction(g.ID, entry); err != nil {
		e.logger.WithError(err).Warn("failed to append action log")
	}
}

// validActions computes the legal moves for a seat facing the current
// round state.
func validActions(g *Game, seat *Seat) []ActionKind {
	actions := []ActionKind{ActionKind_Fold}

	toCall := g.State.CurrentBet - seat.CurrentBet
	available := seat.Stack - seat.CurrentBet

	if toCall <= 0 {
		actions = append(actions, ActionKind_Check)
	}
	if toCall > 0 && available > 0 {
		actions = append(actions, ActionKind_Call)
	}
	if g.State.CurrentBet == 0 && seat.Stack > 0 {
		actions = append(actions, ActionKind_Bet)
	}
	if g.State.CurrentBet > 0 && available > toCall {
		actions = append(actions, ActionKind_Raise)
	}

	return actions
}

// advanceGame moves the hand forward after an action: close the round,
// pass the turn, or settle a fold-out.
func (e *gameEngine) advanceGame(g *Game) error {
	actedSeat := g.CurrentActorSeat()

	if len(g.ActiveSeats()) <= 1 {
		return e.moveToNextPhase(g)
	}

	if e.bettingRoundComplete(g) {
		return e.moveToNextPhase(g)
	}

	if !e.advanceTurn(g, actedSeat) {
		return e.moveToNextPhase(g)
	}
	return nil
}

// bettingRoundComplete applies three rules against the per-hand action
// log: every contesting seat with chips has matched the round bet,
// everyone has acted this phase, and everyone has acted since the last
// aggression.
func (e *gameEngine) bettingRoundComplete(g *Game) bool {
	active := g.ActiveSeats()
	phaseActions := g.HandActions(g.State.Phase)

	actedBy := make(map[string]bool)
	var lastAggressionSeq int64 = UnsetValue
	var aggressor string
	lastActionSeq := make(map[string]int64)
	for _, a := range phaseActions {
		actedBy[a.PlayerID] = true
		lastActionSeq[a.PlayerID] = a.Seq
		if a.Kind == ActionKind_Bet || a.Kind == ActionKind_Raise {
			lastAggressionSeq = a.Seq
			aggressor = a.PlayerID
		}
	}

	for _, seat := range active {
		if seat.AllIn() {
			continue
		}

		// Rule 1: matched the round bet.
		if seat.CurrentBet < g.State.CurrentBet {
			return false
		}

		// Rule 2: acted at least once this phase.
		if !actedBy[seat.PlayerID] {
			return false
		}

		// Rule 3: acted after the last bet or raise.
		if lastAggressionSeq != UnsetValue && seat.PlayerID != aggressor {
			if lastActionSeq[seat.PlayerID] < lastAggressionSeq {
				return false
			}
		}
	}

	return true
}

// advanceTurn hands the action to the next seat able to act. A folded
// actor is no longer in the ring, so the successor is found by seat
// position instead. Returns false when nobody can act.
func (e *gameEngine) advanceTurn(g *Game, actedSeat *Seat) bool {
	active := g.ActiveSeats()
	canAct := funk.Filter(active, func(s *Seat) bool {
		return !s.AllIn()
	}).([]*Seat)
	if len(canAct) == 0 {
		return false
	}

	idx := UnsetValue
	for i, s := range active {
		if actedSeat != nil && s.PlayerID == actedSeat.PlayerID {
			idx = i
			break
		}
	}

	var next *Seat
	if idx != UnsetValue {
		for i := 1; i <= len(active); i++ {
			candidate := active[(idx+i)%len(active)]
			if !candidate.AllIn() {
				next = candidate
				break
			}
		}
	} else if actedSeat != nil {
		// The actor folded out of the ring; resume from its old seat
		// position.
		for _, s := range active {
			if s.SeatPosition > actedSeat.SeatPosition && !s.AllIn() {
				next = s
				break
			}
		}
		if next == nil {
			for _, s := range active {
				if !s.AllIn() {
					next = s
					break
				}
			}
		}
	} else {
		next = canAct[0]
	}

	if next == nil {
		return false
	}
	g.State.CurrentActor = next.PlayerID
	return true
}

// moveToNextPhase collects round bets into the pot and deals the next
// street. Streets with at most one seat able to act are run out without
// betting, straight through to showdown.
func (e *gameEngine) moveToNextPhase(g *Game) error {
	for {
		e.collectBets(g)

		active := g.ActiveSeats()
		if len(active) <= 1 || g.State.Phase == GamePhase_River {
			return e.resolveShowdown(g)
		}

		var next GamePhase
		var deal int
		switch g.State.Phase {
		case GamePhase_Preflop:
			next, deal = GamePhase_Flop, 3
		case GamePhase_Flop:
			next, deal = GamePhase_Turn, 1
		case GamePhase_Turn:
			next, deal = GamePhase_River, 1
		default:
			return fmt.Errorf("%w: unexpected phase %s", ErrGameNotActive, g.State.Phase)
		}

		dealt, err := e.drawCards(g, deal)
		if err != nil {
			return err
		}
		g.State.CommunityCards = append(g.State.CommunityCards, dealt...)
		g.State.Phase = next

		e.logger.WithFields(logrus.Fields{
			"game_id": g.ID,
			"phase":   next,
			"board":   len(g.State.CommunityCards),
		}).Debug("phase advanced")

		canAct := funk.Filter(active, func(s *Seat) bool {
			return !s.AllIn()
		}).([]*Seat)
		if len(canAct) <= 1 {
			// All-in runout, no more betting this hand.
			g.State.CurrentActor = ""
			continue
		}

		if !e.setFirstActor(g) {
			g.State.CurrentActor = ""
			continue
		}
		return nil
	}
}

// collectBets sweeps every outstanding round bet into the pot. This is
// the only place stacks are debited.
func (e *gameEngine) collectBets(g *Game) {
	for _, seat := range g.State.Seats {
		if seat.CurrentBet > 0 {
			g.State.Pot += seat.CurrentBet
			seat.Stack -= seat.CurrentBet
			seat.CurrentBet = 0
		}
	}
	g.State.CurrentBet = 0
}

// setFirstActor gives the action to the first seat able to act past the
// dealer.
func (e *gameEngine) setFirstActor(g *Game) bool {
	active := g.ActiveSeats()
	n := len(active)
	if n == 0 {
		return false
	}

	d := ((g.State.DealerPosition % n) + n) % n
	for i := 1; i <= n; i++ {
		candidate := active[(d+i)%n]
		if !candidate.AllIn() {
			g.State.CurrentActor = candidate.PlayerID
			return true
		}
	}
	return false
}

// pendingBot names the bot seat due to act, empty when none.
func (e *gameEngine) pendingBot(g *Game) string {
	if g.State.Status != GameStatus_Playing || !g.State.Phase.IsBettingPhase() {
		return ""
	}
	seat := g.CurrentActorSeat()
	if seat != nil && seat.IsBot {
		return seat.PlayerID
	}
	return ""
}

// drawCards deals from the persisted deck remainder.
func (e *gameEngine) drawCards(g *Game, n int) ([]card.Card, error) {
	deck := card.NewDeckFromCards(g.State.Deck)
	dealt, err := deck.Deal(n)
	if err != nil {
		return nil, err
	}
	g.State.Deck = deck.Cards()
	return dealt, nil
}
