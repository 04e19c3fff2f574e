package holdem

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pokerpit/holdem/card"
	"github.com/pokerpit/holdem/evaluator"
)

// resolveShowdown settles the hand. Bets are already collected. With
// one contesting seat left the pot moves without reveal; otherwise the
// best five-card hand wins, ties split with the odd chip going to the
// first winner in reveal order.
func (e *gameEngine) resolveShowdown(g *Game) error {
	g.State.Phase = GamePhase_Showdown
	g.State.CurrentActor = ""

	active := g.ActiveSeats()
	pot := g.State.Pot

	result := &HandResult{
		PotAmount:      pot,
		CommunityCards: append([]card.Card{}, g.State.CommunityCards...),
	}

	if len(active) <= 1 {
		result.Type = HandResultType_SingleWinner
		if len(active) == 1 {
			w := active[0]
			w.Stack += pot
			result.Winners = []Winner{{
				PlayerID: w.PlayerID,
				Amount:   pot,
			}}
		}
	} else {
		order := e.revealOrder(g, active)
		evaluations := make(map[string]*evaluator.Result, len(order))

		var best *evaluator.Result
		for _, s := range order {
			hand := append(append([]card.Card{}, s.HoleCards...), g.State.CommunityCards...)
			r, err := evaluator.Evaluate(hand)
			if err != nil {
				return err
			}
			evaluations[s.PlayerID] = r
			if best == nil || r.Beats(best) {
				best = r
			}

			result.RevealOrder = append(result.RevealOrder, s.PlayerID)
			result.Hands = append(result.Hands, ShowdownHand{
				PlayerID:  s.PlayerID,
				Category:  int(r.Category),
				HandName:  r.Name,
				Tiebreak:  r.Tiebreak,
				HoleCards: append([]card.Card{}, s.HoleCards...),
				BestHand:  append([]card.Card{}, r.Best...),
			})
		}

		winners := make([]*Seat, 0, len(order))
		for _, s := range order {
			if evaluations[s.PlayerID].Ties(best) {
				winners = append(winners, s)
			}
		}

		share := pot / int64(len(winners))
		remainder := pot % int64(len(winners))
		result.Type = HandResultType_Showdown
		for i, w := range winners {
			amount := share
			if i == 0 {
				amount += remainder
			}
			w.Stack += amount
			r := evaluations[w.PlayerID]
			result.Winners = append(result.Winners, Winner{
				PlayerID:  w.PlayerID,
				Amount:    amount,
				HandName:  r.Name,
				HoleCards: append([]card.Card{}, w.HoleCards...),
				BestHand:  append([]card.Card{}, r.Best...),
			})
		}
	}

	g.State.Result = result

	e.logger.WithFields(logrus.Fields{
		"game_id": g.ID,
		"type":    result.Type,
		"pot":     pot,
		"winners": len(result.Winners),
	}).Info("hand settled")

	history := e.writeHandHistory(g)
	g.State.Pot = 0

	e.enterWaitingPhase(g)
	e.onHandSettled(g, history)
	return nil
}

// revealOrder starts from the last river aggressor still contesting,
// falling back to the first seat past the dealer, then continues around
// the ring.
func (e *gameEngine) revealOrder(g *Game, active []*Seat) []*Seat {
	n := len(active)
	d := ((g.State.DealerPosition % n) + n) % n
	firstIdx := (d + 1) % n

	var lastSeq int64 = UnsetValue
	for _, a := range g.HandActions(GamePhase_River) {
		if a.Kind != ActionKind_Bet && a.Kind != ActionKind_Raise {
			continue
		}
		for i, s := range active {
			if s.PlayerID == a.PlayerID && a.Seq > lastSeq {
				firstIdx = i
				lastSeq = a.Seq
			}
		}
	}

	order := make([]*Seat, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, active[(firstIdx+i)%n])
	}
	return order
}

// writeHandHistory snapshots the settled hand before the pot resets and
// appends it to the store.
func (e *gameEngine) writeHandHistory(g *Game) *HandHistory {
	holeCards := make(map[string][]card.Card)
	for _, s := range g.State.Seats {
		if len(s.HoleCards) > 0 {
			holeCards[s.PlayerID] = append([]card.Card{}, s.HoleCards...)
		}
	}

	actions := make([]*GameAction, len(g.State.Actions))
	for i, a := range g.State.Actions {
		entry := *a
		actions[i] = &entry
	}

	history := &HandHistory{
		GameID:         g.ID,
		HandNumber:     g.State.HandCount + 1,
		FinalPhase:     finalPhaseFromBoard(len(g.State.CommunityCards)),
		PotAmount:      g.State.Pot,
		CommunityCards: append([]card.Card{}, g.State.CommunityCards...),
		HoleCards:      holeCards,
		Actions:        actions,
		Result:         g.State.Result,
		CompletedAt:    time.Now().UnixNano(),
	}

	if err := e.store.AppendHandHistory(history); err != nil {
		e.logger.WithError(err).Warn("failed to append hand history")
	}

	g.State.HandCount++
	return history
}

func finalPhaseFromBoard(boardSize int) GamePhase {
	switch {
	case boardSize >= 5:
		return GamePhase_River
	case boardSize == 4:
		return GamePhase_Turn
	case boardSize == 3:
		return GamePhase_Flop
	default:
		return GamePhase_Preflop
	}
}
