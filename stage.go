package holdem

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/weedbox/syncsaga"
	"github.com/weedbox/timebank"

	"github.com/pokerpit/holdem/card"
)

// startHand resets per-hand state, deals, posts blinds and hands the
// action to the seat past the big blind. Caller holds the lock and
// commits afterwards.
func (e *gameEngine) startHand(g *Game) (string, error) {
	for _, s := range g.State.Seats {
		s.IsActive = !s.CashedOut && s.Stack > 0
		s.HoleCards = nil
		s.CurrentBet = 0
		s.TotalBet = 0
		s.Ready = false
	}
	g.State.Actions = nil
	g.State.CommunityCards = []card.Card{}
	g.State.Result = nil
	g.State.Pot = 0
	g.State.CurrentBet = 0
	g.State.Phase = GamePhase_Preflop

	active := g.ActiveSeats()
	if len(active) < 2 {
		return "", ErrInsufficientPlayers
	}

	deck := e.newDeck()
	for _, s := range active {
		hole, err := deck.Deal(2)
		if err != nil {
			return "", err
		}
		s.HoleCards = hole
	}
	g.State.Deck = deck.Cards()

	n := len(active)
	d := ((g.State.DealerPosition % n) + n) % n
	g.State.DealerPosition = d

	// Heads-up the dealer posts the big blind and the other seat opens.
	postBlind(active[(d+1)%n], g.Config.SmallBlind)
	postBlind(active[(d+2)%n], g.Config.BigBlind)
	g.State.CurrentBet = g.Config.BigBlind
	g.State.CurrentActor = active[(d+3)%n].PlayerID

	e.logger.WithFields(logrus.Fields{
		"game_id": g.ID,
		"hand":    g.State.HandCount + 1,
		"dealer":  active[d].PlayerID,
		"actor":   g.State.CurrentActor,
	}).Info("hand started")

	return e.pendingBot(g), nil
}

func postBlind(s *Seat, amount int64) {
	if amount > s.Stack {
		amount = s.Stack
	}
	s.CurrentBet = amount
	s.TotalBet += amount
}

// startNextHand rotates the dealer and opens the next hand, or finishes
// the game when fewer than two funded seats remain.
func (e *gameEngine) startNextHand(g *Game) (string, error) {
	eligible := g.EligibleSeats()
	if len(eligible) < 2 {
		e.finishGame(g)
		return "", nil
	}

	g.State.DealerPosition = (g.State.DealerPosition + 1) % len(eligible)
	return e.startHand(g)
}

// enterWaitingPhase parks the game between hands. Bots are readied
// immediately; humans join through MarkReady or the ready timeout. An
// all-ready table rolls straight into the next hand.
func (e *gameEngine) enterWaitingPhase(g *Game) {
	g.State.Phase = GamePhase_WaitingForPlayers
	g.State.CurrentActor = ""

	// The last human may have left while this hand ran; its pot is
	// settled now, so the table can close.
	if humansRemaining(g) == 0 {
		e.retireBots(g)
		e.finishGame(g)
		return
	}

	for _, s := range g.State.Seats {
		s.Ready = s.IsBot && !s.CashedOut && s.Stack > 0
	}

	eligible := g.EligibleSeats()
	if len(eligible) < 2 {
		e.finishGame(g)
		return
	}

	if e.allEligibleReady(g) {
		if _, err := e.startNextHand(g); err != nil {
			e.logger.WithError(err).WithField("game_id", g.ID).Error("failed to open next hand")
		}
		return
	}

	e.setupReadyGroup(g)
}

func (e *gameEngine) allEligibleReady(g *Game) bool {
	eligible := g.EligibleSeats()
	if len(eligible) < 2 {
		return false
	}
	for _, s := range eligible {
		if !s.Ready {
			return false
		}
	}
	return true
}

// setupReadyGroup rebuilds the between-hand readiness group. The
// timeout auto-readies stragglers; completion opens the next hand.
func (e *gameEngine) setupReadyGroup(g *Game) {
	gameID := g.ID

	if old := e.readyGroup(gameID); old != nil {
		old.Stop()
	}

	rg := syncsaga.NewReadyGroup(
		syncsaga.WithTimeout(e.options.ReadyTimeout, func(rg *syncsaga.ReadyGroup) {
			// Auto Ready By Default
			for idx, isReady := range rg.GetParticipantStates() {
				if !isReady {
					rg.Ready(idx)
				}
			}
		}),
	)
	rg.OnCompleted(func(rg *syncsaga.ReadyGroup) {
		e.tryStartNextHand(gameID, true)
	})

	rg.ResetParticipants()
	for _, s := range g.EligibleSeats() {
		rg.Add(int64(s.SeatPosition), s.Ready)
	}
	rg.Start()

	e.readyGroups.Store(gameID, rg)
}

// tryStartNextHand opens the next hand once every eligible seat is
// ready. force marks stragglers ready first (ready-group completion
// path). Safe to call from any goroutine; stale calls no-op.
func (e *gameEngine) tryStartNextHand(gameID string, force bool) {
	var botID string
	_ = e.withGameLock(gameID, func() error {
		g, err := e.store.LoadGame(gameID)
		if err != nil {
			return err
		}

		if g.State.Status != GameStatus_Playing || g.State.Phase != GamePhase_WaitingForPlayers {
			return nil
		}

		if force {
			for _, s := range g.EligibleSeats() {
				s.Ready = true
			}
			// The timeout fired on a table that can no longer field a
			// hand; close it out.
			if len(g.EligibleSeats()) < 2 {
				e.finishGame(g)
				return e.commit(g)
			}
		}

		if !e.allEligibleReady(g) {
			return nil
		}

		botID, err = e.startNextHand(g)
		if err != nil {
			return e.emitError(g, err)
		}
		return e.commit(g)
	})

	e.runBotIfAny(gameID, botID)
}

// finishGame closes the table and writes the per-player summary.
func (e *gameEngine) finishGame(g *Game) {
	if rg := e.readyGroup(g.ID); rg != nil {
		rg.Stop()
		e.readyGroups.Delete(g.ID)
	}
	if tb, ok := e.botTimers.Load(g.ID); ok {
		tb.(*timebank.TimeBank).Cancel()
		e.botTimers.Delete(g.ID)
	}

	g.State.Status = GameStatus_Finished
	g.State.Phase = GamePhase_WaitingForPlayers
	g.State.CurrentActor = ""

	players := make([]PlayerSummary, 0, len(g.State.Seats))
	for _, s := range g.State.Seats {
		if !s.CashedOut {
			s.FinalStack = s.Stack
			s.IsActive = false
		}

		status := SeatStatus_Active
		if s.CashedOut {
			status = SeatStatus_CashedOut
		} else if s.Stack == 0 {
			status = SeatStatus_Busted
		}

		brought := s.StartingStack + s.BuyBackTotal
		players = append(players, PlayerSummary{
			PlayerID:      s.PlayerID,
			StartingStack: s.StartingStack,
			BuyBackTotal:  s.BuyBackTotal,
			FinalStack:    s.FinalStack,
			WinLoss:       s.FinalStack - brought,
			Status:        status,
		})
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].WinLoss > players[j].WinLoss
	})

	g.State.Summary = &GameSummary{
		GameID:      g.ID,
		TotalHands:  g.State.HandCount,
		Players:     players,
		CompletedAt: time.Now().UnixNano(),
	}

	e.logger.WithFields(logrus.Fields{
		"game_id": g.ID,
		"hands":   g.State.HandCount,
	}).Info("game finished")
}
