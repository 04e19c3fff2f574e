package holdem

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pokerpit/holdem/bot"
)

var (
	ErrBotDecisionTimeout = errors.New("game: bot decision timed out")
)

// runBotIfAny dispatches a pending bot turn once the caller has
// released the game lock. Synchronous mode drains the whole bot chain
// inline; asynchronous mode paces each turn with a timebank task.
func (e *gameEngine) runBotIfAny(gameID, playerID string) {
	if playerID == "" {
		return
	}

	if e.options.SyncBotActions {
		next := playerID
		for next != "" {
			next = e.runBotTurn(gameID, next, 0)
		}
		return
	}

	e.scheduleBotTurn(gameID, playerID, 0, e.thinkingDelay(playerID))
}

// thinkingDelay draws the pacing delay from the bot's profile; a seat
// with no profile gets no delay and fails fast into the retry path.
func (e *gameEngine) thinkingDelay(playerID string) time.Duration {
	profile, err := e.store.BotProfile(playerID)
	if err != nil {
		return 0
	}
	return bot.NewDecisionEngine(profile).ThinkingTime()
}

// scheduleBotTurn queues a deferred unit carrying only identifiers; all
// state is reloaded and revalidated when the unit runs.
func (e *gameEngine) scheduleBotTurn(gameID, playerID string, retry int, delay time.Duration) {
	tb := e.botTimer(gameID)
	tb.Cancel()
	err := tb.NewTask(delay, func(isCancelled bool) {
		if isCancelled {
			return
		}
		next := e.runBotTurn(gameID, playerID, retry)
		if next != "" {
			e.scheduleBotTurn(gameID, next, 0, e.thinkingDelay(next))
		}
	})
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"game_id":   gameID,
			"player_id": playerID,
		}).Error("failed to schedule bot turn")
	}
}

// runBotTurn executes one bot decision under the game lock. Stale
// preconditions abort silently; decision failures retry with backoff
// and finally fall back to the safest legal action. Returns the next
// bot due to act.
func (e *gameEngine) runBotTurn(gameID, playerID string, retry int) string {
	var nextBot string
	var decisionErr error

	_ = e.withGameLock(gameID, func() error {
		g, err := e.store.LoadGame(gameID)
		if err != nil {
			// A transient store failure retries like a failed decision;
			// with the budget spent and no state to fall back on, the
			// unit is abandoned.
			if retry < e.options.BotMaxRetries {
				decisionErr = err
			} else {
				e.logger.WithError(err).WithFields(logrus.Fields{
					"game_id":   gameID,
					"player_id": playerID,
				}).Error("bot turn abandoned, game state unavailable")
			}
			return err
		}

		// Revalidate; the world may have moved since scheduling.
		if g.State.Status != GameStatus_Playing || !g.State.Phase.IsBettingPhase() {
			return nil
		}
		seat := g.FindSeat(playerID)
		if seat == nil || !seat.IsBot || !seat.InHand() || g.State.CurrentActor != playerID {
			return nil
		}

		if retry >= e.options.BotMaxRetries {
			nextBot, err = e.applyBotFallback(g, seat)
			return err
		}

		decision, err := e.decideBotAction(g, seat)
		if err != nil {
			decisionErr = err
			return nil
		}

		nextBot, err = e.processAction(g, playerID, decision)
		if err != nil {
			// The engine rejected the decision; treat it like any
			// other decision failure.
			decisionErr = err
			return nil
		}
		return nil
	})

	if decisionErr == nil {
		return nextBot
	}

	e.logger.WithError(decisionErr).WithFields(logrus.Fields{
		"game_id":   gameID,
		"player_id": playerID,
		"retry":     retry,
	}).Warn("bot action failed")

	if e.options.SyncBotActions {
		return e.runBotTurn(gameID, playerID, retry+1)
	}

	e.scheduleBotTurn(gameID, playerID, retry+1, e.options.BotRetryDelay)
	return ""
}

// decideBotAction snapshots the table for the bot seat and asks its
// decision engine for a move, bounded by the action timeout.
func (e *gameEngine) decideBotAction(g *Game, seat *Seat) (Action, error) {
	profile, err := e.store.BotProfile(seat.PlayerID)
	if err != nil {
		return Action{}, err
	}

	snapshot := e.botContext(g, seat)
	engine := bot.NewDecisionEngine(profile, bot.WithLogger(e.logger.WithField("bot", seat.PlayerID)))

	decisionCh := make(chan bot.Decision, 1)
	go func() {
		decisionCh <- engine.MakeDecision(snapshot)
	}()

	timeout := time.NewTimer(e.options.BotActionTimeout)
	defer timeout.Stop()

	select {
	case d := <-decisionCh:
		return Action{Kind: ActionKind(d.Action), Amount: d.Amount}, nil
	case <-timeout.C:
		return Action{}, ErrBotDecisionTimeout
	}
}

func (e *gameEngine) botContext(g *Game, seat *Seat) *bot.Context {
	active := g.ActiveSeats()
	n := len(active)
	dealerDistance := 0
	if n > 0 {
		d := ((g.State.DealerPosition % n) + n) % n
		for i, s := range active {
			if s.PlayerID == seat.PlayerID {
				dealerDistance = ((i - d) % n + n) % n
				break
			}
		}
	}

	legal := validActions(g, seat)
	legalForBot := make([]bot.Action, 0, len(legal))
	for _, a := range legal {
		legalForBot = append(legalForBot, bot.Action(a))
	}

	return &bot.Context{
		HoleCards:      seat.HoleCards,
		CommunityCards: g.State.CommunityCards,
		Pot:            g.State.Pot,
		CurrentBet:     g.State.CurrentBet,
		SeatBet:        seat.CurrentBet,
		Stack:          seat.Stack,
		BigBlind:       g.Config.BigBlind,
		ActiveSeats:    n,
		DealerDistance: dealerDistance,
		LegalActions:   legalForBot,
	}
}

// applyBotFallback plays the safest legal action for a stalled bot:
// fold, else check, else call.
func (e *gameEngine) applyBotFallback(g *Game, seat *Seat) (string, error) {
	legal := validActions(g, seat)

	action := Fold()
	hasKind := func(kind ActionKind) bool {
		for _, k := range legal {
			if k == kind {
				return true
			}
		}
		return false
	}
	switch {
	case hasKind(ActionKind_Fold):
		action = Fold()
	case hasKind(ActionKind_Check):
		action = Check()
	case hasKind(ActionKind_Call):
		action = Call()
	}

	e.logger.WithFields(logrus.Fields{
		"game_id":   g.ID,
		"player_id": seat.PlayerID,
		"action":    action.Kind,
	}).Warn("bot retries exhausted, applying fallback action")

	return e.processAction(g, seat.PlayerID, action)
}
