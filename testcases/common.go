package testcases

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thoas/go-funk"

	"github.com/pokerpit/holdem"
	"github.com/pokerpit/holdem/card"
)

func logJSON(t *testing.T, msg string, jsonPrinter func() (string, error)) {
	json, _ := jsonPrinter()
	t.Logf("\n===== [%s] =====\n%s\n", msg, json)
}

func seatRequests(playerIDs []string, buyIn int64) []holdem.SeatRequest {
	return funk.Map(playerIDs, func(playerID string) holdem.SeatRequest {
		return holdem.SeatRequest{
			PlayerID: playerID,
			BuyIn:    buyIn,
		}
	}).([]holdem.SeatRequest)
}

func newSyncEngine(opts ...holdem.GameEngineOpt) holdem.GameEngine {
	options := holdem.NewEngineOptions()
	options.SyncBotActions = true
	options.ReadyTimeout = 60
	return holdem.NewGameEngine(options, opts...)
}

// seededDecks keeps multi-hand runs reproducible.
func seededDecks(seed int64) holdem.GameEngineOpt {
	r := rand.New(rand.NewSource(seed))
	return holdem.WithDeckFactory(func() *card.Deck {
		d := card.NewDeck()
		d.Shuffle(r)
		return d
	})
}

func allEligibleReady(t *testing.T, engine holdem.GameEngine, gameID string) {
	t.Helper()
	g, err := engine.GetGame(gameID)
	require.NoError(t, err)
	for _, seat := range g.EligibleSeats() {
		if seat.IsBot {
			continue
		}
		assert.Nil(t, engine.MarkReady(gameID, seat.PlayerID), "%s ready error", seat.PlayerID)
	}
}

// checkDownHand drives every seat with the passive line (check when
// free, call otherwise) until the hand settles.
func checkDownHand(t *testing.T, engine holdem.GameEngine, gameID string) *holdem.Game {
	t.Helper()
	for i := 0; i < 100; i++ {
		g, err := engine.GetGame(gameID)
		require.NoError(t, err)
		if g.State.Status != holdem.GameStatus_Playing || !g.State.Phase.IsBettingPhase() {
			return g
		}

		actor := g.State.CurrentActor
		legal, err := engine.LegalActions(gameID, actor)
		require.NoError(t, err)

		var action holdem.Action
		if funk.Contains(legal, holdem.ActionKind_Check) {
			action = holdem.Check()
		} else {
			action = holdem.Call()
		}
		t.Logf("[%s] %s: %s", g.State.Phase, actor, action.Kind)

		_, err = engine.ProcessAction(gameID, actor, action)
		require.NoError(t, err)
	}
	t.Fatal("hand did not settle")
	return nil
}

// jamHand drives every seat all-in until the hand settles.
func jamHand(t *testing.T, engine holdem.GameEngine, gameID string) *holdem.Game {
	t.Helper()
	for i := 0; i < 100; i++ {
		g, err := engine.GetGame(gameID)
		require.NoError(t, err)
		if g.State.Status != holdem.GameStatus_Playing || !g.State.Phase.IsBettingPhase() {
			return g
		}

		actor := g.State.CurrentActor
		seat := g.FindSeat(actor)
		legal, err := engine.LegalActions(gameID, actor)
		require.NoError(t, err)

		var action holdem.Action
		switch {
		case funk.Contains(legal, holdem.ActionKind_Raise):
			action = holdem.Raise(seat.Stack)
		case funk.Contains(legal, holdem.ActionKind_Bet):
			action = holdem.Bet(seat.Stack)
		case funk.Contains(legal, holdem.ActionKind_Call):
			action = holdem.Call()
		default:
			action = holdem.Check()
		}
		t.Logf("[%s] %s: %s %d", g.State.Phase, actor, action.Kind, action.Amount)

		_, err = engine.ProcessAction(gameID, actor, action)
		require.NoError(t, err)
	}
	t.Fatal("hand did not settle")
	return nil
}
