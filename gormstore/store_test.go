package gormstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pokerpit/holdem"
	"github.com/pokerpit/holdem/bot"
)

func newTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStore_SaveAndLoadGame(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadGame("missing")
	assert.ErrorIs(t, err, holdem.ErrGameNotFound)

	engine := holdem.NewGameEngine(holdem.NewEngineOptions(), holdem.WithGameStore(store))
	g, err := engine.CreateGame(holdem.TableConfig{
		MaxSeats:   6,
		SmallBlind: 1,
		BigBlind:   2,
		MinBuyIn:   40,
		MaxBuyIn:   200,
	}, []holdem.SeatRequest{
		{PlayerID: "alice", BuyIn: 100},
		{PlayerID: "bob", BuyIn: 100},
	})
	require.NoError(t, err)

	loaded, err := store.LoadGame(g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, loaded.ID)
	assert.Equal(t, 2, len(loaded.State.Seats))
	assert.Equal(t, holdem.GameStatus_Waiting, loaded.State.Status)
}

func TestStore_PlaysHandThroughEngine(t *testing.T) {
	store := newTestStore(t)
	engine := holdem.NewGameEngine(holdem.NewEngineOptions(), holdem.WithGameStore(store))

	g, err := engine.CreateGame(holdem.TableConfig{
		MaxSeats:   6,
		SmallBlind: 1,
		BigBlind:   2,
		MinBuyIn:   40,
		MaxBuyIn:   200,
	}, []holdem.SeatRequest{
		{PlayerID: "alice", BuyIn: 100},
		{PlayerID: "bob", BuyIn: 100},
	})
	require.NoError(t, err)

	g, err = engine.StartGame(g.ID)
	require.NoError(t, err)
	require.Equal(t, holdem.GamePhase_Preflop, g.State.Phase)

	// First to act folds, the hand settles and history lands in sqlite.
	g, err = engine.ProcessAction(g.ID, g.State.CurrentActor, holdem.Fold())
	require.NoError(t, err)

	actions, err := store.ListActions(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, len(actions))
	assert.Equal(t, holdem.ActionKind_Fold, actions[0].Kind)

	histories, err := store.ListHandHistories(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, len(histories))
	assert.Equal(t, 1, histories[0].HandNumber)
	assert.Equal(t, holdem.HandResultType_SingleWinner, histories[0].Result.Type)
}

func TestStore_BotProfiles(t *testing.T) {
	store := newTestStore(t)

	_, err := store.BotProfile("missing")
	assert.ErrorIs(t, err, holdem.ErrBotProfileNotFound)

	profile := bot.DefaultProfile("bot-1")
	profile.Difficulty = bot.Difficulty_Advanced
	require.NoError(t, store.SaveBotProfile(profile))

	loaded, err := store.BotProfile("bot-1")
	require.NoError(t, err)
	assert.Equal(t, bot.Difficulty_Advanced, loaded.Difficulty)
	assert.Equal(t, profile.Aggression, loaded.Aggression)

	// Save is an upsert.
	profile.Aggression = 0.9
	require.NoError(t, store.SaveBotProfile(profile))
	loaded, err = store.BotProfile("bot-1")
	require.NoError(t, err)
	assert.Equal(t, 0.9, loaded.Aggression)
}
