package holdem

import (
	"errors"

	"github.com/pokerpit/holdem/bot"
)

var (
	ErrGameNotFound       = errors.New("store: game not found")
	ErrBotProfileNotFound = errors.New("store: bot profile not found")
)

// GameStore persists game aggregates, the append-only logs, and bot
// profiles. Engine calls happen under the per-game lock, so a store
// only needs to be safe across games.
type GameStore interface {
	SaveGame(g *Game) error
	LoadGame(gameID string) (*Game, error)

	AppendAction(gameID string, action *GameAction) error
	ListActions(gameID string) ([]*GameAction, error)

	AppendHandHistory(h *HandHistory) error
	ListHandHistories(gameID string) ([]*HandHistory, error)

	SaveBotProfile(p *bot.Profile) error
	BotProfile(playerID string) (*bot.Profile, error)
}
