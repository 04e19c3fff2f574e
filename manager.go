package holdem

import (
	"errors"
	"sync"
)

var (
	ErrManagerGameNotFound = errors.New("manager: game not found")
)

// Manager runs many games, each on its own engine so tables can carry
// different options (bot pacing, stores, timeouts).
type Manager interface {
	Reset()

	// Game actions
	GetGameEngine(gameID string) (GameEngine, error)
	GetGame(gameID string) (*Game, error)
	CreateGame(options *EngineOptions, config TableConfig, seats []SeatRequest, opts ...GameEngineOpt) (*Game, error)
	ReleaseGame(gameID string) error
	StartGame(gameID string) (*Game, error)

	// Player actions
	PlayerAction(gameID, playerID string, action Action) (*Game, error)
	PlayerReady(gameID, playerID string) error
	PlayerCashOut(gameID, playerID string) error
	PlayerBuyBackIn(gameID, playerID string, amount int64) error
}

type manager struct {
	engines sync.Map
}

func NewManager() Manager {
	return &manager{
		engines: sync.Map{},
	}
}

func (m *manager) Reset() {
	m.engines = sync.Map{}
}

func (m *manager) GetGameEngine(gameID string) (GameEngine, error) {
	engine, exist := m.engines.Load(gameID)
	if !exist {
		return nil, ErrManagerGameNotFound
	}
	return engine.(GameEngine), nil
}

func (m *manager) GetGame(gameID string) (*Game, error) {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return nil, err
	}
	return engine.GetGame(gameID)
}

func (m *manager) CreateGame(options *EngineOptions, config TableConfig, seats []SeatRequest, opts ...GameEngineOpt) (*Game, error) {
	engineOptions := options
	if engineOptions == nil {
		engineOptions = NewEngineOptions()
	}

	engine := NewGameEngine(engineOptions, opts...)
	g, err := engine.CreateGame(config, seats)
	if err != nil {
		return nil, err
	}

	m.engines.Store(g.ID, engine)
	return g, nil
}

func (m *manager) ReleaseGame(gameID string) error {
	if _, exist := m.engines.Load(gameID); !exist {
		return ErrManagerGameNotFound
	}
	m.engines.Delete(gameID)
	return nil
}

func (m *manager) StartGame(gameID string) (*Game, error) {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return nil, err
	}
	return engine.StartGame(gameID)
}

func (m *manager) PlayerAction(gameID, playerID string, action Action) (*Game, error) {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return nil, err
	}
	return engine.ProcessAction(gameID, playerID, action)
}

func (m *manager) PlayerReady(gameID, playerID string) error {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return err
	}
	return engine.MarkReady(gameID, playerID)
}

func (m *manager) PlayerCashOut(gameID, playerID string) error {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return err
	}
	return engine.CashOut(gameID, playerID)
}

func (m *manager) PlayerBuyBackIn(gameID, playerID string, amount int64) error {
	engine, err := m.GetGameEngine(gameID)
	if err != nil {
		return err
	}
	return engine.BuyBackIn(gameID, playerID, amount)
}
