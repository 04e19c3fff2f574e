package holdem

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/weedbox/syncsaga"
	"github.com/weedbox/timebank"

	"github.com/pokerpit/holdem/card"
)

var (
	ErrGameNotActive        = errors.New("game: not active")
	ErrInsufficientPlayers  = errors.New("game: not enough eligible players")
	ErrPlayerNotSeated      = errors.New("game: player not seated")
	ErrNotPlayersTurn       = errors.New("game: not player's turn")
	ErrIllegalAction        = errors.New("game: illegal action")
	ErrInvalidBuyIn         = errors.New("game: invalid buy-in amount")
	ErrInvalidCreateSetting = errors.New("game: invalid create setting")
	ErrSeatNotCashedOut     = errors.New("game: seat is not cashed out")
)

type GameEngine interface {
	// Events
	OnGameUpdated(fn func(*Game))
	OnGameErrorUpdated(fn func(*Game, error))
	OnHandSettled(fn func(*Game, *HandHistory))

	// Game lifecycle
	CreateGame(config TableConfig, seats []SeatRequest) (*Game, error)
	StartGame(gameID string) (*Game, error)
	GetGame(gameID string) (*Game, error)

	// Player actions
	ProcessAction(gameID, playerID string, action Action) (*Game, error)
	LegalActions(gameID, playerID string) ([]ActionKind, error)
	MarkReady(gameID, playerID string) error
	CashOut(gameID, playerID string) error
	BuyBackIn(gameID, playerID string, amount int64) error
}

type gameEngine struct {
	options     *EngineOptions
	store       GameStore
	logger      *logrus.Logger
	newDeck     func() *card.Deck
	r           *rand.Rand
	locks       sync.Map // gameID -> *sync.Mutex
	readyGroups sync.Map // gameID -> *syncsaga.ReadyGroup
	botTimers   sync.Map // gameID -> *timebank.TimeBank

	onGameUpdated      func(*Game)
	onGameErrorUpdated func(*Game, error)
	onHandSettled      func(*Game, *HandHistory)
}

type GameEngineOpt func(*gameEngine)

func WithGameStore(store GameStore) GameEngineOpt {
	return func(e *gameEngine) {
		e.store = store
	}
}

// WithDeckFactory overrides deck creation, used to rig decks in tests.
func WithDeckFactory(fn func() *card.Deck) GameEngineOpt {
	return func(e *gameEngine) {
		e.newDeck = fn
	}
}

// WithRand fixes the engine's random source (dealer selection).
func WithRand(r *rand.Rand) GameEngineOpt {
	return func(e *gameEngine) {
		e.r = r
	}
}

func WithLogger(logger *logrus.Logger) GameEngineOpt {
	return func(e *gameEngine) {
		e.logger = logger
	}
}

func NewGameEngine(options *EngineOptions, opts ...GameEngineOpt) GameEngine {
	if options == nil {
		options = NewEngineOptions()
	}

	e := &gameEngine{
		options:            options,
		onGameUpdated:      func(*Game) {},
		onGameErrorUpdated: func(*Game, error) {},
		onHandSettled:      func(*Game, *HandHistory) {},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = NewMemoryGameStore()
	}
	if e.newDeck == nil {
		e.newDeck = card.NewShuffledDeck
	}
	if e.r == nil {
		e.r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetLevel(logrus.Level(options.LogLevel))
	}

	return e
}

func (e *gameEngine) OnGameUpdated(fn func(*Game)) {
	e.onGameUpdated = fn
}

func (e *gameEngine) OnGameErrorUpdated(fn func(*Game, error)) {
	e.onGameErrorUpdated = fn
}

func (e *gameEngine) OnHandSettled(fn func(*Game, *HandHistory)) {
	e.onHandSettled = fn
}

func (e *gameEngine) CreateGame(config TableConfig, seats []SeatRequest) (*Game, error) {
	if config.MaxSeats < 2 {
		return nil, fmt.Errorf("%w: max_seats must be at least 2", ErrInvalidCreateSetting)
	}
	if config.SmallBlind <= 0 || config.BigBlind < config.SmallBlind {
		return nil, fmt.Errorf("%w: invalid blinds", ErrInvalidCreateSetting)
	}
	if config.MinBuyIn <= 0 || config.MaxBuyIn < config.MinBuyIn {
		return nil, fmt.Errorf("%w: invalid buy-in range", ErrInvalidCreateSetting)
	}
	if len(seats) > config.MaxSeats {
		return nil, fmt.Errorf("%w: too many seats", ErrInvalidCreateSetting)
	}

	seen := make(map[string]bool)
	seatStates := make([]*Seat, 0, len(seats))
	for i, req := range seats {
		if req.PlayerID == "" || seen[req.PlayerID] {
			return nil, fmt.Errorf("%w: duplicate or empty player id", ErrInvalidCreateSetting)
		}
		seen[req.PlayerID] = true
		if req.BuyIn < config.MinBuyIn || req.BuyIn > config.MaxBuyIn {
			return nil, fmt.Errorf("%w: player %s", ErrInvalidBuyIn, req.PlayerID)
		}
		seatStates = append(seatStates, &Seat{
			PlayerID:      req.PlayerID,
			SeatPosition:  i,
			IsBot:         req.IsBot,
			Stack:         req.BuyIn,
			StartingStack: req.BuyIn,
			IsActive:      false,
		})
	}

	g := &Game{
		ID:     uuid.New().String(),
		Config: config,
		State: &GameState{
			Status:         GameStatus_Waiting,
			Phase:          GamePhase_WaitingForPlayers,
			DealerPosition: UnsetValue,
			Seats:          seatStates,
			CommunityCards: []card.Card{},
		},
	}

	if err := e.commit(g); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"game_id": g.ID,
		"seats":   len(seatStates),
	}).Info("game created")

	return g, nil
}

func (e *gameEngine) StartGame(gameID string) (*Game, error) {
	var g *Game
	var botID string
	err := e.withGameLock(gameID, func() error {
		var err error
		g, err = e.store.LoadGame(gameID)
		if err != nil {
			return err
		}

		if g.State.Status != GameStatus_Waiting {
			return e.emitError(g, ErrGameNotActive)
		}

		eligible := g.EligibleSeats()
		if len(eligible) < 2 {
			return e.emitError(g, ErrInsufficientPlayers)
		}

		g.State.Status = GameStatus_Playing
		g.State.DealerPosition = e.r.Intn(len(eligible))

		botID, err = e.startHand(g)
		if err != nil {
			return e.emitError(g, err)
		}
		return e.commit(g)
	})
	if err != nil {
		return nil, err
	}

	e.runBotIfAny(gameID, botID)
	return g, nil
}

func (e *gameEngine) GetGame(gameID string) (*Game, error) {
	return e.store.LoadGame(gameID)
}

func (e *gameEngine) ProcessAction(gameID, playerID string, action Action) (*Game, error) {
	var g *Game
	var botID string
	err := e.withGameLock(gameID, func() error {
		var err error
		g, err = e.store.LoadGame(gameID)
		if err != nil {
			return err
		}
		botID, err = e.processAction(g, playerID, action)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.runBotIfAny(gameID, botID)
	return g, nil
}

// LegalActions reports what the seat could legally do right now. It is
// informational and does not require it to be the seat's turn.
func (e *gameEngine) LegalActions(gameID, playerID string) ([]ActionKind, error) {
	g, err := e.store.LoadGame(gameID)
	if err != nil {
		return nil, err
	}

	seat := g.FindSeat(playerID)
	if seat == nil {
		return nil, ErrPlayerNotSeated
	}

	if g.State.Status != GameStatus_Playing || !g.State.Phase.IsBettingPhase() || !seat.InHand() {
		return []ActionKind{}, nil
	}

	return validActions(g, seat), nil
}

func (e *gameEngine) MarkReady(gameID, playerID string) error {
	var seatPos int
	err := e.withGameLock(gameID, func() error {
		g, err := e.store.LoadGame(gameID)
		if err != nil {
			return err
		}

		if g.State.Status != GameStatus_Playing || g.State.Phase != GamePhase_WaitingForPlayers {
			return e.emitError(g, ErrGameNotActive)
		}

		seat := g.FindSeat(playerID)
		if seat == nil || seat.CashedOut || seat.Stack <= 0 {
			return e.emitError(g, ErrPlayerNotSeated)
		}

		seat.Ready = true
		seatPos = seat.SeatPosition
		return e.commit(g)
	})
	if err != nil {
		return err
	}

	if rg := e.readyGroup(gameID); rg != nil {
		rg.Ready(int64(seatPos))
	}

	e.tryStartNextHand(gameID, false)
	return nil
}

func (e *gameEngine) CashOut(gameID, playerID string) error {
	var botID string
	err := e.withGameLock(gameID, func() error {
		g, err := e.store.LoadGame(gameID)
		if err != nil {
			return err
		}

		seat := g.FindSeat(playerID)
		if seat == nil {
			return e.emitError(g, ErrPlayerNotSeated)
		}
		if seat.CashedOut {
			return nil
		}

		// A seat contesting a hand cannot leave mid-betting.
		if g.State.Status == GameStatus_Playing && g.State.Phase.IsBettingPhase() && seat.IsActive {
			return e.emitError(g, fmt.Errorf("%w: cannot cash out during a hand", ErrIllegalAction))
		}

		// A folded seat still owes its street bet; forfeit it to the
		// pot before the chips leave the table.
		if seat.CurrentBet > 0 {
			g.State.Pot += seat.CurrentBet
			seat.Stack -= seat.CurrentBet
			seat.CurrentBet = 0
		}

		seat.CashedOut = true
		seat.IsActive = false
		seat.Ready = false
		seat.FinalStack = seat.Stack

		e.logger.WithFields(logrus.Fields{
			"game_id":   g.ID,
			"player_id": playerID,
			"stack":     seat.Stack,
		}).Info("player cashed out")

		botID, err = e.afterSeatChange(g)
		if err != nil {
			return err
		}
		return e.commit(g)
	})
	if err != nil {
		return err
	}

	e.runBotIfAny(gameID, botID)
	return nil
}

func (e *gameEngine) BuyBackIn(gameID, playerID string, amount int64) error {
	return e.withGameLock(gameID, func() error {
		g, err := e.store.LoadGame(gameID)
		if err != nil {
			return err
		}

		if g.State.Status == GameStatus_Finished {
			return e.emitError(g, ErrGameNotActive)
		}

		seat := g.FindSeat(playerID)
		if seat == nil {
			return e.emitError(g, ErrPlayerNotSeated)
		}
		if !seat.CashedOut {
			return e.emitError(g, ErrSeatNotCashedOut)
		}
		if amount < g.Config.MinBuyIn || amount > g.Config.MaxBuyIn {
			return e.emitError(g, ErrInvalidBuyIn)
		}

		seat.CashedOut = false
		seat.Stack = amount
		seat.BuyBackTotal += amount
		seat.FinalStack = 0
		seat.Ready = false
		seat.IsActive = false

		e.logger.WithFields(logrus.Fields{
			"game_id":   g.ID,
			"player_id": playerID,
			"amount":    amount,
		}).Info("player bought back in")

		// Rejoins readiness for the next hand.
		if g.State.Status == GameStatus_Playing && g.State.Phase == GamePhase_WaitingForPlayers {
			e.setupReadyGroup(g)
		}

		return e.commit(g)
	})
}

// afterSeatChange re-evaluates a game whose seat set changed outside a
// betting round: finishes the game when only bots or fewer than two
// funded seats remain, or re-checks readiness between hands.
func (e *gameEngine) afterSeatChange(g *Game) (string, error) {
	if humansRemaining(g) == 0 && g.State.Status != GameStatus_Finished {
		// Bots have nobody to play against. A hand still in flight is
		// played out first so its pot gets awarded; settlement closes
		// the table.
		if g.State.Status == GameStatus_Playing && g.State.Phase.IsBettingPhase() {
			return "", nil
		}
		e.retireBots(g)
		e.finishGame(g)
		return "", nil
	}

	if g.State.Status == GameStatus_Playing && g.State.Phase == GamePhase_WaitingForPlayers {
		// A short-handed table keeps waiting; buy-backs can refill it
		// until the ready timeout closes it.
		if e.allEligibleReady(g) {
			return e.startNextHand(g)
		}
		e.setupReadyGroup(g)
	}

	return "", nil
}

func humansRemaining(g *Game) int {
	humans := 0
	for _, s := range g.State.Seats {
		if !s.IsBot && !s.CashedOut {
			humans++
		}
	}
	return humans
}

// retireBots cashes out every bot still seated.
func (e *gameEngine) retireBots(g *Game) {
	for _, s := range g.State.Seats {
		if s.IsBot && !s.CashedOut {
			s.CashedOut = true
			s.IsActive = false
			s.Ready = false
			s.FinalStack = s.Stack
		}
	}
}

// withGameLock serializes all mutation of one game.
func (e *gameEngine) withGameLock(gameID string, fn func() error) error {
	mu, _ := e.locks.LoadOrStore(gameID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// commit persists the aggregate and fires the update hook.
func (e *gameEngine) commit(g *Game) error {
	g.RefreshUpdateAt()
	if err := e.store.SaveGame(g); err != nil {
		return err
	}
	e.onGameUpdated(g)
	return nil
}

func (e *gameEngine) emitError(g *Game, err error) error {
	e.onGameErrorUpdated(g, err)
	return err
}

func (e *gameEngine) readyGroup(gameID string) *syncsaga.ReadyGroup {
	if rg, ok := e.readyGroups.Load(gameID); ok {
		return rg.(*syncsaga.ReadyGroup)
	}
	return nil
}

func (e *gameEngine) botTimer(gameID string) *timebank.TimeBank {
	tb, _ := e.botTimers.LoadOrStore(gameID, timebank.NewTimeBank())
	return tb.(*timebank.TimeBank)
}
