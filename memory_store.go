package holdem

import (
	"sync"

	"github.com/pokerpit/holdem/bot"
)

// memoryGameStore keeps everything in process memory. It hands out
// clones so a loaded aggregate can be mutated freely and only becomes
// visible again through SaveGame.
type memoryGameStore struct {
	mu        sync.RWMutex
	games     map[string]*Game
	actions   map[string][]*GameAction
	histories map[string][]*HandHistory
	profiles  map[string]*bot.Profile
}

func NewMemoryGameStore() GameStore {
	return &memoryGameStore{
		games:     make(map[string]*Game),
		actions:   make(map[string][]*GameAction),
		histories: make(map[string][]*HandHistory),
		profiles:  make(map[string]*bot.Profile),
	}
}

func (s *memoryGameStore) SaveGame(g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *memoryGameStore) LoadGame(gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g.Clone(), nil
}

func (s *memoryGameStore) AppendAction(gameID string, action *GameAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *action
	s.actions[gameID] = append(s.actions[gameID], &entry)
	return nil
}

func (s *memoryGameStore) ListActions(gameID string) ([]*GameAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.actions[gameID]
	out := make([]*GameAction, 0, len(entries))
	for _, a := range entries {
		entry := *a
		out = append(out, &entry)
	}
	return out, nil
}

func (s *memoryGameStore) AppendHandHistory(h *HandHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[h.GameID] = append(s.histories[h.GameID], h)
	return nil
}

func (s *memoryGameStore) ListHandHistories(gameID string) ([]*HandHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*HandHistory, len(s.histories[gameID]))
	copy(out, s.histories[gameID])
	return out, nil
}

func (s *memoryGameStore) SaveBotProfile(p *bot.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := *p
	s.profiles[p.PlayerID] = &profile
	return nil
}

func (s *memoryGameStore) BotProfile(playerID string) (*bot.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[playerID]
	if !ok {
		return nil, ErrBotProfileNotFound
	}
	profile := *p
	return &profile, nil
}
