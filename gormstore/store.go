// Package gormstore persists games through GORM, mirroring the
// in-memory store. Aggregates and hand histories are stored as JSON
// payloads; the action log is kept relational for querying.
package gormstore

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pokerpit/holdem"
	"github.com/pokerpit/holdem/bot"
)

type gameRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Payload   []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (gameRecord) TableName() string {
	return "games"
}

type actionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GameID    string `gorm:"index;size:64"`
	Seq       int64
	PlayerID  string `gorm:"size:64"`
	SeatPos   int
	Kind      string `gorm:"size:16"`
	Amount    int64
	Phase     string `gorm:"size:32"`
	Timestamp int64
}

func (actionRecord) TableName() string {
	return "game_actions"
}

type handHistoryRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	GameID      string `gorm:"index;size:64"`
	HandNumber  int
	Payload     []byte `gorm:"type:blob"`
	CompletedAt int64
}

func (handHistoryRecord) TableName() string {
	return "hand_histories"
}

type botProfileRecord struct {
	PlayerID string `gorm:"primaryKey;size:64"`
	Payload  []byte `gorm:"type:blob"`
}

func (botProfileRecord) TableName() string {
	return "bot_profiles"
}

// Store implements holdem.GameStore on a GORM connection.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&gameRecord{},
		&actionRecord{},
		&handHistoryRecord{},
		&botProfileRecord{},
	)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveGame(g *holdem.Game) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return err
	}
	record := gameRecord{ID: g.ID, Payload: payload, UpdatedAt: time.Now()}
	return s.db.Save(&record).Error
}

func (s *Store) LoadGame(gameID string) (*holdem.Game, error) {
	var record gameRecord
	err := s.db.First(&record, "id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, holdem.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var g holdem.Game
	if err := json.Unmarshal(record.Payload, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) AppendAction(gameID string, action *holdem.GameAction) error {
	record := actionRecord{
		GameID:    gameID,
		Seq:       action.Seq,
		PlayerID:  action.PlayerID,
		SeatPos:   action.SeatPos,
		Kind:      string(action.Kind),
		Amount:    action.Amount,
		Phase:     string(action.Phase),
		Timestamp: action.Timestamp,
	}
	return s.db.Create(&record).Error
}

func (s *Store) ListActions(gameID string) ([]*holdem.GameAction, error) {
	var records []actionRecord
	err := s.db.Where("game_id = ?", gameID).Order("seq asc").Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]*holdem.GameAction, 0, len(records))
	for _, r := range records {
		out = append(out, &holdem.GameAction{
			Seq:       r.Seq,
			PlayerID:  r.PlayerID,
			SeatPos:   r.SeatPos,
			Kind:      holdem.ActionKind(r.Kind),
			Amount:    r.Amount,
			Phase:     holdem.GamePhase(r.Phase),
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

func (s *Store) AppendHandHistory(h *holdem.HandHistory) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return err
	}
	record := handHistoryRecord{
		GameID:      h.GameID,
		HandNumber:  h.HandNumber,
		Payload:     payload,
		CompletedAt: h.CompletedAt,
	}
	return s.db.Create(&record).Error
}

func (s *Store) ListHandHistories(gameID string) ([]*holdem.HandHistory, error) {
	var records []handHistoryRecord
	err := s.db.Where("game_id = ?", gameID).Order("hand_number asc").Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]*holdem.HandHistory, 0, len(records))
	for _, r := range records {
		var h holdem.HandHistory
		if err := json.Unmarshal(r.Payload, &h); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}
	return out, nil
}

func (s *Store) SaveBotProfile(p *bot.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	record := botProfileRecord{PlayerID: p.PlayerID, Payload: payload}
	return s.db.Save(&record).Error
}

func (s *Store) BotProfile(playerID string) (*bot.Profile, error) {
	var record botProfileRecord
	err := s.db.First(&record, "player_id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, holdem.ErrBotProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var p bot.Profile
	if err := json.Unmarshal(record.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
