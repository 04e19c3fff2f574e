package bot

import (
	"time"
)

type Difficulty string

const (
	Difficulty_Basic        Difficulty = "basic"
	Difficulty_Intermediate Difficulty = "intermediate"
	Difficulty_Advanced     Difficulty = "advanced"
)

type PlayStyle string

const (
	PlayStyle_TightPassive    PlayStyle = "tight_passive"
	PlayStyle_TightAggressive PlayStyle = "tight_aggressive"
	PlayStyle_LoosePassive    PlayStyle = "loose_passive"
	PlayStyle_LooseAggressive PlayStyle = "loose_aggressive"
)

// Profile describes how a bot seat plays. Aggression and BluffFrequency
// are in [0, 1]. Thinking-time bounds pace asynchronous play only.
type Profile struct {
	PlayerID        string        `json:"player_id"`
	Difficulty      Difficulty    `json:"difficulty"`
	PlayStyle       PlayStyle     `json:"play_style"`
	Aggression      float64       `json:"aggression"`
	BluffFrequency  float64       `json:"bluff_frequency"`
	ThinkingTimeMin time.Duration `json:"thinking_time_min"`
	ThinkingTimeMax time.Duration `json:"thinking_time_max"`
}

func DefaultProfile(playerID string) *Profile {
	return &Profile{
		PlayerID:        playerID,
		Difficulty:      Difficulty_Intermediate,
		PlayStyle:       PlayStyle_TightAggressive,
		Aggression:      0.5,
		BluffFrequency:  0.1,
		ThinkingTimeMin: 1 * time.Second,
		ThinkingTimeMax: 3 * time.Second,
	}
}
