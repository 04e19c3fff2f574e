package holdem

import (
	"time"

	"github.com/sirupsen/logrus"
)

// EngineOptions tunes engine behavior. Zero values are not usable;
// start from NewEngineOptions.
type EngineOptions struct {
	// LogLevel is a logrus level number.
	LogLevel uint32

	// SyncBotActions runs bot turns inline instead of on timers, for
	// deterministic tests.
	SyncBotActions bool

	// Bot scheduling guard.
	BotMaxRetries    int
	BotRetryDelay    time.Duration
	BotActionTimeout time.Duration

	// ReadyTimeout is the between-hand readiness window in seconds;
	// seats not ready in time are auto-readied.
	ReadyTimeout int
}

func NewEngineOptions() *EngineOptions {
	return &EngineOptions{
		LogLevel:         uint32(logrus.InfoLevel),
		SyncBotActions:   false,
		BotMaxRetries:    3,
		BotRetryDelay:    1 * time.Second,
		BotActionTimeout: 30 * time.Second,
		ReadyTimeout:     10,
	}
}
