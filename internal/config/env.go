package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// RuntimeEnv is the module configuration taken from the Nakama runtime environment
// (the runtime.env section of the server config).
type RuntimeEnv struct {
	ConfigPath    string        `env:"OMOK_CONFIG_PATH" envDefault:"data/omok_config.json"`
	TicketSecret  string        `env:"OMOK_TICKET_SECRET"`
	TicketIssuer  string        `env:"OMOK_TICKET_ISSUER" envDefault:"omok"`
	TicketTTL     time.Duration `env:"OMOK_TICKET_TTL" envDefault:"2h"`
	RequireTicket bool          `env:"OMOK_REQUIRE_TICKET" envDefault:"false"`
	TickRate      int           `env:"OMOK_TICK_RATE" envDefault:"5"`
	LeaderboardID string        `env:"OMOK_LEADERBOARD_ID" envDefault:"omok_rating"`
	ArchiveGames  bool          `env:"OMOK_ARCHIVE_GAMES" envDefault:"true"`
}

// ParseRuntimeEnv reads RuntimeEnv from the given key/value map.
func ParseRuntimeEnv(values map[string]string) (RuntimeEnv, error) {
	var cfg RuntimeEnv
	if values == nil {
		values = map[string]string{}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values}); err != nil {
		return RuntimeEnv{}, fmt.Errorf("parse runtime env: %w", err)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 5
	}
	return cfg, nil
}
