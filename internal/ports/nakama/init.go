package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/app"
	"omok/internal/config"
	"omok/internal/ports"
	"omok/internal/rules"
)

// Module holds the process-wide collaborators shared by RPCs, hooks and matches.
type Module struct {
	env     config.RuntimeEnv
	game    config.GameConfig
	service *app.Service
	outbox  *Outbox
	tickets *app.TicketService
	scores  ports.ScoreStore
}

// NewModule wires the session service. scores and archive may be nil.
func NewModule(logger runtime.Logger, env config.RuntimeEnv, game config.GameConfig, scores ports.ScoreStore, archive ports.SessionArchive) *Module {
	game = game.Normalized()
	fixed := make([]rules.ID, 0, len(game.FixedRules))
	for _, id := range game.FixedRules {
		fixed = append(fixed, rules.ID(id))
	}
	outbox := NewOutbox()
	deps := app.Dependencies{
		Messenger:   outbox,
		RuleManager: rules.NewManager(rules.Catalogue(), fixed, nil),
		ScoreStore:  scores,
		Archive:     archive,
		Logger:      logger,
		Config:      game,
	}
	return &Module{
		env:     env,
		game:    game,
		service: app.NewService(deps),
		outbox:  outbox,
		tickets: app.NewTicketService(env.TicketSecret, env.TicketIssuer, env.TicketTTL, nil),
		scores:  scores,
	}
}

// Service exposes the session service.
func (m *Module) Service() *app.Service { return m.service }

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	values, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	env, err := config.ParseRuntimeEnv(values)
	if err != nil {
		return err
	}
	game, err := config.Load(env.ConfigPath)
	if err != nil {
		logger.Warn("InitModule: Using default game config: %v", err)
	}
	if env.TicketSecret == "" {
		logger.Warn("InitModule: OMOK_TICKET_SECRET is not set, session tickets are disabled.")
	}

	if err := nk.LeaderboardCreate(ctx, env.LeaderboardID, true, "desc", "incr", "", nil, false); err != nil {
		return fmt.Errorf("failed to create rating leaderboard: %w", err)
	}
	scores := NewLeaderboardScoreStore(nk, env.LeaderboardID)
	var archive ports.SessionArchive
	if env.ArchiveGames {
		archive = NewStorageArchive(nk)
	}

	m := NewModule(logger, env, game, scores, archive)
	if err := m.Register(initializer); err != nil {
		return err
	}

	logger.Info("Omok Go module loaded (board %dx%d, win length %d).", game.BoardWidth, game.BoardHeight, game.WinLength)
	return nil
}

// Register installs the module's RPCs, hooks and match handler.
func (m *Module) Register(initializer runtime.Initializer) error {
	if err := m.RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameOmok, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{mod: m}, nil
	}); err != nil {
		return err
	}
	if err := initializer.RegisterMatchmakerMatched(m.MatchmakerMatched); err != nil {
		return err
	}
	return initializer.RegisterAfterAuthenticateDevice(m.AfterAuthenticateDevice)
}

// MatchCreator is the subset of runtime.NakamaModule used to open session matches.
type MatchCreator interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

// openMatch creates the authoritative match that carries sessionID.
func (m *Module) openMatch(ctx context.Context, nk MatchCreator, sessionID string) (string, error) {
	matchID, err := nk.MatchCreate(ctx, MatchNameOmok, map[string]interface{}{MatchParamSessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("failed to create match for session %s: %w", sessionID, err)
	}
	m.outbox.Bind(sessionID, matchID)
	return matchID, nil
}
