package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/app/onboarding"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// It names new accounts and seeds their rating.
func (m *Module) AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}
	if m.scores == nil {
		logger.Warn("AfterAuthenticateDevice: No score store, skipping onboarding for %s", userID)
		return nil
	}

	logger.Info("Onboarding new user %s", userID)

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaRatingAdapter(nk, m.scores), m.game.Scores.Default, nil)
	result, err := service.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("AfterAuthenticateDevice: Failed to update profile for user %s: %v", userID, result.ProfileUpdateErr)
	}
	if err == nil && !result.RatingSeeded {
		logger.Info("AfterAuthenticateDevice: Rating already seeded for user %s", userID)
	}
	if err != nil {
		logger.Error("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
		return err
	}
	return nil
}

// MatchmakerMatched turns a matchmaker group into a session in matchmaker order and
// returns the match its members should join.
func (m *Module) MatchmakerMatched(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, entries []runtime.MatchmakerEntry) (string, error) {
	userIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		userIDs = append(userIDs, e.GetPresence().GetUserId())
	}
	return m.startGroup(ctx, logger, nk, userIDs)
}

func (m *Module) startGroup(ctx context.Context, logger runtime.Logger, nk MatchCreator, userIDs []string) (string, error) {
	session, err := m.service.CreateFromGroup(ctx, userIDs)
	if err != nil {
		logger.Error("MatchmakerMatched: Failed to create session for %v: %v", userIDs, err)
		return "", err
	}
	matchID, err := m.openMatch(ctx, nk, session.ID())
	if err != nil {
		m.service.Repository().RemoveByID(session.ID())
		logger.Error("MatchmakerMatched: %v", err)
		return "", err
	}
	logger.Info("MatchmakerMatched: Session %s opened in match %s for %v", session.ID(), matchID, userIDs)
	return matchID, nil
}

func extractUserIDFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}

	// JWT base64 is RawUrlEncoding (no padding)
	data, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return "", fmt.Errorf("failed to unmarshal token claims: %w", err)
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return "", fmt.Errorf("token claims missing uid")
	}

	return uid, nil
}
