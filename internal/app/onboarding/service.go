package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"omok/internal/ports"
)

const (
	defaultInitialRating = 1000
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// RatingSeeded is false when the account already had an initial rating.
	RatingSeeded bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts      ports.AccountPort
	ratings       ports.RatingPort
	initialRating int
	rng           *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/ratings must be non-nil; a non-positive initialRating selects the default and
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, ratings ports.RatingPort, initialRating int, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if initialRating <= 0 {
		initialRating = defaultInitialRating
	}
	return &Service{
		accounts:      accounts,
		ratings:       ratings,
		initialRating: initialRating,
		rng:           rng,
	}
}

// OnboardNewUser initializes profile and rating for a newly created account.
// userID identifies the new account to initialize.
// Returns a Result with any non-fatal issues and an error if the rating cannot be seeded.
// Side effects: updates account profile and writes the initial rating once.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.ratings == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the rating seed decides rule selection.
		result.ProfileUpdateErr = err
	}

	seeded, err := s.ratings.SeedRatingOnce(ctx, userID, s.initialRating)
	if err != nil {
		return result, fmt.Errorf("failed to seed initial rating: %w", err)
	}
	result.RatingSeeded = seeded

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Stone", "Crane", "Tiger", "Heron", "Wolf", "Otter", "Falcon", "Pine", "Fox", "River"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
