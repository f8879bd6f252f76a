package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gostop/internal/ports"
)

// DefaultStarterChips is granted when no amount is configured.
const DefaultStarterChips = 10000

// Result captures non-fatal onboarding outcomes.
type Result struct {
	DisplayName string
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when an earlier login already received the chips.
	WelcomeBonusGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	bonuses  ports.WelcomeBonusPort
	chips    int64
	rng      *rand.Rand
}

// NewService constructs an onboarding service. chips <= 0 uses
// DefaultStarterChips; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, chips int64, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if chips <= 0 {
		chips = DefaultStarterChips
	}
	return &Service{accounts: accounts, bonuses: bonuses, chips: chips, rng: rng}
}

// OnboardNewUser names a new account and grants its starter chips once.
// The profile update is best-effort; a failed grant is returned as an error.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, s.chips, map[string]interface{}{
		"reason": "welcome_chips",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant starter chips: %w", err)
	}
	result.WelcomeBonusGranted = granted
	return result, nil
}

// generateFriendlyName builds names from the pictures on the flower cards.
func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Bold", "Quiet", "Swift", "Clever", "Brave", "Sly", "Calm"}
	nouns := []string{"Crane", "Plum", "Cuckoo", "Iris", "Peony", "Boar", "Geese", "Deer", "Moon", "Willow", "Pine", "Phoenix"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
