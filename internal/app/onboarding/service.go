package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ludo/internal/ports"
)

const defaultWelcomeStake = 10000

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeStakeGranted reports whether the starting stake was granted now
	// (false when it was already granted previously).
	WelcomeStakeGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	welcome  ports.WelcomeBonusPort
	stake    int64
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/welcome must be non-nil; stake <= 0 uses the default;
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, welcome ports.WelcomeBonusPort, stake int64, rng *rand.Rand) *Service {
	if stake <= 0 {
		stake = defaultWelcomeStake
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		welcome:  welcome,
		stake:    stake,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and wallet for a newly created account.
// Returns a Result with any non-fatal issues and an error if the welcome
// stake cannot be granted. Profile updates are best-effort.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.welcome == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.welcome.GrantWelcomeBonusOnce(ctx, userID, s.stake, map[string]interface{}{
		"reason": "welcome_stake",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant welcome stake: %w", err)
	}
	result.WelcomeStakeGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
