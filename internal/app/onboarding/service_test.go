package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountPort struct {
	updateErr error
}

func (f fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return f.updateErr
}

type welcomeStakeCall struct {
	userID   string
	amount   int64
	metadata map[string]interface{}
}

type fakeWelcomePort struct {
	grantErr error
	calls    []welcomeStakeCall
	granted  bool
}

func (f *fakeWelcomePort) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	f.calls = append(f.calls, welcomeStakeCall{userID: userID, amount: amount, metadata: metadata})
	if f.grantErr != nil {
		return false, f.grantErr
	}
	return f.granted, nil
}

func TestOnboardNewUserGrantsWelcomeStake(t *testing.T) {
	welcome := &fakeWelcomePort{granted: true}
	service := NewService(fakeAccountPort{}, welcome, 0, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NoError(t, result.ProfileUpdateErr)
	assert.True(t, result.WelcomeStakeGranted)

	require.Len(t, welcome.calls, 1)
	assert.Equal(t, "user-1", welcome.calls[0].userID)
	assert.Equal(t, int64(defaultWelcomeStake), welcome.calls[0].amount)
}

func TestOnboardNewUserProfileFailureStillGrantsStake(t *testing.T) {
	welcome := &fakeWelcomePort{granted: true}
	service := NewService(fakeAccountPort{updateErr: errors.New("update failed")}, welcome, 0, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Error(t, result.ProfileUpdateErr)
	assert.True(t, result.WelcomeStakeGranted)
	require.Len(t, welcome.calls, 1)
}

func TestOnboardNewUserAlreadyGranted(t *testing.T) {
	welcome := &fakeWelcomePort{granted: false}
	service := NewService(fakeAccountPort{}, welcome, 2500, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, result.WelcomeStakeGranted)
	require.Len(t, welcome.calls, 1)
	assert.Equal(t, int64(2500), welcome.calls[0].amount)
}

func TestOnboardNewUserGrantFailure(t *testing.T) {
	welcome := &fakeWelcomePort{grantErr: errors.New("wallet unavailable")}
	service := NewService(fakeAccountPort{}, welcome, 0, rand.New(rand.NewSource(1)))

	_, err := service.OnboardNewUser(context.Background(), "user-1")
	assert.Error(t, err)
}
