package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("Alice Santos", "alice@example.com", "sup3rsecret")
	require.NoError(t, err)

	assert.Equal(t, "Alice Santos", u.Name)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "sup3rsecret", u.Password)
	assert.True(t, u.CheckPassword("sup3rsecret"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short name", "Al", "alice@example.com", "sup3rsecret"},
		{"bad email", "Alice Santos", "not-an-email", "sup3rsecret"},
		{"short password", "Alice Santos", "alice@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.username, tt.email, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestUserBanUnban(t *testing.T) {
	u := &User{Status: STATUS_ACTIVE}

	u.Ban("fraudulent listings")
	assert.False(t, u.IsActive())
	assert.Equal(t, STATUS_BANNED, u.Status)
	assert.NotNil(t, u.BannedAt)
	assert.Equal(t, "fraudulent listings", u.BanReason)

	u.Unban()
	assert.True(t, u.IsActive())
	assert.Nil(t, u.BannedAt)
	assert.Empty(t, u.BanReason)
}

func TestUserIsOrganizer(t *testing.T) {
	assert.False(t, (&User{Role: ROLE_USER}).IsOrganizer())
	assert.True(t, (&User{Role: ROLE_ORGANIZER}).IsOrganizer())
	assert.True(t, (&User{Role: ROLE_ADMIN}).IsOrganizer())
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "EARLYBIRD", NormalizeCode("  earlybird "))
	assert.Equal(t, "GOPHERCON25", NormalizeCode("GopherCon25"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestPlanIsBillable(t *testing.T) {
	assert.False(t, (&Plan{PriceMinor: 0}).IsBillable())
	assert.True(t, (&Plan{PriceMinor: 49900}).IsBillable())
}

func TestSubscriptionHelpers(t *testing.T) {
	tests := []struct {
		status    string
		entitling bool
		terminal  bool
	}{
		{SubscriptionStatusIncomplete, false, false},
		{SubscriptionStatusTrialing, true, false},
		{SubscriptionStatusActive, true, false},
		{SubscriptionStatusPastDue, false, false},
		{SubscriptionStatusCanceled, false, true},
		{SubscriptionStatusIncompleteExpired, false, true},
	}
	for _, tt := range tests {
		s := &Subscription{Status: tt.status}
		assert.Equal(t, tt.entitling, s.IsEntitling(), "IsEntitling(%s)", tt.status)
		assert.Equal(t, tt.terminal, s.IsTerminal(), "IsTerminal(%s)", tt.status)
	}
}

func TestTransactionIsSettled(t *testing.T) {
	assert.False(t, (&Transaction{Status: TransactionStatusPending}).IsSettled())
	assert.False(t, (&Transaction{Status: TransactionStatusFailed}).IsSettled())
	assert.True(t, (&Transaction{Status: TransactionStatusCompleted}).IsSettled())
	assert.True(t, (&Transaction{Status: TransactionStatusPartiallyRefunded}).IsSettled())
	assert.True(t, (&Transaction{Status: TransactionStatusRefunded}).IsSettled())
}
