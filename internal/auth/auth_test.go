package auth

import (
	"context"
	"testing"
	"time"

	"jewelry-store/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", "jewelry-store")
	userID := uuid.New()

	tests := []struct {
		name    string
		role    string
		isAdmin bool
	}{
		{name: "User", role: RoleUser, isAdmin: false},
		{name: "Admin", role: RoleAdmin, isAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.Issue(userID, tt.role, time.Hour)
			require.NoError(t, err)

			actor, err := m.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, userID, actor.UserID)
			assert.Equal(t, tt.isAdmin, actor.IsAdmin)
		})
	}
}

func TestTokenManager_ParseRejects(t *testing.T) {
	m := NewTokenManager("secret", "jewelry-store")
	userID := uuid.New()

	expired, err := m.Issue(userID, RoleUser, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewTokenManager("other", "jewelry-store").Issue(userID, RoleUser, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager("secret", "someone-else").Issue(userID, RoleUser, time.Hour)
	require.NoError(t, err)

	badRole, err := m.Issue(userID, "root", time.Hour)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "jewelry-store",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleUser,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tokens := map[string]string{
		"Expired":      expired,
		"Wrong key":    otherKey,
		"Wrong issuer": otherIssuer,
		"Unknown role": badRole,
		"Bad subject":  badSubject,
		"Garbage":      "abc.def.ghi",
		"Empty":        "",
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, err := ActorFrom(context.Background())
	assert.ErrorIs(t, err, ErrNoActor)

	userID := uuid.New()
	ctx := WithActor(context.Background(), model.Actor{UserID: userID})
	actor, err := ActorFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
}
