package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laporpak/report-service/internal/core/domain"
)

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue("665f1c2e9b1e8a0012345678")
	require.NoError(t, err)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "665f1c2e9b1e8a0012345678", id)
}

func TestManager_RejectsBadTokens(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewManager("another-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("u1")
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expiry(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Issue("u1")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = m.Parse(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
	_, err = NewManager("secret", 0)
	assert.Error(t, err)
}

type stubUsers struct {
	users map[string]*domain.User
	err   error
}

func (s stubUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s stubUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func TestIdentityResolver(t *testing.T) {
	m, err := NewManager("secret", time.Hour)
	require.NoError(t, err)
	users := stubUsers{users: map[string]*domain.User{
		"u1": {ID: "u1", Name: "Budi", Email: "budi@example.com", Role: domain.RoleAdmin},
	}}
	r := NewIdentityResolver(m, users)

	id, err := r.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id, "no token")

	id, err = r.CurrentIdentity(ContextWithToken(context.Background(), "garbage"))
	require.NoError(t, err)
	assert.Nil(t, id, "invalid token")

	token, err := m.Issue("u1")
	require.NoError(t, err)
	id, err = r.CurrentIdentity(ContextWithToken(context.Background(), token))
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "Budi", id.Name)
	assert.True(t, id.IsAdmin())

	ghost, err := m.Issue("deleted")
	require.NoError(t, err)
	id, err = r.CurrentIdentity(ContextWithToken(context.Background(), ghost))
	require.NoError(t, err)
	assert.Nil(t, id, "user gone")

	broken := NewIdentityResolver(m, stubUsers{err: errors.New("mongo down")})
	_, err = broken.CurrentIdentity(ContextWithToken(context.Background(), token))
	assert.Error(t, err)
}
