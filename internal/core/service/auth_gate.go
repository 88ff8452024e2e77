package service

import (
	"context"
	"fmt"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// AuthGate resolves the caller and enforces the two roles. Every report mutation
// and every admin read goes through it before touching a store.
type AuthGate struct {
	identities ports.IdentityProvider
}

func NewAuthGate(identities ports.IdentityProvider) *AuthGate {
	return &AuthGate{identities: identities}
}

// CurrentIdentity returns the caller or nil when the request is anonymous.
func (g *AuthGate) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	id, err := g.identities.CurrentIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return id, nil
}

// RequireUser fails with domain.ErrUnauthenticated for anonymous callers.
func (g *AuthGate) RequireUser(ctx context.Context) (*domain.Identity, error) {
	id, err := g.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}

// RequireAdmin additionally fails with domain.ErrForbidden for non-admin callers.
func (g *AuthGate) RequireAdmin(ctx context.Context) (*domain.Identity, error) {
	id, err := g.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return id, nil
}
