package session

import (
	"context"
	"errors"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// IdentityResolver implements ports.IdentityProvider on top of the token bound
// to the request context. A missing, invalid or expired token, or one whose
// user no longer exists, resolves to no identity.
type IdentityResolver struct {
	tokens *Manager
	users  ports.UserRepository
}

func NewIdentityResolver(tokens *Manager, users ports.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

func (r *IdentityResolver) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	raw := TokenFromContext(ctx)
	if raw == "" {
		return nil, nil
	}
	userID, err := r.tokens.Parse(raw)
	if err != nil {
		return nil, nil
	}
	user, err := r.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.IdentityOf(user), nil
}
