package ports

import (
	"context"

	"github.com/laporpak/report-service/internal/core/domain"
)

// Session is an issued identity token together with the user it belongs to.
type Session struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context) (*domain.Identity, error)
}

// SessionIssuer mints the opaque token bound to a user id.
type SessionIssuer interface {
	Issue(userID string) (string, error)
}

// IdentityProvider resolves the caller of the current operation.
// It returns (nil, nil) when the request carries no valid identity.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*domain.Identity, error)
}
