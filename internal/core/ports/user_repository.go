package ports

import (
	"context"

	"github.com/laporpak/report-service/internal/core/domain"
)

// UserRepository defines persistence for accounts. Emails are stored normalized and unique.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
