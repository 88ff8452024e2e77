package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login and admin bootstrap.
type AuthService struct {
	repo     ports.UserRepository
	sessions ports.SessionIssuer
	gate     *AuthGate
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, sessions ports.SessionIssuer, gate *AuthGate, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, gate: gate, logger: logger}
}

// Register creates a regular user and opens a session for it. The role is
// always domain.RoleUser regardless of what the client sends.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*ports.Session, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" || !strings.Contains(email, "@") {
		missing = append(missing, "email")
	}
	if len(password) < minPasswordLength {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	user, err := s.createUser(ctx, name, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return s.openSession(user)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(user)
}

// Me returns the identity of the current caller.
func (s *AuthService) Me(ctx context.Context) (*domain.Identity, error) {
	return s.gate.RequireUser(ctx)
}

// EnsureAdmin creates an admin account unless one already exists with that email.
// An existing non-admin account with the same email is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn().Str("email", email).Msg("bootstrap admin email belongs to a regular user")
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	user, err := s.createUser(ctx, strings.TrimSpace(name), email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("bootstrap admin created")
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) openSession(user *domain.User) (*ports.Session, error) {
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: token, User: user}, nil
}
