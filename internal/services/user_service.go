package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/mockinterview/internal/models"
	pgrepo "github.com/yoockh/mockinterview/internal/repositories/postgres"
	"github.com/yoockh/mockinterview/internal/utils"
)

// Identity names the caller. The zero value means "no identity supplied".
type Identity struct {
	Email string
	Name  string
}

func (i Identity) IsZero() bool { return strings.TrimSpace(i.Email) == "" }

type AnonymousSession struct {
	Token     string    `json:"token"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserService interface {
	// Resolve returns the user for who, creating it on first use. An empty identity
	// resolves to the configured default user.
	Resolve(ctx context.Context, who Identity) (*models.User, error)
	StartAnonymous(ctx context.Context) (*AnonymousSession, error)
}

type userService struct {
	users       pgrepo.UserRepository
	defaultUser Identity
	tokens      *utils.TokenIssuer
	now         func() time.Time
}

// NewUserService accepts a nil token issuer; anonymous sessions are then unavailable.
func NewUserService(users pgrepo.UserRepository, defaultUser Identity, tokens *utils.TokenIssuer) UserService {
	return &userService{
		users:       users,
		defaultUser: defaultUser,
		tokens:      tokens,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) Resolve(ctx context.Context, who Identity) (*models.User, error) {
	const op = "UserService.Resolve"

	if who.IsZero() {
		who = s.defaultUser
	}
	email := strings.ToLower(strings.TrimSpace(who.Email))
	if email == "" {
		return nil, utils.E(utils.CodeInternal, op, "default user email is not configured", nil)
	}

	u, err := s.users.FirstOrCreateByEmail(ctx, email, strings.TrimSpace(who.Name))
	if err != nil {
		return nil, utils.Wrap(op, "failed to resolve user", err)
	}
	return u, nil
}

func (s *userService) StartAnonymous(ctx context.Context) (*AnonymousSession, error) {
	const op = "UserService.StartAnonymous"

	if s.tokens == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "session tokens are not configured", nil)
	}

	u := &models.User{
		Email: "anon-" + uuid.NewString() + "@anonymous.local",
		Name:  "Anonymous",
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, utils.Wrap(op, "failed to create anonymous user", err)
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Email, u.Name, s.now())
	if err != nil {
		return nil, utils.Wrap(op, "failed to sign session token", err)
	}
	return &AnonymousSession{Token: token, UserID: u.ID, Email: u.Email, ExpiresAt: exp}, nil
}
