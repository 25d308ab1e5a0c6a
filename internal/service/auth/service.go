package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domain"
	refreshrepo "storefront-backend/internal/repository/refreshtoken"
	userrepo "storefront-backend/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match or
	// the account is inactive.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles signup/login and token issuing. Access tokens are signed
// JWTs carrying the user id and role; refresh tokens are opaque strings
// persisted server-side.
type Service struct {
	repo        userRepo
	tokens      *tokenManager
	signer      *jwtSigner
	refreshTTL  time.Duration
	passwordMin int
}

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// New creates a Service with sane defaults.
func New(repo userrepo.Repository, refreshTokens refreshrepo.Repository, jwtSecret string, accessTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(refreshTokens),
		signer:      newJWTSigner(jwtSecret, accessTTL),
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 6,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// Session is a successful login/refresh result.
type Session struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
}

// Register creates a new account. The role defaults to client; staff/admin
// roles are only honored when grantedBy is an admin.
func (s *Service) Register(ctx context.Context, in RegisterInput, grantedBy domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 || len(name) > 100 {
		return nil, domain.NewValidationError("name", "must be between 2 and 100 characters")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("email", "must be a valid email")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, domain.NewValidationError("password", "too short")
	}

	role := domain.RoleClient
	if in.Role != "" {
		parsed, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.NewValidationError("role", "must be client, staff or admin")
		}
		if parsed != domain.RoleClient && grantedBy != domain.RoleAdmin {
			return nil, domain.NewValidationError("role", "only admins may assign elevated roles")
		}
		role = parsed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	})
}

// Login validates credentials and returns a session with fresh tokens.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(ctx, u)
}

// Refresh exchanges a valid refresh token for a new session and consumes the
// old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, ok := s.tokens.Validate(ctx, refreshToken)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInvalidToken
	}
	_ = s.tokens.Revoke(ctx, refreshToken)
	return s.session(ctx, u)
}

// Identify parses a bearer access token into the caller's identity.
func (s *Service) Identify(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, role, err := s.signer.Parse(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.Active || u.Role != role {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.signer.ttl.Seconds())
}

func (s *Service) session(ctx context.Context, u *domain.User) (*Session, error) {
	access, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(ctx, u.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTLSeconds(),
	}, nil
}
