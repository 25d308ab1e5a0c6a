package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domain"
	refreshrepo "storefront-backend/internal/repository/refreshtoken"
)

type stubUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
	nextID  int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*domain.User{}, byID: map[int64]*domain.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.nextID++
	u.ID = s.nextID
	u.Active = true
	s.byEmail[u.Email] = &u
	s.byID[u.ID] = &u
	return &u, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type stubTokenRepo struct {
	tokens map[string]refreshrepo.Token
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: map[string]refreshrepo.Token{}}
}

func (s *stubTokenRepo) Create(_ context.Context, t refreshrepo.Token) error {
	if _, ok := s.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *stubTokenRepo) Get(_ context.Context, token string) (*refreshrepo.Token, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *stubTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := s.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tokens, token)
	return nil
}

func newTestService(users *stubUserRepo, tokens *stubTokenRepo) *Service {
	return New(users, tokens, "test-secret", time.Hour)
}

func registerClient(t *testing.T, svc *Service, email, password string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: password,
	}, domain.RoleClient)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func TestRegister_DefaultsToClientRole(t *testing.T) {
	svc := newTestService(newStubUserRepo(), newStubTokenRepo())

	u := registerClient(t, svc, "User@Example.com", "secret1")
	if u.Role != domain.RoleClient {
		t.Fatalf("expected client role, got %s", u.Role)
	}
	if u.Email != "user@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("password not hashed with bcrypt: %v", err)
	}
}

func TestRegister_ElevatedRolesNeedAdmin(t *testing.T) {
	svc := newTestService(newStubUserRepo(), newStubTokenRepo())
	ctx := context.Background()

	in := RegisterInput{Name: "Staff Member", Email: "staff@example.com", Password: "secret1", Role: "staff"}

	if _, err := svc.Register(ctx, in, domain.RoleClient); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for non-admin grant, got %v", err)
	}

	u, err := svc.Register(ctx, in, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("admin grant: %v", err)
	}
	if u.Role != domain.RoleStaff {
		t.Fatalf("expected staff role, got %s", u.Role)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newStubUserRepo(), newStubTokenRepo())
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "x", Email: "a@b.com", Password: "secret1"},
		{Name: "Valid Name", Email: "not-an-email", Password: "secret1"},
		{Name: "Valid Name", Email: "a@b.com", Password: "short"},
		{Name: "Valid Name", Email: "a@b.com", Password: "secret1", Role: "superuser"},
	}
	for i, in := range cases {
		if _, err := svc.Register(ctx, in, domain.RoleClient); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newTestService(users, tokens)

	registerClient(t, svc, "user@example.com", "secret1")

	session, err := svc.Login(context.Background(), "USER@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if session.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", session.ExpiresIn)
	}
	if _, ok := tokens.tokens[session.RefreshToken]; !ok {
		t.Fatal("refresh token not persisted")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(newStubUserRepo(), newStubTokenRepo())
	registerClient(t, svc, "user@example.com", "secret1")

	if _, err := svc.Login(context.Background(), "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestService(users, newStubTokenRepo())

	u := registerClient(t, svc, "user@example.com", "secret1")
	users.byID[u.ID].Active = false
	users.byEmail[u.Email].Active = false

	if _, err := svc.Login(context.Background(), "user@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	tokens := newStubTokenRepo()
	svc := newTestService(newStubUserRepo(), tokens)
	ctx := context.Background()

	registerClient(t, svc, "user@example.com", "secret1")
	session, err := svc.Login(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == session.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if _, ok := tokens.tokens[session.RefreshToken]; ok {
		t.Fatal("old refresh token must be consumed")
	}

	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestRefresh_ExpiredToken(t *testing.T) {
	tokens := newStubTokenRepo()
	svc := newTestService(newStubUserRepo(), tokens)
	ctx := context.Background()

	u := registerClient(t, svc, "user@example.com", "secret1")
	tokens.tokens["stale"] = refreshrepo.Token{Token: "stale", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}

	if _, err := svc.Refresh(ctx, "stale"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatal("expired token should be removed")
	}
}

func TestIdentify_RoundTrip(t *testing.T) {
	svc := newTestService(newStubUserRepo(), newStubTokenRepo())
	ctx := context.Background()

	u := registerClient(t, svc, "user@example.com", "secret1")
	session, err := svc.Login(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := svc.Identify(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if got.ID != u.ID || got.Role != domain.RoleClient {
		t.Fatalf("unexpected identity %+v", got)
	}

	if _, err := svc.Identify(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIdentify_RejectsForeignSignature(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestService(users, newStubTokenRepo())
	other := New(users, newStubTokenRepo(), "other-secret", time.Hour)
	ctx := context.Background()

	registerClient(t, svc, "user@example.com", "secret1")
	session, err := other.Login(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Identify(ctx, session.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
