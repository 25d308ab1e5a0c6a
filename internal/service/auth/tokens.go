package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-backend/internal/domain"
	refreshrepo "storefront-backend/internal/repository/refreshtoken"
)

// tokenManager persists opaque refresh tokens. Token values are 32 random
// bytes, base64url-encoded; on the unlikely collision the insert is retried.
type tokenManager struct {
	repo refreshrepo.Repository
}

func newTokenManager(repo refreshrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

func (m *tokenManager) Issue(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		token := base64.RawURLEncoding.EncodeToString(raw)
		err := m.repo.Create(ctx, refreshrepo.Token{
			Token:     token,
			UserID:    userID,
			ExpiresAt: time.Now().Add(ttl),
		})
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", errors.New("could not allocate a unique refresh token")
}

// Validate returns the owning user id when the token exists and has not
// expired. Expired tokens are removed eagerly.
func (m *tokenManager) Validate(ctx context.Context, token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	t, err := m.repo.Get(ctx, token)
	if err != nil {
		return 0, false
	}
	if time.Now().After(t.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return 0, false
	}
	return t.UserID, true
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

// jwtSigner issues and parses HS256 access tokens.
type jwtSigner struct {
	secret []byte
	ttl    time.Duration
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func newJWTSigner(secret string, ttl time.Duration) *jwtSigner {
	return &jwtSigner{secret: []byte(secret), ttl: ttl}
}

func (s *jwtSigner) Sign(userID int64, role domain.Role) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtSigner) Parse(token string) (int64, domain.Role, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return userID, role, nil
}
