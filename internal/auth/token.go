package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"quizdeck-service/internal/domain"
)

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID    int64
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// RevocationList is checked before any token is honored. Revoked ids only
// need to be remembered until the token would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed bearer tokens carrying the
// user id, role, and a unique token id for revocation.
type TokenManager struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationList
	now         func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, revocations RevocationList) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue creates a signed token for the user.
func (m *TokenManager) Issue(userID int64, role domain.Role) (string, error) {
	now := m.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string, including the revocation
// list check.
func (m *TokenManager) Verify(ctx context.Context, tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, domain.ErrTokenInvalid
	}
	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || tc.Subject == "" || tc.ExpiresAt == nil {
		return Claims{}, domain.ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil {
		return Claims{}, domain.ErrTokenInvalid
	}
	role := domain.Role(tc.Role)
	if !role.Valid() {
		return Claims{}, domain.ErrTokenInvalid
	}

	if tc.ID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, tc.ID)
		if err != nil {
			return Claims{}, err
		}
		if revoked {
			return Claims{}, domain.ErrTokenRevoked
		}
	}

	return Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// Revoke puts the token id on the revocation list until its natural expiry.
func (m *TokenManager) Revoke(ctx context.Context, claims Claims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.TokenID, ttl)
}
