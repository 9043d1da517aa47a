package auth

import (
	"errors"
	"time"

	"workforce-lodging/internal/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "wlp"
	Audience = "user"

	// SessionTTL bounds both the token exp claim and the cookie Max-Age.
	SessionTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is the only error Verify returns. Callers must not be able
// to tell a bad signature from an expired or malformed token.
var ErrInvalidToken = errors.New("invalid session token")

// Manager issues and verifies session tokens. The secret is read once at
// construction and never changes afterwards.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &Manager{secret: []byte(secret), ttl: SessionTTL}, nil
}

/* ===================== ISSUE ===================== */

func (m *Manager) Issue(now time.Time, subjectID string, role identity.Role) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id is required")
	}
	if !role.Valid() {
		return "", errors.New("unknown role")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
		UID:  subjectID,
		Role: string(role),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

/* ===================== VERIFY ===================== */

func (m *Manager) Verify(tokenString string, now time.Time) (identity.Principal, error) {
	if tokenString == "" {
		return identity.Principal{}, ErrInvalidToken
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	if _, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return identity.Principal{}, ErrInvalidToken
	}

	if claims.UID == "" {
		return identity.Principal{}, ErrInvalidToken
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Principal{}, ErrInvalidToken
	}

	return identity.Principal{SubjectID: claims.UID, Role: role}, nil
}
