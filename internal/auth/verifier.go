package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken covers every malformed authorization header shape:
	// absent header, missing Bearer prefix, blank token.
	ErrMissingToken = errors.New("token not found")

	// ErrInvalidToken covers structural, signature and expiry failures alike.
	// The causes are deliberately not distinguished to callers.
	ErrInvalidToken = errors.New("expired or invalid token")
)

// Identity is the decoded, validated result of a bearer credential. It lives
// for the duration of one request and is never persisted.
type Identity struct {
	UserID    string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier checks bearer credentials against an HMAC secret. The secret is
// injected once at construction and immutable afterward.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// Verify parses an Authorization header value of the form "Bearer <token>"
// and returns the identity it carries. Numeric iat/exp claims come back as
// calendar timestamps for downstream consumers.
func (v *Verifier) Verify(rawHeader string) (*Identity, error) {
	token := strings.TrimPrefix(rawHeader, "Bearer ")
	if token == rawHeader || strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || len(claims.Roles) == 0 {
		return nil, ErrInvalidToken
	}

	id := &Identity{UserID: claims.Subject, Roles: claims.Roles}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Issue signs a token for the given subject with the configured TTL.
func (v *Verifier) Issue(userID string, roles []string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
