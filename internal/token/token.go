package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired indicates the token's validity window has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed indicates the token failed signature or structural checks.
	ErrMalformed = errors.New("token malformed")
)

// Claims is the identity snapshot carried by a session token. Role is copied
// at issuance; a later role change takes effect only on the next login.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer creates and validates signed session tokens. The clock is injectable
// so expiry behaviour can be tested deterministically.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source used for issuance and validation.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer constructs a token issuer with the process-wide signing secret.
// Changing the secret invalidates every outstanding token.
func NewIssuer(secret string, ttl time.Duration, opts ...Option) *Issuer {
	issuer := &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}

	return issuer
}

// Issue signs a token for the given identity, valid for the configured TTL.
func (i *Issuer) Issue(userID uint, email, role string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse validates a token string and returns its claims. The two failure
// kinds are distinguishable for logging, but both must map to an
// unauthenticated outcome at the HTTP boundary.
func (i *Issuer) Parse(tokenString string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}

	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	return claims, nil
}
