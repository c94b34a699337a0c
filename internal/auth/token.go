package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the session token lifetime. The cookie's Max-Age is derived
// from it, so token expiry and cookie expiry always agree.
const TokenTTL = 10 * time.Minute

// issuer is the iss claim stamped into every session token.
const issuer = "tgrafy"

// TokenService issues and validates the signed session tokens delivered as
// the tg_access_token cookie.
//
// Tokens are HS256-signed JWTs, stateless by design: no session store, no
// revocation list. A token is valid until its exp claim, then the user logs
// in again.
type TokenService struct {
	signingKey []byte
}

// NewTokenService creates a TokenService with the given signing key.
// The key comes from the secret bundle, never from plain config.
func NewTokenService(signingKey string) (*TokenService, error) {
	if len(signingKey) < 16 {
		return nil, errors.New("auth: JWT signing key must be at least 16 characters")
	}
	return &TokenService{signingKey: []byte(signingKey)}, nil
}

// sessionClaims is the JWT payload. The subject carries the GitHub login of
// the authenticated user.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given login.
//
// Claims: iss=tgrafy, sub=<login>, iat=now, exp=now+10m.
// Algorithm: HS256, fixed — Validate rejects anything else.
func (s *TokenService) Issue(login string) (string, error) {
	now := time.Now()

	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token string, returning the login
// from its subject claim.
//
// Checks performed: HS256 signature, expiry, and issuer. Restricting the
// accepted methods with jwt.WithValidMethods blocks algorithm-confusion
// tokens (e.g. alg=none).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: session token expired")
		}
		return "", fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid session token claims")
	}
	if c.Subject == "" {
		return "", errors.New("auth: session token has no subject")
	}
	return c.Subject, nil
}
