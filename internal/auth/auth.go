package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrTokenInvalid covers every verification failure: bad signature,
// malformed token, expired token. Callers must not learn which.
var ErrTokenInvalid = errors.New("token is invalid")

const (
	// UserTokenTTL is the lifetime of an account holder token.
	UserTokenTTL = 8 * time.Hour

	// AdminTokenTTL is the lifetime of an admin token.
	AdminTokenTTL = 2 * time.Hour
)

// JWTAuth issues and verifies HS256 tokens for a single trust domain.
// The service runs two instances: one with the user secret and one
// with the admin secret, so a token from one domain never verifies
// in the other.
type JWTAuth struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// UserClaims identify an account holder.
type UserClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// AdminClaims carry the admin marker. Admin identity is not tied to
// any account record.
type AdminClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func NewJWTAuth(secret []byte, opts ...Option) *JWTAuth {
	a := &JWTAuth{
		secret:   secret,
		tokenTTL: 8 * time.Hour,
		issuer:   "zapbank",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type Option func(a *JWTAuth)

func WithIssuer(issuer string) Option {
	return func(a *JWTAuth) {
		a.issuer = issuer
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(a *JWTAuth) {
		a.tokenTTL = ttl
	}
}

// CreateUserToken issues a bearer token for the given account.
func (a *JWTAuth) CreateUserToken(userID, login string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	})

	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return tokenString, nil
}

// CreateAdminToken issues a bearer token with the admin marker set.
func (a *JWTAuth) CreateAdminToken() (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	})

	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return tokenString, nil
}

// VerifyUserToken checks signature and expiry and returns the user
// claims. Any failure maps to ErrTokenInvalid.
func (a *JWTAuth) VerifyUserToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	if err := a.parseToken(tokenString, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyAdminToken checks signature and expiry and returns the admin
// claims. The admin marker itself is checked by the caller.
func (a *JWTAuth) VerifyAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	if err := a.parseToken(tokenString, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (a *JWTAuth) parseToken(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
