package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no credential was presented.
	ErrNoToken = errors.New("no token provided")
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrUnknownUser is returned when the token subject no longer exists.
	ErrUnknownUser = errors.New("token subject not found")
)

// Identity is the resolved subject of a verified credential. It is the
// sole source of sender identity for everything a connection does.
type Identity struct {
	UserID string
	Name   string
}

// Resolver maps a verified token subject to a live user record. The
// display name comes from the record, not from token claims.
type Resolver interface {
	LookupUser(id string) (displayName string, err error)
}

// Claims are the JWT claims carried by EduSphere session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Config holds token signing configuration.
type Config struct {
	SecretKey     string
	Issuer        string
	TokenDuration time.Duration
}

// Authenticator verifies session tokens and resolves their subjects.
type Authenticator struct {
	config   Config
	resolver Resolver
}

// NewAuthenticator creates an Authenticator with the given configuration.
func NewAuthenticator(config Config, resolver Resolver) *Authenticator {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	return &Authenticator{config: config, resolver: resolver}
}

// Mint signs a session token for the given user. Used by the dev CLI
// and by the surrounding auth service.
func (a *Authenticator) Mint(userID, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// Verify checks signature and expiry, then resolves the subject against
// the user store. Any failure rejects the connection attempt.
func (a *Authenticator) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	name, err := a.resolver.LookupUser(claims.UserID)
	if err != nil {
		return nil, ErrUnknownUser
	}

	return &Identity{UserID: claims.UserID, Name: name}, nil
}
