package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim of every token this server signs.
	Issuer = "chat-server"
	// Audience is the only accepted aud claim.
	Audience = "chat-server"
	// TokenTTL is the lifetime of an issued token.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrMalformedHash is returned when a stored password hash cannot be decoded.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrCryptoConfig is returned when key material is unusable.
	ErrCryptoConfig = errors.New("invalid key configuration")
	// ErrInvalidToken covers bad signatures, issuer or audience mismatch and bad format.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token is at or past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the public view of a user. It never carries the password hash.
type Identity struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"ws_id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
}

// Claims is the JWT payload: the identity fields plus the registered claims.
type Claims struct {
	UserID      int64  `json:"id"`
	WorkspaceID int64  `json:"ws_id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

// Identity extracts the embedded identity.
func (c *Claims) Identity() Identity {
	return Identity{
		ID:          c.UserID,
		WorkspaceID: c.WorkspaceID,
		FullName:    c.FullName,
		Email:       c.Email,
	}
}
