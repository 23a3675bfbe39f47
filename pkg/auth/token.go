package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Option customizes a Signer or Verifier.
type Option func(*tokenOptions)

type tokenOptions struct {
	now func() time.Time
}

// WithClock overrides the time source. Used by tests for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *tokenOptions) {
		o.now = now
	}
}

func buildOptions(opts []Option) tokenOptions {
	o := tokenOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Signer issues tokens with the server's Ed25519 private key.
type Signer struct {
	key ed25519.PrivateKey
	now func() time.Time
}

// LoadSigner parses a PKCS#8 PEM encoded Ed25519 private key.
func LoadSigner(privatePEM []byte, opts ...Option) (*Signer, error) {
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrCryptoConfig, err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not Ed25519", ErrCryptoConfig)
	}
	o := buildOptions(opts)
	return &Signer{key: key, now: o.now}, nil
}

// Issue signs a token for identity valid for TokenTTL.
func (s *Signer) Issue(identity Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:      identity.ID,
		WorkspaceID: identity.WorkspaceID,
		FullName:    identity.FullName,
		Email:       identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verifier checks tokens against the server's Ed25519 public key.
type Verifier struct {
	key    ed25519.PublicKey
	parser *jwt.Parser
}

// LoadVerifier parses a PKIX PEM encoded Ed25519 public key.
func LoadVerifier(publicPEM []byte, opts ...Option) (*Verifier, error) {
	parsed, err := jwt.ParseEdPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrCryptoConfig, err)
	}
	key, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not Ed25519", ErrCryptoConfig)
	}
	o := buildOptions(opts)
	return &Verifier{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(o.now),
		),
	}, nil
}

// Verify validates token and returns the identity it was issued for.
func (v *Verifier) Verify(token string) (Identity, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return Identity{}, fmt.Errorf("%w: subject does not match user id", ErrInvalidToken)
	}
	return claims.Identity(), nil
}

// KeyPair holds the signer and verifier built from one key pair.
// It is read-only after LoadKeyPair and shared by all requests.
type KeyPair struct {
	Signer   *Signer
	Verifier *Verifier
}

// LoadKeyPair loads both halves and checks that they belong together.
func LoadKeyPair(privatePEM, publicPEM []byte, opts ...Option) (*KeyPair, error) {
	signer, err := LoadSigner(privatePEM, opts...)
	if err != nil {
		return nil, err
	}
	verifier, err := LoadVerifier(publicPEM, opts...)
	if err != nil {
		return nil, err
	}
	if !verifier.key.Equal(signer.key.Public()) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrCryptoConfig)
	}
	return &KeyPair{Signer: signer, Verifier: verifier}, nil
}
