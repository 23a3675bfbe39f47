package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{ID: 1, WorkspaceID: 1, FullName: "Alice Chen", Email: "alice@acme.org"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenRoundTrip(t *testing.T) {
	privPEM, pubPEM := generateKeyPEMs(t)
	keys, err := LoadKeyPair(privPEM, pubPEM)
	require.NoError(t, err)

	identities := []Identity{
		alice,
		{ID: 42, WorkspaceID: 7, FullName: "", Email: "bob@acme.org"},
		{ID: 9000000000, WorkspaceID: 3, FullName: "名前", Email: "x@y.z"},
	}
	for _, id := range identities {
		token, err := keys.Signer.Issue(id)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(token, "."))

		got, err := keys.Verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestIssuedClaims(t *testing.T) {
	privPEM, pubPEM := generateKeyPEMs(t)
	issuedAt := time.Unix(1_700_000_000, 0)
	keys, err := LoadKeyPair(privPEM, pubPEM, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := keys.Signer.Issue(alice)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{Audience}, claims.Audience)
	assert.Equal(t, "1", claims.Subject)
	assert.True(t, issuedAt.Equal(claims.IssuedAt.Time))
	assert.True(t, issuedAt.Add(TokenTTL).Equal(claims.ExpiresAt.Time))
	assert.Equal(t, alice, claims.Identity())
}

func TestVerifyExpiryBoundary(t *testing.T) {
	privPEM, pubPEM := generateKeyPEMs(t)
	issuedAt := time.Unix(1_700_000_000, 0)

	signer, err := LoadSigner(privPEM, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)
	token, err := signer.Issue(alice)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{name: "at issue", at: issuedAt},
		{name: "one second before expiry", at: issuedAt.Add(TokenTTL - time.Second)},
		{name: "exactly at expiry", at: issuedAt.Add(TokenTTL), wantErr: ErrExpiredToken},
		{name: "after expiry", at: issuedAt.Add(TokenTTL + time.Hour), wantErr: ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, err := LoadVerifier(pubPEM, WithClock(fixedClock(tt.at)))
			require.NoError(t, err)

			got, err := verifier.Verify(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Identity{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice, got)
		})
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	privPEM, pubPEM := generateKeyPEMs(t)
	otherPriv, _ := generateKeyPEMs(t)

	signer, err := LoadSigner(privPEM)
	require.NoError(t, err)
	verifier, err := LoadVerifier(pubPEM)
	require.NoError(t, err)
	parsedKey, err := jwt.ParseEdPrivateKeyFromPEM(privPEM)
	require.NoError(t, err)

	signWith := func(claims Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(parsedKey)
		require.NoError(t, err)
		return token
	}
	baseClaims := func() Claims {
		now := time.Now()
		return Claims{
			UserID: alice.ID, WorkspaceID: alice.WorkspaceID, FullName: alice.FullName, Email: alice.Email,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    Issuer,
				Audience:  jwt.ClaimStrings{Audience},
				Subject:   "1",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	otherSigner, err := LoadSigner(otherPriv)
	require.NoError(t, err)
	wrongKey, err := otherSigner.Issue(alice)
	require.NoError(t, err)

	good, err := signer.Issue(alice)
	require.NoError(t, err)
	parts := strings.Split(good, ".")

	wrongIssuer := baseClaims()
	wrongIssuer.Issuer = "other-server"
	wrongAudience := baseClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other-client"}
	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil
	wrongSubject := baseClaims()
	wrongSubject.Subject = "2"

	hsToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"signed by another key": wrongKey,
		"wrong issuer":          signWith(wrongIssuer),
		"wrong audience":        signWith(wrongAudience),
		"missing expiry":        signWith(noExpiry),
		"subject mismatch":      signWith(wrongSubject),
		"hmac algorithm":        hsToken,
		"tampered payload":      parts[0] + "." + parts[1] + "x." + parts[2],
		"garbage":               "not-a-token",
		"empty":                 "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.NotErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestLoadKeys_CryptoConfigErrors(t *testing.T) {
	privPEM, pubPEM := generateKeyPEMs(t)
	otherPriv, _ := generateKeyPEMs(t)
	ecPriv, ecPub := generateECDSAPEMs(t)

	t.Run("garbage private key", func(t *testing.T) {
		_, err := LoadSigner([]byte("not a pem"))
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("garbage public key", func(t *testing.T) {
		_, err := LoadVerifier([]byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"))
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("ecdsa private key", func(t *testing.T) {
		_, err := LoadSigner(ecPriv)
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("ecdsa public key", func(t *testing.T) {
		_, err := LoadVerifier(ecPub)
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("public key in private slot", func(t *testing.T) {
		_, err := LoadSigner(pubPEM)
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("mismatched pair", func(t *testing.T) {
		_, err := LoadKeyPair(otherPriv, pubPEM)
		assert.ErrorIs(t, err, ErrCryptoConfig)
	})

	t.Run("matching pair", func(t *testing.T) {
		_, err := LoadKeyPair(privPEM, pubPEM)
		assert.NoError(t, err)
	})
}
