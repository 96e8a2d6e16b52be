package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

const testIssuer = "https://id.lynkskill.test"

func newTestOIDC(t *testing.T, now time.Time) (*OIDCVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{
		ClientID: "lynkskill",
		Now:      func() time.Time { return now },
	})
	return NewOIDCVerifierFrom(verifier), key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestOIDCVerifierAcceptsValidToken(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	verifier, key := newTestOIDC(t, now)

	token := signIDToken(t, key, jwt.MapClaims{
		"iss":             testIssuer,
		"aud":             "lynkskill",
		"sub":             "user_oidc",
		"iat":             now.Unix(),
		"exp":             now.Add(time.Hour).Unix(),
		"email":           "Owner@Acme.io",
		"email_verified":  true,
		"name":            "Owner",
		"public_metadata": map[string]any{"role": "COMPANY"},
	})

	identity, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user_oidc", identity.ExternalID)
	require.Equal(t, "owner@acme.io", identity.Email)
	require.Equal(t, models.UserRoleCompany, identity.Role)
}

func TestOIDCVerifierRejectsInvalidTokens(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	verifier, key := newTestOIDC(t, now)

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss": testIssuer,
			"aud": "lynkskill",
			"sub": "user_oidc",
			"exp": now.Add(time.Hour).Unix(),
		}
	}

	wrongAudience := base()
	wrongAudience["aud"] = "someone-else"
	expired := base()
	expired["exp"] = now.Add(-time.Minute).Unix()
	unverified := base()
	unverified["email_verified"] = false

	for name, claims := range map[string]jwt.MapClaims{
		"audience":   wrongAudience,
		"expired":    expired,
		"unverified": unverified,
	} {
		_, err := verifier.Verify(context.Background(), signIDToken(t, key, claims))
		require.ErrorIs(t, err, ErrInvalidToken, name)
	}

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), signIDToken(t, otherKey, base()))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewOIDCVerifierValidatesConfig(t *testing.T) {
	_, err := NewOIDCVerifier(context.Background(), OIDCConfig{})
	require.Error(t, err)
	_, err = NewOIDCVerifier(context.Background(), OIDCConfig{Issuer: testIssuer})
	require.Error(t, err)
}
