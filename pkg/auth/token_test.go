package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimall/medimall-backend/pkg/config"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "medimall"}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, map[string]any{
		"email": "u@x.com",
		"name":  "Una",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", claims.Email)
	assert.Equal(t, "Una", claims.Payload["name"])
	assert.Equal(t, "medimall", claims.Payload["iss"])

	exp, err := claims.Payload.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(TokenTTL), exp.Time, time.Second)
}

func TestMintIgnoresCallerRegisteredClaims(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()
	farFuture := now.Add(365 * 24 * time.Hour).Unix()

	token, err := MintAccessToken(cfg, now, map[string]any{"email": "u@x.com", "exp": farFuture, "iss": "evil"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	exp, err := claims.Payload.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(TokenTTL), exp.Time, time.Second)
	assert.Equal(t, "medimall", claims.Payload["iss"])
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-9*time.Hour), map[string]any{"email": "u@x.com"})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), map[string]any{"email": "u@x.com"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := strings.Join([]string{parts[0], parts[1], string(sig)}, ".")

	_, err = ParseAccessToken(cfg, tampered)
	require.Error(t, err)

	_, err = ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: "medimall"}, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	token, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "someone-else"}, time.Now(), map[string]any{"email": "u@x.com"})
	require.NoError(t, err)

	_, err = ParseAccessToken(testConfig(), token)
	require.Error(t, err)
}

func TestMintRequiresSecret(t *testing.T) {
	_, err := MintAccessToken(config.JWTConfig{}, time.Now(), map[string]any{"email": "u@x.com"})
	require.Error(t, err)
}
