package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrhub/avr-hub-go/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:                "0123456789abcdef0123456789abcdef",
		JWTAccessTokenExpirySec:  3600,
		JWTRefreshTokenExpirySec: 86400,
	}
}

func TestGenerateAndVerifyTokenPair(t *testing.T) {
	cfg := testConfig()

	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Living Room"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresInSec)

	payload, err := VerifyToken(cfg, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "device-1", payload.Sub)
	assert.Equal(t, "Living Room", payload.DeviceName)
	assert.Equal(t, TokenTypeAccess, payload.Type)

	payload, err = VerifyToken(cfg, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, payload.Type)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Den"})
	require.NoError(t, err)

	other := cfg
	other.JWTSecret = "ffffffffffffffffffffffffffffffff"
	_, err = VerifyToken(other, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyToken_ExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWTAccessTokenExpirySec = -10

	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Den"})
	require.NoError(t, err)

	_, err = VerifyToken(cfg, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := VerifyToken(testConfig(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshAccessToken(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Den"})
	require.NoError(t, err)

	accessToken, expiresIn, err := RefreshAccessToken(cfg, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	payload, err := VerifyToken(cfg, accessToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, payload.Type)
	assert.Equal(t, "device-1", payload.Sub)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Den"})
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(cfg, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenType)
}
