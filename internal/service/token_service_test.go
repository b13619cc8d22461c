package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billaudit/internal/config"
	"billaudit/internal/domain"
	"billaudit/internal/service"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		Secret:      "test-secret-key-for-testing",
		Issuer:      "billaudit-test",
		TokenExpiry: time.Hour,
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := service.NewTokenService(testAuthConfig())

	token, expiresAt, err := svc.Issue("ingest-worker")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ingest-worker", claims.Subject)
	assert.Equal(t, "billaudit-test", claims.Issuer)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, _, err := service.NewTokenService(testAuthConfig()).Issue("svc")
	require.NoError(t, err)

	other := testAuthConfig()
	other.Secret = "a-different-secret"
	_, err = service.NewTokenService(other).Validate(token)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenExpiry = -time.Minute
	svc := service.NewTokenService(cfg)

	token, _, err := svc.Issue("svc")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsWrongAudience(t *testing.T) {
	cfg := testAuthConfig()
	claims := jwt.RegisteredClaims{
		Subject:   "svc",
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{"refresh"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = service.NewTokenService(cfg).Validate(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RequiresSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Secret = ""

	_, _, err := service.NewTokenService(cfg).Issue("svc")
	assert.Error(t, err)
}
