package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateToken(cfg, 7, "ops@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.AccountID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := GenerateToken(testJWTConfig(), 1, "a@b.c", domain.RoleUser)
	require.NoError(t, err)

	other := &config.JWTConfig{Secret: "different", Expiry: time.Hour, Issuer: "test"}
	_, err = ParseToken(other, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s", Expiry: -time.Minute, Issuer: "test"}
	tok, err := GenerateToken(cfg, 1, "a@b.c", domain.RoleUser)
	require.NoError(t, err)

	_, err = ParseToken(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
