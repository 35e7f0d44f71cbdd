package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"collabhub/config"
	"collabhub/models"
)

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	user := &models.User{ID: 42, Email: "alice@example.com"}
	token, err := GenerateJWTToken(user)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseJWTRejectsBadTokens(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	_, err := ParseJWTToken("not-a-token")
	require.Error(t, err)

	// Signed with a different secret.
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1})
	signed, err := other.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = ParseJWTToken(signed)
	require.Error(t, err)

	// Expired.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseJWTToken(signed)
	require.Error(t, err)
}
