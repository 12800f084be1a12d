package auth_test

import (
	"testing"

	"github.com/coachlog/api/internal/auth"
	"github.com/coachlog/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: 7, Username: "magnus"}

	token, err := auth.GenerateAccessToken(user, "secret")
	require.NoError(t, err)

	claims, err := auth.ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "magnus", claims.Username)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	user := &model.User{ID: 7, Username: "magnus"}

	token, err := auth.GenerateAccessToken(user, "secret")
	require.NoError(t, err)

	_, err = auth.ValidateAccessToken(token, "other-secret")
	require.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	a, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.NotEmpty(t, a)
}
