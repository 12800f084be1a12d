package handler_test

import (
	"net/http"
	"testing"

	"github.com/coachlog/api/internal/handler"
	"github.com/coachlog/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusOK)

	resp := decode[handler.TokenResponse](t, w)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "magnus", resp.User.Username)
	require.NotContains(t, w.Body.String(), "password", "hash must never serialize")

	// Token works against an authenticated endpoint.
	w = doJSON(t, r, http.MethodGet, "/api/user", resp.AccessToken, nil)
	mustStatus(t, w, http.StatusOK)
	me := decode[model.User](t, w)
	require.Equal(t, resp.User.ID, me.ID)

	// Duplicate username is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "other",
	})
	mustStatus(t, w, http.StatusBadRequest)

	// Correct credentials sign in, wrong password does not.
	w = doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"username": "magnus",
		"password": "wrong",
	})
	mustStatus(t, w, http.StatusUnauthorized)
}

// Duplicate detection rides on the unique index, not a pre-check, so a
// register racing another register still maps to 400 rather than 500.
func TestRegisterDuplicateUsernameMapsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusBadRequest)
	require.Contains(t, w.Body.String(), "Username already exists")

	var count int64
	db.Model(&model.User{}).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusOK)
	first := decode[handler.TokenResponse](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", map[string]string{
		"refreshToken": first.RefreshToken,
	})
	mustStatus(t, w, http.StatusOK)
	second := decode[handler.TokenResponse](t, w)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old token was revoked by the rotation.
	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", map[string]string{
		"refreshToken": first.RefreshToken,
	})
	mustStatus(t, w, http.StatusUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "magnus",
		"password": "chess123",
	})
	mustStatus(t, w, http.StatusOK)
	resp := decode[handler.TokenResponse](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/logout", "", map[string]string{
		"refreshToken": resp.RefreshToken,
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", map[string]string{
		"refreshToken": resp.RefreshToken,
	})
	mustStatus(t, w, http.StatusUnauthorized)
}

func TestInvalidTokenRejected(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/user", "garbage-token", nil)
	mustStatus(t, w, http.StatusUnauthorized)
	require.Equal(t, "Not authenticated", w.Body.String())
}
