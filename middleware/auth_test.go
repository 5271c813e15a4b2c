package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"ventro-backend/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func protectedEndpoint(t *testing.T, called *bool, want auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true

		claims, ok := auth.Identity(r.Context())
		require.True(t, ok)
		assert.Equal(t, want.UserID, claims.UserID)
		assert.Equal(t, want.Role, claims.Role)
		assert.Equal(t, want.Email, claims.Email)

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatePassesIdentity(t *testing.T) {
	claims := auth.Claims{UserID: 42, Role: auth.RoleAttendee, Name: "Asha", Email: "asha@example.com"}
	token, err := auth.NewToken(testSecret, claims, time.Minute)
	require.NoError(t, err)

	called := false
	handler := Authenticate(testSecret)(protectedEndpoint(t, &called, claims))

	req := httptest.NewRequest(http.MethodGet, "/v1/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	called := false
	handler := Authenticate(testSecret)(protectedEndpoint(t, &called, auth.Claims{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ticket", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	token, err := auth.NewToken("some-other-secret", auth.Claims{UserID: 42, Role: auth.RoleAttendee}, time.Minute)
	require.NoError(t, err)

	called := false
	handler := Authenticate(testSecret)(protectedEndpoint(t, &called, auth.Claims{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	token, err := auth.NewToken(testSecret, auth.Claims{UserID: 42, Role: auth.RoleAttendee}, -time.Minute)
	require.NoError(t, err)

	called := false
	handler := Authenticate(testSecret)(protectedEndpoint(t, &called, auth.Claims{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ticket", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
