package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garage/globals"
	"garage/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expiredAccessToken(t *testing.T, uid string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return tok
}

func TestRefreshRejectsMissingToken(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh", nil)
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// An expired access token must clear the auth step; the handler then asks
// for the refresh token from the body before anything else.
func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+expiredAccessToken(t, "u1"))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Refresh token required")
}
