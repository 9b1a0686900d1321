package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garage/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, uid string, ttl time.Duration, key []byte) string {
	t.Helper()
	claims := Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestParseWithoutExpiryAcceptsExpiredToken(t *testing.T) {
	tok := signToken(t, "u1", -30*time.Minute, globals.JwtSecret)

	// The normal validator refuses it,
	_, err := ValidateJWT(tok)
	require.Error(t, err)

	// but the refresh path can still read who it was minted for.
	claims, err := ParseWithoutExpiry(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParseWithoutExpiryRejectsForgedToken(t *testing.T) {
	tok := signToken(t, "u1", -30*time.Minute, []byte("not-the-real-secret"))
	_, err := ParseWithoutExpiry(tok)
	assert.Error(t, err)
}

func TestParseWithoutExpiryRejectsEmptyToken(t *testing.T) {
	_, err := ParseWithoutExpiry("")
	assert.Error(t, err)
}

func callOptionalAuth(t *testing.T, authHeader string) (int, string) {
	t.Helper()
	var gotUID string
	handler := OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/appointments/guest", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler(rec, req, nil)
	return rec.Code, gotUID
}

func TestOptionalAuthAttachesUserID(t *testing.T) {
	tok := signToken(t, "u42", 15*time.Minute, globals.JwtSecret)
	code, uid := callOptionalAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u42", uid)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	code, uid := callOptionalAuth(t, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, uid)
}

func TestOptionalAuthIgnoresExpiredToken(t *testing.T) {
	tok := signToken(t, "u42", -time.Minute, globals.JwtSecret)
	code, uid := callOptionalAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, uid)
}
