package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"garage/globals"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	admins map[string]bool
	err    error
}

func (f *fakeChecker) IsAdmin(_ context.Context, uid string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[uid], nil
}

func callRequire(t *testing.T, checker Checker, uid string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	handler := Require(checker, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
	if uid != "" {
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, uid))
	}
	rec := httptest.NewRecorder()
	handler(rec, req, nil)
	return rec, called
}

func TestRequireAllowsAdmin(t *testing.T) {
	checker := &fakeChecker{admins: map[string]bool{"u1": true}}
	rec, called := callRequire(t, checker, "u1")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRejectsNonAdmin(t *testing.T) {
	checker := &fakeChecker{admins: map[string]bool{}}
	rec, called := callRequire(t, checker, "u2")
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin privileges")
}

func TestRequireRejectsAnonymous(t *testing.T) {
	checker := &fakeChecker{admins: map[string]bool{"u1": true}}
	rec, called := callRequire(t, checker, "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireFailsClosedOnCheckerError(t *testing.T) {
	checker := &fakeChecker{err: errors.New("store down")}
	rec, called := callRequire(t, checker, "u1")
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
