package auth

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.registerHandler(w, r)
}
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.loginHandler(w, r)
}
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.logoutHandler(w, r)
}
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.refreshTokenHandler(w, r)
}
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.requestPasswordResetHandler(w, r)
}
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.confirmPasswordResetHandler(w, r)
}
