package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"garage/db"
	"garage/globals"
	"garage/middleware"
	"garage/models"
	"garage/notify"
	"garage/rdx"
	"garage/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// Handler carries the outbound-mail dispatcher used for password resets.
// Everything else goes through the shared collections.
type Handler struct {
	Dispatcher   *notify.Dispatcher
	ResetBaseURL string
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	SMSConsent bool   `json:"smsConsent"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Email == "" || req.Password == "" || req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if len(req.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password should be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := db.UserCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not create account")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "An account with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	// The profile fields land in a second write. If it fails, wait a moment
	// and try once more; a second failure still lets the signup through so
	// the customer is not stuck on the form with a half-created account.
	profileWarning := ""
	if err := writeProfile(ctx, user.UserID, req); err != nil {
		log.Printf("profile write for %s failed, retrying: %v", user.UserID, err)
		time.Sleep(2 * time.Second)
		if err := writeProfile(ctx, user.UserID, req); err != nil {
			log.Printf("profile write retry for %s failed: %v", user.UserID, err)
			profileWarning = "Account created, but saving your profile details failed. You can update them from your profile page."
		}
	} else {
		user.Name = req.Name
		user.Phone = req.Phone
		user.SMSConsent = req.SMSConsent
	}

	access, refresh, err := h.issueTokens(ctx, &user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Account created but sign-in failed, please log in")
		return
	}

	resp := utils.M{
		"token":        access,
		"refreshToken": refresh,
		"userid":       user.UserID,
		"name":         req.Name,
	}
	if profileWarning != "" {
		resp["warning"] = profileWarning
	}
	utils.SendResponse(w, http.StatusCreated, resp, "Account created", nil)
}

func writeProfile(ctx context.Context, userID string, req registerRequest) error {
	_, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": userID}, bson.M{
		"$set": bson.M{
			"name":       req.Name,
			"phone":      req.Phone,
			"smsConsent": req.SMSConsent,
		},
	})
	return err
}

func (h *Handler) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not sign in")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	access, refresh, err := h.issueTokens(ctx, &user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not sign in")
		return
	}

	utils.SendResponse(w, http.StatusOK, utils.M{
		"token":        access,
		"refreshToken": refresh,
		"userid":       user.UserID,
		"name":         user.Name,
	}, "Signed in", nil)
}

func (h *Handler) logoutHandler(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": uid}, bson.M{
		"$unset": bson.M{"refresh_token": "", "refresh_expiry": ""},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not sign out")
		return
	}
	if err := rdx.RdxHdel("tokki", uid); err != nil {
		log.Printf("failed to drop session mirror for %s: %v", uid, err)
	}
	utils.SendResponse(w, http.StatusOK, nil, "Signed out", nil)
}

func (h *Handler) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	// The access token here is usually expired; only its signature is
	// checked. The refresh token below is what actually grants renewal.
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims, err := middleware.ParseWithoutExpiry(raw)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	uid := claims.UserID
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": uid}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if user.RefreshToken != hashToken(req.RefreshToken) || time.Now().After(user.RefreshExpiry) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
		return
	}

	access, refresh, err := h.issueTokens(ctx, &user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not refresh session")
		return
	}

	utils.SendResponse(w, http.StatusOK, utils.M{
		"token":        access,
		"refreshToken": refresh,
	}, "Session refreshed", nil)
}

func (h *Handler) requestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == nil {
		token := utils.GenerateRandomString(32)
		if err := rdx.RdxSetTTL("pwreset:"+token, user.UserID, resetTokenTTL); err != nil {
			log.Printf("failed to store reset token: %v", err)
		} else if h.Dispatcher != nil {
			link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(h.ResetBaseURL, "/"), token)
			h.Dispatcher.PasswordReset(req.Email, link)
		}
	} else if err != mongo.ErrNoDocuments {
		log.Printf("password reset lookup failed: %v", err)
	}

	// Same response whether or not the account exists.
	utils.SendResponse(w, http.StatusOK, nil, "If that email is registered, a reset link is on its way", nil)
}

func (h *Handler) confirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password should be at least 6 characters")
		return
	}

	uid, err := rdx.RdxGet("pwreset:" + req.Token)
	if err != nil || uid == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Reset link is invalid or has expired")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not reset password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = db.UserCollection.UpdateOne(ctx, bson.M{"userid": uid}, bson.M{
		"$set":   bson.M{"password_hash": string(hash)},
		"$unset": bson.M{"refresh_token": "", "refresh_expiry": ""},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not reset password")
		return
	}
	if err := rdx.RdxDel("pwreset:" + req.Token); err != nil {
		log.Printf("failed to drop reset token: %v", err)
	}

	utils.SendResponse(w, http.StatusOK, nil, "Password updated, please log in", nil)
}

// issueTokens mints the short-lived access JWT and a rotating refresh token,
// persisting only the hash of the latter.
func (h *Handler) issueTokens(ctx context.Context, user *models.User) (access, refresh string, err error) {
	claims := middleware.Claims{
		Name:   user.Name,
		UserID: user.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		return "", "", err
	}

	refresh = utils.GenerateRandomString(32)
	_, err = db.UserCollection.UpdateOne(ctx, bson.M{"userid": user.UserID}, bson.M{
		"$set": bson.M{
			"refresh_token":  hashToken(refresh),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
			"last_login":     time.Now(),
		},
	})
	if err != nil {
		return "", "", err
	}

	if err := rdx.RdxHset("tokki", user.UserID, access); err != nil {
		log.Printf("failed to mirror session for %s: %v", user.UserID, err)
	}
	return access, refresh, nil
}

func hashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
