package appointments

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"garage/db"
	"garage/middleware"
	"garage/models"
	"garage/notify"
	"garage/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Renderer turns a record into a markup fragment for the admin list.
type Renderer interface {
	Render(appt models.Appointment) string
}

// Handler exposes the lifecycle manager over HTTP.
type Handler struct {
	Mgr      *Manager
	Intents  *notify.Intents
	Renderer Renderer
}

func NewHandler(mgr *Manager, intents *notify.Intents, renderer Renderer) *Handler {
	return &Handler{Mgr: mgr, Intents: intents, Renderer: renderer}
}

// List returns the mirror, optionally filtered by ?filter=pending|approved|denied.
// ?refresh=1 forces a reload from the store first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.Mgr.Loaded() || r.URL.Query().Get("refresh") == "1" {
		if err := h.Mgr.Load(r.Context()); err != nil {
			log.Println("Error loading appointments:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Error loading appointments. Please try again.")
			return
		}
	}

	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = "all"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"appointments": h.Mgr.ApplyFilter(filter),
		"stats":        h.Mgr.Stats(),
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, h.Mgr.Stats())
}

// Approve handles PUT /api/admin/appointments/:id/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input struct {
		DropoffDate string `json:"dropoffDate"`
		DropoffTime string `json:"dropoffTime"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&input)
	}

	appt, err := h.Mgr.Approve(r.Context(), ps.ByName("id"), input.DropoffDate, input.DropoffTime)
	if err != nil {
		h.respondLifecycleError(w, "approving", err)
		return
	}

	resp := utils.M{
		"appointment": appt,
		"smsText":     h.Intents.ApprovalSMS(appt),
	}
	if h.Renderer != nil {
		resp["html"] = h.Renderer.Render(appt)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Deny handles PUT /api/admin/appointments/:id/deny.
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.Mgr.Deny(r.Context(), ps.ByName("id"))
	if err != nil {
		h.respondLifecycleError(w, "denying", err)
		return
	}

	resp := utils.M{
		"appointment": appt,
		"smsText":     h.Intents.DenialSMS(appt),
	}
	if h.Renderer != nil {
		resp["html"] = h.Renderer.Render(appt)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Edit handles PUT /api/admin/appointments/:id. Every field in the payload
// overwrites the stored record; no notification fires.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var fields EditFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	appt, err := h.Mgr.Edit(r.Context(), ps.ByName("id"), fields)
	if err != nil {
		h.respondLifecycleError(w, "saving", err)
		return
	}

	resp := utils.M{"appointment": appt}
	if h.Renderer != nil {
		resp["html"] = h.Renderer.Render(appt)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/admin/appointments/:id. Irreversible; the
// confirmation prompt lives in the UI.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.Mgr.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.respondLifecycleError(w, "deleting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Create handles POST /api/admin/appointments (walk-in / phone bookings
// entered by the operator).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	appt, err := h.Mgr.Create(r.Context(), input)
	if err != nil {
		h.respondLifecycleError(w, "creating", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"appointment": appt})
}

// Card handles GET /api/admin/appointments/:id/card and returns the
// rendered fragment for a single record.
func (h *Handler) Card(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, ok := h.Mgr.Get(ps.ByName("id"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "appointment not found")
		return
	}
	if h.Renderer == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "no renderer configured")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(h.Renderer.Render(appt)))
}

func (h *Handler) respondLifecycleError(w http.ResponseWriter, verb string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrInvalidTransition):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrMissingField):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Error %s appointment: %v", verb, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error "+verb+" appointment. Please try again.")
	}
}

// --- Customer submission paths ---

type submissionInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	VehicleYear   string `json:"vehicleYear"`
	VehicleMake   string `json:"vehicleMake"`
	VehicleModel  string `json:"vehicleModel"`
	LicensePlate  string `json:"licensePlate"`
	PreferredDate string `json:"preferredDate"`
	Message       string `json:"message"`
}

// Submit handles POST /api/appointments for signed-in customers. Contact
// fields are denormalized copies of the profile, not references.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var input submissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": uid}).Decode(&user); err != nil {
		log.Println("Error loading profile for submission:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error submitting appointment. Please try again.")
		return
	}

	appt, err := h.Mgr.Create(r.Context(), CreateInput{
		UserID:        uid,
		UserName:      user.Name,
		UserEmail:     user.Email,
		UserPhone:     user.Phone,
		VehicleYear:   input.VehicleYear,
		VehicleMake:   input.VehicleMake,
		VehicleModel:  input.VehicleModel,
		LicensePlate:  input.LicensePlate,
		PreferredDate: input.PreferredDate,
		Message:       input.Message,
	})
	if err != nil {
		h.respondLifecycleError(w, "submitting", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"appointment": appt})
}

// SubmitGuest handles POST /api/appointments/guest. Guest records carry no
// owner and live in their own collection.
func (h *Handler) SubmitGuest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input submissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	if digits := countDigits(input.Phone); digits < 7 {
		utils.RespondWithError(w, http.StatusBadRequest, "a valid phone number is required")
		return
	}

	now := time.Now()
	appt := models.Appointment{
		ID: utils.GenerateRandomDigitString(22),
		// Attributed when OptionalAuth found a valid token, empty otherwise.
		UserID:        middleware.UserIDFromContext(r.Context()),
		UserName:      name,
		UserPhone:     strings.TrimSpace(input.Phone),
		VehicleYear:   strings.TrimSpace(input.VehicleYear),
		VehicleMake:   strings.TrimSpace(input.VehicleMake),
		VehicleModel:  strings.TrimSpace(input.VehicleModel),
		LicensePlate:  strings.TrimSpace(input.LicensePlate),
		PreferredDate: strings.TrimSpace(input.PreferredDate),
		Message:       strings.TrimSpace(input.Message),
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if appt.PreferredDate == "" {
		appt.PreferredDate = models.PreferredDateASAP
	}

	if _, err := db.GuestAppointmentsCollection.InsertOne(r.Context(), appt); err != nil {
		log.Println("Error saving guest appointment:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error submitting appointment. Please try again.")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"appointment": appt})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
