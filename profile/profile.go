package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"garage/db"
	"garage/middleware"
	"garage/models"
	"garage/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProfile returns the signed-in customer's profile document.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile lets a customer change their display name, phone number and
// SMS consent. Email is the login key and stays fixed.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		SMSConsent *bool  `json:"smsConsent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		set["phone"] = phone
	}
	if req.SMSConsent != nil {
		set["smsConsent"] = *req.SMSConsent
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": uid}, bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not update profile")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Profile updated", nil)
}

// GetVehicles lists the customer's saved vehicles, newest first.
func GetVehicles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.VehiclesCollection.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load vehicles")
		return
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load vehicles")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, vehicles)
}

// AddVehicle saves a vehicle for form pre-fill. Year, make and model are
// required; the plate is optional.
func AddVehicle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Year         string `json:"year"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		LicensePlate string `json:"licensePlate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Year = strings.TrimSpace(req.Year)
	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	if req.Year == "" || req.Make == "" || req.Model == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Year, make and model are required")
		return
	}

	vehicle := models.Vehicle{
		ID:           utils.GenerateRandomDigitString(22),
		UserID:       uid,
		Year:         req.Year,
		Make:         req.Make,
		Model:        req.Model,
		LicensePlate: strings.TrimSpace(req.LicensePlate),
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := db.VehiclesCollection.InsertOne(ctx, vehicle); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not save vehicle")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, vehicle)
}

// DeleteVehicle removes one of the customer's own vehicles.
func DeleteVehicle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vehicleID := ps.ByName("vehicleid")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.VehiclesCollection.DeleteOne(ctx, bson.M{"id": vehicleID, "userId": uid})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not delete vehicle")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMyAppointments lists the customer's own appointment requests, newest
// first, for the dashboard.
func GetMyAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.AppointmentsCollection.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load appointments")
		return
	}
	defer cursor.Close(ctx)

	appointments := []models.Appointment{}
	if err := cursor.All(ctx, &appointments); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load appointments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appointments)
}

// GetPrefill bundles the profile and the most recent saved vehicle so the
// booking form can be filled in ahead of the customer.
func GetPrefill(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": uid}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
		return
	}

	payload := utils.M{
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var vehicle models.Vehicle
	err := db.VehiclesCollection.FindOne(ctx, bson.M{"userId": uid}, opts).Decode(&vehicle)
	if err == nil {
		payload["vehicle"] = vehicle
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not load vehicles")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, payload)
}
