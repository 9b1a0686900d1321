package admin

import (
	"log"
	"net/http"

	"garage/db"
	"garage/middleware"
	"garage/models"
	"garage/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type customerView struct {
	UserID      string `json:"userid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	MemberSince string `json:"memberSince"`
	IsSelf      bool   `json:"isSelf"`
}

// GetCustomers returns every registered customer for the admin list.
func GetCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	currentUID := middleware.UserIDFromContext(r.Context())

	cursor, err := db.UserCollection.Find(r.Context(), bson.M{})
	if err != nil {
		log.Println("Error loading customers:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading customers. Please try again.")
		return
	}
	defer cursor.Close(r.Context())

	var users []models.User
	if err := cursor.All(r.Context(), &users); err != nil {
		log.Println("Error decoding customers:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading customers. Please try again.")
		return
	}

	customers := make([]customerView, 0, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = "Unknown"
		}
		customers = append(customers, customerView{
			UserID:      u.UserID,
			Name:        name,
			Email:       u.Email,
			Phone:       u.Phone,
			MemberSince: utils.FormatTimestamp(u.CreatedAt),
			IsSelf:      u.UserID == currentUID,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"customers": customers})
}

// DeleteCustomer removes a customer's saved vehicles, then the customer
// document itself. Irreversible; their appointments are left in place.
func DeleteCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid := ps.ByName("id")
	if uid == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}
	if uid == middleware.UserIDFromContext(r.Context()) {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	// vehicles first, then the parent document
	if _, err := db.VehiclesCollection.DeleteMany(r.Context(), bson.M{"userId": uid}); err != nil {
		log.Println("Error deleting customer vehicles:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting customer. Please try again.")
		return
	}
	if _, err := db.UserCollection.DeleteOne(r.Context(), bson.M{"userid": uid}); err != nil {
		log.Println("Error deleting customer:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting customer. Please try again.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
