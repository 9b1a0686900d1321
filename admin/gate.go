package admin

import (
	"context"
	"log"
	"net/http"

	"garage/middleware"
	"garage/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Checker resolves whether a user id carries the admin capability.
type Checker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// Gate checks the admins collection. Existence of a document keyed by the
// uid is the permission; there is no payload and no caching layer, so every
// protected request round-trips the store.
type Gate struct {
	admins *mongo.Collection
}

func NewGate(admins *mongo.Collection) *Gate {
	return &Gate{admins: admins}
}

func (g *Gate) IsAdmin(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, nil
	}
	err := g.admins.FindOne(ctx, bson.M{"userid": uid}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Require wraps a handler so it only runs for admins. It expects
// middleware.Authenticate to have populated the user id already.
func Require(checker Checker, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		uid := middleware.UserIDFromContext(r.Context())
		if uid == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		ok, err := checker.IsAdmin(r.Context(), uid)
		if err != nil {
			log.Println("Error checking admin status:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Error checking admin status")
			return
		}
		if !ok {
			utils.RespondWithError(w, http.StatusForbidden, "Access Denied: You do not have admin privileges.")
			return
		}
		next(w, r, ps)
	}
}
