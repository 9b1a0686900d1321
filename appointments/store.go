package appointments

import (
	"context"

	"garage/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the record-store contract the manager runs against. Each call is
// a single round trip; there are no cross-document transactions.
type Store interface {
	FindAll(ctx context.Context) ([]models.Appointment, error)
	Insert(ctx context.Context, appt models.Appointment) error
	Update(ctx context.Context, id string, set map[string]any) error
	Delete(ctx context.Context, id string) error
}

// MongoStore keeps appointment documents in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// FindAll returns every appointment, newest first.
func (s *MongoStore) FindAll(ctx context.Context) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var appts []models.Appointment
	if err := cur.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *MongoStore) Insert(ctx context.Context, appt models.Appointment) error {
	_, err := s.coll.InsertOne(ctx, appt)
	return err
}

func (s *MongoStore) Update(ctx context.Context, id string, set map[string]any) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(set)})
	return err
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	return err
}
