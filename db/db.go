package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection              *mongo.Collection
	VehiclesCollection          *mongo.Collection
	AppointmentsCollection      *mongo.Collection
	GuestAppointmentsCollection *mongo.Collection
	AdminsCollection            *mongo.Collection
	MailCollection              *mongo.Collection
	SmsCollection               *mongo.Collection
	Client                      *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	ClientOptions := options.Client().ApplyURI(uri)
	Client, err = mongo.Connect(context.TODO(), ClientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := os.Getenv("MONGO_DB")
	if database == "" {
		database = "garagedb"
	}

	UserCollection = Client.Database(database).Collection("users")
	VehiclesCollection = Client.Database(database).Collection("vehicles")
	AppointmentsCollection = Client.Database(database).Collection("appointments")
	GuestAppointmentsCollection = Client.Database(database).Collection("guest_appointments")
	AdminsCollection = Client.Database(database).Collection("admins")
	MailCollection = Client.Database(database).Collection("mail")
	SmsCollection = Client.Database(database).Collection("sms")
}
