package models

import "time"

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	SMSConsent    bool      `json:"smsConsent" bson:"smsConsent"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// Vehicle is a saved vehicle used only for contact-form pre-fill.
type Vehicle struct {
	ID           string    `json:"id" bson:"id"`
	UserID       string    `json:"userId" bson:"userId"`
	Year         string    `json:"year" bson:"year"`
	Make         string    `json:"make" bson:"make"`
	Model        string    `json:"model" bson:"model"`
	LicensePlate string    `json:"licensePlate,omitempty" bson:"licensePlate,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// AdminFlag grants admin capability by existing; the document has no payload.
type AdminFlag struct {
	UserID string `json:"userid" bson:"userid"`
}
