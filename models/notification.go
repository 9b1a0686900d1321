package models

import "time"

// MailDoc is a queued email in the `mail` collection, consumed by an
// external trigger-based mailer.
type MailDoc struct {
	ID      string      `json:"id" bson:"id"`
	To      string      `json:"to" bson:"to"`
	Message MailMessage `json:"message" bson:"message"`
}

type MailMessage struct {
	Subject string `json:"subject" bson:"subject"`
	HTML    string `json:"html" bson:"html"`
}

// SmsDoc is a queued text message in the `sms` collection. The worker
// writes Delivery back after a send attempt.
type SmsDoc struct {
	ID       string    `json:"id" bson:"id"`
	To       string    `json:"to" bson:"to"`
	Body     string    `json:"body" bson:"body"`
	Delivery *Delivery `json:"delivery,omitempty" bson:"delivery,omitempty"`
}

const (
	DeliverySuccess = "SUCCESS"
	DeliveryError   = "ERROR"
)

type Delivery struct {
	State      string    `json:"state" bson:"state"`
	MessageSid string    `json:"messageSid,omitempty" bson:"messageSid,omitempty"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	EndTime    time.Time `json:"endTime" bson:"endTime"`
}
