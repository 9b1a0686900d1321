package notify

import (
	"context"
	"log"
	"time"

	"garage/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Queue is the outbound-queue contract: appending a document that an
// external dispatch worker consumes.
type Queue interface {
	EnqueueMail(ctx context.Context, doc models.MailDoc) error
	EnqueueSms(ctx context.Context, doc models.SmsDoc) error
}

// MongoQueue appends queue documents to the mail and sms collections.
type MongoQueue struct {
	Mail *mongo.Collection
	Sms  *mongo.Collection
}

func (q *MongoQueue) EnqueueMail(ctx context.Context, doc models.MailDoc) error {
	_, err := q.Mail.InsertOne(ctx, doc)
	return err
}

func (q *MongoQueue) EnqueueSms(ctx context.Context, doc models.SmsDoc) error {
	_, err := q.Sms.InsertOne(ctx, doc)
	return err
}

// DispatchEvent reports the outcome of one enqueue attempt. Dispatch is
// fire-and-forget from the caller's point of view, but every attempt's
// result is observable here.
type DispatchEvent struct {
	Channel string // "mail" or "sms"
	Action  string // "approved" or "denied"
	To      string
	Err     error
}

// Dispatcher turns lifecycle outcomes into queued notification intents.
// Failures are logged and published, never surfaced to the operator and
// never retried.
type Dispatcher struct {
	intents *Intents
	queue   Queue
	cfg     Config
	events  chan DispatchEvent
	timeout time.Duration
}

func NewDispatcher(cfg Config, queue Queue) *Dispatcher {
	return &Dispatcher{
		intents: NewIntents(cfg),
		queue:   queue,
		cfg:     cfg,
		events:  make(chan DispatchEvent, 64),
		timeout: 5 * time.Second,
	}
}

// Events exposes the dispatch-outcome stream.
func (d *Dispatcher) Events() <-chan DispatchEvent {
	return d.events
}

// Intents exposes the message builder, for operator-facing copy.
func (d *Dispatcher) Intents() *Intents {
	return d.intents
}

// AppointmentApproved enqueues the approval email (when the record has an
// email address) and, only when the SMS capability flag is on, the approval
// text message.
func (d *Dispatcher) AppointmentApproved(appt models.Appointment) {
	if appt.UserEmail != "" {
		go d.dispatchMail(appt.UserEmail, "approved", d.intents.ApprovalEmail(appt))
	}
	if d.cfg.SMSEnabled && appt.UserPhone != "" {
		go d.dispatchSms(appt.UserPhone, "approved", d.intents.ApprovalSMS(appt))
	}
}

// AppointmentDenied is symmetric to AppointmentApproved.
func (d *Dispatcher) AppointmentDenied(appt models.Appointment) {
	if appt.UserEmail != "" {
		go d.dispatchMail(appt.UserEmail, "denied", d.intents.DenialEmail(appt))
	}
	if d.cfg.SMSEnabled && appt.UserPhone != "" {
		go d.dispatchSms(appt.UserPhone, "denied", d.intents.DenialSMS(appt))
	}
}

// PasswordReset mails a reset link through the same queue.
func (d *Dispatcher) PasswordReset(email, link string) {
	msg := models.MailMessage{
		Subject: "Password Reset — " + d.cfg.ShopName,
		HTML: "<p>We received a request to reset your password. " +
			"<a href=\"" + link + "\">Choose a new password</a>. " +
			"If this wasn't you, you can ignore this message.</p>",
	}
	go d.dispatchMail(email, "password-reset", msg)
}

func (d *Dispatcher) dispatchMail(to, action string, msg models.MailMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.queue.EnqueueMail(ctx, models.MailDoc{
		ID:      uuid.NewString(),
		To:      to,
		Message: msg,
	})
	if err != nil {
		log.Printf("mail enqueue failed for %s (%s): %v", to, action, err)
	}
	d.emit(DispatchEvent{Channel: "mail", Action: action, To: to, Err: err})
}

func (d *Dispatcher) dispatchSms(to, action, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.queue.EnqueueSms(ctx, models.SmsDoc{
		ID:   uuid.NewString(),
		To:   to,
		Body: body,
	})
	if err != nil {
		log.Printf("sms enqueue failed for %s (%s): %v", to, action, err)
	}
	d.emit(DispatchEvent{Channel: "sms", Action: action, To: to, Err: err})
}

func (d *Dispatcher) emit(ev DispatchEvent) {
	select {
	case d.events <- ev:
	default:
	}
}
