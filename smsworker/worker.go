// Package smsworker consumes the sms queue collection and delivers
// messages through a third-party gateway, writing a delivery receipt back
// onto each document. The whole worker sits behind one capability flag:
// until the gateway account is verified, Run returns immediately.
package smsworker

import (
	"context"
	"log"
	"time"

	"garage/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Config struct {
	Enabled      bool
	PollInterval time.Duration
}

// Store is the queue-side contract: claim the next unprocessed document,
// then record its delivery outcome.
type Store interface {
	NextPending(ctx context.Context) (*models.SmsDoc, error)
	MarkDelivery(ctx context.Context, id string, d models.Delivery) error
}

// MongoStore reads the sms collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) NextPending(ctx context.Context) (*models.SmsDoc, error) {
	var doc models.SmsDoc
	err := s.coll.FindOne(ctx, bson.M{"delivery": bson.M{"$exists": false}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) MarkDelivery(ctx context.Context, id string, d models.Delivery) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"delivery": d}})
	return err
}

type Worker struct {
	cfg     Config
	store   Store
	gateway Gateway
}

func NewWorker(cfg Config, store Store, gateway Gateway) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	return &Worker{cfg: cfg, store: store, gateway: gateway}
}

// Run polls the queue until ctx is cancelled. The kill switch lives here:
// with the capability flag off, Run logs once and returns.
func (w *Worker) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		log.Println("SMS sending is currently disabled. Skipping.")
		return
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes every pending queue document once.
func (w *Worker) Drain(ctx context.Context) {
	for {
		doc, err := w.store.NextPending(ctx)
		if err != nil {
			log.Println("sms queue read failed:", err)
			return
		}
		if doc == nil {
			return
		}
		w.deliver(ctx, doc)
	}
}

func (w *Worker) deliver(ctx context.Context, doc *models.SmsDoc) {
	if doc.To == "" || doc.Body == "" {
		log.Printf("sms document %s missing 'to' or 'body' field", doc.ID)
		w.mark(ctx, doc.ID, models.Delivery{
			State:   models.DeliveryError,
			Error:   "Missing 'to' or 'body' field",
			EndTime: time.Now(),
		})
		return
	}

	sid, err := w.gateway.Send(ctx, doc.To, doc.Body)
	if err != nil {
		log.Printf("sms send to %s failed: %v", doc.To, err)
		w.mark(ctx, doc.ID, models.Delivery{
			State:   models.DeliveryError,
			Error:   err.Error(),
			EndTime: time.Now(),
		})
		return
	}

	log.Println("SMS sent successfully. SID:", sid)
	w.mark(ctx, doc.ID, models.Delivery{
		State:      models.DeliverySuccess,
		MessageSid: sid,
		EndTime:    time.Now(),
	})
}

func (w *Worker) mark(ctx context.Context, id string, d models.Delivery) {
	if err := w.store.MarkDelivery(ctx, id, d); err != nil {
		log.Printf("failed to record delivery state for %s: %v", id, err)
	}
}
