package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"garage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = Config{
	ShopName:    "Northside Auto",
	ShopPhone:   "231-555-0100",
	ShopAddress: "12 Service Rd, East Jordan, MI 49727",
}

func testAppt() models.Appointment {
	return models.Appointment{
		ID:            "a1",
		UserName:      "Ann Axle",
		UserEmail:     "ann@example.com",
		UserPhone:     "(231) 555-0101",
		VehicleYear:   "2003",
		VehicleMake:   "Dodge",
		VehicleModel:  "Ram 1500",
		PreferredDate: "ASAP",
		Status:        models.StatusApproved,
		DropoffDate:   "2026-02-21",
		DropoffTime:   "9:00 AM",
	}
}

func TestApprovalSMSWithDropoff(t *testing.T) {
	n := NewIntents(testCfg)
	got := n.ApprovalSMS(testAppt())
	assert.Contains(t, got, "Northside Auto:")
	assert.Contains(t, got, "2003 Dodge Ram 1500")
	assert.Contains(t, got, "drop off your vehicle on 2026-02-21 at 9:00 AM")
	assert.Contains(t, got, "231-555-0100")
}

func TestApprovalSMSFallsBackToPreferredDate(t *testing.T) {
	appt := testAppt()
	appt.DropoffDate = ""
	appt.DropoffTime = ""
	got := NewIntents(testCfg).ApprovalSMS(appt)
	assert.Contains(t, got, "Date: ASAP.")
}

func TestDenialEmailBody(t *testing.T) {
	msg := NewIntents(testCfg).DenialEmail(testAppt())
	assert.Equal(t, "Appointment Update — Northside Auto", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Ann Axle,")
	assert.Contains(t, msg.HTML, "unable to accommodate")
}

func TestEmailEscapesCustomerInput(t *testing.T) {
	appt := testAppt()
	appt.UserName = `<script>alert("x")</script>`
	msg := NewIntents(testCfg).ApprovalEmail(appt)
	assert.NotContains(t, msg.HTML, "<script>")
}

// fakeQueue records enqueued documents.
type fakeQueue struct {
	mu       sync.Mutex
	mail     []models.MailDoc
	sms      []models.SmsDoc
	failMail bool
}

func (q *fakeQueue) EnqueueMail(_ context.Context, doc models.MailDoc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failMail {
		return errors.New("queue unavailable")
	}
	q.mail = append(q.mail, doc)
	return nil
}

func (q *fakeQueue) EnqueueSms(_ context.Context, doc models.SmsDoc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sms = append(q.sms, doc)
	return nil
}

func (q *fakeQueue) counts() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.mail), len(q.sms)
}

func waitEvent(t *testing.T, events <-chan DispatchEvent) DispatchEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for dispatch event")
		return DispatchEvent{}
	}
}

func TestDispatchMailOnlyWhenSMSDisabled(t *testing.T) {
	queue := &fakeQueue{}
	d := NewDispatcher(testCfg, queue) // SMSEnabled false

	d.AppointmentApproved(testAppt())

	ev := waitEvent(t, d.Events())
	assert.Equal(t, "mail", ev.Channel)
	assert.Equal(t, "approved", ev.Action)
	assert.NoError(t, ev.Err)

	mails, smses := queue.counts()
	assert.Equal(t, 1, mails)
	assert.Equal(t, 0, smses, "sms enqueue must stay behind the capability flag")
}

func TestDispatchSMSWhenEnabled(t *testing.T) {
	cfg := testCfg
	cfg.SMSEnabled = true
	queue := &fakeQueue{}
	d := NewDispatcher(cfg, queue)

	d.AppointmentDenied(testAppt())

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		ev := waitEvent(t, d.Events())
		require.NoError(t, ev.Err)
		assert.Equal(t, "denied", ev.Action)
		seen[ev.Channel] = true
	}
	assert.True(t, seen["mail"] && seen["sms"])

	_, smses := queue.counts()
	require.Equal(t, 1, smses)
	queue.mu.Lock()
	body := queue.sms[0].Body
	queue.mu.Unlock()
	assert.True(t, strings.HasPrefix(body, "Northside Auto:"))
}

func TestDispatchSkipsRecordsWithoutEmail(t *testing.T) {
	queue := &fakeQueue{}
	d := NewDispatcher(testCfg, queue)

	appt := testAppt()
	appt.UserEmail = ""
	d.AppointmentApproved(appt)

	select {
	case ev := <-d.Events():
		t.Fatalf("unexpected dispatch: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatchFailureIsObservableNotFatal(t *testing.T) {
	queue := &fakeQueue{failMail: true}
	d := NewDispatcher(testCfg, queue)

	d.AppointmentApproved(testAppt())

	ev := waitEvent(t, d.Events())
	assert.Error(t, ev.Err)
	mails, _ := queue.counts()
	assert.Equal(t, 0, mails)
}
