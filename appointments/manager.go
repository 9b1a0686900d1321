package appointments

import (
	"context"
	"strings"
	"sync"
	"time"

	"garage/models"
	"garage/utils"
)

// Notifier receives lifecycle outcomes that warrant customer notification.
// Approve and Deny call it after the store round trip succeeds; the generic
// edit path never does.
type Notifier interface {
	AppointmentApproved(appt models.Appointment)
	AppointmentDenied(appt models.Appointment)
}

// EventKind classifies a mirror change.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is published to subscribers whenever the mirror changes, so render
// surfaces can refresh without polling.
type Event struct {
	Kind        EventKind          `json:"kind"`
	ID          string             `json:"id"`
	Appointment models.Appointment `json:"appointment"`
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Denied   int `json:"denied"`
}

// Manager owns the authoritative in-memory mirror of appointment records
// and mediates every status-changing operation between the HTTP surface and
// the record store. The mirror is mutated only after the corresponding
// store round trip succeeds, which gives read-your-writes consistency for
// this process; concurrent admins are last-write-wins.
type Manager struct {
	store    Store
	notifier Notifier

	mu     sync.Mutex
	mirror []models.Appointment
	loaded bool
	subs   []chan Event
}

func NewManager(store Store, notifier Notifier) *Manager {
	return &Manager{store: store, notifier: notifier}
}

// Subscribe returns a channel of mirror-change events. Slow subscribers
// drop events rather than block a mutation.
func (m *Manager) Subscribe() <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Event, 32)
	m.subs = append(m.subs, ch)
	return ch
}

func (m *Manager) publish(ev Event) {
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Load fetches all appointment records, newest first, and replaces the
// mirror. On failure the mirror is left empty.
func (m *Manager) Load(ctx context.Context) error {
	appts, err := m.store.FindAll(ctx)
	if err != nil {
		m.mu.Lock()
		m.mirror = nil
		m.loaded = false
		m.mu.Unlock()
		return err
	}
	for i := range appts {
		appts[i].Status = appts[i].Status.Normalize()
	}
	m.mu.Lock()
	m.mirror = appts
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// Loaded reports whether a Load has succeeded since startup.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Snapshot returns a copy of the mirror.
func (m *Manager) Snapshot() []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Appointment, len(m.mirror))
	copy(out, m.mirror)
	return out
}

// Get returns the mirrored record with the given id.
func (m *Manager) Get(id string) (models.Appointment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return models.Appointment{}, false
	}
	return m.mirror[i], true
}

// ApplyFilter is a pure, synchronous filter over the mirror. "all" returns
// everything; any other category matches records whose normalized status
// equals it.
func (m *Manager) ApplyFilter(category string) []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category == "" || category == "all" {
		out := make([]models.Appointment, len(m.mirror))
		copy(out, m.mirror)
		return out
	}
	var out []models.Appointment
	for _, a := range m.mirror {
		if string(a.Status.Normalize()) == category {
			out = append(out, a)
		}
	}
	return out
}

// Stats counts mirror records per status.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{Total: len(m.mirror)}
	for _, a := range m.mirror {
		switch a.Status.Normalize() {
		case models.StatusPending:
			st.Pending++
		case models.StatusApproved:
			st.Approved++
		case models.StatusDenied:
			st.Denied++
		}
	}
	return st
}

// Approve moves a pending record to approved, recording the drop-off
// schedule when given. dropoffDate is "YYYY-MM-DD"; dropoffTime is 24-hour
// "HH:MM" and is stored in its display form ("09:00" becomes "9:00 AM").
// The store write happens first; on failure the mirror is untouched and no
// notification intent is constructed.
func (m *Manager) Approve(ctx context.Context, id, dropoffDate, dropoffTime string) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Appointment{}, ErrNotFound
	}
	if from := m.mirror[i].Status.Normalize(); from != models.StatusPending {
		return models.Appointment{}, &TransitionError{From: from, To: models.StatusApproved}
	}

	now := time.Now()
	set := map[string]any{
		"status":    models.StatusApproved,
		"updatedAt": now,
	}
	timeDisplay := utils.FormatClockTime(dropoffTime)
	if dropoffDate != "" {
		set["dropoffDate"] = dropoffDate
	}
	if dropoffTime != "" {
		set["dropoffTime"] = timeDisplay
	}

	if err := m.store.Update(ctx, id, set); err != nil {
		return models.Appointment{}, err
	}

	m.mirror[i].Status = models.StatusApproved
	m.mirror[i].UpdatedAt = now
	if dropoffDate != "" {
		m.mirror[i].DropoffDate = dropoffDate
	}
	if dropoffTime != "" {
		m.mirror[i].DropoffTime = timeDisplay
	}
	appt := m.mirror[i]

	m.publish(Event{Kind: EventUpdated, ID: id, Appointment: appt})
	if m.notifier != nil {
		m.notifier.AppointmentApproved(appt)
	}
	return appt, nil
}

// Deny moves a pending record to denied. It never writes drop-off fields.
func (m *Manager) Deny(ctx context.Context, id string) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Appointment{}, ErrNotFound
	}
	if from := m.mirror[i].Status.Normalize(); from != models.StatusPending {
		return models.Appointment{}, &TransitionError{From: from, To: models.StatusDenied}
	}

	now := time.Now()
	set := map[string]any{
		"status":    models.StatusDenied,
		"updatedAt": now,
	}
	if err := m.store.Update(ctx, id, set); err != nil {
		return models.Appointment{}, err
	}

	m.mirror[i].Status = models.StatusDenied
	m.mirror[i].UpdatedAt = now
	appt := m.mirror[i]

	m.publish(Event{Kind: EventUpdated, ID: id, Appointment: appt})
	if m.notifier != nil {
		m.notifier.AppointmentDenied(appt)
	}
	return appt, nil
}

// EditFields is the administrative override payload. Every field is written
// unconditionally, whitespace-trimmed; the status transition table does not
// apply and no notification fires.
type EditFields struct {
	UserName      string        `json:"userName"`
	UserEmail     string        `json:"userEmail"`
	UserPhone     string        `json:"userPhone"`
	VehicleYear   string        `json:"vehicleYear"`
	VehicleMake   string        `json:"vehicleMake"`
	VehicleModel  string        `json:"vehicleModel"`
	LicensePlate  string        `json:"licensePlate"`
	PreferredDate string        `json:"preferredDate"`
	Status        models.Status `json:"status"`
	DropoffDate   string        `json:"dropoffDate"`
	DropoffTime   string        `json:"dropoffTime"`
	Message       string        `json:"message"`
}

func (m *Manager) Edit(ctx context.Context, id string, fields EditFields) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Appointment{}, ErrNotFound
	}

	now := time.Now()
	status := models.Status(strings.TrimSpace(string(fields.Status))).Normalize()
	set := map[string]any{
		"userName":      strings.TrimSpace(fields.UserName),
		"userEmail":     strings.TrimSpace(fields.UserEmail),
		"userPhone":     strings.TrimSpace(fields.UserPhone),
		"vehicleYear":   strings.TrimSpace(fields.VehicleYear),
		"vehicleMake":   strings.TrimSpace(fields.VehicleMake),
		"vehicleModel":  strings.TrimSpace(fields.VehicleModel),
		"licensePlate":  strings.TrimSpace(fields.LicensePlate),
		"preferredDate": strings.TrimSpace(fields.PreferredDate),
		"status":        status,
		"dropoffDate":   strings.TrimSpace(fields.DropoffDate),
		"dropoffTime":   strings.TrimSpace(fields.DropoffTime),
		"message":       strings.TrimSpace(fields.Message),
		"updatedAt":     now,
	}
	if err := m.store.Update(ctx, id, set); err != nil {
		return models.Appointment{}, err
	}

	a := &m.mirror[i]
	a.UserName = set["userName"].(string)
	a.UserEmail = set["userEmail"].(string)
	a.UserPhone = set["userPhone"].(string)
	a.VehicleYear = set["vehicleYear"].(string)
	a.VehicleMake = set["vehicleMake"].(string)
	a.VehicleModel = set["vehicleModel"].(string)
	a.LicensePlate = set["licensePlate"].(string)
	a.PreferredDate = set["preferredDate"].(string)
	a.Status = status
	a.DropoffDate = set["dropoffDate"].(string)
	a.DropoffTime = set["dropoffTime"].(string)
	a.Message = set["message"].(string)
	a.UpdatedAt = now

	m.publish(Event{Kind: EventUpdated, ID: id, Appointment: *a})
	return *a, nil
}

// Delete removes the record from store and mirror. Deleting a record that
// is already gone is a no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	appt := m.mirror[i]
	m.mirror = append(m.mirror[:i], m.mirror[i+1:]...)
	m.publish(Event{Kind: EventDeleted, ID: id, Appointment: appt})
	return nil
}

// CreateInput carries a new record. Name and vehicle year/make/model are
// required; everything else is optional.
type CreateInput struct {
	UserID        string        `json:"userId"`
	UserName      string        `json:"userName"`
	UserEmail     string        `json:"userEmail"`
	UserPhone     string        `json:"userPhone"`
	VehicleYear   string        `json:"vehicleYear"`
	VehicleMake   string        `json:"vehicleMake"`
	VehicleModel  string        `json:"vehicleModel"`
	LicensePlate  string        `json:"licensePlate"`
	PreferredDate string        `json:"preferredDate"`
	Status        models.Status `json:"status"`
	Message       string        `json:"message"`
}

// Create validates and inserts a new record, then prepends it to the
// mirror. Validation failures happen before any store call.
func (m *Manager) Create(ctx context.Context, in CreateInput) (models.Appointment, error) {
	required := []struct{ name, value string }{
		{"userName", in.UserName},
		{"vehicleYear", in.VehicleYear},
		{"vehicleMake", in.VehicleMake},
		{"vehicleModel", in.VehicleModel},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return models.Appointment{}, &MissingFieldError{Field: f.name}
		}
	}

	now := time.Now()
	appt := models.Appointment{
		ID:            utils.GenerateRandomDigitString(22),
		UserID:        strings.TrimSpace(in.UserID),
		UserName:      strings.TrimSpace(in.UserName),
		UserEmail:     strings.TrimSpace(in.UserEmail),
		UserPhone:     strings.TrimSpace(in.UserPhone),
		VehicleYear:   strings.TrimSpace(in.VehicleYear),
		VehicleMake:   strings.TrimSpace(in.VehicleMake),
		VehicleModel:  strings.TrimSpace(in.VehicleModel),
		LicensePlate:  strings.TrimSpace(in.LicensePlate),
		PreferredDate: strings.TrimSpace(in.PreferredDate),
		Status:        in.Status.Normalize(),
		Message:       strings.TrimSpace(in.Message),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if appt.PreferredDate == "" {
		appt.PreferredDate = models.PreferredDateASAP
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Insert(ctx, appt); err != nil {
		return models.Appointment{}, err
	}
	m.mirror = append([]models.Appointment{appt}, m.mirror...)
	m.publish(Event{Kind: EventCreated, ID: appt.ID, Appointment: appt})
	return appt, nil
}

// index finds id in the mirror; callers hold m.mu.
func (m *Manager) index(id string) int {
	for i := range m.mirror {
		if m.mirror[i].ID == id {
			return i
		}
	}
	return -1
}
