package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"garage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps records in memory and can be told to fail.
type fakeStore struct {
	records []models.Appointment
	failAll bool

	inserts int
	updates int
	deletes int
}

func (f *fakeStore) FindAll(_ context.Context) ([]models.Appointment, error) {
	if f.failAll {
		return nil, errors.New("store unreachable")
	}
	out := make([]models.Appointment, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, appt models.Appointment) error {
	f.inserts++
	if f.failAll {
		return errors.New("store unreachable")
	}
	f.records = append([]models.Appointment{appt}, f.records...)
	return nil
}

func (f *fakeStore) Update(_ context.Context, id string, set map[string]any) error {
	f.updates++
	if f.failAll {
		return errors.New("store unreachable")
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deletes++
	if f.failAll {
		return errors.New("store unreachable")
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

// fakeNotifier records which records it was handed.
type fakeNotifier struct {
	approved []models.Appointment
	denied   []models.Appointment
}

func (n *fakeNotifier) AppointmentApproved(appt models.Appointment) {
	n.approved = append(n.approved, appt)
}

func (n *fakeNotifier) AppointmentDenied(appt models.Appointment) {
	n.denied = append(n.denied, appt)
}

func seed() []models.Appointment {
	now := time.Now()
	return []models.Appointment{
		{ID: "a1", UserName: "Ann Axle", UserEmail: "ann@example.com", UserPhone: "(231) 555-0101",
			VehicleYear: "2003", VehicleMake: "Dodge", VehicleModel: "Ram 1500",
			PreferredDate: "ASAP", Status: models.StatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: "a2", UserName: "Bob Brake", UserEmail: "bob@example.com",
			VehicleYear: "2015", VehicleMake: "Ford", VehicleModel: "F-150",
			PreferredDate: "March 5, 2026", Status: "", CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		{ID: "a3", UserName: "Cara Cam",
			VehicleYear: "2019", VehicleMake: "Subaru", VehicleModel: "Outback",
			PreferredDate: "ASAP", Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now},
	}
}

func newLoaded(t *testing.T) (*Manager, *fakeStore, *fakeNotifier) {
	t.Helper()
	store := &fakeStore{records: seed()}
	notifier := &fakeNotifier{}
	mgr := NewManager(store, notifier)
	require.NoError(t, mgr.Load(context.Background()))
	return mgr, store, notifier
}

func TestLoadDefaultsStatusToPending(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	appt, ok := mgr.Get("a2")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, appt.Status)
}

func TestLoadFailureLeavesMirrorEmpty(t *testing.T) {
	store := &fakeStore{records: seed(), failAll: true}
	mgr := NewManager(store, nil)

	err := mgr.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, mgr.Snapshot())
	assert.False(t, mgr.Loaded())
}

func TestApproveStoresDisplayTime(t *testing.T) {
	mgr, _, notifier := newLoaded(t)

	appt, err := mgr.Approve(context.Background(), "a1", "2026-02-21", "09:00")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, appt.Status)
	assert.Equal(t, "2026-02-21", appt.DropoffDate)
	assert.Equal(t, "9:00 AM", appt.DropoffTime)

	require.Len(t, notifier.approved, 1)
	assert.Equal(t, "a1", notifier.approved[0].ID)
}

func TestApproveWithoutDropoffKeepsFieldsEmpty(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	appt, err := mgr.Approve(context.Background(), "a1", "", "")
	require.NoError(t, err)
	assert.Empty(t, appt.DropoffDate)
	assert.Empty(t, appt.DropoffTime)
}

func TestApproveRejectsNonPending(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	_, err := mgr.Approve(context.Background(), "a1", "", "")
	require.NoError(t, err)

	_, err = mgr.Approve(context.Background(), "a1", "", "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StatusApproved, te.From)
}

func TestApproveStoreFailureLeavesMirrorAndNotifierAlone(t *testing.T) {
	mgr, store, notifier := newLoaded(t)
	store.failAll = true

	_, err := mgr.Approve(context.Background(), "a1", "2026-02-21", "09:00")
	require.Error(t, err)

	appt, ok := mgr.Get("a1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Empty(t, appt.DropoffDate)
	assert.Empty(t, notifier.approved)
}

func TestDenyNeverWritesDropoffFields(t *testing.T) {
	mgr, _, notifier := newLoaded(t)

	appt, err := mgr.Deny(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, appt.Status)
	assert.Empty(t, appt.DropoffDate)
	assert.Empty(t, appt.DropoffTime)
	require.Len(t, notifier.denied, 1)
}

func TestDenyUnknownID(t *testing.T) {
	mgr, _, _ := newLoaded(t)
	_, err := mgr.Deny(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyFilter(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	_, err := mgr.Approve(context.Background(), "a1", "", "")
	require.NoError(t, err)

	approved := mgr.ApplyFilter("approved")
	require.Len(t, approved, 1)
	assert.Equal(t, "a1", approved[0].ID)

	assert.Len(t, mgr.ApplyFilter("pending"), 2)
	assert.Len(t, mgr.ApplyFilter("all"), 3)
	assert.Empty(t, mgr.ApplyFilter("denied"))
}

func TestStats(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	_, err := mgr.Deny(context.Background(), "a3")
	require.NoError(t, err)

	st := mgr.Stats()
	assert.Equal(t, Stats{Total: 3, Pending: 2, Approved: 0, Denied: 1}, st)
}

func TestDeleteTwiceIsNoOp(t *testing.T) {
	mgr, store, _ := newLoaded(t)

	require.NoError(t, mgr.Delete(context.Background(), "a2"))
	assert.Len(t, mgr.Snapshot(), 2)
	assert.Equal(t, 1, store.deletes)

	// second delete: record absent, no store call
	require.NoError(t, mgr.Delete(context.Background(), "a2"))
	assert.Equal(t, 1, store.deletes)
}

func TestCreateRequiresVehicleMake(t *testing.T) {
	mgr, store, _ := newLoaded(t)

	_, err := mgr.Create(context.Background(), CreateInput{
		UserName:     "Dan Diff",
		VehicleYear:  "2010",
		VehicleModel: "Civic",
	})
	require.ErrorIs(t, err, ErrMissingField)

	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "vehicleMake", mf.Field)
	assert.Equal(t, 0, store.inserts, "no store write may be attempted")
}

func TestCreateDefaults(t *testing.T) {
	mgr, _, _ := newLoaded(t)

	appt, err := mgr.Create(context.Background(), CreateInput{
		UserName:     "Dan Diff",
		VehicleYear:  "2010",
		VehicleMake:  "Honda",
		VehicleModel: "Civic",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, models.PreferredDateASAP, appt.PreferredDate)
	assert.NotEmpty(t, appt.ID)

	// new record lands at the head of the mirror
	snap := mgr.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, appt.ID, snap[0].ID)
}

func TestEditOverridesStatusWithoutNotification(t *testing.T) {
	mgr, _, notifier := newLoaded(t)

	_, err := mgr.Deny(context.Background(), "a1")
	require.NoError(t, err)
	notifier.denied = nil

	// the free-edit path may move a denied record back to pending
	appt, err := mgr.Edit(context.Background(), "a1", EditFields{
		UserName:      "  Ann Axle ",
		UserEmail:     "ann@example.com",
		UserPhone:     "(231) 555-0101",
		VehicleYear:   "2003",
		VehicleMake:   "Dodge",
		VehicleModel:  "Ram 1500",
		PreferredDate: "ASAP",
		Status:        models.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, "Ann Axle", appt.UserName)

	assert.Empty(t, notifier.approved)
	assert.Empty(t, notifier.denied)
}

func TestSubscribePublishesMirrorChanges(t *testing.T) {
	mgr, _, _ := newLoaded(t)
	events := mgr.Subscribe()

	_, err := mgr.Approve(context.Background(), "a1", "2026-02-21", "09:00")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventUpdated, ev.Kind)
		assert.Equal(t, "a1", ev.ID)
		assert.Equal(t, models.StatusApproved, ev.Appointment.Status)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}
