package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/locker"
)

// fakeStore is an in-memory stand-in for the Redis document store. Loads
// return deep copies so callers cannot mutate persisted state in place.
type fakeStore struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	loadErr      error
	saveErr      error
	saveCount    int
}

func (f *fakeStore) LoadAll(ctx context.Context) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return copyAppointments(f.appointments), nil
}

func (f *fakeStore) SaveAll(ctx context.Context, appointments []*model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.appointments = copyAppointments(appointments)
	f.saveCount++
	return nil
}

func (f *fakeStore) snapshot() []*model.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyAppointments(f.appointments)
}

func copyAppointments(in []*model.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, len(in))
	for i, apt := range in {
		c := *apt
		out[i] = &c
	}
	return out
}

type fakeLocker struct {
	contended bool
	calls     int
}

func (f *fakeLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	f.calls++
	if f.contended {
		return locker.ErrLockNotAcquired
	}
	return fn(ctx)
}

type fakeBroker struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func (f *fakeBroker) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.channels...)
}

func newTestService(store *fakeStore) (*Service, *fakeBroker) {
	broker := &fakeBroker{}
	logger := zerolog.Nop()
	svc := NewService(store, &fakeLocker{}, broker, &logger, nil, nil)
	return svc, broker
}

func TestBookAppointment(t *testing.T) {
	store := &fakeStore{}
	svc, broker := newTestService(store)
	patientID, doctorID := uuid.New(), uuid.New()

	apt, err := svc.Book(context.Background(), patientID, doctorID, "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, doctorID, apt.DoctorID)
	assert.Equal(t, "2024-06-01", apt.Date)
	assert.Equal(t, "09:00", apt.Time)
	assert.Equal(t, "checkup", apt.Reason)
	assert.Equal(t, model.AppointmentStatusBooked, apt.Status)

	persisted := store.snapshot()
	require.Len(t, persisted, 1)
	assert.Equal(t, apt.ID, persisted[0].ID)

	assert.Contains(t, broker.published(), "appointments.booked")
}

func TestBookValidation(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)

	tests := []struct {
		name    string
		date    string
		time    string
		reason  string
		wantErr error
	}{
		{"empty reason", "2024-06-01", "09:00", "", ErrEmptyReason},
		{"whitespace reason", "2024-06-01", "09:00", "   ", ErrEmptyReason},
		{"bad date", "06/01/2024", "09:00", "checkup", ErrInvalidDate},
		{"unrecognized slot", "2024-06-01", "13:37", "checkup", ErrInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), uuid.New(), uuid.New(), tt.date, tt.time, tt.reason)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, store.snapshot(), "no validation failure may write")
}

func TestBookConflict(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	doctorID := uuid.New()

	first, err := svc.Book(context.Background(), uuid.New(), doctorID, "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), uuid.New(), doctorID, "2024-06-01", "09:00", "other")
	assert.ErrorIs(t, err, ErrSlotTaken)

	persisted := store.snapshot()
	require.Len(t, persisted, 1, "a rejected booking must not alter the store")
	assert.Equal(t, first.ID, persisted[0].ID)
}

func TestBookDistinctSlots(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	doctorID := uuid.New()
	ctx := context.Background()

	_, err := svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)

	// Same doctor, different time.
	_, err = svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "10:00", "followup")
	assert.NoError(t, err)

	// Same doctor and time, different date.
	_, err = svc.Book(ctx, uuid.New(), doctorID, "2024-06-02", "09:00", "followup")
	assert.NoError(t, err)

	// Same date and time, different doctor.
	_, err = svc.Book(ctx, uuid.New(), uuid.New(), "2024-06-01", "09:00", "followup")
	assert.NoError(t, err)

	assert.Len(t, store.snapshot(), 4)
}

func TestBookedTimesExclusivity(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()

	doctors := []uuid.UUID{uuid.New(), uuid.New()}
	for _, doc := range doctors {
		for _, slot := range []string{"09:00", "11:00"} {
			_, err := svc.Book(ctx, uuid.New(), doc, "2024-06-01", slot, "visit")
			require.NoError(t, err)
		}
	}

	// No two booked appointments share a (doctor, date, time) triple.
	seen := map[model.Slot]bool{}
	for _, apt := range store.snapshot() {
		if apt.Status != model.AppointmentStatusBooked {
			continue
		}
		assert.False(t, seen[apt.Slot()], "duplicate booked slot %v", apt.Slot())
		seen[apt.Slot()] = true
	}
}

func TestCancelFreesSlot(t *testing.T) {
	store := &fakeStore{}
	svc, broker := newTestService(store)
	doctorID := uuid.New()
	ctx := context.Background()

	apt, err := svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)

	ok, err := svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	booked, err := svc.GetBookedTimes(ctx, doctorID, "2024-06-01")
	require.NoError(t, err)
	assert.NotContains(t, booked, "09:00")

	// The vacated slot accepts a new booking.
	rebooked, err := svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "09:00", "new visit")
	require.NoError(t, err)
	assert.NotEqual(t, apt.ID, rebooked.ID, "ids are never reused")

	// The cancelled record is retained, not deleted.
	persisted := store.snapshot()
	assert.Len(t, persisted, 2)
	assert.Contains(t, broker.published(), "appointments.cancelled")
}

func TestCancelIdempotence(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()

	apt, err := svc.Book(ctx, uuid.New(), uuid.New(), "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)

	ok, err := svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)
	require.True(t, ok)
	savesAfterCancel := store.saveCount

	// Second cancel of the same id: no-op, no write.
	ok, err = svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, savesAfterCancel, store.saveCount)

	// Unknown id: no-op, no write.
	ok, err = svc.Cancel(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, savesAfterCancel, store.saveCount)
}

func TestCancelPreservesImmutableFields(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()

	apt, err := svc.Book(ctx, uuid.New(), uuid.New(), "2024-06-01", "10:00", "consultation")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)

	persisted := store.snapshot()
	require.Len(t, persisted, 1)
	got := persisted[0]
	assert.Equal(t, apt.PatientID, got.PatientID)
	assert.Equal(t, apt.DoctorID, got.DoctorID)
	assert.Equal(t, apt.Date, got.Date)
	assert.Equal(t, apt.Time, got.Time)
	assert.Equal(t, apt.Reason, got.Reason)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
}

func TestForPatient(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()
	patientID := uuid.New()

	apt, err := svc.Book(ctx, patientID, uuid.New(), "2024-06-01", "09:00", "checkup")
	require.NoError(t, err)
	_, err = svc.Book(ctx, patientID, uuid.New(), "2024-06-02", "10:00", "followup")
	require.NoError(t, err)
	_, err = svc.Book(ctx, uuid.New(), uuid.New(), "2024-06-01", "09:00", "other patient")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)

	// All statuses for the patient, nobody else's records.
	got, err := svc.ForPatient(ctx, patientID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, patientID, a.PatientID)
	}
}

func TestForDoctorRosterFilter(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()

	p1, p2, outsider := uuid.New(), uuid.New(), uuid.New()

	apt1, err := svc.Book(ctx, p1, uuid.New(), "2024-06-01", "09:00", "visit")
	require.NoError(t, err)
	_, err = svc.Book(ctx, p2, uuid.New(), "2024-06-01", "10:00", "visit")
	require.NoError(t, err)
	_, err = svc.Book(ctx, outsider, uuid.New(), "2024-06-01", "11:00", "visit")
	require.NoError(t, err)

	// Cancelled roster appointments are excluded too.
	_, err = svc.Cancel(ctx, apt1.ID)
	require.NoError(t, err)

	got, err := svc.ForDoctor(ctx, []uuid.UUID{p1, p2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p2, got[0].PatientID)
	assert.Equal(t, model.AppointmentStatusBooked, got[0].Status)
}

func TestGetAvailability(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "09:00", "visit")
	require.NoError(t, err)
	_, err = svc.Book(ctx, uuid.New(), doctorID, "2024-06-01", "14:00", "visit")
	require.NoError(t, err)

	avail, err := svc.GetAvailability(ctx, doctorID, "2024-06-01")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"09:00", "14:00"}, avail.BookedTimes)
	assert.ElementsMatch(t, []string{"10:00", "11:00", "15:00", "16:00"}, avail.FreeTimes)
}

func TestPersistenceErrorPropagates(t *testing.T) {
	store := &fakeStore{saveErr: apperrors.NewPersistence("save", errors.New("quota exceeded"))}
	svc, _ := newTestService(store)

	_, err := svc.Book(context.Background(), uuid.New(), uuid.New(), "2024-06-01", "09:00", "checkup")
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err), "save failures must surface, not be swallowed")
	assert.Empty(t, store.snapshot())

	store.saveErr = nil
	store.loadErr = apperrors.NewPersistence("load", errors.New("connection refused"))
	_, err = svc.GetBookedTimes(context.Background(), uuid.New(), "2024-06-01")
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
}

func TestContendedSlotLock(t *testing.T) {
	store := &fakeStore{}
	broker := &fakeBroker{}
	logger := zerolog.Nop()
	svc := NewService(store, &fakeLocker{contended: true}, broker, &logger, nil, nil)

	_, err := svc.Book(context.Background(), uuid.New(), uuid.New(), "2024-06-01", "09:00", "checkup")
	assert.ErrorIs(t, err, ErrSlotContended)
	assert.Empty(t, store.snapshot())
}

func TestConcurrentBookingSameSlot(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)
	doctorID := uuid.New()

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), uuid.New(), doctorID, "2024-06-01", "09:00", "race")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one booking may win the slot")
	assert.Equal(t, attempts-1, conflicted)
	assert.Len(t, store.snapshot(), 1)
}

func TestCustomSlotSet(t *testing.T) {
	store := &fakeStore{}
	broker := &fakeBroker{}
	logger := zerolog.Nop()
	svc := NewService(store, &fakeLocker{}, broker, &logger, nil, []string{"08:00", "08:30"})

	_, err := svc.Book(context.Background(), uuid.New(), uuid.New(), "2024-06-01", "08:30", "early visit")
	assert.NoError(t, err)

	_, err = svc.Book(context.Background(), uuid.New(), uuid.New(), "2024-06-01", "09:00", "default slot")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}
