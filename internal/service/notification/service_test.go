package notification

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/messaging"
)

type fakeBroker struct {
	booked    chan []byte
	cancelled chan []byte
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	if channel == messaging.ChannelAppointmentBooked {
		return f.booked, nil
	}
	return f.cancelled, nil
}

func (f *fakeBroker) Close() error { return nil }

type fakeEmail struct {
	mu            sync.Mutex
	confirmations []string
	cancellations []string
}

func (f *fakeEmail) SendAppointmentConfirmation(ctx context.Context, to, patientName, date, slotTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, to)
	return nil
}

func (f *fakeEmail) SendAppointmentCancellation(ctx context.Context, to, patientName, date, slotTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancellations = append(f.cancellations, to)
	return nil
}

func (f *fakeEmail) sent() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmations), len(f.cancellations)
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", nil)
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error)   { return nil, nil }

func event(t *testing.T, patientID uuid.UUID) []byte {
	t.Helper()
	payload, err := json.Marshal(messaging.AppointmentEvent{
		AppointmentID: uuid.NewString(),
		PatientID:     patientID.String(),
		DoctorID:      uuid.NewString(),
		Date:          "2024-06-01",
		Time:          "09:00",
		Status:        "booked",
	})
	require.NoError(t, err)
	return payload
}

func TestRunDeliversEmails(t *testing.T) {
	patient := &model.User{
		ID:      uuid.New(),
		Name:    "John Doe",
		Role:    model.RolePatient,
		Contact: "jdoe@example.com",
	}

	broker := &fakeBroker{
		booked:    make(chan []byte, 4),
		cancelled: make(chan []byte, 4),
	}
	emailSvc := &fakeEmail{}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{patient.ID: patient}}
	logger := zerolog.Nop()
	svc := NewService(broker, users, emailSvc, &logger)

	broker.booked <- event(t, patient.ID)
	broker.cancelled <- event(t, patient.ID)
	broker.booked <- []byte("not json")        // dropped
	broker.booked <- event(t, uuid.New())      // unknown patient, dropped

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		confirmed, cancelledN := emailSvc.sent()
		return confirmed == 1 && cancelledN == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	confirmed, cancelledN := emailSvc.sent()
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, cancelledN)
	assert.Equal(t, "jdoe@example.com", emailSvc.confirmations[0])
}
