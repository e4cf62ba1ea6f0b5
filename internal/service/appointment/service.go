package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/locker"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/messaging"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/metrics"
)

// DefaultSlotTimes is the closed set of bookable time tokens. The scheduler
// UI renders exactly these; a booking with any other token is rejected.
var DefaultSlotTimes = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

const dateLayout = "2006-01-02"

var (
	ErrSlotTaken     = errors.New("this time slot is no longer available")
	ErrSlotContended = errors.New("slot is being booked by another request")
	ErrInvalidSlot   = errors.New("time is not a recognized slot")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrEmptyReason   = errors.New("reason is required")
)

type Service struct {
	store   repository.AppointmentStore
	locker  locker.Locker
	broker  messaging.Broker
	logger  *zerolog.Logger
	metrics *metrics.Metrics
	slots   []string

	// Serializes read-modify-write cycles within this process. The locker
	// adds per-slot exclusivity across instances; writers on different
	// slots are not serialized against each other.
	mu sync.Mutex
}

func NewService(store repository.AppointmentStore, lk locker.Locker, broker messaging.Broker, logger *zerolog.Logger, m *metrics.Metrics, slots []string) *Service {
	if len(slots) == 0 {
		slots = DefaultSlotTimes
	}
	return &Service{
		store:   store,
		locker:  lk,
		broker:  broker,
		logger:  logger,
		metrics: m,
		slots:   slots,
	}
}

// SlotTimes returns the full set of bookable time tokens.
func (s *Service) SlotTimes() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

// GetBookedTimes returns the time tokens held by booked appointments for one
// doctor on one date.
func (s *Service) GetBookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	appointments, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	var booked []string
	for _, apt := range appointments {
		if apt.DoctorID == doctorID && apt.Date == date && apt.Status == model.AppointmentStatusBooked {
			booked = append(booked, apt.Time)
		}
	}
	return booked, nil
}

// GetAvailability returns booked and free slots for one doctor and date.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*model.AvailabilityResponse, error) {
	booked, err := s.GetBookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	free := make([]string, 0, len(s.slots))
	for _, t := range s.slots {
		if !taken[t] {
			free = append(free, t)
		}
	}

	return &model.AvailabilityResponse{
		DoctorID:    doctorID,
		Date:        date,
		BookedTimes: booked,
		FreeTimes:   free,
	}, nil
}

// Book validates the request, re-reads the store under the slot lock, checks
// exclusivity and commits a new booked appointment. A slot held by a booked
// appointment fails with ErrSlotTaken and leaves the store untouched.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, date, slotTime, reason string) (*model.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	if !s.isRecognizedSlot(slotTime) {
		return nil, ErrInvalidSlot
	}

	var created *model.Appointment
	err := s.withSlotLock(ctx, slotKey(doctorID, date, slotTime), func(ctx context.Context) error {
		appointments, err := s.store.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}

		for _, apt := range appointments {
			if apt.DoctorID == doctorID && apt.Date == date && apt.Time == slotTime &&
				apt.Status == model.AppointmentStatusBooked {
				return ErrSlotTaken
			}
		}

		now := time.Now()
		created = &model.Appointment{
			ID:        uuid.New(),
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      date,
			Time:      slotTime,
			Reason:    reason,
			Status:    model.AppointmentStatusBooked,
			CreatedAt: now,
			UpdatedAt: now,
		}

		appointments = append(appointments, created)
		if err := s.store.SaveAll(ctx, appointments); err != nil {
			return fmt.Errorf("failed to save appointments: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) && s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsTotal.Inc()
	}
	s.publish(ctx, messaging.ChannelAppointmentBooked, created)
	s.logger.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("date", date).
		Str("time", slotTime).
		Msg("appointment booked")

	return created, nil
}

// Cancel moves a booked appointment to cancelled and persists the collection.
// A missing id or an appointment that is not booked is an idempotent no-op
// returning false; the store is left unchanged.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	var cancelled *model.Appointment
	err := s.withSlotLock(ctx, fmt.Sprintf("appointment:%s", id), func(ctx context.Context) error {
		appointments, err := s.store.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}

		for _, apt := range appointments {
			if apt.ID != id {
				continue
			}
			if apt.Status != model.AppointmentStatusBooked {
				return nil
			}
			apt.Status = model.AppointmentStatusCancelled
			apt.UpdatedAt = time.Now()
			cancelled = apt
			if err := s.store.SaveAll(ctx, appointments); err != nil {
				return fmt.Errorf("failed to save appointments: %w", err)
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if cancelled == nil {
		return false, nil
	}

	if s.metrics != nil {
		s.metrics.Cancellations.Inc()
	}
	s.publish(ctx, messaging.ChannelAppointmentCancelled, cancelled)
	s.logger.Info().
		Str("appointment_id", id.String()).
		Msg("appointment cancelled")

	return true, nil
}

// ForPatient returns every appointment for one patient, all statuses,
// unsorted. Callers filter and sort.
func (s *Service) ForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	out := []*model.Appointment{}
	for _, apt := range appointments {
		if apt.PatientID == patientID {
			out = append(out, apt)
		}
	}
	return out, nil
}

// ForDoctor returns booked appointments across the given patient roster.
func (s *Service) ForDoctor(ctx context.Context, patientIDs []uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	roster := make(map[uuid.UUID]bool, len(patientIDs))
	for _, id := range patientIDs {
		roster[id] = true
	}

	out := []*model.Appointment{}
	for _, apt := range appointments {
		if roster[apt.PatientID] && apt.Status == model.AppointmentStatusBooked {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (s *Service) isRecognizedSlot(slotTime string) bool {
	for _, t := range s.slots {
		if t == slotTime {
			return true
		}
	}
	return false
}

// withSlotLock runs fn under the process mutex and, when a distributed
// locker is configured, under the per-key lease as well.
func (s *Service) withSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker == nil {
		return fn(ctx)
	}

	err := s.locker.WithLock(ctx, key, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		return ErrSlotContended
	}
	return err
}

func (s *Service) publish(ctx context.Context, channel string, apt *model.Appointment) {
	if s.broker == nil {
		return
	}
	event := messaging.AppointmentEvent{
		AppointmentID: apt.ID.String(),
		PatientID:     apt.PatientID.String(),
		DoctorID:      apt.DoctorID.String(),
		Date:          apt.Date,
		Time:          apt.Time,
		Status:        string(apt.Status),
	}
	if err := s.broker.Publish(ctx, channel, event); err != nil {
		s.logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish appointment event")
	}
}

func slotKey(doctorID uuid.UUID, date, slotTime string) string {
	return fmt.Sprintf("slot:%s:%s:%s", doctorID, date, slotTime)
}
