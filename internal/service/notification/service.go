package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/email"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/messaging"
)

// Service consumes appointment events from the broker and mails the patient.
// Delivery is best effort: failures are logged and the event is dropped.
type Service struct {
	broker   messaging.Broker
	users    repository.UserRepository
	emailSvc email.Service
	logger   *zerolog.Logger
}

func NewService(broker messaging.Broker, users repository.UserRepository, emailSvc email.Service, logger *zerolog.Logger) *Service {
	return &Service{
		broker:   broker,
		users:    users,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Run blocks consuming both appointment channels until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	booked, err := s.broker.Subscribe(ctx, messaging.ChannelAppointmentBooked)
	if err != nil {
		return fmt.Errorf("failed to subscribe to bookings: %w", err)
	}
	cancelled, err := s.broker.Subscribe(ctx, messaging.ChannelAppointmentCancelled)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cancellations: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-booked:
			if !ok {
				return nil
			}
			s.handle(ctx, payload, false)
		case payload, ok := <-cancelled:
			if !ok {
				return nil
			}
			s.handle(ctx, payload, true)
		}
	}
}

func (s *Service) handle(ctx context.Context, payload []byte, isCancellation bool) {
	var event messaging.AppointmentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed appointment event")
		return
	}

	patientID, err := uuid.Parse(event.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", event.PatientID).Msg("dropping event with bad patient id")
		return
	}

	patient, err := s.users.Get(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", event.PatientID).Msg("cannot resolve patient for notification")
		return
	}

	contact := s.contactAddress(ctx, patient)
	if contact == "" {
		s.logger.Debug().Str("patient_id", event.PatientID).Msg("patient has no contact address, skipping notification")
		return
	}

	if isCancellation {
		err = s.emailSvc.SendAppointmentCancellation(ctx, contact, patient.Name, event.Date, event.Time)
	} else {
		err = s.emailSvc.SendAppointmentConfirmation(ctx, contact, patient.Name, event.Date, event.Time)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", event.AppointmentID).
			Bool("cancellation", isCancellation).
			Msg("failed to send appointment email")
	}
}

// contactAddress falls back to the assigned doctor's contact when the
// patient record carries none of its own.
func (s *Service) contactAddress(ctx context.Context, patient *model.User) string {
	if patient.Contact != "" {
		return patient.Contact
	}
	if patient.AssignedDoctorID == uuid.Nil {
		return ""
	}
	doctor, err := s.users.Get(ctx, patient.AssignedDoctorID)
	if err != nil {
		return ""
	}
	return doctor.Contact
}
