package redis

import (
	"context"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
)

type appointmentStore struct {
	*Store
}

func NewAppointmentStore(store *Store) repository.AppointmentStore {
	return &appointmentStore{Store: store}
}

func (s *appointmentStore) LoadAll(ctx context.Context) ([]*model.Appointment, error) {
	raw, err := s.loadRaw(ctx, keyAppointments, "appointments")
	if err != nil {
		return nil, err
	}
	appointments := decodeDoc[*model.Appointment](s.Store, keyAppointments, raw)
	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return appointments, nil
}

func (s *appointmentStore) SaveAll(ctx context.Context, appointments []*model.Appointment) error {
	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return s.save(ctx, keyAppointments, "appointments", appointments)
}
