package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a single slot reservation. Everything except Status is
// immutable after creation; Status only ever moves booked -> cancelled in
// this service (completed belongs to the clinical workflow).
type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	PatientID uuid.UUID         `json:"patient_id"`
	DoctorID  uuid.UUID         `json:"doctor_id"`
	Date      string            `json:"date"` // YYYY-MM-DD, compared by exact equality
	Time      string            `json:"time"` // slot token, e.g. "09:00"
	Reason    string            `json:"reason"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Slot identifies the unit of exclusivity: at most one booked appointment
// may hold a given (doctor, date, time) at a time.
type Slot struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
}

func (a *Appointment) Slot() Slot {
	return Slot{DoctorID: a.DoctorID, Date: a.Date, Time: a.Time}
}

type BookAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" validate:"required"`
	Reason    string    `json:"reason" validate:"required,max=500"`
}

type AvailabilityResponse struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	Date        string    `json:"date"`
	BookedTimes []string  `json:"booked_times"`
	FreeTimes   []string  `json:"free_times"`
}
