package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
)

type (
	// AppointmentStore is the persistence boundary for the appointment
	// collection. It performs no validation: LoadAll returns the full
	// collection (empty when nothing was stored or the payload is corrupt),
	// SaveAll fully overwrites prior state, last-writer-wins.
	AppointmentStore interface {
		LoadAll(ctx context.Context) ([]*model.Appointment, error)
		SaveAll(ctx context.Context, appointments []*model.Appointment) error
	}

	// UserRepository handles portal user records
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	// MessageRepository handles doctor-patient messages
	MessageRepository interface {
		Append(ctx context.Context, msg *model.Message) error
		ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*model.Message, error)
		Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error)
		MarkRead(ctx context.Context, readerID, partyID uuid.UUID) error
	}
)
