package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct doctor-patient message.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

type SendMessageRequest struct {
	SenderID   uuid.UUID `json:"sender_id" validate:"required"`
	ReceiverID uuid.UUID `json:"receiver_id" validate:"required"`
	Text       string    `json:"text" validate:"required,max=2000"`
}

type MarkReadRequest struct {
	ReaderID uuid.UUID `json:"reader_id" validate:"required"`
	PartyID  uuid.UUID `json:"party_id" validate:"required"`
}

// Conversation summarizes one patient thread in a doctor's inbox.
type Conversation struct {
	Patient     *User    `json:"patient"`
	LastMessage *Message `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}
