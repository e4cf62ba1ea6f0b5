package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
)

var ErrEmptyMessage = errors.New("message text is required")

type Service struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	logger   *zerolog.Logger
}

func NewService(messages repository.MessageRepository, users repository.UserRepository, logger *zerolog.Logger) *Service {
	return &Service{
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  time.Now(),
		Read:       false,
	}

	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

// Conversation returns the thread between two users, oldest first.
func (s *Service) Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error) {
	msgs, err := s.messages.Conversation(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

// MarkRead marks every unread message sent by party to reader as read.
func (s *Service) MarkRead(ctx context.Context, readerID, partyID uuid.UUID) error {
	if err := s.messages.MarkRead(ctx, readerID, partyID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// DoctorInbox summarizes one doctor's threads: the latest message per
// patient plus the count of unread messages from that patient.
func (s *Service) DoctorInbox(ctx context.Context, doctorID uuid.UUID) ([]*model.Conversation, error) {
	msgs, err := s.messages.ListByParticipant(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	type thread struct {
		last   *model.Message
		unread int
	}
	threads := map[uuid.UUID]*thread{}

	for _, m := range msgs {
		patientID := m.SenderID
		if m.SenderID == doctorID {
			patientID = m.ReceiverID
		}

		t, ok := threads[patientID]
		if !ok {
			t = &thread{}
			threads[patientID] = t
		}
		if t.last == nil || t.last.Timestamp.Before(m.Timestamp) {
			t.last = m
		}
		if m.ReceiverID == doctorID && !m.Read {
			t.unread++
		}
	}

	inbox := []*model.Conversation{}
	for patientID, t := range threads {
		patient, err := s.users.Get(ctx, patientID)
		if err != nil {
			// Messages from accounts that no longer resolve are skipped.
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("skipping unresolvable thread")
			continue
		}
		if patient.Role != model.RolePatient {
			continue
		}
		inbox = append(inbox, &model.Conversation{
			Patient:     patient.Sanitized(),
			LastMessage: t.last,
			UnreadCount: t.unread,
		})
	}

	// Newest threads first.
	sort.Slice(inbox, func(i, j int) bool {
		return inbox[j].LastMessage.Timestamp.Before(inbox[i].LastMessage.Timestamp)
	})
	return inbox, nil
}
