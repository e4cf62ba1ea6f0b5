package redis

import (
	"context"

	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
)

type messageRepository struct {
	*Store
}

func NewMessageRepository(store *Store) repository.MessageRepository {
	return &messageRepository{Store: store}
}

func (r *messageRepository) loadAll(ctx context.Context) ([]*model.Message, error) {
	raw, err := r.loadRaw(ctx, keyMessages, "messages")
	if err != nil {
		return nil, err
	}
	return decodeDoc[*model.Message](r.Store, keyMessages, raw), nil
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) error {
	messages, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	messages = append(messages, msg)
	return r.save(ctx, keyMessages, "messages", messages)
}

func (r *messageRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*model.Message, error) {
	messages, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.Message
	for _, m := range messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *messageRepository) Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error) {
	messages, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.Message
	for _, m := range messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, readerID, partyID uuid.UUID) error {
	messages, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	changed := false
	for _, m := range messages {
		if m.ReceiverID == readerID && m.SenderID == partyID && !m.Read {
			m.Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.save(ctx, keyMessages, "messages", messages)
}
