package store

import (
	"fmt"

	"gorm.io/gorm"
)

// MessageRepo is the durable append-only log of chat messages.
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new message repository.
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append persists a new message and returns it with its assigned ID and
// timestamp. Messages are never updated or deleted afterwards.
func (r *MessageRepo) Append(msg *Message) (*Message, error) {
	if err := r.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// Recent returns the most recent limit messages for a room, ordered
// ascending by created_at with the insertion sequence breaking ties.
func (r *MessageRepo) Recent(roomID string, limit int) ([]Message, error) {
	var msgs []Message
	err := r.db.
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	// Query runs newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// History returns messages for a room with limit/offset paging, oldest
// first. Backs the REST collaborator endpoint.
func (r *MessageRepo) History(roomID string, limit, offset int) ([]Message, error) {
	var msgs []Message
	err := r.db.
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return msgs, nil
}
