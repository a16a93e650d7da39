package store

import (
	"fmt"

	"gorm.io/gorm"
)

// RoomRepo provides access to chat room records.
type RoomRepo struct {
	db *gorm.DB
}

// NewRoomRepo creates a new chat room repository.
func NewRoomRepo(db *gorm.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create saves a new chat room.
func (r *RoomRepo) Create(room *ChatRoom) error {
	if err := r.db.Create(room).Error; err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// FindAll retrieves all chat rooms, newest first.
func (r *RoomRepo) FindAll() ([]ChatRoom, error) {
	var rooms []ChatRoom
	if err := r.db.Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	return rooms, nil
}
