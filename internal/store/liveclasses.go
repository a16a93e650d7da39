package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// LiveClassRepo provides access to live class records.
type LiveClassRepo struct {
	db *gorm.DB
}

// NewLiveClassRepo creates a new live class repository.
func NewLiveClassRepo(db *gorm.DB) *LiveClassRepo {
	return &LiveClassRepo{db: db}
}

// Create saves a new live class.
func (r *LiveClassRepo) Create(class *LiveClass) error {
	if err := r.db.Create(class).Error; err != nil {
		return fmt.Errorf("failed to create live class: %w", err)
	}
	return nil
}

// FindByID retrieves a live class by ID.
func (r *LiveClassRepo) FindByID(id string) (*LiveClass, error) {
	var class LiveClass
	if err := r.db.First(&class, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find live class: %w", err)
	}
	return &class, nil
}

// FindAll retrieves all live classes, newest first.
func (r *LiveClassRepo) FindAll() ([]LiveClass, error) {
	var classes []LiveClass
	if err := r.db.Order("created_at DESC").Find(&classes).Error; err != nil {
		return nil, fmt.Errorf("failed to find live classes: %w", err)
	}
	return classes, nil
}

// Delete removes a live class by ID.
func (r *LiveClassRepo) Delete(id string) error {
	result := r.db.Delete(&LiveClass{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete live class: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
