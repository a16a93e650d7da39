package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepo provides access to user storage.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create saves a new user.
func (r *UserRepo) Create(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *UserRepo) FindByID(id string) (*User, error) {
	var user User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// LookupUser resolves a token subject to its display name. Satisfies
// auth.Resolver.
func (r *UserRepo) LookupUser(id string) (string, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// Ensure creates the user if it does not exist yet. Used for seeding.
func (r *UserRepo) Ensure(user *User) error {
	_, err := r.FindByID(user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.Create(user)
}
