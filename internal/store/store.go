package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store bundles the repositories over one database handle.
type Store struct {
	db *gorm.DB

	Users       *UserRepo
	Rooms       *RoomRepo
	Messages    *MessageRepo
	LiveClasses *LiveClassRepo
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &ChatRoom{}, &Message{}, &LiveClass{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{
		db:          db,
		Users:       NewUserRepo(db),
		Rooms:       NewRoomRepo(db),
		Messages:    NewMessageRepo(db),
		LiveClasses: NewLiveClassRepo(db),
	}, nil
}
