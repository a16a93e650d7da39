package store

import "time"

// User is an account record. Owned by the surrounding auth service;
// the realtime core only reads it to resolve token subjects.
type User struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:200" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// ChatRoom is a named scope for chat broadcast. The persisted record
// exists for ownership/visibility; live membership is derived from
// connected sessions, never stored here.
type ChatRoom struct {
	ID        string    `gorm:"primarykey;size:36" json:"_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for ChatRoom.
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// Message is an immutable chat message. The autoincrement ID doubles as
// the creation sequence that breaks created_at ties when ordering.
type Message struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	RoomID     string    `gorm:"index;size:36;not null" json:"roomId"`
	SenderID   string    `gorm:"size:36;not null" json:"senderId"`
	SenderName string    `gorm:"size:100;not null" json:"senderName"`
	Message    string    `gorm:"size:4000;not null" json:"message"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// TableName returns the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// LiveClass is a video room record. Its ID is the room key used by the
// video room directory.
type LiveClass struct {
	ID          string    `gorm:"primarykey;size:36" json:"_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Subject     string    `gorm:"size:200;not null" json:"subject"`
	TeacherID   string    `gorm:"size:36;not null" json:"teacher"`
	TeacherName string    `gorm:"size:100" json:"teacherName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName returns the table name for LiveClass.
func (LiveClass) TableName() string {
	return "live_classes"
}
