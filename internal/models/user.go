package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultImageFile is the placeholder avatar every new user starts with.
const DefaultImageFile = "default.jpg"

// User represents a registered author of the blog.
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Username  string         `json:"username" gorm:"uniqueIndex;type:varchar(25);not null"`
	Email     string         `json:"-" gorm:"uniqueIndex;type:varchar(120);not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never plaintext
	AboutMe   string         `json:"about_me" gorm:"type:text"`
	ImageFile string         `json:"image_file" gorm:"type:varchar(64);not null;default:default.jpg"`
	LastSeen  time.Time      `json:"last_seen"`
	Posts     []Post         `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate fills in the placeholder avatar when none was chosen.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ImageFile == "" {
		u.ImageFile = DefaultImageFile
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = time.Now()
	}
	return nil
}
