package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a text entry owned by exactly one user.
// CreatedAt is stamped once on insert.
type Post struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Title     string         `json:"title" gorm:"type:varchar(255)"`
	Content   string         `json:"content" gorm:"type:text"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Author    User           `json:"author" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsOwnedBy reports whether the given user authored the post.
func (p *Post) IsOwnedBy(user *User) bool {
	return user != nil && p.UserID == user.ID
}
