package repositories

import (
	"errors"
	"time"

	"blog/internal/models"
)

var (
	// ErrNotFound is wrapped by every repository lookup that finds no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a unique username or email is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateLastSeen(id uint, seen time.Time) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}
