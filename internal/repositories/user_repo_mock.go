package repositories

import (
	"fmt"
	"sync"
	"time"

	"blog/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// It enforces the same username and email uniqueness as the database indexes.
type MockUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uint]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ImageFile == "" {
		user.ImageFile = models.DefaultImageFile
	}
	if user.LastSeen.IsZero() {
		user.LastSeen = now
	}
	r.users[user.ID] = *user
	return nil
}

// Update replaces an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with ID %d not found for update: %w", user.ID, ErrNotFound)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// UpdateLastSeen stamps the last activity time of a user.
func (r *MockUserRepository) UpdateLastSeen(id uint, seen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with ID %d not found: %w", id, ErrNotFound)
	}
	user.LastSeen = seen
	r.users[id] = user
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "username "+username)
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "email "+email)
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d not found: %w", id, ErrNotFound)
	}
	return &user, nil
}

func (r *MockUserRepository) find(match func(models.User) bool, desc string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user with %s not found: %w", desc, ErrNotFound)
}

// checkUnique must be called with the write lock held.
func (r *MockUserRepository) checkUnique(user *models.User) error {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to save user: %w", ErrDuplicate)
		}
	}
	return nil
}
