package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"blog/internal/models"
)

// MockPostRepository is an in-memory implementation of PostRepository.
// Authors are resolved through the user repository it is paired with.
type MockPostRepository struct {
	posts  map[uint]models.Post
	users  UserRepository
	nextID uint
	mu     sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
func NewMockPostRepository(users UserRepository) *MockPostRepository {
	return &MockPostRepository{
		posts: make(map[uint]models.Post),
		users: users,
	}
}

// GetAll returns all posts, newest first.
func (r *MockPostRepository) GetAll() ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	postList := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		postList = append(postList, r.withAuthor(p))
	}
	sort.Slice(postList, func(i, j int) bool {
		if postList[i].CreatedAt.Equal(postList[j].CreatedAt) {
			return postList[i].ID > postList[j].ID
		}
		return postList[i].CreatedAt.After(postList[j].CreatedAt)
	})
	return postList, nil
}

// GetByID returns a post by its ID.
func (r *MockPostRepository) GetByID(id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %d not found: %w", id, ErrNotFound)
	}
	post = r.withAuthor(post)
	return &post, nil
}

// Create adds a new post.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.UserID == 0 {
		return fmt.Errorf("failed to create post: missing owner")
	}
	r.nextID++
	post.ID = r.nextID
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	stored := *post
	stored.Author = models.User{}
	r.posts[post.ID] = stored
	return nil
}

// Update modifies the title and content of an existing post.
func (r *MockPostRepository) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("post with ID %d not found for update: %w", post.ID, ErrNotFound)
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.UpdatedAt = time.Now()
	r.posts[post.ID] = existing
	return nil
}

// Delete removes a post by its ID.
func (r *MockPostRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

func (r *MockPostRepository) withAuthor(p models.Post) models.Post {
	if r.users == nil {
		return p
	}
	if author, err := r.users.GetByID(p.UserID); err == nil {
		p.Author = *author
	}
	return p
}
