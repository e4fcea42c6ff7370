package services

import (
	"errors"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/validation"
)

// PostInput is the create and edit form. Title and content are free text.
type PostInput struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// PostService handles business logic related to posts.
type PostService struct {
	repo      repositories.PostRepository
	validator *validation.Validator
	publisher EventPublisher
}

// NewPostService creates a new PostService.
func NewPostService(repo repositories.PostRepository, v *validation.Validator) *PostService {
	return &PostService{
		repo:      repo,
		validator: v,
	}
}

// WithPublisher sets the broker that receives post events.
func (s *PostService) WithPublisher(p EventPublisher) *PostService {
	s.publisher = p
	return s
}

// GetAllPosts retrieves every post, newest first.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	posts, err := s.repo.GetAll()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id uint) (*models.Post, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// GetOwnedPost retrieves a post the principal is allowed to change.
func (s *PostService) GetOwnedPost(principal *models.User, id uint) (*models.Post, error) {
	if principal == nil {
		return nil, models.NewUnauthorizedError("login required")
	}
	post, err := s.GetPostByID(id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(principal) {
		return nil, models.NewForbiddenError(s.validator.Message(validation.KeyPostForbidden))
	}
	return post, nil
}

// CreatePost stores a new post authored by the principal.
func (s *PostService) CreatePost(author *models.User, in PostInput) (*models.Post, error) {
	if author == nil {
		return nil, models.NewUnauthorizedError("login required")
	}
	if errs := s.validator.Struct(in); errs != nil {
		return nil, models.NewFieldErrors(errs)
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  author.ID,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, models.NewInternalError(err)
	}
	post.Author = *author

	publishEvent(s.publisher, EventPostCreated, map[string]interface{}{
		"postID": post.ID,
		"userID": post.UserID,
		"title":  post.Title,
	})
	return post, nil
}

// UpdatePost changes title and content of a post owned by the principal.
func (s *PostService) UpdatePost(principal *models.User, id uint, in PostInput) (*models.Post, error) {
	post, err := s.GetOwnedPost(principal, id)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.Struct(in); errs != nil {
		return nil, models.NewFieldErrors(errs)
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.repo.Update(post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	publishEvent(s.publisher, EventPostUpdated, map[string]interface{}{
		"postID": post.ID,
		"userID": post.UserID,
	})
	return post, nil
}

// DeletePost removes a post owned by the principal.
func (s *PostService) DeletePost(principal *models.User, id uint) error {
	post, err := s.GetOwnedPost(principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(post.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}

	publishEvent(s.publisher, EventPostDeleted, map[string]interface{}{
		"postID": post.ID,
		"userID": post.UserID,
	})
	return nil
}
