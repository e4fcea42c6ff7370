package handlers

import (
	"time"

	"blog/internal/models"
)

// authorPayload is the public face of a post's author.
type authorPayload struct {
	Username  string `json:"username"`
	ImageFile string `json:"image_file"`
}

// postPayload is a post as shown on pages. Author contact details stay out.
type postPayload struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UserID    uint          `json:"user_id"`
	Author    authorPayload `json:"author"`
}

func newPostPayload(p *models.Post) postPayload {
	return postPayload{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UserID:    p.UserID,
		Author: authorPayload{
			Username:  p.Author.Username,
			ImageFile: p.Author.ImageFile,
		},
	}
}

func newPostPayloads(posts []models.Post) []postPayload {
	out := make([]postPayload, 0, len(posts))
	for i := range posts {
		out = append(out, newPostPayload(&posts[i]))
	}
	return out
}
