package handlers

import (
	"log"

	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service   *services.PostService
	validator *validation.Validator
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService, v *validation.Validator) *PostHandler {
	return &PostHandler{
		service:   service,
		validator: v,
	}
}

// RegisterRoutes registers the post routes. Everything except the listing
// sits behind loginRequired.
func (h *PostHandler) RegisterRoutes(router fiber.Router, loginRequired fiber.Handler) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleGetPosts)
	postRoutes.Post("/", loginRequired, h.HandleCreatePost)
	postRoutes.Get("/new", loginRequired, h.HandleNewPostForm)
	postRoutes.Post("/new", loginRequired, h.HandleCreatePost)
	postRoutes.Get("/edit/:id", loginRequired, h.HandleEditPostForm)
	postRoutes.Post("/edit/:id", loginRequired, h.HandleUpdatePost)
	postRoutes.Post("/delete/:id", loginRequired, h.HandleDeletePost)
	postRoutes.All("/delete/:id", h.HandleDeleteWrongMethod)
	postRoutes.Get("/:id", loginRequired, h.HandleGetPostByID)
}

// HandleGetPosts lists every post, newest first.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		return renderError(c, err)
	}
	return render(c, fiber.StatusOK, "posts", fiber.Map{
		"title": "Posts",
		"posts": newPostPayloads(posts),
	})
}

// HandleGetPostByID shows a single post.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return renderError(c, err)
	}
	post, err := h.service.GetPostByID(id)
	if err != nil {
		return renderError(c, err)
	}
	return render(c, fiber.StatusOK, "post", fiber.Map{
		"title": post.Title,
		"post":  newPostPayload(post),
	})
}

// HandleNewPostForm shows an empty post form.
func (h *PostHandler) HandleNewPostForm(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "create_post", fiber.Map{
		"title": "New Post",
		"form":  services.PostInput{},
	})
}

// HandleCreatePost stores a post authored by the principal.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var in services.PostInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing post request body: %v", err)
		return renderError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := h.service.CreatePost(middleware.Principal(c), in)
	if err != nil {
		return renderForm(c, "create_post", fiber.Map{"title": "New Post", "form": in}, err)
	}

	log.Printf("Post %d created by user %d", post.ID, post.UserID)
	return redirect(c, "/posts", "success", h.validator.Message(validation.KeyPostCreated))
}

// HandleEditPostForm shows the edit form filled with the post's values.
// Only the owner gets the form.
func (h *PostHandler) HandleEditPostForm(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return renderError(c, err)
	}
	post, err := h.service.GetOwnedPost(middleware.Principal(c), id)
	if err != nil {
		return renderError(c, err)
	}
	return render(c, fiber.StatusOK, "edit_post", fiber.Map{
		"title": "Edit Post",
		"form":  services.PostInput{Title: post.Title, Content: post.Content},
		"post":  newPostPayload(post),
	})
}

// HandleUpdatePost saves the edit form.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return renderError(c, err)
	}

	var in services.PostInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing post request body: %v", err)
		return renderError(c, models.NewValidationError("Invalid request body"))
	}

	if _, err := h.service.UpdatePost(middleware.Principal(c), id, in); err != nil {
		return renderForm(c, "edit_post", fiber.Map{"title": "Edit Post", "form": in}, err)
	}
	return redirect(c, "/posts", "success", h.validator.Message(validation.KeyPostUpdated))
}

// HandleDeletePost removes a post owned by the principal.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return renderError(c, err)
	}
	if err := h.service.DeletePost(middleware.Principal(c), id); err != nil {
		return renderError(c, err)
	}
	return redirect(c, "/posts", "success", h.validator.Message(validation.KeyPostDeleted))
}

// HandleDeleteWrongMethod rejects deletes that do not arrive as POST.
func (h *PostHandler) HandleDeleteWrongMethod(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return renderError(c, &models.AppError{
		Code:    models.CodeMethodNotAllowed,
		Message: h.validator.Message(validation.KeyDeleteNeedsPOST),
	})
}
