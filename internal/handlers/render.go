package handlers

import (
	"errors"
	"log"
	"net/url"
	"strconv"
	"strings"

	"blog/internal/middleware"
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// render answers with the page payload a template would have received.
func render(c *fiber.Ctx, status int, page string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["page"] = page
	data["flashes"] = middleware.Flashes(c)
	if user := middleware.Principal(c); user != nil {
		data["current_user"] = user.Username
	}
	return c.Status(status).JSON(data)
}

// renderForm re-displays a form with the per-field messages of a validation
// error. Any other error is answered by renderError.
func renderForm(c *fiber.Ctx, page string, data fiber.Map, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return renderError(c, err)
	}
	if data == nil {
		data = fiber.Map{}
	}
	data["message"] = appErr.Message
	data["errors"] = appErr.Fields
	return render(c, fiber.StatusBadRequest, page, data)
}

// renderError answers with the status that matches err. Internal causes are
// logged and never shown.
func renderError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return models.RespondWithError(c, status, err)
}

// redirect queues a flash message and sends the client to location.
func redirect(c *fiber.Ctx, location, category, message string) error {
	if message != "" {
		middleware.AddFlash(c, category, message)
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}

// postID parses the :id route parameter. Malformed IDs are reported as a
// missing post.
func postID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Post", raw)
	}
	return uint(id), nil
}

// SafeRedirectTarget accepts next only when it is a path on this site.
// Anything naming a scheme or another host is rejected.
func SafeRedirectTarget(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "", false
	}
	// Browsers read "//host" and "/\host" as another origin.
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}
