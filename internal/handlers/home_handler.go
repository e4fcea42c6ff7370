package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	siteTitle string
	siteName  string
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(siteTitle, siteName string) *HomeHandler {
	return &HomeHandler{siteTitle: siteTitle, siteName: siteName}
}

// RegisterRoutes registers the landing page.
func (h *HomeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
}

// HandleIndex renders the landing page.
func (h *HomeHandler) HandleIndex(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "index", fiber.Map{
		"title": h.siteTitle,
		"name":  h.siteName,
	})
}
