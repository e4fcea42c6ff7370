package handlers

import (
	"log"

	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles the principal's profile page.
type AccountHandler struct {
	accountService *services.AccountService
	validator      *validation.Validator
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService, v *validation.Validator) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		validator:      v,
	}
}

// RegisterRoutes registers the account routes behind the login gate.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, loginRequired fiber.Handler) {
	router.Get("/account", loginRequired, h.HandleAccountForm)
	router.Post("/account", loginRequired, h.HandleUpdateAccount)
}

// HandleAccountForm shows the profile form filled with the current values.
func (h *AccountHandler) HandleAccountForm(c *fiber.Ctx) error {
	user := middleware.Principal(c)
	return render(c, fiber.StatusOK, "account", h.page(user, fiber.Map{
		"username": user.Username,
		"email":    user.Email,
		"about_me": user.AboutMe,
	}))
}

// HandleUpdateAccount applies the profile form, including an optional
// avatar upload in the "picture" field.
func (h *AccountHandler) HandleUpdateAccount(c *fiber.Ctx) error {
	user := middleware.Principal(c)

	var in services.UpdateAccountInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing account request body: %v", err)
		return renderError(c, models.NewValidationError("Invalid request body"))
	}

	var avatar *services.AvatarUpload
	if fh, err := c.FormFile("picture"); err == nil && fh.Filename != "" {
		file, err := fh.Open()
		if err != nil {
			return renderError(c, models.NewInternalError(err))
		}
		defer file.Close()
		avatar = &services.AvatarUpload{Filename: fh.Filename, Content: file}
	}

	updated, err := h.accountService.UpdateAccount(user, in, avatar)
	if err != nil {
		return renderForm(c, "account", h.page(user, fiber.Map{
			"username": in.Username,
			"email":    in.Email,
			"about_me": in.AboutMe,
		}), err)
	}

	return redirect(c, "/account", "success", h.validator.Message(validation.KeyAccountUpdated, updated.Username))
}

func (h *AccountHandler) page(user *models.User, form fiber.Map) fiber.Map {
	return fiber.Map{
		"title":      "Account",
		"form":       form,
		"image_file": h.accountService.AvatarURL(user),
		"last_seen":  user.LastSeen,
	}
}
