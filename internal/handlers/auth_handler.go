package handlers

import (
	"errors"
	"log"
	"net/url"

	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authService   *services.AuthService
	validator     *validation.Validator
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, v *validation.Validator, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validator:     v,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/register", h.HandleRegisterForm)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// HandleRegisterForm shows an empty registration form.
func (h *AuthHandler) HandleRegisterForm(c *fiber.Ctx) error {
	if middleware.Principal(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return render(c, fiber.StatusOK, "register", fiber.Map{
		"title": "Register",
		"form":  fiber.Map{"username": "", "email": ""},
	})
}

// HandleRegister creates the account and sends the user to the login page.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	if middleware.Principal(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return renderError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := h.authService.RegisterUser(in)
	if err != nil {
		return renderForm(c, "register", fiber.Map{
			"title": "Register",
			"form":  fiber.Map{"username": in.Username, "email": in.Email},
		}, err)
	}

	log.Printf("Registered user %d (%s)", user.ID, user.Username)
	return redirect(c, "/login", "success", h.validator.Message(validation.KeyAccountCreated, user.Username))
}

// HandleLoginForm shows the login form.
func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	if middleware.Principal(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return render(c, fiber.StatusOK, "login", fiber.Map{
		"title": "Login",
		"form":  fiber.Map{"email": "", "remember": false},
		"next":  c.Query("next"),
	})
}

// HandleLogin establishes the identity cookie and follows a same-site next
// target. Failures get one generic message whatever went wrong.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	if middleware.Principal(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return renderError(c, models.NewValidationError("Invalid request body"))
	}

	next := c.Query("next")
	if next == "" {
		next = c.FormValue("next")
	}

	user, token, err := h.authService.LoginUser(in)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
			log.Printf("Failed login for %s", in.Email)
			location := "/login"
			if target, ok := SafeRedirectTarget(next); ok {
				location += "?next=" + url.QueryEscape(target)
			}
			return redirect(c, location, "warning", h.validator.Message(validation.KeyLoginFailed))
		}
		return renderForm(c, "login", fiber.Map{
			"title": "Login",
			"form":  fiber.Map{"email": in.Email, "remember": in.Remember},
			"next":  next,
		}, err)
	}

	middleware.SetAuthCookie(c, token, h.secureCookies)
	log.Printf("User %d logged in", user.ID)

	target, ok := SafeRedirectTarget(next)
	if !ok {
		target = "/"
	}
	return redirect(c, target, "success", h.validator.Message(validation.KeyLoggedIn))
}

// HandleLogout drops the identity cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.ClearAuthCookie(c)
	return redirect(c, "/", "info", h.validator.Message(validation.KeyLoggedOut))
}
