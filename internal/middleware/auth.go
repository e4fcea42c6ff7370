package middleware

import (
	"log"
	"net/url"
	"strings"

	"blog/internal/models"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	// AuthCookie holds the signed identity token of the principal.
	AuthCookie   = "auth_token"
	principalKey = "principal"
)

// CurrentUser loads the principal from the identity cookie or a Bearer
// Authorization header and stamps its last-seen time. Requests without a
// valid token continue anonymously.
func CurrentUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, fromCookie := tokenFromRequest(c)
		if tokenString == "" {
			return c.Next()
		}

		user, err := authService.Authenticate(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			if fromCookie {
				ClearAuthCookie(c)
			}
			return c.Next()
		}

		// A failed stamp is logged by the service and does not block the request.
		_ = authService.TouchLastSeen(user)
		c.Locals(principalKey, user)
		return c.Next()
	}
}

// LoginRequired sends anonymous requests to the login page, remembering
// where they were headed.
func LoginRequired(v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c) != nil {
			return c.Next()
		}
		AddFlash(c, "info", v.Message(validation.KeyLoginRequired))
		return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
	}
}

// Principal returns the authenticated user of this request, or nil.
func Principal(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(principalKey).(*models.User)
	return user
}

// SetAuthCookie stores an identity token. Non-persistent tokens get a browser
// session cookie.
func SetAuthCookie(c *fiber.Ctx, token *services.Token, secure bool) {
	cookie := &fiber.Cookie{
		Name:     AuthCookie,
		Value:    token.Value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if token.Persistent {
		cookie.Expires = token.ExpiresAt
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}

// ClearAuthCookie logs the client out.
func ClearAuthCookie(c *fiber.Ctx) {
	c.ClearCookie(AuthCookie)
}

func tokenFromRequest(c *fiber.Ctx) (string, bool) {
	if token := c.Cookies(AuthCookie); token != "" {
		return token, true
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1], false
	}
	return "", false
}
