package middleware

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	sessionKey = "session"
	flashesKey = "_flashes"
)

// Flash is a one-shot message shown on the next page the user sees.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Sessions loads the server-side session before the handler runs and saves
// it afterwards.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Printf("Error loading session: %v", err)
			return c.Next()
		}
		c.Locals(sessionKey, sess)

		err = c.Next()
		if saveErr := sess.Save(); saveErr != nil {
			log.Printf("Error saving session: %v", saveErr)
		}
		return err
	}
}

// AddFlash queues a message for the next rendered page.
func AddFlash(c *fiber.Ctx, category, message string) {
	sess, ok := c.Locals(sessionKey).(*session.Session)
	if !ok {
		return
	}
	flashes := append(readFlashes(sess), Flash{Category: category, Message: message})
	encoded, err := json.Marshal(flashes)
	if err != nil {
		log.Printf("Error encoding flash messages: %v", err)
		return
	}
	sess.Set(flashesKey, string(encoded))
}

// Flashes returns and clears the queued messages.
func Flashes(c *fiber.Ctx) []Flash {
	sess, ok := c.Locals(sessionKey).(*session.Session)
	if !ok {
		return nil
	}
	flashes := readFlashes(sess)
	if len(flashes) > 0 {
		sess.Delete(flashesKey)
	}
	return flashes
}

func readFlashes(sess *session.Session) []Flash {
	raw, ok := sess.Get(flashesKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		log.Printf("Error decoding flash messages: %v", err)
		return nil
	}
	return flashes
}
