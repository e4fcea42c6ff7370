package services

import "log"

// Routing keys of the domain events published after successful mutations.
const (
	EventUserRegistered = "user.registered"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
)

// EventPublisher is implemented by the message broker client.
type EventPublisher interface {
	PublishEvent(routingKey string, payload map[string]interface{}) error
}

// publishEvent never fails the request: the row is already committed, so a
// broker outage only costs the notification.
func publishEvent(p EventPublisher, routingKey string, payload map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(routingKey, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
		return
	}
	log.Printf("Successfully published %s event", routingKey)
}
