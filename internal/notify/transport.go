// Package notify holds the one-way transports used for order notifications:
// a work queue, a transactional email sender and a customer broadcast topic.
package notify

import "context"

// QueueMessage is a single work-queue entry.
type QueueMessage struct {
	ID   string
	Key  string
	Body []byte
}

// Email is a plain-text transactional message.
type Email struct {
	ID      string
	To      []string
	Subject string
	Body    string
}

// TopicMessage is a broadcast to every subscriber of the customer topic.
type TopicMessage struct {
	Text       string
	Attributes map[string]string
}

// QueueSender delivers work-queue messages and returns the transport's message id.
type QueueSender interface {
	Send(ctx context.Context, msg QueueMessage) (string, error)
}

// EmailSender delivers transactional email and returns the transport's message id.
type EmailSender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// TopicPublisher broadcasts to the customer topic and returns the server message id.
type TopicPublisher interface {
	Publish(ctx context.Context, msg TopicMessage) (string, error)
}
