package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/order-service/internal/events"
	"github.com/spec-kit/order-service/internal/notify"
)

// StatusEmailSubject is the fixed subject of status change emails.
const StatusEmailSubject = "Your order status has been updated"

// NotificationService turns lifecycle events into transport messages.
type NotificationService struct {
	queue  notify.QueueSender
	email  notify.EmailSender
	topic  notify.TopicPublisher
	logger *zap.Logger
}

// NotificationDependencies bundles the transports.
type NotificationDependencies struct {
	Queue  notify.QueueSender
	Email  notify.EmailSender
	Topic  notify.TopicPublisher
	Logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) (*NotificationService, error) {
	if deps.Queue == nil || deps.Email == nil || deps.Topic == nil {
		return nil, errors.New("queue, email and topic transports are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		queue:  deps.Queue,
		email:  deps.Email,
		topic:  deps.Topic,
		logger: logger,
	}, nil
}

// EnqueueOrder sends the created order to the work queue.
func (n *NotificationService) EnqueueOrder(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event.QueuePayload())
	if err != nil {
		return fmt.Errorf("marshal queue payload: %w", err)
	}
	id, err := n.queue.Send(ctx, notify.QueueMessage{
		ID:   event.ID,
		Key:  strconv.FormatInt(event.OrderID, 10),
		Body: body,
	})
	if err != nil {
		return err
	}
	n.logger.Info("order enqueued", zap.Int64("order_id", event.OrderID), zap.String("message_id", id))
	return nil
}

// EmailStatusChange mails the customer about a new order status.
func (n *NotificationService) EmailStatusChange(ctx context.Context, event events.Event) error {
	id, err := n.email.Send(ctx, notify.Email{
		ID:      event.ID,
		To:      []string{event.Recipient},
		Subject: StatusEmailSubject,
		Body:    event.Text,
	})
	if err != nil {
		return err
	}
	n.logger.Info("status email sent", zap.Int64("order_id", event.OrderID), zap.String("message_id", id))
	return nil
}

// BroadcastToCustomers publishes the event text on the customer topic.
func (n *NotificationService) BroadcastToCustomers(ctx context.Context, event events.Event) error {
	id, err := n.topic.Publish(ctx, notify.TopicMessage{
		Text: event.Text,
		Attributes: map[string]string{
			"event_id":   event.ID,
			"event_kind": string(event.Kind),
			"order_id":   strconv.FormatInt(event.OrderID, 10),
		},
	})
	if err != nil {
		return err
	}
	n.logger.Info("customer notification published",
		zap.Int64("order_id", event.OrderID),
		zap.String("event_kind", string(event.Kind)),
		zap.String("message_id", id))
	return nil
}

// OrderConfirmedText is the broadcast sent after an order is created.
func OrderConfirmedText(orderID int64) string {
	return fmt.Sprintf("Your order with ID %d has been confirmed.", orderID)
}

// StatusChangedText is the email body and broadcast for a status change.
func StatusChangedText(orderID, statusID int64) string {
	return fmt.Sprintf("The status of your order %d has changed to %d.", orderID, statusID)
}
