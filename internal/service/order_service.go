package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/events"
	"github.com/spec-kit/order-service/internal/repository"
	apperrors "github.com/spec-kit/order-service/pkg/util/errorutil"
)

// Lifecycle step names, also used as metric labels.
const (
	StepPersistOrder       = "persist_order"
	StepEnqueueOrder       = "enqueue_order"
	StepBroadcastConfirmed = "broadcast_order_confirmed"
	StepLoadOrder          = "load_order"
	StepUpdateStatus       = "update_order_status"
	StepLoadUser           = "load_user"
	StepEmailStatus        = "email_status_change"
	StepBroadcastStatus    = "broadcast_status_change"
)

// OrderService runs the order lifecycle: writes to the store followed by notifications.
type OrderService struct {
	orders        repository.OrderRepository
	users         repository.UserRepository
	notifications *NotificationService
	logger        *zap.Logger
	recorder      events.Recorder
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo     repository.OrderRepository
	UserRepo      repository.UserRepository
	Notifications *NotificationService
	Logger        *zap.Logger
	Recorder      events.Recorder
}

// CreateOrderInput describes an order creation request. Products is accepted
// as sent by the client and not persisted.
type CreateOrderInput struct {
	UserID   int64
	StatusID int64
	Products json.RawMessage
	Total    decimal.Decimal
	Email    string
}

// UpdateStatusInput describes a status change request.
type UpdateStatusInput struct {
	OrderID  int64
	StatusID int64
	UserID   int64
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) (*OrderService, error) {
	if deps.OrderRepo == nil || deps.UserRepo == nil {
		return nil, errors.New("order and user repositories are required")
	}
	if deps.Notifications == nil {
		return nil, errors.New("notification service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:        deps.OrderRepo,
		users:         deps.UserRepo,
		notifications: deps.Notifications,
		logger:        logger,
		recorder:      deps.Recorder,
	}, nil
}

// CreateOrder persists the order, enqueues it and broadcasts a confirmation.
// A queue failure fails the request but leaves the order row in place.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	order := &domain.Order{
		UserID:   input.UserID,
		StatusID: input.StatusID,
		Total:    input.Total,
	}
	var event events.Event

	report := events.Run(ctx, s.logger.With(zap.String("operation", "create_order")), s.recorder,
		events.Step{Name: StepPersistOrder, Policy: events.Fatal, Run: func(ctx context.Context) error {
			if err := s.orders.Create(ctx, order); err != nil {
				return apperrors.NewInternalError(err)
			}
			event = events.New(events.KindOrderCreated, order.ID)
			event.UserID = order.UserID
			event.StatusID = order.StatusID
			event.Total = order.Total
			event.Recipient = input.Email
			event.Text = OrderConfirmedText(order.ID)
			return nil
		}},
		events.Step{Name: StepEnqueueOrder, Policy: events.Fatal, Run: func(ctx context.Context) error {
			if err := s.notifications.EnqueueOrder(ctx, event); err != nil {
				return apperrors.NewDownstreamFailure("failed to enqueue order", err)
			}
			return nil
		}},
		events.Step{Name: StepBroadcastConfirmed, Policy: events.NonFatal, Run: func(ctx context.Context) error {
			return s.notifications.BroadcastToCustomers(ctx, event)
		}},
	)
	if err := report.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus moves the order to any requested status and notifies the customer.
// A missing user is reported after the new status has already been stored.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error) {
	var (
		order *domain.Order
		user  *domain.User
		event events.Event
	)

	report := events.Run(ctx, s.logger.With(zap.String("operation", "update_order_status")), s.recorder,
		events.Step{Name: StepLoadOrder, Policy: events.Fatal, Run: func(ctx context.Context) error {
			found, err := s.orders.GetByID(ctx, input.OrderID)
			if err != nil {
				return lookupError("order", input.OrderID, err)
			}
			order = found
			return nil
		}},
		events.Step{Name: StepUpdateStatus, Policy: events.Fatal, Run: func(ctx context.Context) error {
			if err := s.orders.UpdateStatus(ctx, order, input.StatusID); err != nil {
				return apperrors.NewInternalError(err)
			}
			return nil
		}},
		events.Step{Name: StepLoadUser, Policy: events.Fatal, Run: func(ctx context.Context) error {
			found, err := s.users.GetByID(ctx, input.UserID)
			if err != nil {
				return lookupError("user", input.UserID, err)
			}
			user = found
			event = events.New(events.KindOrderStatusChanged, order.ID)
			event.UserID = user.ID
			event.StatusID = input.StatusID
			event.Total = order.Total
			event.Recipient = user.Email
			event.Text = StatusChangedText(order.ID, input.StatusID)
			return nil
		}},
		events.Step{Name: StepEmailStatus, Policy: events.NonFatal, Run: func(ctx context.Context) error {
			return s.notifications.EmailStatusChange(ctx, event)
		}},
		events.Step{Name: StepBroadcastStatus, Policy: events.NonFatal, Run: func(ctx context.Context) error {
			return s.notifications.BroadcastToCustomers(ctx, event)
		}},
	)
	if err := report.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func lookupError(resource string, id int64, err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}
