package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/repository"
	apperrors "github.com/spec-kit/order-service/pkg/util/errorutil"
)

// UnknownCustomerName is shown for orders whose owner cannot be found.
const UnknownCustomerName = "Unknown"

const defaultLookupConcurrency = 8

// OrderWithCustomer is an order joined with its owner's display name.
type OrderWithCustomer struct {
	domain.Order
	CustomerName string
}

// OrderQueryService serves read-only order listings.
type OrderQueryService struct {
	orders      repository.OrderRepository
	users       repository.UserRepository
	concurrency int
}

// NewOrderQueryService constructs the service. concurrency bounds the per-order user lookups.
func NewOrderQueryService(orders repository.OrderRepository, users repository.UserRepository, concurrency int) (*OrderQueryService, error) {
	if orders == nil || users == nil {
		return nil, errors.New("order and user repositories are required")
	}
	if concurrency <= 0 {
		concurrency = defaultLookupConcurrency
	}
	return &OrderQueryService{orders: orders, users: users, concurrency: concurrency}, nil
}

// ListOrders returns every order in store order with its customer name attached.
func (s *OrderQueryService) ListOrders(ctx context.Context) ([]OrderWithCustomer, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	result := make([]OrderWithCustomer, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range orders {
		i := i
		g.Go(func() error {
			userID := orders[i].UserID
			users, err := s.users.FindByFilter(gctx, repository.UserFilter{ID: &userID})
			if err != nil {
				return err
			}
			name := UnknownCustomerName
			if len(users) > 0 {
				name = users[0].Name
			}
			result[i] = OrderWithCustomer{Order: orders[i], CustomerName: name}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}
