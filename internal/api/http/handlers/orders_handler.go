package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/order-service/internal/api/dto"
	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/service"
	apperrors "github.com/spec-kit/order-service/pkg/util/errorutil"
)

// OrdersHandler exposes order lifecycle and listing endpoints.
type OrdersHandler struct {
	lifecycle *service.OrderService
	queries   *service.OrderQueryService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(lifecycle *service.OrderService, queries *service.OrderQueryService) *OrdersHandler {
	return &OrdersHandler{lifecycle: lifecycle, queries: queries}
}

// CreateOrder POST /.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.lifecycle.CreateOrder(c.UserContext(), service.CreateOrderInput{
		UserID:   req.UserID,
		StatusID: req.StatusID,
		Products: req.Products,
		Total:    req.Total,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(orderResponse(order))
}

// ListOrders GET /.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.queries.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.OrderWithCustomerResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.OrderWithCustomerResponse{
			OrderResponse: orderResponse(&orders[i].Order),
			CustomerName:  orders[i].CustomerName,
		})
	}
	return c.JSON(items)
}

// UpdateStatus PUT /status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.lifecycle.UpdateOrderStatus(c.UserContext(), service.UpdateStatusInput{
		OrderID:  req.OrderID,
		StatusID: req.StatusID,
		UserID:   req.UserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(orderResponse(order))
}

func orderResponse(order *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		StatusID:  order.StatusID,
		Total:     json.Number(order.Total.String()),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
