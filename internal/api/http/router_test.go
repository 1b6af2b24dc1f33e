package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/order-service/internal/api/http/handlers"
	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/notify"
	"github.com/spec-kit/order-service/internal/observability"
	"github.com/spec-kit/order-service/internal/repository"
	"github.com/spec-kit/order-service/internal/service"
)

type memoryOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *memoryOrders) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = int64(len(m.orders) + 1)
	order.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order.UpdatedAt = order.CreatedAt
	m.orders = append(m.orders, *order)
	return nil
}

func (m *memoryOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryOrders) List(_ context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order{}, m.orders...), nil
}

func (m *memoryOrders) UpdateStatus(_ context.Context, order *domain.Order, statusID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == order.ID {
			m.orders[i].StatusID = statusID
			*order = m.orders[i]
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memoryUsers map[int64]domain.User

func (m memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m[id]; ok {
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (m memoryUsers) FindByFilter(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if filter.ID == nil {
		return nil, nil
	}
	if u, ok := m[*filter.ID]; ok {
		return []domain.User{u}, nil
	}
	return nil, nil
}

type stubQueue struct{ err error }

func (s *stubQueue) Send(context.Context, notify.QueueMessage) (string, error) { return "q-1", s.err }

type stubEmail struct{ err error }

func (s *stubEmail) Send(context.Context, notify.Email) (string, error) { return "e-1", s.err }

type stubTopic struct{ err error }

func (s *stubTopic) Publish(context.Context, notify.TopicMessage) (string, error) { return "t-1", s.err }

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app    *fiber.App
	orders *memoryOrders
	queue  *stubQueue
	topic  *stubTopic
}

func newTestServer(t *testing.T, users memoryUsers, readiness error) *testServer {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	ts := &testServer{orders: &memoryOrders{}, queue: &stubQueue{}, topic: &stubTopic{}}
	notifications, err := service.NewNotificationService(service.NotificationDependencies{
		Queue: ts.queue, Email: &stubEmail{}, Topic: ts.topic, Logger: logger,
	})
	require.NoError(t, err)
	lifecycle, err := service.NewOrderService(service.OrderDependencies{
		OrderRepo: ts.orders, UserRepo: users, Notifications: notifications, Logger: logger, Recorder: metrics,
	})
	require.NoError(t, err)
	queries, err := service.NewOrderQueryService(ts.orders, users, 2)
	require.NoError(t, err)

	ts.app = fiber.New()
	RegisterMiddlewares(ts.app, logger, metrics, time.Second)
	RegisterRoutes(ts.app, RouteConfig{
		Health:   handlers.NewHealthHandler("order-service", "test", handlers.Dependency{Name: "postgres", Pinger: stubPinger{err: readiness}}),
		Orders:   handlers.NewOrdersHandler(lifecycle, queries),
		Gatherer: reg,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

const createBody = `{"userId":1,"statusId":2,"products":[{"sku":"A"}],"total":25.5,"email":"ana@example.com"}`

func TestCreateOrderRoute(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)

	status, body, _ := ts.do(t, nethttp.MethodPost, "/", createBody)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, float64(2), body["statusId"])
	assert.Equal(t, 25.5, body["total"])
}

func TestCreateOrderRouteQueueFailure(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)
	ts.queue.err = errors.New("queue down")

	status, body, _ := ts.do(t, nethttp.MethodPost, "/", createBody)
	require.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, "failed to enqueue order", body["message"])
	assert.Len(t, ts.orders.orders, 1, "order row remains")
}

func TestCreateOrderRouteTopicFailure(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)
	ts.topic.err = errors.New("topic down")

	status, body, _ := ts.do(t, nethttp.MethodPost, "/", createBody)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(1), body["id"])
}

func TestCreateOrderRouteRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)

	status, body, _ := ts.do(t, nethttp.MethodPost, "/", `{"userId":`)
	require.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "invalid payload", body["error"])
}

func TestListOrdersRoute(t *testing.T) {
	ts := newTestServer(t, memoryUsers{1: {ID: 1, Name: "Ana"}}, nil)

	_, _, raw := ts.do(t, nethttp.MethodGet, "/", "")
	assert.JSONEq(t, `[]`, string(raw))

	ts.do(t, nethttp.MethodPost, "/", createBody)
	ts.do(t, nethttp.MethodPost, "/", `{"userId":7,"statusId":1,"total":3,"email":"x@example.com"}`)

	status, _, raw := ts.do(t, nethttp.MethodGet, "/", "")
	require.Equal(t, nethttp.StatusOK, status)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Ana", items[0]["customerName"])
	assert.Equal(t, "Unknown", items[1]["customerName"])
}

func TestUpdateStatusRoute(t *testing.T) {
	ts := newTestServer(t, memoryUsers{1: {ID: 1, Name: "Ana", Email: "ana@example.com"}}, nil)
	ts.do(t, nethttp.MethodPost, "/", createBody)

	status, body, _ := ts.do(t, nethttp.MethodPut, "/status", `{"orderId":1,"statusId":3,"userId":1}`)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(3), body["statusId"])

	status, body, _ = ts.do(t, nethttp.MethodPut, "/status", `{"orderId":99,"statusId":3,"userId":1}`)
	require.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "order not found", body["message"])

	status, body, _ = ts.do(t, nethttp.MethodPut, "/status", `{"orderId":1,"statusId":8,"userId":42}`)
	require.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "user not found", body["message"])
	assert.Equal(t, int64(8), ts.orders.orders[0].StatusID, "status persisted despite missing user")
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)
	status, body, _ := ts.do(t, nethttp.MethodGet, "/health/live", "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = ts.do(t, nethttp.MethodGet, "/health/ready", "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	ts.do(t, nethttp.MethodPost, "/", createBody)
	status, _, raw := ts.do(t, nethttp.MethodGet, "/metrics", "")
	require.Equal(t, nethttp.StatusOK, status)
	assert.Contains(t, string(raw), `order_lifecycle_steps_total{outcome="success",step="enqueue_order"} 1`)

	down := newTestServer(t, memoryUsers{}, errors.New("connection refused"))
	status, body, _ = down.do(t, nethttp.MethodGet, "/health/ready", "")
	require.Equal(t, nethttp.StatusServiceUnavailable, status)
	assert.Equal(t, "one or more dependencies unavailable", body["error"])
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ts := newTestServer(t, memoryUsers{}, nil)
	status, body, _ := ts.do(t, nethttp.MethodGet, "/nope", "")
	require.Equal(t, nethttp.StatusNotFound, status)
	assert.NotEmpty(t, body["message"])
}
