package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/notify"
	"github.com/spec-kit/order-service/internal/repository"
)

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]domain.Order
	nextID    int64
	createErr error
	listErr   error
	updates   int
}

func newFakeOrderRepo(seed ...domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: map[int64]domain.Order{}}
	for _, o := range seed {
		repo.orders[o.ID] = o
		if o.ID > repo.nextID {
			repo.nextID = o.ID
		}
	}
	return repo
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &order, nil
}

func (f *fakeOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	orders := make([]domain.Order, 0, len(f.orders))
	for id := int64(1); id <= f.nextID; id++ {
		if o, ok := f.orders[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, order *domain.Order, statusID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.StatusID = statusID
	stored.UpdatedAt = time.Now().UTC()
	f.orders[order.ID] = stored
	*order = stored
	f.updates++
	return nil
}

func (f *fakeOrderRepo) stored(id int64) (domain.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	return o, ok
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[int64]domain.User
	findErr error
	lookups int
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int64]domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) FindByFilter(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.findErr != nil {
		return nil, f.findErr
	}
	users := []domain.User{}
	for _, u := range f.users {
		if filter.ID != nil && u.ID != *filter.ID {
			continue
		}
		if filter.Email != nil && u.Email != *filter.Email {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

type fakeQueue struct {
	sent []notify.QueueMessage
	err  error
}

func (f *fakeQueue) Send(_ context.Context, msg notify.QueueMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "queue-" + msg.ID, nil
}

type fakeEmail struct {
	sent []notify.Email
	err  error
}

func (f *fakeEmail) Send(_ context.Context, email notify.Email) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, email)
	return "email-" + email.ID, nil
}

type fakeTopic struct {
	published []notify.TopicMessage
	err       error
}

func (f *fakeTopic) Publish(_ context.Context, msg notify.TopicMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, msg)
	return "topic-1", nil
}

type recordedStep struct {
	step    string
	outcome string
}

type fakeRecorder struct {
	mu    sync.Mutex
	steps []recordedStep
}

func (f *fakeRecorder) RecordStep(step, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, recordedStep{step: step, outcome: outcome})
}

func (f *fakeRecorder) outcome(step string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.steps {
		if s.step == step {
			return s.outcome
		}
	}
	return ""
}
