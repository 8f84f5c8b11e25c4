package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/capacity"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// AdminRepositoryStub stores admins in-memory for tests.
type AdminRepositoryStub struct {
	Admins map[string]*model.Admin
	ByID   map[int64]*model.Admin
	Next   int64
	Err    error
}

// NewAdminRepositoryStub constructs stub repository with initialized maps.
func NewAdminRepositoryStub() *AdminRepositoryStub {
	return &AdminRepositoryStub{
		Admins: make(map[string]*model.Admin),
		ByID:   make(map[int64]*model.Admin),
		Next:   1,
	}
}

// Create registers admin unless already exists or stub has explicit error.
func (s *AdminRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Admins == nil {
		s.Admins = make(map[string]*model.Admin)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.Admin)
	}
	if _, exists := s.Admins[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	admin := &model.Admin{ID: s.Next, Login: login, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.Next++
	s.Admins[login] = admin
	s.ByID[admin.ID] = admin
	return admin, nil
}

// GetByLogin fetches admin by login or returns not found.
func (s *AdminRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if admin, ok := s.Admins[login]; ok {
		return admin, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches admin by identifier or returns not found.
func (s *AdminRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if admin, ok := s.ByID[id]; ok {
		return admin, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps orders in memory and mirrors the store's capacity
// semantics. Function fields override individual methods.
type OrderRepositoryStub struct {
	CreateFn               func(context.Context, *model.Order) (*model.Order, error)
	CreateWithinCapacityFn func(context.Context, *model.Order, int) (*model.Order, error)
	ConsumedByDayFn        func(context.Context, string) (int, error)
	UpdateNotificationFn   func(context.Context, int64, model.NotificationStatus) error
	Err                    error

	mu                  sync.Mutex
	Orders              []model.Order
	CapacityCalls       []int
	NotificationUpdates []NotificationUpdate
}

// NotificationUpdate stores UpdateNotification invocations.
type NotificationUpdate struct {
	OrderID int64
	Status  model.NotificationStatus
}

func (s *OrderRepositoryStub) insert(order *model.Order) *model.Order {
	order.ID = int64(len(s.Orders) + 1)
	order.CreatedAt = time.Now()
	s.Orders = append(s.Orders, *order)
	return order
}

func (s *OrderRepositoryStub) consumed(day string) int {
	total := 0
	for _, o := range s.Orders {
		if o.PickupDay == day {
			total += capacity.NonExemptCount(o.Cart)
		}
	}
	return total
}

// Create appends order unless overridden.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(order), nil
}

// CreateWithinCapacity appends order when its items fit into limit.
func (s *OrderRepositoryStub) CreateWithinCapacity(ctx context.Context, order *model.Order, limit int) (*model.Order, error) {
	if s.CreateWithinCapacityFn != nil {
		return s.CreateWithinCapacityFn(ctx, order, limit)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CapacityCalls = append(s.CapacityCalls, limit)
	if _, err := capacity.Evaluate(order.PickupDay, limit, s.consumed(order.PickupDay), capacity.NonExemptCount(order.Cart)); err != nil {
		return nil, err
	}
	return s.insert(order), nil
}

// CreateFromPayment inserts at most one order per payment reference.
func (s *OrderRepositoryStub) CreateFromPayment(ctx context.Context, order *model.Order) (*model.Order, bool, error) {
	if s.Err != nil {
		return nil, false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.PaymentRef != "" && o.PaymentRef == order.PaymentRef {
			existing := o
			return &existing, false, nil
		}
	}
	return s.insert(order), true, nil
}

// GetByID returns stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// List returns stored orders newest first.
func (s *OrderRepositoryStub) List(ctx context.Context) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.Orders))
	copy(out, s.Orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ConsumedByDay sums non-exempt quantities of stored orders.
func (s *OrderRepositoryStub) ConsumedByDay(ctx context.Context, day string) (int, error) {
	if s.ConsumedByDayFn != nil {
		return s.ConsumedByDayFn(ctx, day)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed(day), nil
}

// ConsumedByAllDays groups non-exempt quantities by pickup day.
func (s *OrderRepositoryStub) ConsumedByAllDays(ctx context.Context) (map[string]int, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, o := range s.Orders {
		if o.PickupDay != "" {
			out[o.PickupDay] += capacity.NonExemptCount(o.Cart)
		}
	}
	return out, nil
}

// SelectBatchForNotification claims pending orders.
func (s *OrderRepositoryStub) SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for i := range s.Orders {
		if len(out) == limit {
			break
		}
		if s.Orders[i].NotificationStatus == model.NotificationPending {
			s.Orders[i].NotificationStatus = model.NotificationSending
			out = append(out, s.Orders[i])
		}
	}
	return out, nil
}

// UpdateNotification records the call and updates stored order.
func (s *OrderRepositoryStub) UpdateNotification(ctx context.Context, orderID int64, status model.NotificationStatus) error {
	if s.UpdateNotificationFn != nil {
		return s.UpdateNotificationFn(ctx, orderID, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NotificationUpdates = append(s.NotificationUpdates, NotificationUpdate{OrderID: orderID, Status: status})
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			s.Orders[i].NotificationStatus = status
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// ListOptInEmails returns distinct opted-in emails sorted.
func (s *OrderRepositoryStub) ListOptInEmails(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, o := range s.Orders {
		if !o.EmailOptIn {
			continue
		}
		if _, ok := seen[o.Email]; ok {
			continue
		}
		seen[o.Email] = struct{}{}
		out = append(out, o.Email)
	}
	sort.Strings(out)
	return out, nil
}

// CalendarStub serves fixed calendar entries.
type CalendarStub struct {
	Days  []model.CalendarEntry
	Err   error
	Calls int
}

// Entries returns configured days or error.
func (s *CalendarStub) Entries(ctx context.Context) ([]model.CalendarEntry, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Days, nil
}
