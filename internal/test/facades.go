package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// ConfirmationUpdateCall stores information about MarkConfirmation invocations.
type ConfirmationUpdateCall struct {
	OrderID int64
	Status  model.NotificationStatus
}

// WorkerFacadeStub mimics worker interactions with storefront facade.
type WorkerFacadeStub struct {
	Orders          [][]model.Order
	OrdersFn        func(context.Context, int) ([]model.Order, error)
	SendFn          func(context.Context, model.Order) error
	MarkFn          func(context.Context, int64, model.NotificationStatus) error
	Updates         []ConfirmationUpdateCall
	Sent            []model.Order
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingConfirmations returns batches from configured queue.
func (s *WorkerFacadeStub) PendingConfirmations(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// SendConfirmation records sent orders.
func (s *WorkerFacadeStub) SendConfirmation(ctx context.Context, order model.Order) error {
	if s.SendFn != nil {
		return s.SendFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, order)
	return nil
}

// MarkConfirmation records status updates.
func (s *WorkerFacadeStub) MarkConfirmation(ctx context.Context, orderID int64, status model.NotificationStatus) error {
	if s.MarkFn != nil {
		return s.MarkFn(ctx, orderID, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, ConfirmationUpdateCall{OrderID: orderID, Status: status})
	return nil
}

// GatewayStub records payment sessions and returns configured events.
type GatewayStub struct {
	Requests []payment.SessionRequest
	Session  *payment.Session
	Event    *payment.Event
	Err      error
}

// CreateSession stores the request and returns the configured session.
func (s *GatewayStub) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Session != nil {
		return s.Session, nil
	}
	return &payment.Session{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

// ParseEvent returns the configured event.
func (s *GatewayStub) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Event, nil
}

// MailerStub captures sent messages.
type MailerStub struct {
	Err  error
	Sent []notify.Message
}

// Send records the message or returns configured error.
func (s *MailerStub) Send(ctx context.Context, msg notify.Message) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, msg)
	return nil
}

// HealthCheckerStub reports configured database health.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}

var (
	_ payment.Gateway = (*GatewayStub)(nil)
	_ notify.Mailer   = (*MailerStub)(nil)
)
