// Package facadestub provides a configurable storefront facade for HTTP tests.
package facadestub

import (
	"context"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
	"github.com/polkiloo/storefront/internal/usecase"
)

// StorefrontFacadeStub implements every handler facade through optional function fields.
type StorefrontFacadeStub struct {
	LoginFn       func(context.Context, string, string) (string, error)
	ParseFn       func(string) (int64, error)
	EstimateFn    func(context.Context, usecase.CheckoutInput) (*usecase.Estimate, error)
	CheckoutFn    func(context.Context, usecase.CheckoutInput) (*payment.Session, error)
	VenmoFn       func(context.Context, usecase.CheckoutInput) (*model.Order, error)
	ConfirmFn     func(context.Context, []byte, string) (*model.Order, bool, error)
	StatusFn      func(context.Context) ([]model.CapacityDay, error)
	RemainingFn   func(context.Context, string) (model.CapacityDay, error)
	OrdersFn      func(context.Context) ([]model.Order, error)
	OrderFn       func(context.Context, int64) (*model.Order, error)
	ResendFn      func(context.Context, int64) error
	SubscribersFn func(context.Context) ([]string, error)
	HealthErr     error
}

// Login returns a fixed token unless overridden.
func (s StorefrontFacadeStub) Login(ctx context.Context, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken accepts any token unless overridden.
func (s StorefrontFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Estimate returns an empty estimate unless overridden.
func (s StorefrontFacadeStub) Estimate(ctx context.Context, in usecase.CheckoutInput) (*usecase.Estimate, error) {
	if s.EstimateFn != nil {
		return s.EstimateFn(ctx, in)
	}
	return &usecase.Estimate{Totals: pricing.Totals{}}, nil
}

// StartCardCheckout returns a fixed session unless overridden.
func (s StorefrontFacadeStub) StartCardCheckout(ctx context.Context, in usecase.CheckoutInput) (*payment.Session, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, in)
	}
	return &payment.Session{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

// PlaceVenmoOrder echoes the submission as a stored order unless overridden.
func (s StorefrontFacadeStub) PlaceVenmoOrder(ctx context.Context, in usecase.CheckoutInput) (*model.Order, error) {
	if s.VenmoFn != nil {
		return s.VenmoFn(ctx, in)
	}
	return &model.Order{ID: 1, Email: in.Email, Cart: in.Items, PaymentMethod: model.PaymentVenmo}, nil
}

// ConfirmPayment ignores the event unless overridden.
func (s StorefrontFacadeStub) ConfirmPayment(ctx context.Context, payload []byte, signature string) (*model.Order, bool, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, payload, signature)
	}
	return nil, false, nil
}

// CapacityStatus returns no days unless overridden.
func (s StorefrontFacadeStub) CapacityStatus(ctx context.Context) ([]model.CapacityDay, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx)
	}
	return nil, nil
}

// CapacityRemaining returns an empty day unless overridden.
func (s StorefrontFacadeStub) CapacityRemaining(ctx context.Context, day string) (model.CapacityDay, error) {
	if s.RemainingFn != nil {
		return s.RemainingFn(ctx, day)
	}
	return model.CapacityDay{Date: day}, nil
}

// Orders returns no orders unless overridden.
func (s StorefrontFacadeStub) Orders(ctx context.Context) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return nil, nil
}

// Order returns a bare order unless overridden.
func (s StorefrontFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id}, nil
}

// ResendConfirmation succeeds unless overridden.
func (s StorefrontFacadeStub) ResendConfirmation(ctx context.Context, id int64) error {
	if s.ResendFn != nil {
		return s.ResendFn(ctx, id)
	}
	return nil
}

// Subscribers returns no emails unless overridden.
func (s StorefrontFacadeStub) Subscribers(ctx context.Context) ([]string, error) {
	if s.SubscribersFn != nil {
		return s.SubscribersFn(ctx)
	}
	return nil, nil
}

// HealthCheck returns the configured error.
func (s StorefrontFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
