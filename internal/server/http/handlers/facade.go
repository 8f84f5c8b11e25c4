package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AdminFacade describes admin authentication capabilities required by handlers.
type AdminFacade interface {
	Login(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// CheckoutFacade prices carts and accepts orders.
type CheckoutFacade interface {
	Estimate(ctx context.Context, in usecase.CheckoutInput) (*usecase.Estimate, error)
	StartCardCheckout(ctx context.Context, in usecase.CheckoutInput) (*payment.Session, error)
	PlaceVenmoOrder(ctx context.Context, in usecase.CheckoutInput) (*model.Order, error)
	ConfirmPayment(ctx context.Context, payload []byte, signature string) (*model.Order, bool, error)
}

// CapacityFacade reports pickup slot availability.
type CapacityFacade interface {
	CapacityStatus(ctx context.Context) ([]model.CapacityDay, error)
	CapacityRemaining(ctx context.Context, day string) (model.CapacityDay, error)
}

// OrderFacade exposes stored orders to admins.
type OrderFacade interface {
	Orders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	ResendConfirmation(ctx context.Context, id int64) error
	Subscribers(ctx context.Context) ([]string, error)
}

// HealthFacade reports backing service health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AdminFacade
	CheckoutFacade
	CapacityFacade
	OrderFacade
	HealthFacade
}
