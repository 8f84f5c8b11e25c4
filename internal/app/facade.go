package app

import (
	"context"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the order store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type StorefrontFacade struct {
	auth     *usecase.AdminAuthUseCase
	checkout *usecase.CheckoutUseCase
	capacity *usecase.CapacityUseCase
	orders   *usecase.OrderUseCase
	payments payment.Gateway
	mailer   notify.Mailer
	health   HealthChecker
	siteName string
}

func NewStorefrontFacade(
	auth *usecase.AdminAuthUseCase,
	checkout *usecase.CheckoutUseCase,
	capacity *usecase.CapacityUseCase,
	orders *usecase.OrderUseCase,
	payments payment.Gateway,
	mailer notify.Mailer,
	health HealthChecker,
	siteName string,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:     auth,
		checkout: checkout,
		capacity: capacity,
		orders:   orders,
		payments: payments,
		mailer:   mailer,
		health:   health,
		siteName: siteName,
	}
}

func (f *StorefrontFacade) Login(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Login(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) Estimate(ctx context.Context, in usecase.CheckoutInput) (*usecase.Estimate, error) {
	return f.checkout.Estimate(ctx, in)
}

func (f *StorefrontFacade) StartCardCheckout(ctx context.Context, in usecase.CheckoutInput) (*payment.Session, error) {
	return f.checkout.StartCardCheckout(ctx, in)
}

func (f *StorefrontFacade) PlaceVenmoOrder(ctx context.Context, in usecase.CheckoutInput) (*model.Order, error) {
	return f.checkout.PlaceVenmoOrder(ctx, in)
}

func (f *StorefrontFacade) ConfirmPayment(ctx context.Context, payload []byte, signature string) (*model.Order, bool, error) {
	event, err := f.payments.ParseEvent(payload, signature)
	if err != nil {
		return nil, false, err
	}
	return f.checkout.ConfirmPayment(ctx, event)
}

func (f *StorefrontFacade) CapacityStatus(ctx context.Context) ([]model.CapacityDay, error) {
	return f.capacity.Status(ctx)
}

func (f *StorefrontFacade) CapacityRemaining(ctx context.Context, day string) (model.CapacityDay, error) {
	return f.capacity.Remaining(ctx, day)
}

func (f *StorefrontFacade) Orders(ctx context.Context) ([]model.Order, error) {
	return f.orders.List(ctx)
}

func (f *StorefrontFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *StorefrontFacade) ResendConfirmation(ctx context.Context, id int64) error {
	return f.orders.ResendConfirmation(ctx, id)
}

func (f *StorefrontFacade) Subscribers(ctx context.Context) ([]string, error) {
	return f.orders.Subscribers(ctx)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *StorefrontFacade) PendingConfirmations(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.PendingConfirmations(ctx, limit)
}

func (f *StorefrontFacade) SendConfirmation(ctx context.Context, order model.Order) error {
	msg, err := notify.Render(f.siteName, order)
	if err != nil {
		return err
	}
	return f.mailer.Send(ctx, msg)
}

func (f *StorefrontFacade) MarkConfirmation(ctx context.Context, orderID int64, status model.NotificationStatus) error {
	return f.orders.MarkConfirmation(ctx, orderID, status)
}
