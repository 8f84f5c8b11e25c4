package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderUseCase serves the admin views and the confirmation queue.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// List returns orders newest first.
func (u *OrderUseCase) List(ctx context.Context) ([]model.Order, error) {
	return u.orders.List(ctx)
}

// Get returns a single order.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// ResendConfirmation puts the order back into the confirmation queue.
func (u *OrderUseCase) ResendConfirmation(ctx context.Context, id int64) error {
	return u.orders.UpdateNotification(ctx, id, model.NotificationPending)
}

// Subscribers returns distinct emails of customers who opted in.
func (u *OrderUseCase) Subscribers(ctx context.Context) ([]string, error) {
	return u.orders.ListOptInEmails(ctx)
}

// PendingConfirmations claims a batch of orders waiting for a confirmation.
func (u *OrderUseCase) PendingConfirmations(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectBatchForNotification(ctx, limit)
}

// MarkConfirmation records the delivery outcome.
func (u *OrderUseCase) MarkConfirmation(ctx context.Context, orderID int64, status model.NotificationStatus) error {
	return u.orders.UpdateNotification(ctx, orderID, status)
}
