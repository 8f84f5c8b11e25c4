package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create appends an order without any capacity guard.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	// CreateWithinCapacity increments the per-day counter only while it stays within limit,
	// inserting the order in the same transaction.
	CreateWithinCapacity(ctx context.Context, order *model.Order, limit int) (*model.Order, error)
	// CreateFromPayment inserts at most one order per payment reference.
	CreateFromPayment(ctx context.Context, order *model.Order) (*model.Order, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ConsumedByDay(ctx context.Context, day string) (int, error)
	ConsumedByAllDays(ctx context.Context) (map[string]int, error)
	SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error)
	UpdateNotification(ctx context.Context, orderID int64, status model.NotificationStatus) error
	ListOptInEmails(ctx context.Context) ([]string, error)
}
