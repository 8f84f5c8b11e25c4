package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "reference", "name", "email", "phone", "delivery_method", "shipping_method", "payment_method",
	"cart", "discount_code", "subtotal_cents", "shipping_fee_cents", "convenience_fee_cents", "total_cents",
	"pickup_day", "shipping_address", "email_opt_in", "payment_ref", "notification_status", "created_at",
}

const cartJSON = `[{"name":"Sourdough","price":10,"quantity":2},{"name":"Flour","price":4.5,"quantity":3,"exempt":true}]`

func insertArgs() []any {
	args := make([]any, 18)
	for i := range args {
		args[i] = pgxmockv3.AnyArg()
	}
	return args
}

func pickupOrder() *model.Order {
	return &model.Order{
		Reference:      uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		DeliveryMethod: model.DeliveryPickup,
		ShippingMethod: model.ShippingPickup,
		PaymentMethod:  model.PaymentCard,
		Cart: []model.CartItem{
			{Name: "Sourdough", UnitPrice: 1000, Quantity: 2},
			{Name: "Flour", UnitPrice: 450, Quantity: 3, Exempt: true},
		},
		Subtotal:           3350,
		ConvenienceFee:     101,
		Total:              3451,
		PickupDay:          "March 1, 2025",
		NotificationStatus: model.NotificationPending,
	}
}

func addOrderRow(rows *pgxmockv3.Rows, id int64, status model.NotificationStatus, now time.Time) *pgxmockv3.Rows {
	ref := "cs_test"
	return rows.AddRow(
		id, uuid.New(), "Ada", "ada@example.com", "", "pickup", "pickup", "card",
		[]byte(cartJSON), "", int64(3350), int64(0), int64(101), int64(3451),
		"March 1, 2025", nil, true, &ref, string(status), now,
	)
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs()...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectExec("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	order, err := repo.Create(context.Background(), pickupOrder())
	if err != nil || order.ID != 7 || !order.CreatedAt.Equal(now) {
		t.Fatalf("unexpected result: order=%+v err=%v", order, err)
	}

	shipped := pickupOrder()
	shipped.PickupDay = ""
	shipped.DeliveryMethod = model.DeliveryShipping
	shipped.ShippingAddress = &model.Address{Line1: "1 Main", City: "Austin", State: "TX", Zip: "78701"}
	mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs()...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))
	if order, err := repo.Create(context.Background(), shipped); err != nil || order.ID != 8 {
		t.Fatalf("unexpected result: order=%+v err=%v", order, err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs()...).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), shipped); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnError(errors.New("seed"))
	mock.ExpectRollback()
	if _, err := repo.Create(context.Background(), pickupOrder()); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateWithinCapacity(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	t.Run("reserved", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectQuery("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2, 5).WillReturnRows(
			pgxmockv3.NewRows([]string{"consumed"}).AddRow(5))
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs()...).WillReturnRows(
			pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))
		mock.ExpectCommit()

		order, err := repo.CreateWithinCapacity(context.Background(), pickupOrder(), 5)
		if err != nil || order.ID != 3 {
			t.Fatalf("unexpected result: order=%+v err=%v", order, err)
		}
	})

	t.Run("exceeded", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectQuery("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2, 5).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT consumed FROM pickup_capacity").WithArgs("March 1, 2025").WillReturnRows(
			pgxmockv3.NewRows([]string{"consumed"}).AddRow(4))
		mock.ExpectRollback()

		_, err := repo.CreateWithinCapacity(context.Background(), pickupOrder(), 5)
		var capErr *domainErrors.CapacityExceededError
		if !errors.As(err, &capErr) {
			t.Fatalf("expected capacity error, got %v", err)
		}
		if capErr.Remaining != 1 || capErr.Requested != 2 {
			t.Fatalf("unexpected capacity error: %+v", capErr)
		}
	})

	t.Run("counter above limit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectQuery("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2, 5).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT consumed FROM pickup_capacity").WithArgs("March 1, 2025").WillReturnRows(
			pgxmockv3.NewRows([]string{"consumed"}).AddRow(9))
		mock.ExpectRollback()

		_, err := repo.CreateWithinCapacity(context.Background(), pickupOrder(), 5)
		var capErr *domainErrors.CapacityExceededError
		if !errors.As(err, &capErr) || capErr.Remaining != 0 {
			t.Fatalf("expected clamped remaining, got %v", err)
		}
	})

	t.Run("increment failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectQuery("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2, 5).WillReturnError(errors.New("lock"))
		mock.ExpectRollback()

		if _, err := repo.CreateWithinCapacity(context.Background(), pickupOrder(), 5); !errors.Is(err, domainErrors.ErrPersistence) {
			t.Fatalf("expected persistence error, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateFromPayment(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	order := pickupOrder()
	order.PaymentRef = "cs_test"

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO orders .* ON CONFLICT \\(payment_ref\\) DO NOTHING").WithArgs(insertArgs()...).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))
	mock.ExpectExec("UPDATE pickup_capacity SET consumed").WithArgs("March 1, 2025", 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	saved, created, err := repo.CreateFromPayment(context.Background(), order)
	if err != nil || !created || saved.ID != 4 {
		t.Fatalf("unexpected result: order=%+v created=%v err=%v", saved, created, err)
	}

	replay := pickupOrder()
	replay.PaymentRef = "cs_test"
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_capacity").WithArgs("March 1, 2025").WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
	mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs()...).WillReturnError(pgx.ErrNoRows)
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM orders WHERE payment_ref=").WithArgs("cs_test").WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 4, model.NotificationSent, now))

	existing, created, err := repo.CreateFromPayment(context.Background(), replay)
	if err != nil || created || existing.ID != 4 || existing.NotificationStatus != model.NotificationSent {
		t.Fatalf("unexpected replay result: order=%+v created=%v err=%v", existing, created, err)
	}

	if _, _, err := repo.CreateFromPayment(context.Background(), pickupOrder()); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetAndList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM orders WHERE id=").WithArgs(int64(1)).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 1, model.NotificationPending, now))
	order, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Cart) != 2 || !order.Cart[1].Exempt || order.Cart[0].UnitPrice != 1000 {
		t.Fatalf("unexpected cart: %+v", order.Cart)
	}
	if order.Total != 3451 || order.PaymentRef != "cs_test" || order.ShippingAddress != nil {
		t.Fatalf("unexpected order: %+v", order)
	}

	mock.ExpectQuery("SELECT .* FROM orders WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT .* FROM orders ORDER BY created_at DESC").WillReturnRows(
		addOrderRow(addOrderRow(pgxmockv3.NewRows(orderColumnNames), 2, model.NotificationSent, now), 1, model.NotificationSent, now))
	orders, err := repo.List(context.Background())
	if err != nil || len(orders) != 2 || orders[0].ID != 2 {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}

	mock.ExpectQuery("SELECT .* FROM orders ORDER BY created_at DESC").WillReturnError(errors.New("query"))
	if _, err := repo.List(context.Background()); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	mock.ExpectQuery("SELECT .* FROM orders ORDER BY created_at DESC").WillReturnRows(
		pgxmockv3.NewRows(orderColumnNames))
	orders, err = repo.List(context.Background())
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", orders, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.List(context.Background()); err == nil || !strings.Contains(err.Error(), "rows err") {
		t.Fatalf("expected rows err, got %v", err)
	}
	if _, err := repo.ConsumedByAllDays(context.Background()); err == nil || !strings.Contains(err.Error(), "rows err") {
		t.Fatalf("expected rows err, got %v", err)
	}
	if _, err := repo.ListOptInEmails(context.Background()); err == nil || !strings.Contains(err.Error(), "rows err") {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryConsumed(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("SELECT COALESCE\\(SUM").WithArgs("March 1, 2025").WillReturnRows(
		pgxmockv3.NewRows([]string{"sum"}).AddRow(3))
	consumed, err := repo.ConsumedByDay(context.Background(), "March 1, 2025")
	if err != nil || consumed != 3 {
		t.Fatalf("unexpected result: %d err=%v", consumed, err)
	}

	mock.ExpectQuery("SELECT COALESCE\\(SUM").WithArgs("March 2, 2025").WillReturnError(errors.New("boom"))
	if _, err := repo.ConsumedByDay(context.Background(), "March 2, 2025"); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	mock.ExpectQuery("SELECT orders.pickup_day").WillReturnRows(
		pgxmockv3.NewRows([]string{"pickup_day", "sum"}).AddRow("March 1, 2025", 3).AddRow("March 2, 2025", 1))
	byDay, err := repo.ConsumedByAllDays(context.Background())
	if err != nil || byDay["March 1, 2025"] != 3 || byDay["March 2, 2025"] != 1 {
		t.Fatalf("unexpected result: %v err=%v", byDay, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSelectBatchForNotification(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM orders WHERE notification_status = 'PENDING'").WithArgs(5).WillReturnRows(
		addOrderRow(addOrderRow(pgxmockv3.NewRows(orderColumnNames), 1, model.NotificationPending, now), 2, model.NotificationPending, now))
	mock.ExpectExec("UPDATE orders SET notification_status='SENDING'").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET notification_status='SENDING'").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	orders, err := repo.SelectBatchForNotification(context.Background(), 5)
	if err != nil || len(orders) != 2 || orders[0].NotificationStatus != model.NotificationSending {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM orders WHERE notification_status = 'PENDING'").WithArgs(1).WillReturnError(errors.New("query"))
	mock.ExpectRollback()
	if _, err := repo.SelectBatchForNotification(context.Background(), 1); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM orders WHERE notification_status = 'PENDING'").WithArgs(1).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 1, model.NotificationPending, now))
	mock.ExpectExec("UPDATE orders SET notification_status='SENDING'").WithArgs(int64(1)).WillReturnError(errors.New("update"))
	mock.ExpectRollback()
	if _, err := repo.SelectBatchForNotification(context.Background(), 1); err == nil {
		t.Fatal("expected update error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSelectBatchForNotificationReclaimsStaleClaims(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE notification_status = 'PENDING' OR \(notification_status = 'SENDING' AND notification_claimed_at < NOW\(\) - INTERVAL`).
		WithArgs(2).
		WillReturnRows(addOrderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.NotificationSending, now))
	mock.ExpectExec("UPDATE orders SET notification_status='SENDING', notification_claimed_at=NOW\\(\\)").
		WithArgs(int64(7)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	orders, err := repo.SelectBatchForNotification(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 7 || orders[0].NotificationStatus != model.NotificationSending {
		t.Fatalf("expected abandoned claim to be picked up again, got %+v", orders)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSelectBatchForNotificationRowsError(t *testing.T) {
	rows := &errorRows{err: errors.New("rows err")}
	tx := &rowsErrorTx{rows: rows}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.SelectBatchForNotification(context.Background(), 1); err == nil || !strings.Contains(err.Error(), "rows err") {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryUpdateNotification(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectExec("UPDATE orders SET notification_status=").WithArgs("SENT", int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateNotification(context.Background(), 1, model.NotificationSent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET notification_status=").WithArgs("FAILED", int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateNotification(context.Background(), 2, model.NotificationFailed); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET notification_status=").WithArgs("SENT", int64(3)).WillReturnError(errors.New("boom"))
	if err := repo.UpdateNotification(context.Background(), 3, model.NotificationSent); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListOptInEmails(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("SELECT DISTINCT email FROM orders").WillReturnRows(
		pgxmockv3.NewRows([]string{"email"}).AddRow("a@example.com").AddRow("b@example.com"))
	emails, err := repo.ListOptInEmails(context.Background())
	if err != nil || len(emails) != 2 || emails[0] != "a@example.com" {
		t.Fatalf("unexpected result: %v err=%v", emails, err)
	}

	mock.ExpectQuery("SELECT DISTINCT email FROM orders").WillReturnError(errors.New("boom"))
	if _, err := repo.ListOptInEmails(context.Background()); !errors.Is(err, domainErrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
