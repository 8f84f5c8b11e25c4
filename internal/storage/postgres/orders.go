package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/storefront/internal/capacity"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, reference, name, email, phone, delivery_method, shipping_method, payment_method,
                      cart, discount_code, subtotal_cents, shipping_fee_cents, convenience_fee_cents, total_cents,
                      pickup_day, shipping_address, email_opt_in, payment_ref, notification_status, created_at`

const insertOrder = `INSERT INTO orders (reference, name, email, phone, delivery_method, shipping_method, payment_method,
                     cart, discount_code, subtotal_cents, shipping_fee_cents, convenience_fee_cents, total_cents,
                     pickup_day, shipping_address, email_opt_in, payment_ref, notification_status)
                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// nonExemptQuantity expands the JSONB cart and keeps items that consume capacity.
const nonExemptQuantity = `FROM orders, jsonb_array_elements(orders.cart) AS item
                           WHERE NOT COALESCE((item->>'exempt')::boolean, FALSE)`

const (
	seedCounter = `INSERT INTO pickup_capacity (day, consumed)
                   SELECT $1, COALESCE(SUM((item->>'quantity')::int), 0) ` + nonExemptQuantity + ` AND orders.pickup_day = $1
                   ON CONFLICT (day) DO NOTHING`
	incrementWithinLimit = `UPDATE pickup_capacity SET consumed = consumed + $2
                            WHERE day = $1 AND consumed + $2 <= $3
                            RETURNING consumed`
	incrementCounter = `UPDATE pickup_capacity SET consumed = consumed + $2 WHERE day = $1`
	selectCounter    = `SELECT consumed FROM pickup_capacity WHERE day = $1`
)

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if order.PickupDay == "" {
		if err := r.insert(ctx, r.storage.pool, order, ""); err != nil {
			return nil, err
		}
		return order, nil
	}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, seedCounter, order.PickupDay); err != nil {
			return persistenceError("seed pickup counter", err)
		}
		if err := r.insert(ctx, tx, order, ""); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, incrementCounter, order.PickupDay, capacity.NonExemptCount(order.Cart)); err != nil {
			return persistenceError("increment pickup counter", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateWithinCapacity(ctx context.Context, order *model.Order, limit int) (*model.Order, error) {
	if order.PickupDay == "" {
		return r.Create(ctx, order)
	}

	requested := capacity.NonExemptCount(order.Cart)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, seedCounter, order.PickupDay); err != nil {
			return persistenceError("seed pickup counter", err)
		}

		var consumed int
		err := tx.QueryRow(ctx, incrementWithinLimit, order.PickupDay, requested, limit).Scan(&consumed)
		if errors.Is(err, pgx.ErrNoRows) {
			if err := tx.QueryRow(ctx, selectCounter, order.PickupDay).Scan(&consumed); err != nil {
				return persistenceError("read pickup counter", err)
			}
			return &domainErrors.CapacityExceededError{
				Day:       order.PickupDay,
				Remaining: max(limit-consumed, 0),
				Requested: requested,
			}
		}
		if err != nil {
			return persistenceError("reserve pickup capacity", err)
		}

		return r.insert(ctx, tx, order, "")
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateFromPayment(ctx context.Context, order *model.Order) (*model.Order, bool, error) {
	if order.PaymentRef == "" {
		return nil, false, domainErrors.Invalid("payment_ref", "is required")
	}

	created := true
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if order.PickupDay != "" {
			if _, err := tx.Exec(ctx, seedCounter, order.PickupDay); err != nil {
				return persistenceError("seed pickup counter", err)
			}
		}

		err := r.insert(ctx, tx, order, "ON CONFLICT (payment_ref) DO NOTHING")
		if errors.Is(err, pgx.ErrNoRows) {
			created = false
			return nil
		}
		if err != nil {
			return err
		}

		if order.PickupDay != "" {
			if _, err := tx.Exec(ctx, incrementCounter, order.PickupDay, capacity.NonExemptCount(order.Cart)); err != nil {
				return persistenceError("increment pickup counter", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		existing, err := r.getByPaymentRef(ctx, order.PaymentRef)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return order, true, nil
}

func (r *orderRepository) insert(ctx context.Context, q queryer, order *model.Order, conflict string) error {
	cart, err := json.Marshal(order.Cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	var address []byte
	if order.ShippingAddress != nil {
		if address, err = json.Marshal(order.ShippingAddress); err != nil {
			return fmt.Errorf("encode address: %w", err)
		}
	}

	query := insertOrder
	if conflict != "" {
		query += " " + conflict
	}
	query += " RETURNING id, created_at"

	err = q.QueryRow(ctx, query,
		order.Reference,
		order.Name,
		order.Email,
		order.Phone,
		string(order.DeliveryMethod),
		string(order.ShippingMethod),
		string(order.PaymentMethod),
		cart,
		order.DiscountCode,
		int64(order.Subtotal),
		int64(order.ShippingFee),
		int64(order.ConvenienceFee),
		int64(order.Total),
		order.PickupDay,
		address,
		order.EmailOptIn,
		nullable(order.PaymentRef),
		string(order.NotificationStatus),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return persistenceError("insert order", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) getByPaymentRef(ctx context.Context, ref string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_ref=$1`
	return r.getOne(ctx, query, ref)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, persistenceError("get order", err)
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, persistenceError("list orders", err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistenceError("scan order", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list orders", err)
	}
	return result, nil
}

func (r *orderRepository) ConsumedByDay(ctx context.Context, day string) (int, error) {
	query := `SELECT COALESCE(SUM((item->>'quantity')::int), 0) ` + nonExemptQuantity + ` AND orders.pickup_day = $1`
	var consumed int
	if err := r.storage.pool.QueryRow(ctx, query, day).Scan(&consumed); err != nil {
		return 0, persistenceError("sum pickup day", err)
	}
	return consumed, nil
}

func (r *orderRepository) ConsumedByAllDays(ctx context.Context) (map[string]int, error) {
	query := `SELECT orders.pickup_day, COALESCE(SUM((item->>'quantity')::int), 0) ` + nonExemptQuantity +
		` AND orders.pickup_day <> '' GROUP BY orders.pickup_day`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, persistenceError("sum pickup days", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			day      string
			consumed int
		)
		if err := rows.Scan(&day, &consumed); err != nil {
			return nil, persistenceError("scan pickup day", err)
		}
		result[day] = consumed
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("sum pickup days", err)
	}
	return result, nil
}

// staleClaim is how long a SENDING row may stay claimed before another
// poll takes it over. Covers dispatchers stopped or killed mid-batch.
const staleClaim = `INTERVAL '10 minutes'`

func (r *orderRepository) SelectBatchForNotification(ctx context.Context, limit int) ([]model.Order, error) {
	selectQuery := `SELECT ` + orderColumns + `
                    FROM orders
                    WHERE notification_status = 'PENDING'
                       OR (notification_status = 'SENDING' AND notification_claimed_at < NOW() - ` + staleClaim + `)
                    ORDER BY created_at
                    LIMIT $1
                    FOR UPDATE SKIP LOCKED`

	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, *o)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		for i := range orders {
			if _, err := tx.Exec(ctx, `UPDATE orders SET notification_status='SENDING', notification_claimed_at=NOW() WHERE id=$1`, orders[i].ID); err != nil {
				return err
			}
			orders[i].NotificationStatus = model.NotificationSending
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError("select confirmations", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateNotification(ctx context.Context, orderID int64, status model.NotificationStatus) error {
	const query = `UPDATE orders SET notification_status=$1 WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, string(status), orderID)
	if err != nil {
		return persistenceError("update notification", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListOptInEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT email FROM orders WHERE email_opt_in AND email <> '' ORDER BY email`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, persistenceError("list subscribers", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, persistenceError("scan subscriber", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list subscribers", err)
	}
	return emails, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                                   model.Order
		delivery, shipping, payment, status string
		cart, address                       []byte
		subtotal, shippingFee, fee, total   int64
		paymentRef                          *string
	)
	err := row.Scan(
		&o.ID, &o.Reference, &o.Name, &o.Email, &o.Phone, &delivery, &shipping, &payment,
		&cart, &o.DiscountCode, &subtotal, &shippingFee, &fee, &total,
		&o.PickupDay, &address, &o.EmailOptIn, &paymentRef, &status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cart, &o.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if len(address) > 0 {
		o.ShippingAddress = &model.Address{}
		if err := json.Unmarshal(address, o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	if paymentRef != nil {
		o.PaymentRef = *paymentRef
	}
	o.DeliveryMethod = model.DeliveryMethod(delivery)
	o.ShippingMethod = model.ShippingMethod(shipping)
	o.PaymentMethod = model.PaymentMethod(payment)
	o.NotificationStatus = model.NotificationStatus(status)
	o.Subtotal = model.Cents(subtotal)
	o.ShippingFee = model.Cents(shippingFee)
	o.ConvenienceFee = model.Cents(fee)
	o.Total = model.Cents(total)
	return &o, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
