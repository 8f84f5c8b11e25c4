package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/capacity"
	"github.com/polkiloo/storefront/internal/cart"
	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pricing"
)

// Metadata keys stored on the payment session next to the cart chunks.
const (
	metaPaymentMethod  = "payment_method"
	metaDeliveryMethod = "delivery_method"
	metaShippingMethod = "shipping_method"
	metaShippingFee    = "shipping_fee"
	metaDiscountCode   = "discount_code"
	metaPickupDay      = "pickup_day"
	metaEmailOptIn     = "emailOptIn"
	metaName           = "name"
	metaEmail          = "email"
	metaPhone          = "phone"
	metaTotal          = "totalAmount"
	metaShippingInfo   = "shipping_info"
)

// Estimate is a priced cart without side effects.
type Estimate struct {
	Totals          pricing.Totals
	Lines           []pricing.PaymentLine
	DiscountApplied bool
}

// CheckoutUseCase turns carts into payment sessions and orders.
type CheckoutUseCase struct {
	engine     *pricing.Engine
	capacity   *CapacityUseCase
	orders     repository.OrderRepository
	payments   payment.Gateway
	successURL string
	cancelURL  string
	logger     *slog.Logger
	newRef     func() uuid.UUID
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	engine *pricing.Engine,
	capacityUC *CapacityUseCase,
	orders repository.OrderRepository,
	payments payment.Gateway,
	cfg *config.Config,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		engine:     engine,
		capacity:   capacityUC,
		orders:     orders,
		payments:   payments,
		successURL: cfg.CheckoutSuccessURL,
		cancelURL:  cfg.CheckoutCancelURL,
		logger:     logger,
		newRef:     uuid.New,
	}
}

// Estimate prices the cart for the given choices. Payment defaults to card.
func (u *CheckoutUseCase) Estimate(ctx context.Context, in CheckoutInput) (*Estimate, error) {
	method := model.PaymentCard
	if strings.TrimSpace(in.PaymentMethod) != "" {
		parsed, ok := model.ParsePaymentMethod(in.PaymentMethod)
		if !ok {
			return nil, domainErrors.Invalid("paymentMethod", "must be card or venmo")
		}
		method = parsed
	}

	sel, err := parseSelection(in, method)
	if err != nil {
		return nil, err
	}
	c, err := cart.FromItems(u.engine, sel, in.Items)
	if err != nil {
		return nil, err
	}

	totals := c.Totals()
	return &Estimate{
		Totals:          totals,
		Lines:           u.engine.PaymentLines(totals, sel),
		DiscountApplied: totals.DiscountCode != "",
	}, nil
}

// StartCardCheckout validates the submission and opens a hosted payment page.
// The order is written later, when the provider confirms payment.
func (u *CheckoutUseCase) StartCardCheckout(ctx context.Context, in CheckoutInput) (*payment.Session, error) {
	req, err := validateCheckout(in, model.PaymentCard)
	if err != nil {
		return nil, err
	}
	c, err := cart.FromItems(u.engine, req.selection, req.Items)
	if err != nil {
		return nil, err
	}

	totals := c.Totals()
	if err := u.engine.ValidateCharge(totals, model.PaymentCard); err != nil {
		return nil, err
	}
	if req.selection.Delivery == model.DeliveryPickup {
		if _, err := u.capacity.Check(ctx, req.pickupDay, totals.NonExemptCount); err != nil {
			return nil, err
		}
	}

	meta, err := payment.EncodeCart(c.Items())
	if err != nil {
		return nil, err
	}
	meta[metaPaymentMethod] = string(model.PaymentCard)
	meta[metaDeliveryMethod] = string(req.selection.Delivery)
	meta[metaShippingMethod] = string(req.selection.Shipping)
	meta[metaShippingFee] = totals.ShippingFee.String()
	meta[metaDiscountCode] = totals.DiscountCode
	meta[metaPickupDay] = req.pickupDay
	meta[metaEmailOptIn] = strconv.FormatBool(req.EmailOptIn)
	meta[metaName] = req.Name
	meta[metaEmail] = req.Email
	meta[metaPhone] = req.Phone
	meta[metaTotal] = totals.Total.String()
	if req.ShippingAddress != nil {
		if raw, err := json.Marshal(req.ShippingAddress); err == nil {
			meta[metaShippingInfo] = string(raw)
		}
	}

	session, err := u.payments.CreateSession(ctx, payment.SessionRequest{
		Lines:           u.engine.PaymentLines(totals, req.selection),
		CustomerEmail:   req.Email,
		CollectShipping: req.selection.Delivery == model.DeliveryShipping,
		Metadata:        meta,
		SuccessURL:      u.successURL,
		CancelURL:       u.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("checkout session created",
		slog.String("session", session.ID),
		slog.String("total", totals.Total.String()),
	)
	return session, nil
}

// PlaceVenmoOrder records an order paid out of band. No fee is charged and the
// total may be zero.
func (u *CheckoutUseCase) PlaceVenmoOrder(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	req, err := validateCheckout(in, model.PaymentVenmo)
	if err != nil {
		return nil, err
	}
	c, err := cart.FromItems(u.engine, req.selection, req.Items)
	if err != nil {
		return nil, err
	}

	totals := c.Totals()
	if err := u.engine.ValidateCharge(totals, model.PaymentVenmo); err != nil {
		return nil, err
	}

	order := u.newOrder(req, c.Items(), totals)
	if req.selection.Delivery == model.DeliveryPickup {
		order, err = u.capacity.Reserve(ctx, order)
	} else {
		order, err = u.orders.Create(ctx, order)
	}
	if err != nil {
		return nil, err
	}

	u.logger.Info("venmo order accepted", slog.Int64("order", order.ID), slog.String("total", order.Total.String()))
	return order, nil
}

// ConfirmPayment persists the order behind a verified payment event. Replays of
// the same event return the stored order with created=false.
func (u *CheckoutUseCase) ConfirmPayment(ctx context.Context, event *payment.Event) (*model.Order, bool, error) {
	if event == nil || !event.Handled {
		return nil, false, nil
	}
	if event.SessionID == "" {
		return nil, false, domainErrors.Invalid("session", "is missing")
	}

	meta := event.Metadata
	items, err := payment.DecodeCart(meta)
	if err != nil {
		return nil, false, domainErrors.Invalid("metadata", err.Error())
	}

	sel, err := parseSelection(CheckoutInput{
		DiscountCode:   meta[metaDiscountCode],
		DeliveryMethod: meta[metaDeliveryMethod],
		ShippingMethod: meta[metaShippingMethod],
	}, model.PaymentCard)
	if err != nil {
		return nil, false, err
	}
	c, err := cart.FromItems(u.engine, sel, items)
	if err != nil {
		return nil, false, err
	}
	totals := c.Totals()

	if event.AmountTotal != totals.Total {
		u.logger.Warn("charged amount differs from recomputed total",
			slog.String("session", event.SessionID),
			slog.String("charged", event.AmountTotal.String()),
			slog.String("computed", totals.Total.String()),
		)
	}

	req := &checkoutRequest{
		CheckoutInput: CheckoutInput{
			Name:            firstNonEmpty(meta[metaName], event.Name),
			Email:           firstNonEmpty(event.Email, meta[metaEmail]),
			Phone:           firstNonEmpty(meta[metaPhone], event.Phone),
			DiscountCode:    meta[metaDiscountCode],
			ShippingAddress: event.ShippingAddress,
			EmailOptIn:      meta[metaEmailOptIn] == "true",
		},
		selection: sel,
	}
	if sel.Delivery == model.DeliveryPickup {
		req.pickupDay = capacity.NormalizeKey(meta[metaPickupDay])
	} else if req.ShippingAddress == nil && meta[metaShippingInfo] != "" {
		var addr model.Address
		if err := json.Unmarshal([]byte(meta[metaShippingInfo]), &addr); err == nil {
			req.ShippingAddress = &addr
		}
	}

	order := u.newOrder(req, c.Items(), totals)
	order.PaymentRef = event.SessionID
	if event.AmountTotal > 0 {
		order.Total = event.AmountTotal
	}

	saved, created, err := u.orders.CreateFromPayment(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if !created {
		u.logger.Info("payment confirmation replayed", slog.String("session", event.SessionID), slog.Int64("order", saved.ID))
		return saved, false, nil
	}

	u.logger.Info("card order accepted", slog.Int64("order", saved.ID), slog.String("total", saved.Total.String()))
	return saved, true, nil
}

func (u *CheckoutUseCase) newOrder(req *checkoutRequest, items []model.CartItem, totals pricing.Totals) *model.Order {
	order := &model.Order{
		Reference:          u.newRef(),
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		DeliveryMethod:     req.selection.Delivery,
		ShippingMethod:     req.selection.Shipping,
		PaymentMethod:      req.selection.Payment,
		Cart:               chargedItems(items, totals),
		DiscountCode:       totals.DiscountCode,
		Subtotal:           totals.Subtotal,
		ShippingFee:        totals.ShippingFee,
		ConvenienceFee:     totals.ConvenienceFee,
		Total:              totals.Total,
		EmailOptIn:         req.EmailOptIn,
		NotificationStatus: model.NotificationPending,
	}
	if req.selection.Delivery == model.DeliveryPickup {
		order.PickupDay = req.pickupDay
	} else {
		order.ShippingAddress = req.ShippingAddress
	}
	if strings.TrimSpace(order.Email) == "" {
		order.NotificationStatus = model.NotificationSkipped
	}
	return order
}

// chargedItems snapshots the cart with the unit price actually charged recorded
// next to the list price. The lines of totals follow the order of items.
func chargedItems(items []model.CartItem, totals pricing.Totals) []model.CartItem {
	out := make([]model.CartItem, len(items))
	for i, item := range items {
		item.DiscountedPrice = nil
		if i < len(totals.Lines) && totals.Lines[i].UnitPrice != item.UnitPrice {
			price := totals.Lines[i].UnitPrice
			item.DiscountedPrice = &price
		}
		out[i] = item
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
