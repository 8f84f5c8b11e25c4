package dto

import "github.com/polkiloo/storefront/internal/domain/model"

// CheckoutRequest is the cart submission shared by estimate, card checkout and Venmo orders.
type CheckoutRequest struct {
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Cart           []model.CartItem `json:"cart"`
	DiscountCode   string           `json:"discount_code"`
	DeliveryMethod string           `json:"delivery_method"`
	ShippingMethod string           `json:"shipping_method"`
	PaymentMethod  string           `json:"payment_method"`
	PickupDay      string           `json:"pickup_day"`
	ShippingInfo   *model.Address   `json:"shipping_info,omitempty"`
	EmailOptIn     bool             `json:"email_opt_in"`
}

// PaymentLine is one line of the provider-facing breakdown.
type PaymentLine struct {
	Label      string      `json:"label"`
	UnitAmount model.Cents `json:"unit_amount"`
	Quantity   int         `json:"quantity"`
}

// EstimateResponse is the totals breakdown of a cart.
type EstimateResponse struct {
	Subtotal        model.Cents   `json:"subtotal"`
	ShippingFee     model.Cents   `json:"shipping_fee"`
	ConvenienceFee  model.Cents   `json:"convenience_fee"`
	Total           model.Cents   `json:"total"`
	DiscountCode    string        `json:"discount_code,omitempty"`
	DiscountApplied bool          `json:"discount_applied"`
	NonExemptCount  int           `json:"non_exempt_count"`
	Lines           []PaymentLine `json:"lines"`
}

// SessionResponse carries the hosted payment page location.
type SessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PlaceOrderResponse acknowledges a Venmo order.
type PlaceOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

// ErrorResponse is a rejection with a human-readable reason.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}
