package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderResponse represents a stored order.
type OrderResponse struct {
	ID                 int64            `json:"id"`
	Reference          string           `json:"reference"`
	Name               string           `json:"name,omitempty"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone,omitempty"`
	DeliveryMethod     string           `json:"delivery_method"`
	ShippingMethod     string           `json:"shipping_method"`
	PaymentMethod      string           `json:"payment_method"`
	Cart               []model.CartItem `json:"cart"`
	Items              string           `json:"items"`
	DiscountCode       string           `json:"discount_code,omitempty"`
	Subtotal           model.Cents      `json:"subtotal"`
	ShippingFee        model.Cents      `json:"shipping_fee"`
	ConvenienceFee     model.Cents      `json:"convenience_fee"`
	Total              model.Cents      `json:"total"`
	PickupDay          string           `json:"pickup_day,omitempty"`
	ShippingAddress    *model.Address   `json:"shipping_info,omitempty"`
	EmailOptIn         bool             `json:"email_opt_in"`
	NotificationStatus string           `json:"notification_status"`
	CreatedAt          time.Time        `json:"created_at"`
}

// CapacityResponse represents one pickup day.
type CapacityResponse struct {
	Date      string `json:"date"`
	Available int    `json:"available"`
	Ordered   int    `json:"ordered"`
	Remaining int    `json:"remaining"`
}

// SubscribersResponse lists opted-in emails.
type SubscribersResponse struct {
	Emails []string `json:"emails"`
}
