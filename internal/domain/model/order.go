package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryMethod describes how an order reaches the customer.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "shipping"
)

// ParseDeliveryMethod resolves a delivery method ignoring case and surrounding spaces.
func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	switch DeliveryMethod(strings.ToLower(strings.TrimSpace(s))) {
	case DeliveryPickup:
		return DeliveryPickup, true
	case DeliveryShipping:
		return DeliveryShipping, true
	}
	return "", false
}

// ShippingMethod keys the shipping fee table.
type ShippingMethod string

const (
	ShippingFlat           ShippingMethod = "flat"
	ShippingUSPSFirstClass ShippingMethod = "usps_first_class"
	ShippingUSPSPriority   ShippingMethod = "usps_priority"
	ShippingPickup         ShippingMethod = "pickup"
)

// Label renders the method for humans, e.g. "usps priority".
func (m ShippingMethod) Label() string {
	return strings.ReplaceAll(string(m), "_", " ")
}

// PaymentMethod is the channel the customer pays through.
type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "card"
	PaymentVenmo PaymentMethod = "venmo"
)

// ParsePaymentMethod resolves a payment method; "stripe" is accepted as card.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "stripe":
		return PaymentCard, true
	case "venmo":
		return PaymentVenmo, true
	}
	return "", false
}

// NotificationStatus tracks delivery of the order confirmation.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSending NotificationStatus = "SENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
	NotificationSkipped NotificationStatus = "SKIPPED"
)

// CartItem is a priced cart line. DiscountedPrice is set on stored orders when a
// discount changed the unit price actually charged.
type CartItem struct {
	Name            string `json:"name"`
	UnitPrice       Cents  `json:"price"`
	DiscountedPrice *Cents `json:"discounted_price,omitempty"`
	Quantity        int    `json:"quantity"`
	Exempt          bool   `json:"exempt,omitempty"`
	Size            string `json:"size,omitempty"`
	Fragrance       string `json:"fragrance,omitempty"`
	Variant         string `json:"variant,omitempty"`
}

// UnmarshalJSON accepts the legacy isFlour flag as an alias for exempt.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	type plain CartItem
	var aux struct {
		plain
		IsFlour bool `json:"isFlour"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = CartItem(aux.plain)
	if aux.IsFlour {
		i.Exempt = true
	}
	return nil
}

// EffectivePrice returns the charged unit price, falling back to the list price.
func (i CartItem) EffectivePrice() Cents {
	if i.DiscountedPrice != nil {
		return *i.DiscountedPrice
	}
	return i.UnitPrice
}

// SameLine reports whether two items describe the same product configuration.
func (i CartItem) SameLine(other CartItem) bool {
	return i.Name == other.Name &&
		i.UnitPrice == other.UnitPrice &&
		i.Exempt == other.Exempt &&
		i.Size == other.Size &&
		i.Fragrance == other.Fragrance &&
		i.Variant == other.Variant
}

// Address is a US shipping address.
type Address struct {
	Name  string `json:"name,omitempty"`
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// Complete reports whether the address carries every required field.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.Zip) != ""
}

// Order is an accepted purchase. Only NotificationStatus changes after insert.
type Order struct {
	ID                 int64
	Reference          uuid.UUID
	Name               string
	Email              string
	Phone              string
	DeliveryMethod     DeliveryMethod
	ShippingMethod     ShippingMethod
	PaymentMethod      PaymentMethod
	Cart               []CartItem
	DiscountCode       string
	Subtotal           Cents
	ShippingFee        Cents
	ConvenienceFee     Cents
	Total              Cents
	PickupDay          string
	ShippingAddress    *Address
	EmailOptIn         bool
	PaymentRef         string
	NotificationStatus NotificationStatus
	CreatedAt          time.Time
}

// DisplayTotal returns the stored total, or items plus shipping when the total was never recorded.
func (o Order) DisplayTotal() Cents {
	if o.Total != 0 || o.Subtotal != 0 || len(o.Cart) == 0 {
		return o.Total
	}
	var sum Cents
	for _, item := range o.Cart {
		sum += item.EffectivePrice() * Cents(item.Quantity)
	}
	return sum + o.ShippingFee
}

// ItemSummary renders cart lines as "Name (xN)" joined by commas.
func (o Order) ItemSummary() string {
	parts := make([]string, 0, len(o.Cart))
	for _, item := range o.Cart {
		parts = append(parts, item.Name+" (x"+strconv.Itoa(item.Quantity)+")")
	}
	return strings.Join(parts, ", ")
}
