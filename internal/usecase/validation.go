package usecase

import (
	"strings"

	"github.com/polkiloo/storefront/internal/capacity"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
)

// CheckoutInput is a checkout submission as received from the storefront.
type CheckoutInput struct {
	Name            string
	Email           string
	Phone           string
	Items           []model.CartItem
	DiscountCode    string
	DeliveryMethod  string
	ShippingMethod  string
	PaymentMethod   string
	PickupDay       string
	ShippingAddress *model.Address
	EmailOptIn      bool
}

// checkoutRequest is a validated CheckoutInput.
type checkoutRequest struct {
	CheckoutInput
	selection pricing.Selection
	pickupDay string
}

// parseSelection resolves the pricing choices. An empty delivery method means pickup
// and unknown shipping methods are priced as flat.
func parseSelection(in CheckoutInput, payment model.PaymentMethod) (pricing.Selection, error) {
	sel := pricing.Selection{DiscountCode: in.DiscountCode, Payment: payment}

	if strings.TrimSpace(in.DeliveryMethod) == "" {
		sel.Delivery = model.DeliveryPickup
	} else {
		delivery, ok := model.ParseDeliveryMethod(in.DeliveryMethod)
		if !ok {
			return pricing.Selection{}, domainErrors.Invalid("deliveryMethod", "must be pickup or shipping")
		}
		sel.Delivery = delivery
	}

	if sel.Delivery == model.DeliveryPickup {
		sel.Shipping = model.ShippingPickup
		return sel, nil
	}
	switch method := model.ShippingMethod(strings.ToLower(strings.TrimSpace(in.ShippingMethod))); method {
	case model.ShippingFlat, model.ShippingUSPSFirstClass, model.ShippingUSPSPriority:
		sel.Shipping = method
	default:
		sel.Shipping = model.ShippingFlat
	}
	return sel, nil
}

// validateCheckout checks a submission before any side effect happens.
func validateCheckout(in CheckoutInput, payment model.PaymentMethod) (*checkoutRequest, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domainErrors.Invalid("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return nil, domainErrors.Invalid("email", "is not an email address")
	}
	if len(in.Items) == 0 {
		return nil, domainErrors.Invalid("cart", "is empty")
	}

	sel, err := parseSelection(in, payment)
	if err != nil {
		return nil, err
	}

	req := &checkoutRequest{CheckoutInput: in, selection: sel}
	req.Email = email
	req.Name = strings.TrimSpace(in.Name)
	req.Phone = strings.TrimSpace(in.Phone)

	switch sel.Delivery {
	case model.DeliveryPickup:
		req.pickupDay = capacity.NormalizeKey(in.PickupDay)
		if req.pickupDay == "" {
			return nil, domainErrors.Invalid("pickupDay", "is required for pickup")
		}
		req.ShippingAddress = nil
	case model.DeliveryShipping:
		// Card orders let the payment page collect the address.
		if payment == model.PaymentVenmo && (in.ShippingAddress == nil || !in.ShippingAddress.Complete()) {
			return nil, domainErrors.Invalid("shippingAddress", "line1, city, state and zip are required")
		}
	}
	return req, nil
}
