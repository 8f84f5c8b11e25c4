package pricing

import (
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const (
	convenienceFeeLabel = "Online Convenience Fee"
)

// Selection holds the checkout choices that influence pricing.
type Selection struct {
	DiscountCode string
	Delivery     model.DeliveryMethod
	Shipping     model.ShippingMethod
	Payment      model.PaymentMethod
}

// PricedLine is a cart line after the discount was applied.
type PricedLine struct {
	Name              string
	OriginalUnitPrice model.Cents
	UnitPrice         model.Cents
	Quantity          int
	Exempt            bool
	LineTotal         model.Cents
}

// Totals is the full price breakdown of a cart.
type Totals struct {
	Lines               []PricedLine
	DiscountCode        string
	DiscountBasisPoints int64
	Subtotal            model.Cents
	ShippingFee         model.Cents
	ConvenienceFee      model.Cents
	Total               model.Cents
	NonExemptCount      int
}

// PaymentLine is a single line item sent to the payment provider.
type PaymentLine struct {
	Label      string
	UnitAmount model.Cents
	Quantity   int
}

// Engine computes order totals from the pricing tables. It is safe for concurrent use.
type Engine struct {
	tables Tables
}

// NewEngine constructs Engine over the given tables.
func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// LookupDiscount resolves a code case-insensitively. Unknown codes report ok=false.
func (e *Engine) LookupDiscount(code string) (string, int64, bool) {
	normalized := normalizeCode(code)
	if normalized == "" {
		return "", 0, false
	}
	bps, ok := e.tables.DiscountCodes[normalized]
	if !ok {
		return "", 0, false
	}
	return normalized, bps, true
}

// ShippingFee returns the fee for the selection; unknown methods fall back to flat.
func (e *Engine) ShippingFee(sel Selection) model.Cents {
	if sel.Delivery != model.DeliveryShipping {
		return 0
	}
	if fee, ok := e.tables.ShippingFees[sel.Shipping]; ok {
		return fee
	}
	return e.tables.ShippingFees[model.ShippingFlat]
}

// Compute prices the cart. Discounts reduce each unit price before the fee base is taken.
func (e *Engine) Compute(items []model.CartItem, sel Selection) Totals {
	code, bps, _ := e.LookupDiscount(sel.DiscountCode)

	totals := Totals{
		Lines:               make([]PricedLine, 0, len(items)),
		DiscountCode:        code,
		DiscountBasisPoints: bps,
	}

	for _, item := range items {
		unit := Discounted(item.UnitPrice, bps)
		line := PricedLine{
			Name:              item.Name,
			OriginalUnitPrice: item.UnitPrice,
			UnitPrice:         unit,
			Quantity:          item.Quantity,
			Exempt:            item.Exempt,
			LineTotal:         unit * model.Cents(item.Quantity),
		}
		totals.Lines = append(totals.Lines, line)
		totals.Subtotal += line.LineTotal
		if !item.Exempt {
			totals.NonExemptCount += item.Quantity
		}
	}

	totals.ShippingFee = e.ShippingFee(sel)
	if sel.Payment != model.PaymentVenmo {
		totals.ConvenienceFee = PercentOf(totals.Subtotal, e.tables.ConvenienceFeeBPS)
	}
	totals.Total = totals.Subtotal + totals.ShippingFee + totals.ConvenienceFee

	return totals
}

// ValidateCharge rejects card payments whose total is not positive.
func (e *Engine) ValidateCharge(totals Totals, payment model.PaymentMethod) error {
	if payment == model.PaymentCard && totals.Total <= 0 {
		return domainErrors.ErrZeroTotal
	}
	return nil
}

// PaymentLines lays the totals out as provider line items: cart lines, then the fee, then shipping.
func (e *Engine) PaymentLines(totals Totals, sel Selection) []PaymentLine {
	lines := make([]PaymentLine, 0, len(totals.Lines)+2)
	for _, l := range totals.Lines {
		lines = append(lines, PaymentLine{Label: l.Name, UnitAmount: l.UnitPrice, Quantity: l.Quantity})
	}
	if totals.ConvenienceFee > 0 {
		lines = append(lines, PaymentLine{Label: convenienceFeeLabel, UnitAmount: totals.ConvenienceFee, Quantity: 1})
	}
	if totals.ShippingFee > 0 {
		method := sel.Shipping
		if method == "" {
			method = model.ShippingFlat
		}
		lines = append(lines, PaymentLine{Label: "Shipping (" + method.Label() + ")", UnitAmount: totals.ShippingFee, Quantity: 1})
	}
	return lines
}

// Discounted applies a basis-point discount to a unit price, rounding half-up to the cent.
func Discounted(unit model.Cents, bps int64) model.Cents {
	if bps <= 0 {
		return unit
	}
	if bps >= basisPoints {
		return 0
	}
	return PercentOf(unit, basisPoints-bps)
}

// PercentOf returns amount*bps/10000 rounded half-up.
func PercentOf(amount model.Cents, bps int64) model.Cents {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return model.Cents((int64(amount)*bps + basisPoints/2) / basisPoints)
}
