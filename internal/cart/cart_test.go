package cart

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
)

func newCart() *Cart {
	return New(pricing.NewEngine(pricing.DefaultTables()), pricing.Selection{
		Delivery: model.DeliveryPickup,
		Payment:  model.PaymentCard,
	})
}

func TestAddMergesIdenticalLines(t *testing.T) {
	c := newCart()
	require.NoError(t, c.Add(model.CartItem{Name: "Candle", UnitPrice: 1200, Quantity: 1, Fragrance: "Cedar"}))
	require.NoError(t, c.Add(model.CartItem{Name: " Candle ", UnitPrice: 1200, Quantity: 2, Fragrance: "Cedar"}))
	require.NoError(t, c.Add(model.CartItem{Name: "Candle", UnitPrice: 1200, Quantity: 1, Fragrance: "Lavender"}))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, model.Cents(4800), c.Totals().Subtotal)
}

func TestAddValidates(t *testing.T) {
	c := newCart()
	cases := []model.CartItem{
		{Name: "", UnitPrice: 100, Quantity: 1},
		{Name: "Soap", UnitPrice: -1, Quantity: 1},
		{Name: "Soap", UnitPrice: 100, Quantity: 0},
	}
	for _, item := range cases {
		assert.ErrorIs(t, c.Add(item), domainErrors.ErrValidation)
	}
	assert.Empty(t, c.Items())
}

func TestMutationsEmitTotals(t *testing.T) {
	c := newCart()
	var got []pricing.Totals
	c.Subscribe(func(totals pricing.Totals) { got = append(got, totals) })

	require.NoError(t, c.Add(model.CartItem{Name: "Bread", UnitPrice: 1000, Quantity: 1}))
	require.NoError(t, c.UpdateQuantity(0, 2))
	c.Select(pricing.Selection{DiscountCode: "ICON10", Delivery: model.DeliveryPickup, Payment: model.PaymentCard})
	require.NoError(t, c.Add(model.CartItem{Name: "Flour", UnitPrice: 500, Quantity: 4, Exempt: true}))
	require.NoError(t, c.Remove(1))

	require.Len(t, got, 5)
	assert.Equal(t, model.Cents(1030), got[0].Total)
	assert.Equal(t, model.Cents(2060), got[1].Total)
	assert.Equal(t, model.Cents(1854), got[2].Total)
	assert.Equal(t, 2, got[3].NonExemptCount)
	assert.Equal(t, model.Cents(1854), got[4].Total)
	assert.Equal(t, got[4], c.Totals())
}

func TestUpdateAndRemoveOutOfRange(t *testing.T) {
	c := newCart()
	emitted := 0
	c.Subscribe(func(pricing.Totals) { emitted++ })
	assert.ErrorIs(t, c.UpdateQuantity(0, 1), domainErrors.ErrValidation)
	assert.ErrorIs(t, c.Remove(3), domainErrors.ErrValidation)

	require.NoError(t, c.Add(model.CartItem{Name: "Bread", UnitPrice: 1000, Quantity: 1}))
	assert.ErrorIs(t, c.UpdateQuantity(0, 0), domainErrors.ErrValidation)
	assert.Equal(t, 1, emitted)
}

func TestClear(t *testing.T) {
	c := newCart()
	require.NoError(t, c.Add(model.CartItem{Name: "Bread", UnitPrice: 1000, Quantity: 1}))
	c.Clear()
	assert.Empty(t, c.Items())
	assert.Equal(t, model.Cents(0), c.Totals().Total)
}

func TestFromItems(t *testing.T) {
	engine := pricing.NewEngine(pricing.DefaultTables())
	sel := pricing.Selection{Delivery: model.DeliveryShipping, Shipping: model.ShippingFlat, Payment: model.PaymentVenmo}

	c, err := FromItems(engine, sel, []model.CartItem{{Name: "Bread", UnitPrice: 1000, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, model.Cents(1700), c.Totals().Total)
	assert.Equal(t, sel, c.Selection())

	_, err = FromItems(engine, sel, []model.CartItem{{Name: "Bread", UnitPrice: 1000, Quantity: 0}})
	assert.ErrorIs(t, err, domainErrors.ErrValidation)
}

func TestConcurrentMutations(t *testing.T) {
	c := newCart()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Add(model.CartItem{Name: "Bread", UnitPrice: 100, Quantity: 1})
		}()
	}
	wg.Wait()
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 20, c.Items()[0].Quantity)
	assert.Equal(t, model.Cents(2000), c.Totals().Subtotal)
}
