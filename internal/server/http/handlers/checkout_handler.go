package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 64 << 10
)

// CheckoutHandler serves cart pricing, checkout and the payment callback.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Estimate handles POST /api/cart/estimate.
func (h *CheckoutHandler) Estimate(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	est, err := h.facade.Estimate(c.Request.Context(), toCheckoutInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	lines := make([]dto.PaymentLine, 0, len(est.Lines))
	for _, l := range est.Lines {
		lines = append(lines, dto.PaymentLine{Label: l.Label, UnitAmount: l.UnitAmount, Quantity: l.Quantity})
	}
	c.JSON(http.StatusOK, dto.EstimateResponse{
		Subtotal:        est.Totals.Subtotal,
		ShippingFee:     est.Totals.ShippingFee,
		ConvenienceFee:  est.Totals.ConvenienceFee,
		Total:           est.Totals.Total,
		DiscountCode:    est.Totals.DiscountCode,
		DiscountApplied: est.DiscountApplied,
		NonExemptCount:  est.Totals.NonExemptCount,
		Lines:           lines,
	})
}

// Session handles POST /api/checkout/session.
func (h *CheckoutHandler) Session(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	session, err := h.facade.StartCardCheckout(c.Request.Context(), toCheckoutInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{ID: session.ID, URL: session.URL})
}

// PlaceOrder handles POST /api/orders for orders paid with Venmo.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}
	if req.PaymentMethod != "" {
		if method, ok := model.ParsePaymentMethod(req.PaymentMethod); !ok || method != model.PaymentVenmo {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "card payments go through the checkout session", Field: "payment_method"})
			return
		}
	}

	order, err := h.facade.PlaceVenmoOrder(c.Request.Context(), toCheckoutInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PlaceOrderResponse{Success: true, Order: toOrderResponse(*order)})
}

// Webhook handles POST /webhook. The raw body is needed for signature verification.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "payload too large"})
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}

	order, created, err := h.facade.ConfirmPayment(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"received": true}
	if order != nil {
		response["order_id"] = order.ID
		response["duplicate"] = !created
	}
	c.JSON(http.StatusOK, response)
}
