package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/usecase"
)

const genericFailure = "something went wrong, please try again"

// CurrentAdminID extracts authenticated admin identifier from context.
func CurrentAdminID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.AdminIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// respondError maps domain errors to status codes. Causes of internal failures
// are attached to the context for the request logger and never returned.
func respondError(c *gin.Context, err error) {
	var (
		vErr   *domainErrors.ValidationError
		capErr *domainErrors.CapacityExceededError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Error(), Field: vErr.Field})
	case errors.As(err, &capErr):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:     capErr.Error(),
			Remaining: &capErr.Remaining,
			Requested: &capErr.Requested,
		})
	case errors.Is(err, domainErrors.ErrUnknownDate), errors.Is(err, domainErrors.ErrZeroTotal):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.ErrInvalidSignature.Error()})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: domainErrors.ErrInvalidCredentials.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.ErrNotFound.Error()})
	case errors.Is(err, domainErrors.ErrUpstreamUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: genericFailure})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: genericFailure})
	}
}

func toCheckoutInput(req dto.CheckoutRequest) usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Items:           req.Cart,
		DiscountCode:    req.DiscountCode,
		DeliveryMethod:  req.DeliveryMethod,
		ShippingMethod:  req.ShippingMethod,
		PaymentMethod:   req.PaymentMethod,
		PickupDay:       req.PickupDay,
		ShippingAddress: req.ShippingInfo,
		EmailOptIn:      req.EmailOptIn,
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                 order.ID,
		Reference:          order.Reference.String(),
		Name:               order.Name,
		Email:              order.Email,
		Phone:              order.Phone,
		DeliveryMethod:     string(order.DeliveryMethod),
		ShippingMethod:     string(order.ShippingMethod),
		PaymentMethod:      string(order.PaymentMethod),
		Cart:               order.Cart,
		Items:              order.ItemSummary(),
		DiscountCode:       order.DiscountCode,
		Subtotal:           order.Subtotal,
		ShippingFee:        order.ShippingFee,
		ConvenienceFee:     order.ConvenienceFee,
		Total:              order.DisplayTotal(),
		PickupDay:          order.PickupDay,
		ShippingAddress:    order.ShippingAddress,
		EmailOptIn:         order.EmailOptIn,
		NotificationStatus: string(order.NotificationStatus),
		CreatedAt:          order.CreatedAt,
	}
}

func toCapacityResponse(day model.CapacityDay) dto.CapacityResponse {
	return dto.CapacityResponse{
		Date:      day.Date,
		Available: day.Limit,
		Ordered:   day.Consumed,
		Remaining: day.Remaining,
	}
}
