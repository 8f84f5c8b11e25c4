package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pricing"
)

const currency = "usd"

// SessionRequest describes a hosted checkout page.
type SessionRequest struct {
	Lines           []pricing.PaymentLine
	CustomerEmail   string
	CollectShipping bool
	Metadata        map[string]string
	SuccessURL      string
	CancelURL       string
}

// Session is a created hosted checkout page.
type Session struct {
	ID  string
	URL string
}

// Event is a verified provider callback. Handled is false for event types
// the storefront ignores.
type Event struct {
	Handled         bool
	Type            string
	SessionID       string
	AmountTotal     model.Cents
	Email           string
	Name            string
	Phone           string
	Metadata        map[string]string
	ShippingAddress *model.Address
}

// Gateway exposes the payment provider to use cases.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
}

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway implements Gateway with Stripe Checkout.
type StripeGateway struct {
	sessions      sessionCreator
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeGateway builds a gateway from API credentials.
func NewStripeGateway(secretKey, webhookSecret string, logger *slog.Logger) *StripeGateway {
	var sessions sessionCreator
	if secretKey != "" {
		sessions = client.New(secretKey, nil).CheckoutSessions
	}
	return &StripeGateway{sessions: sessions, webhookSecret: webhookSecret, logger: logger}
}

// CreateSession registers a checkout session and returns its redirect URL.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if g.sessions == nil {
		return nil, fmt.Errorf("stripe is not configured: %w", domainErrors.ErrUpstreamUnavailable)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.CollectShipping {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US"}),
		}
	}
	for _, line := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Label),
				},
				UnitAmount: stripe.Int64(int64(line.UnitAmount)),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.sessions.New(params)
	if err != nil {
		g.logger.Error("stripe session creation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create checkout session: %w: %w", domainErrors.ErrUpstreamUnavailable, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes completed checkout sessions.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrInvalidSignature, err)
	}

	result := &Event{Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, domainErrors.Invalid("data", "malformed checkout session")
	}

	result.Handled = true
	result.SessionID = session.ID
	result.AmountTotal = model.Cents(session.AmountTotal)
	result.Metadata = session.Metadata
	result.Email = session.CustomerEmail
	if session.CustomerDetails != nil {
		if session.CustomerDetails.Email != "" {
			result.Email = session.CustomerDetails.Email
		}
		result.Name = session.CustomerDetails.Name
		result.Phone = session.CustomerDetails.Phone
	}
	if session.ShippingDetails != nil && session.ShippingDetails.Address != nil {
		addr := session.ShippingDetails.Address
		result.ShippingAddress = &model.Address{
			Name:  session.ShippingDetails.Name,
			Line1: addr.Line1,
			Line2: addr.Line2,
			City:  addr.City,
			State: addr.State,
			Zip:   addr.PostalCode,
		}
	}
	return result, nil
}
