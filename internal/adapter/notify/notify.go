package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ErrNoRecipient marks orders that carry no email address.
var ErrNoRecipient = errors.New("order has no recipient")

// Message is a rendered order confirmation.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers rendered confirmations.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Render builds the confirmation for an order.
func Render(siteName string, order model.Order) (Message, error) {
	if strings.TrimSpace(order.Email) == "" {
		return Message{}, ErrNoRecipient
	}

	var b strings.Builder
	b.WriteString("Greetings!\n\n")
	b.WriteString("You have purchased:\n")
	for _, item := range order.Cart {
		fmt.Fprintf(&b, "  - %s (x%d)\n", item.Name, item.Quantity)
	}
	b.WriteString("\n")

	if order.DeliveryMethod == model.DeliveryShipping {
		b.WriteString("Fulfillment: Shipping\n")
		fmt.Fprintf(&b, "Shipping Method: %s, $%s\n", order.ShippingMethod.Label(), order.ShippingFee)
		if a := order.ShippingAddress; a != nil {
			b.WriteString("Ship To:\n")
			if a.Name != "" {
				fmt.Fprintf(&b, "  %s\n", a.Name)
			}
			fmt.Fprintf(&b, "  %s\n", a.Line1)
			if a.Line2 != "" {
				fmt.Fprintf(&b, "  %s\n", a.Line2)
			}
			fmt.Fprintf(&b, "  %s, %s %s\n", a.City, a.State, a.Zip)
		}
	} else {
		b.WriteString("Fulfillment: Local Pickup\n")
		if order.PickupDay != "" {
			fmt.Fprintf(&b, "Pickup Day: %s\n", order.PickupDay)
		}
	}

	fmt.Fprintf(&b, "\nTotal: $%s\n\n", order.DisplayTotal())
	b.WriteString("Thank you for your business!\n")
	b.WriteString("Reply to this email with any questions.\n")
	if order.PaymentMethod == model.PaymentVenmo {
		b.WriteString("\nYour order will not be fulfilled until payment is received via Venmo.\n")
	}

	return Message{
		To:      order.Email,
		Subject: fmt.Sprintf("Your %s Order Confirmation", siteName),
		Text:    b.String(),
	}, nil
}

// LogMailer writes confirmations to the structured log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("order confirmation",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("bytes", len(msg.Text)),
	)
	return nil
}
