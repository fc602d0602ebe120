package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"kilim/internal/domain"
)

// StripeConfig ключи Stripe. Передаётся явно при конструировании,
// глобальный stripe.Key не используется.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// StripeProvider реализация Provider поверх Stripe Checkout
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api, webhookSecret: cfg.WebhookSecret}
}

var _ Provider = (*StripeProvider)(nil)

func (s *StripeProvider) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Items))
	for _, it := range p.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(p.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(p.CustomerEmail),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(p.AllowedCountries),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatInt(p.OrderID, 10))
	params.SetIdempotencyKey(uuid.NewString())

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) {
			return nil, &ProviderError{Message: se.Msg}
		}
		return nil, err
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (s *StripeProvider) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, ErrBadSignature
	}

	var typ EventType
	switch ev.Type {
	case "checkout.session.completed":
		typ = EventSessionCompleted
	case "checkout.session.expired":
		typ = EventSessionExpired
	default:
		// подписка в Stripe может включать лишние типы, их просто пропускаем
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, err
	}

	out := &Event{
		Type:      typ,
		SessionID: cs.ID,
	}
	if raw, ok := cs.Metadata["order_id"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			out.OrderID = id
		}
	}
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	if sd := cs.ShippingDetails; sd != nil {
		out.CustomerName = sd.Name
		if addr := sd.Address; addr != nil {
			out.Shipping = &domain.ShippingAddress{
				Line1:      addr.Line1,
				Line2:      addr.Line2,
				City:       addr.City,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
			}
		}
	}
	return out, nil
}
