package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"kilim/internal/domain"
	"kilim/internal/payment"
	"kilim/internal/repository"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(subject, body string, to []string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, subject)
	return nil
}

func setupWebhook(t *testing.T) (*repository.MemoryOrders, *fakeMailer, *WebhookService) {
	t.Helper()
	repo := repository.NewMemoryOrders()
	mailer := &fakeMailer{}
	svc := NewWebhookService(repo, mailer, []string{"shop@kilim.test"})
	return repo, mailer, svc
}

func seedPending(t *testing.T, repo *repository.MemoryOrders) *domain.Order {
	t.Helper()
	o := &domain.Order{
		CustomerEmail: "a@b.com",
		CustomerName:  "John",
		Shipping:      domain.ShippingAddress{Line1: "1 rue de Lille", City: "Paris"},
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "Rug", Price: decimal.RequireFromString("250.00"), Quantity: 2},
		},
		TotalAmount: decimal.RequireFromString("500.00"),
		Currency:    "EUR",
		Status:      domain.OrderStatusPending,
	}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	ref := "cs_test_1"
	o.StripeSessionID = &ref
	if err := repo.Update(context.Background(), o); err != nil {
		t.Fatalf("seed session ref: %v", err)
	}
	return o
}

func completedEvent(orderID int64) *payment.Event {
	return &payment.Event{
		Type:            payment.EventSessionCompleted,
		OrderID:         orderID,
		SessionID:       "cs_test_1",
		PaymentIntentID: "pi_test_1",
		CustomerName:    "John Doe",
		Shipping: &domain.ShippingAddress{
			Line1:      "12 rue Oberkampf",
			City:       "Paris",
			PostalCode: "75011",
			Country:    "FR",
		},
	}
}

func TestHandleCompleted(t *testing.T) {
	ctx := context.Background()
	repo, mailer, svc := setupWebhook(t)
	o := seedPending(t, repo)

	if err := svc.HandleEvent(ctx, completedEvent(o.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %v", got.Status)
	}
	if got.PaidAt == nil {
		t.Fatalf("paid_at not set")
	}
	if got.StripePaymentIntentID != "pi_test_1" {
		t.Fatalf("payment ref: %q", got.StripePaymentIntentID)
	}
	if got.CustomerName != "John Doe" || got.Shipping.Line1 != "12 rue Oberkampf" || got.Shipping.PostalCode != "75011" {
		t.Fatalf("shipping not overlaid: %+v", got)
	}
	// line2 absent in the event, prior (empty) value retained; city overwritten
	if got.Shipping.City != "Paris" {
		t.Fatalf("city: %q", got.Shipping.City)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(mailer.sent))
	}
}

// Повторная доставка того же события: конечный статус не меняется и paid_at
// сохраняется, но уведомление уходит ещё раз. Побочный эффект осознанно
// не идемпотентен.
func TestHandleCompleted_Twice(t *testing.T) {
	ctx := context.Background()
	repo, mailer, svc := setupWebhook(t)
	o := seedPending(t, repo)

	if err := svc.HandleEvent(ctx, completedEvent(o.ID)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first, _ := repo.GetByID(ctx, o.ID)

	if err := svc.HandleEvent(ctx, completedEvent(o.ID)); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	second, _ := repo.GetByID(ctx, o.ID)

	if second.Status != domain.OrderStatusPaid {
		t.Fatalf("status changed on redelivery: %v", second.Status)
	}
	if !second.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("paid_at rewritten on redelivery")
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected two notifications, got %d", len(mailer.sent))
	}
}

func TestHandleCompleted_EmptyFieldsRetained(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := setupWebhook(t)
	o := seedPending(t, repo)

	ev := completedEvent(o.ID)
	ev.CustomerName = ""
	ev.Shipping = &domain.ShippingAddress{Country: "FR"}

	if err := svc.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got, _ := repo.GetByID(ctx, o.ID)
	if got.CustomerName != "John" {
		t.Fatalf("name overwritten by empty value: %q", got.CustomerName)
	}
	if got.Shipping.Line1 != "1 rue de Lille" || got.Shipping.Country != "FR" {
		t.Fatalf("overlay wrong: %+v", got.Shipping)
	}
}

func TestHandleExpired(t *testing.T) {
	ctx := context.Background()
	repo, mailer, svc := setupWebhook(t)
	o := seedPending(t, repo)

	err := svc.HandleEvent(ctx, &payment.Event{
		Type:      payment.EventSessionExpired,
		OrderID:   o.ID,
		SessionID: "cs_test_1",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %v", got.Status)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expired must not notify")
	}
}

func TestHandleUnknownOrder(t *testing.T) {
	ctx := context.Background()
	_, mailer, svc := setupWebhook(t)

	// unknown orders are accepted so the provider stops retrying
	if err := svc.HandleEvent(ctx, completedEvent(777)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := svc.HandleEvent(ctx, &payment.Event{Type: payment.EventSessionCompleted}); err != nil {
		t.Fatalf("missing metadata: expected nil error, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("notification sent for unknown order")
	}
}

func TestMailFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	repo, mailer, svc := setupWebhook(t)
	o := seedPending(t, repo)
	mailer.err = errors.New("smtp down")

	if err := svc.HandleEvent(ctx, completedEvent(o.ID)); err != nil {
		t.Fatalf("mail failure must not fail the event: %v", err)
	}
	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("order not paid: %v", got.Status)
	}
}

func TestHandleNilEvent(t *testing.T) {
	_, _, svc := setupWebhook(t)
	if err := svc.HandleEvent(context.Background(), nil); err != nil {
		t.Fatalf("nil event: %v", err)
	}
}
