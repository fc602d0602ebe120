package service

import (
	"context"
	"errors"
	"log"
	"time"

	"kilim/internal/domain"
	"kilim/internal/mail"
	"kilim/internal/payment"
	"kilim/internal/repository"
)

// WebhookService применяет webhook-события провайдера к заказам.
// События по неизвестным заказам принимаются и только логируются:
// иначе провайдер будет ретраить доставку бесконечно.
type WebhookService struct {
	orders   repository.OrderRepository
	mailer   mail.Mailer
	notifyTo []string
}

func NewWebhookService(orders repository.OrderRepository, mailer mail.Mailer, notifyTo []string) *WebhookService {
	return &WebhookService{orders: orders, mailer: mailer, notifyTo: notifyTo}
}

// HandleEvent переводит заказ по событию: completed → paid, expired → cancelled.
// Текущий статус не проверяется, поэтому повторная доставка completed-события
// даёт тот же конечный статус, но отправляет уведомление ещё раз.
func (s *WebhookService) HandleEvent(ctx context.Context, ev *payment.Event) error {
	if ev == nil {
		return nil
	}
	switch ev.Type {
	case payment.EventSessionCompleted:
		return s.applyCompleted(ctx, ev)
	case payment.EventSessionExpired:
		return s.applyExpired(ctx, ev)
	}
	return nil
}

func (s *WebhookService) applyCompleted(ctx context.Context, ev *payment.Event) error {
	o, ok, err := s.lookup(ctx, ev)
	if err != nil || !ok {
		return err
	}

	o.Status = domain.OrderStatusPaid
	o.StripePaymentIntentID = ev.PaymentIntentID
	if o.PaidAt == nil {
		now := time.Now().UTC()
		o.PaidAt = &now
	}

	// провайдер знает адрес точнее покупателя: перекрываем только непустыми значениями
	if ev.CustomerName != "" {
		o.CustomerName = ev.CustomerName
	}
	if sh := ev.Shipping; sh != nil {
		if sh.Line1 != "" {
			o.Shipping.Line1 = sh.Line1
		}
		if sh.Line2 != "" {
			o.Shipping.Line2 = sh.Line2
		}
		if sh.City != "" {
			o.Shipping.City = sh.City
		}
		if sh.PostalCode != "" {
			o.Shipping.PostalCode = sh.PostalCode
		}
		if sh.Country != "" {
			o.Shipping.Country = sh.Country
		}
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return err
	}

	if len(s.notifyTo) > 0 {
		if err := s.mailer.Send(mail.OrderSubject(o), mail.OrderSummary(o), s.notifyTo); err != nil {
			log.Printf("order %d: send notification: %v", o.ID, err)
		}
	}
	return nil
}

func (s *WebhookService) applyExpired(ctx context.Context, ev *payment.Event) error {
	o, ok, err := s.lookup(ctx, ev)
	if err != nil || !ok {
		return err
	}
	o.Status = domain.OrderStatusCancelled
	return s.orders.Update(ctx, o)
}

func (s *WebhookService) lookup(ctx context.Context, ev *payment.Event) (*domain.Order, bool, error) {
	if ev.OrderID <= 0 {
		log.Printf("webhook %s: no order reference in metadata, session %s", ev.Type, ev.SessionID)
		return nil, false, nil
	}
	o, err := s.orders.GetByID(ctx, ev.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("webhook %s: order %d not found, session %s", ev.Type, ev.OrderID, ev.SessionID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}
