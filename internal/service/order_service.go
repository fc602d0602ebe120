package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"kilim/internal/domain"
	"kilim/internal/payment"
	"kilim/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

var minorUnits = decimal.NewFromInt(100)

// CheckoutConfig параметры создания платёжных сессий
type CheckoutConfig struct {
	SuccessURL       string
	CancelURL        string
	Currency         string
	AllowedCountries []string
}

// CheckoutInput входные данные создания заказа
type CheckoutInput struct {
	Items         []domain.OrderItem
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Shipping      domain.ShippingAddress
}

// CheckoutResult ссылка на hosted-checkout и созданный заказ
type CheckoutResult struct {
	CheckoutURL string
	SessionID   string
	OrderID     int64
}

// OrderService создаёт заказы с платёжной сессией и отвечает на запросы статуса
type OrderService struct {
	orders   repository.OrderRepository
	provider payment.Provider
	cfg      CheckoutConfig
}

func NewOrderService(orders repository.OrderRepository, provider payment.Provider, cfg CheckoutConfig) *OrderService {
	return &OrderService{orders: orders, provider: provider, cfg: cfg}
}

// CreateCheckout сохраняет pending-заказ и запрашивает у провайдера
// hosted-checkout сессию. Если провайдер отказал, заказ остаётся в pending
// без ссылки на сессию — такие сироты никем не подчищаются.
func (s *OrderService) CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Items) == 0 || in.CustomerEmail == "" {
		return nil, ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.Quantity < 1 || it.Price.IsNegative() {
			return nil, ErrInvalidInput
		}
	}

	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	o := domain.Order{
		CustomerEmail: in.CustomerEmail,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Shipping:      in.Shipping,
		Items:         in.Items,
		TotalAmount:   total,
		Currency:      s.cfg.Currency,
		Status:        domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, err
	}

	sess, err := s.provider.CreateSession(ctx, payment.SessionParams{
		Items:            providerItems(in.Items),
		Currency:         s.cfg.Currency,
		CustomerEmail:    in.CustomerEmail,
		SuccessURL:       s.cfg.SuccessURL,
		CancelURL:        s.cfg.CancelURL,
		OrderID:          o.ID,
		AllowedCountries: s.cfg.AllowedCountries,
	})
	if err != nil {
		return nil, err
	}

	o.StripeSessionID = &sess.ID
	if err := s.orders.Update(ctx, &o); err != nil {
		return nil, err
	}

	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID, OrderID: o.ID}, nil
}

// GetOrder возвращает заказ по внутреннему id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// GetOrderBySession возвращает заказ по ссылке платёжной сессии
func (s *OrderService) GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.GetBySessionID(ctx, sessionID)
}

func providerItems(items []domain.OrderItem) []payment.LineItem {
	out := make([]payment.LineItem, 0, len(items))
	for _, it := range items {
		name := it.Name
		if name == "" {
			name = "Product"
		}
		if it.Size != "" {
			name = fmt.Sprintf("%s (%s)", name, it.Size)
		}
		out = append(out, payment.LineItem{
			Name:       name,
			UnitAmount: it.Price.Mul(minorUnits).Round(0).IntPart(),
			Quantity:   it.Quantity,
		})
	}
	return out
}
