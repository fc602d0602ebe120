package payment

import (
	"context"
	"errors"

	"kilim/internal/domain"
)

// ErrBadSignature возвращается, когда подпись webhook-события не прошла проверку
var ErrBadSignature = errors.New("invalid signature")

// ProviderError ошибка, которую платёжный провайдер вернул на наш запрос.
// Текст сообщения отдаётся клиенту как есть.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// EventType вид webhook-события
type EventType string

const (
	EventSessionCompleted EventType = "session_completed"
	EventSessionExpired   EventType = "session_expired"
)

// LineItem позиция платёжной сессии. UnitAmount в минорных единицах валюты.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionParams параметры создания hosted-checkout сессии
type SessionParams struct {
	Items            []LineItem
	Currency         string
	CustomerEmail    string
	SuccessURL       string
	CancelURL        string
	OrderID          int64
	AllowedCountries []string
}

// Session созданная провайдером платёжная сессия
type Session struct {
	ID  string
	URL string
}

// Event разобранное и проверенное webhook-событие. OrderID равен нулю,
// когда провайдер не прислал кросс-ссылку в метаданных.
type Event struct {
	Type            EventType
	OrderID         int64
	SessionID       string
	PaymentIntentID string
	CustomerName    string
	Shipping        *domain.ShippingAddress
}

// Provider клиент платёжного провайдера. VerifyEvent обязан проверить
// подпись до разбора; события незнакомых типов возвращаются как (nil, nil).
type Provider interface {
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
	VerifyEvent(payload []byte, sigHeader string) (*Event, error)
}
