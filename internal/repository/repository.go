package repository

import (
	"context"
	"errors"

	"kilim/internal/domain"
)

var (
	// ErrNotFound возвращается, когда заказ не найден
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSession возвращается при попытке привязать ссылку на
	// платёжную сессию, уже занятую другим заказом
	ErrDuplicateSession = errors.New("session reference already used")
)

// OrderRepository интерфейс хранилища заказов. Update сохраняет запись
// целиком (частичных обновлений нет) и обновляет UpdatedAt. Чтение и
// последующая запись реконсилятора не атомарны — см. WebhookService.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
}
