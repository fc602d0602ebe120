package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kilim/internal/domain"
)

// PostgresOrders хранилище заказов на PostgreSQL через GORM
type PostgresOrders struct {
	db *gorm.DB
}

// NewPostgresOrders подключается к базе и выполняет автомиграцию схемы
func NewPostgresOrders(dsn string) (*PostgresOrders, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&domain.Order{}); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}
	return &PostgresOrders{db: db}, nil
}

var _ OrderRepository = (*PostgresOrders)(nil)

func (p *PostgresOrders) Create(ctx context.Context, o *domain.Order) error {
	if err := p.db.WithContext(ctx).Create(o).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (p *PostgresOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := p.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (p *PostgresOrders) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	var o domain.Order
	err := p.db.WithContext(ctx).Where("stripe_session_id = ?", sessionID).First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (p *PostgresOrders) Update(ctx context.Context, o *domain.Order) error {
	// Save пишет запись целиком и сам обновляет UpdatedAt
	if err := p.db.WithContext(ctx).Save(o).Error; err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// уникальный индекс по stripe_session_id
		return ErrDuplicateSession
	}
	return err
}
