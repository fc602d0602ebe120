package repository

import (
	"context"
	"sync"
	"time"

	"kilim/internal/domain"
)

// MemoryOrders in-memory хранилище заказов с простым генератором ID.
// Используется в тестах и при запуске без DATABASE_URL.
type MemoryOrders struct {
	mu        sync.RWMutex
	nextID    int64
	byID      map[int64]domain.Order
	bySession map[string]int64
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{
		nextID:    1,
		byID:      make(map[int64]domain.Order),
		bySession: make(map[string]int64),
	}
}

var _ OrderRepository = (*MemoryOrders)(nil)

func sessionRef(o *domain.Order) string {
	if o.StripeSessionID == nil {
		return ""
	}
	return *o.StripeSessionID
}

func (m *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := sessionRef(o)
	if ref != "" {
		if _, taken := m.bySession[ref]; taken {
			return ErrDuplicateSession
		}
	}
	o.ID = m.nextID
	m.nextID++
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	m.byID[o.ID] = *o
	if ref != "" {
		m.bySession[ref] = o.ID
	}
	return nil
}

func (m *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := o
	return &cp, nil
}

func (m *MemoryOrders) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.bySession[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.byID[o.ID]
	if !ok {
		return ErrNotFound
	}
	ref := sessionRef(o)
	if ref != "" {
		// ссылка на сессию идентифицирует не более одного заказа
		if owner, taken := m.bySession[ref]; taken && owner != o.ID {
			return ErrDuplicateSession
		}
	}
	o.UpdatedAt = time.Now().UTC()
	if prevRef := sessionRef(&prev); prevRef != "" && prevRef != ref {
		delete(m.bySession, prevRef)
	}
	if ref != "" {
		m.bySession[ref] = o.ID
	}
	m.byID[o.ID] = *o
	return nil
}
