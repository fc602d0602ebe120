package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"kilim/internal/domain"
)

func newOrder() *domain.Order {
	return &domain.Order{
		CustomerEmail: "a@b.com",
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "Rug", Price: decimal.NewFromInt(250), Quantity: 2, Size: "90x90"},
		},
		TotalAmount: decimal.NewFromInt(500),
		Currency:    "EUR",
		Status:      domain.OrderStatusPending,
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	o := newOrder()
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID != 1 {
		t.Fatalf("expected id 1, got %d", o.ID)
	}
	if o.CreatedAt.IsZero() || o.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set")
	}

	o2 := newOrder()
	if err := repo.Create(ctx, o2); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if o2.ID != 2 {
		t.Fatalf("expected monotonic id 2, got %d", o2.ID)
	}
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	if _, err := repo.GetByID(ctx, 42); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	o := newOrder()
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerEmail != "a@b.com" || !got.TotalAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected order: %+v", got)
	}

	// returned value is a copy, mutation must not leak into the store
	got.Status = domain.OrderStatusPaid
	again, _ := repo.GetByID(ctx, o.ID)
	if again.Status != domain.OrderStatusPending {
		t.Fatalf("store mutated through returned copy")
	}
}

func TestGetBySessionID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	if _, err := repo.GetBySessionID(ctx, "cs_missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	o := newOrder()
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	// session ref attached after creation, the usual checkout flow
	ref := "cs_test_123"
	o.StripeSessionID = &ref
	if err := repo.Update(ctx, o); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetBySessionID(ctx, "cs_test_123")
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if got.ID != o.ID {
		t.Fatalf("expected order %d, got %d", o.ID, got.ID)
	}
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	o := newOrder()
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := o.UpdatedAt

	o.Status = domain.OrderStatusPaid
	if err := repo.Update(ctx, o); err != nil {
		t.Fatalf("update: %v", err)
	}
	if o.UpdatedAt.Before(created) {
		t.Fatalf("updated_at not bumped")
	}

	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("status not persisted: %v", got.Status)
	}
}

// Ссылка на платёжную сессию идентифицирует не более одного заказа:
// второй заказ не может присвоить уже занятую ссылку ни при создании,
// ни при обновлении.
func TestSessionRefUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	first := newOrder()
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := newOrder()
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	ref := "cs_dup"
	first.StripeSessionID = &ref
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("attach ref to first: %v", err)
	}

	second.StripeSessionID = &ref
	if err := repo.Update(ctx, second); err != ErrDuplicateSession {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}

	// the ref still resolves to the first order
	got, err := repo.GetBySessionID(ctx, ref)
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("session ref re-pointed to order %d", got.ID)
	}

	// re-saving the owner with the same ref is fine
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("re-save owner: %v", err)
	}

	third := newOrder()
	third.StripeSessionID = &ref
	if err := repo.Create(ctx, third); err != ErrDuplicateSession {
		t.Fatalf("create with taken ref: expected ErrDuplicateSession, got %v", err)
	}
}

func TestUpdateUnknownOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()
	o := newOrder()
	o.ID = 99
	if err := repo.Update(ctx, o); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
