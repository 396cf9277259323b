package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
	"github.com/vladislavdragonenkov/stockoms/internal/storage/memory"
)

func newOrder(id string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         id,
		CustomerID: "customer-1",
		Status:     domain.OrderStatusPlaced,
		Currency:   "USD",
		Lines: []domain.OrderLine{
			{ID: id + "-line-1", ProductID: "product-1", Qty: 2, UnitPriceMinor: 1000, CreatedAt: now},
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newProduct(id string, available int32) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:             id,
		Name:           "Widget " + id,
		UnitPriceMinor: 1000,
		Available:      available,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)
	order := newOrder("order-1")

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if len(stored.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(stored.Lines))
	}
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)

	if err := repo.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newOrder("order-1")); !domain.IsVersionConflict(err) {
		t.Fatalf("expected conflict on duplicate id, got %v", err)
	}
}

func TestOrderRepository_GetReturnsSnapshot(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)

	if err := repo.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// Мутация снимка не должна протекать в хранилище.
	first.Lines[0].Qty = 99

	second, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Lines[0].Qty != 2 {
		t.Fatalf("stored line mutated through snapshot: qty=%d", second.Lines[0].Qty)
	}
}

func TestOrderRepository_Save(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)
	if err := repo.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if err := stored.Cancel("test", time.Now().UTC()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != domain.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", updated.Status)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)
	order := newOrder("order-1")
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Version = 42
	if err := repo.Save(order); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestOrderRepository_SaveMissing(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewOrderRepository(store)

	if err := repo.Save(newOrder("missing")); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestOrderRepository_SaveWithProducts(t *testing.T) {
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)
	products := memory.NewProductRepository(store)

	if err := orders.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := products.Create(newProduct("product-1", 5)); err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, _ := orders.Get("order-1")
	product, _ := products.Get("product-1")
	now := time.Now().UTC()

	if err := order.Confirm(now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := product.ReserveStock(2, now); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := orders.SaveWithProducts(order, []domain.Product{product}); err != nil {
		t.Fatalf("save with products: %v", err)
	}

	savedOrder, _ := orders.Get("order-1")
	savedProduct, _ := products.Get("product-1")
	if savedOrder.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", savedOrder.Status)
	}
	if savedProduct.Available != 3 {
		t.Fatalf("expected available 3, got %d", savedProduct.Available)
	}
	if savedOrder.Version != 1 || savedProduct.Version != 1 {
		t.Fatalf("expected version increments, got order=%d product=%d", savedOrder.Version, savedProduct.Version)
	}
}

func TestOrderRepository_SaveWithProductsConflictRollsBackAll(t *testing.T) {
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)
	products := memory.NewProductRepository(store)

	if err := orders.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := products.Create(newProduct("product-1", 5)); err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, _ := orders.Get("order-1")
	product, _ := products.Get("product-1")
	now := time.Now().UTC()
	if err := order.Confirm(now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := product.ReserveStock(2, now); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Конкурирующий писатель обгоняет: версия товара в хранилище уходит вперёд.
	fresh, _ := products.Get("product-1")
	if err := fresh.ReserveStock(1, now); err != nil {
		t.Fatalf("contender reserve: %v", err)
	}
	if err := products.Save(fresh); err != nil {
		t.Fatalf("contender save: %v", err)
	}

	err := orders.SaveWithProducts(order, []domain.Product{product})
	if !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	// Проигравший коммит не должен оставить частичных изменений.
	storedOrder, _ := orders.Get("order-1")
	storedProduct, _ := products.Get("product-1")
	if storedOrder.Status != domain.OrderStatusPlaced {
		t.Fatalf("order must stay placed after rollback, got %s", storedOrder.Status)
	}
	if storedProduct.Available != 4 {
		t.Fatalf("expected available 4 (only contender applied), got %d", storedProduct.Available)
	}
}
