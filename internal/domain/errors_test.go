package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

func TestIsVersionConflict(t *testing.T) {
	if !domain.IsVersionConflict(domain.ErrVersionConflict) {
		t.Fatal("expected version conflict to be detected")
	}
	if !domain.IsVersionConflict(fmt.Errorf("save order: %w", domain.ErrVersionConflict)) {
		t.Fatal("expected wrapped version conflict to be detected")
	}
	if domain.IsVersionConflict(domain.ErrOrderNotFound) {
		t.Fatal("not found must not be a version conflict")
	}
}

func TestIsInsufficientStock(t *testing.T) {
	err := fmt.Errorf("confirm: %w", &domain.InsufficientStockError{ProductID: "p", Requested: 3, Available: 1})
	if !domain.IsInsufficientStock(err) {
		t.Fatal("expected insufficient stock to be detected through wrapping")
	}
	if domain.IsInsufficientStock(domain.ErrVersionConflict) {
		t.Fatal("version conflict must not be insufficient stock")
	}
}

func TestIsInvalidTransition(t *testing.T) {
	err := &domain.InvalidTransitionError{From: domain.OrderStatusCanceled, To: domain.OrderStatusConfirmed}
	if !domain.IsInvalidTransition(err) {
		t.Fatal("expected invalid transition to be detected")
	}
	if !strings.Contains(err.Error(), "canceled") || !strings.Contains(err.Error(), "confirmed") {
		t.Fatalf("error must name both states: %s", err.Error())
	}
}

func TestProductsNotFoundError(t *testing.T) {
	err := &domain.ProductsNotFoundError{IDs: []string{"b", "a"}}

	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatal("expected ProductsNotFoundError to unwrap to ErrProductNotFound")
	}
	if !domain.IsNotFound(err) {
		t.Fatal("expected IsNotFound to match")
	}
	// Список id в сообщении отсортирован для детерминизма.
	if got := err.Error(); got != "products not found: a, b" {
		t.Fatalf("unexpected message: %s", got)
	}
}
