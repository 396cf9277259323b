package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

// Store — общее in-memory хранилище заказов и товаров. Один мьютекс на оба
// словаря нужен репозиториям, чтобы связанный коммит заказ+товары был
// атомарным, как транзакция в PostgreSQL-реализации.
type Store struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	products map[string]domain.Product
}

// NewStore создаёт пустое хранилище для локальной разработки и тестов.
func NewStore() *Store {
	return &Store{
		orders:   make(map[string]domain.Order),
		products: make(map[string]domain.Product),
	}
}

// cloneOrder копирует заказ вместе со слайсом позиций, чтобы снимки не
// делили память с хранимой записью.
func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}
