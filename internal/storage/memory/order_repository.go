package memory

import (
	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация write-пути заказов.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает репозиторий заказов поверх общего Store.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.orders[order.ID]; exists {
		return domain.ErrVersionConflict
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ для мутации или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// SaveWithProducts атомарно записывает заказ и товары под одним мьютексом:
// сначала сверяются все версии, затем применяются все изменения. Любое
// несовпадение оставляет хранилище нетронутым.
func (r *orderRepositoryInMemory) SaveWithProducts(order domain.Order, products []domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	currentOrder, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if currentOrder.Version != order.Version {
		return domain.ErrVersionConflict
	}
	for _, product := range products {
		current, ok := r.store.products[product.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if current.Version != product.Version {
			return domain.ErrVersionConflict
		}
	}

	order.Version++
	r.store.orders[order.ID] = cloneOrder(order)
	for _, product := range products {
		product.Version++
		r.store.products[product.ID] = product
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
