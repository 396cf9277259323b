package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

// orderReadRepositoryInMemory обслуживает read-путь: точечные чтения и
// постраничные выборки. Версии не проверяет и не меняет.
type orderReadRepositoryInMemory struct {
	store *Store
}

// NewOrderReadRepository возвращает read-репозиторий заказов поверх общего Store.
func NewOrderReadRepository(store *Store) domain.OrderReadRepository {
	return &orderReadRepositoryInMemory{store: store}
}

// GetByID возвращает снимок заказа или ErrOrderNotFound.
func (r *orderReadRepositoryInMemory) GetByID(id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List возвращает страницу заказов под фильтром: новые первыми, id как
// tiebreak, плюс общее количество записей независимо от страницы.
func (r *orderReadRepositoryInMemory) List(filter domain.OrderFilter, page, pageSize int) ([]domain.Order, int, error) {
	r.store.mu.RLock()
	matched := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		if matchesFilter(order, filter) {
			matched = append(matched, cloneOrder(order))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []domain.Order{}, total, nil
	}

	offset := (page - 1) * pageSize
	if offset >= total {
		return []domain.Order{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matchesFilter(order domain.Order, filter domain.OrderFilter) bool {
	if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
		return false
	}
	if filter.Status != "" && order.Status != filter.Status {
		return false
	}
	if !filter.DateFrom.IsZero() && order.CreatedAt.Before(filter.DateFrom) {
		return false
	}
	if !filter.DateTo.IsZero() && order.CreatedAt.After(filter.DateTo) {
		return false
	}
	return true
}

var _ domain.OrderReadRepository = (*orderReadRepositoryInMemory)(nil)
