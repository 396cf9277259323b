package memory

import (
	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

// productReadRepositoryInMemory — read-путь каталога для предварительных проверок.
type productReadRepositoryInMemory struct {
	store *Store
}

// NewProductReadRepository возвращает read-репозиторий каталога поверх общего Store.
func NewProductReadRepository(store *Store) domain.ProductReadRepository {
	return &productReadRepositoryInMemory{store: store}
}

// GetByIDs возвращает найденные товары; отсутствующие id опускаются.
func (r *productReadRepositoryInMemory) GetByIDs(ids []string) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.store.products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

var _ domain.ProductReadRepository = (*productReadRepositoryInMemory)(nil)
