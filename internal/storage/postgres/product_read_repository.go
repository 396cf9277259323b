package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

type productReadRepository struct {
	db *sql.DB
}

// NewProductReadRepository создаёт PostgreSQL-реализацию ProductReadRepository.
func NewProductReadRepository(store *Store) domain.ProductReadRepository {
	return &productReadRepository{db: store.DB()}
}

func (r *productReadRepository) GetByIDs(ids []string) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit_price_minor, available, version, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.UnitPriceMinor,
			&product.Available, &product.Version, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

var _ domain.ProductReadRepository = (*productReadRepository)(nil)
