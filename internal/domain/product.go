package domain

import "time"

// Product — товар каталога со счётчиком доступного количества. Главная точка
// конкуренции: много заказов одновременно резервируют один и тот же товар.
type Product struct {
	ID             string
	Name           string
	UnitPriceMinor int64
	// Available — доступное количество; инвариант: никогда не уходит в минус.
	Available int32
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReserveStock уменьшает доступное количество под заказ. Количество должно
// быть положительным; при нехватке стока возвращает InsufficientStockError.
func (p *Product) ReserveStock(qty int32, now time.Time) error {
	if qty <= 0 {
		return ErrStockQtyInvalid
	}
	if p.Available < qty {
		return &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.Available}
	}
	p.Available -= qty
	p.UpdatedAt = now
	return nil
}

// ReleaseStock возвращает количество в доступный остаток. Верхняя граница
// не контролируется: снятие резерва всегда проходит.
func (p *Product) ReleaseStock(qty int32, now time.Time) error {
	if qty <= 0 {
		return ErrStockQtyInvalid
	}
	p.Available += qty
	p.UpdatedAt = now
	return nil
}

// ValidateInvariants проверяет ключевые поля товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.UnitPriceMinor < 0 {
		errs = append(errs, ErrLinePriceInvalid)
	}
	if p.Available < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
