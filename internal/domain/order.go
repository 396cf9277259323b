package domain

import (
	"errors"
	"time"
)

// OrderLine представляет одну позицию заказа. Значение без собственного
// жизненного цикла: после создания заказа состав позиций не меняется.
type OrderLine struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — ссылка на товар каталога; владения объектом нет.
	ProductID string
	// Qty — количество единиц товара, строго больше нуля.
	Qty int32
	// UnitPriceMinor — цена за единицу на момент размещения заказа,
	// в минимальных денежных единицах (например, копейки).
	UnitPriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// SubtotalMinor возвращает стоимость позиции: qty * цена за единицу.
func (l OrderLine) SubtotalMinor() int64 {
	return int64(l.Qty) * l.UnitPriceMinor
}

// Order агрегирует состояние заказа и его позиции. Мутируется только через
// Confirm/Cancel; Version — токен optimistic concurrency, который проверяет
// хранилище при сохранении.
type Order struct {
	ID           string
	CustomerID   string
	Currency     string
	Status       OrderStatus
	CancelReason string
	Lines        []OrderLine
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder собирает заказ в статусе placed, проверяя инварианты создания.
func NewOrder(id, customerID, currency string, lines []OrderLine, now time.Time) (Order, error) {
	order := Order{
		ID:         id,
		CustomerID: customerID,
		Currency:   currency,
		Status:     OrderStatusPlaced,
		Lines:      lines,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Order{}, errors.Join(errs...)
	}
	return order, nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}

	return errs
}

// Confirm переводит заказ в confirmed. Чистая смена состояния: резервирование
// стока выполняет оркестрация, не агрегат.
func (o *Order) Confirm(now time.Time) error {
	if !o.Status.CanConfirm() {
		return &InvalidTransitionError{From: o.Status, To: OrderStatusConfirmed}
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = now
	return nil
}

// Cancel переводит заказ в canceled с опциональной причиной.
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.Status.CanCancel() {
		return &InvalidTransitionError{From: o.Status, To: OrderStatusCanceled}
	}
	o.Status = OrderStatusCanceled
	o.CancelReason = reason
	o.UpdatedAt = now
	return nil
}

// IsConfirmed сообщает, подтверждён ли заказ.
func (o *Order) IsConfirmed() bool {
	return o.Status == OrderStatusConfirmed
}

// IsCanceled сообщает, отменён ли заказ.
func (o *Order) IsCanceled() bool {
	return o.Status == OrderStatusCanceled
}

// TotalMinor возвращает сумму заказа как сумму стоимостей позиций.
func (o *Order) TotalMinor() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.SubtotalMinor()
	}
	return total
}
