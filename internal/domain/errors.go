package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line unit price must be non-negative")
	// Ошибка некорректного количества в reserve/release (<= 0).
	ErrStockQtyInvalid = errors.New("stock qty must be greater than zero")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("available quantity must be non-negative")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrVersionConflict сигнализирует о несовпадении токена версии при
	// сохранении: другой писатель успел закоммитить раньше.
	ErrVersionConflict = errors.New("version conflict")
	// ErrRetryExhausted — бюджет повторов исчерпан при устойчивой конкуренции.
	ErrRetryExhausted = errors.New("retry budget exhausted under contention")
)

// InvalidTransitionError — запрошенный переход недопустим из текущего статуса.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// InsufficientStockError — запрошенное количество превышает доступный остаток.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ProductsNotFoundError перечисляет запрошенные товары, которых нет в каталоге.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	copy(ids, e.IDs)
	sort.Strings(ids)
	return fmt.Sprintf("products not found: %s", strings.Join(ids, ", "))
}

func (e *ProductsNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsInvalidTransition проверяет, является ли ошибка запретом перехода статуса.
func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой стока.
func IsInsufficientStock(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}

// IsNotFound — заказ или товар отсутствует в хранилище.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrProductNotFound)
}
