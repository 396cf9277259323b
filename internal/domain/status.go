package domain

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusDraft — черновик; через публичные операции недостижим.
	OrderStatusDraft OrderStatus = "draft"
	// OrderStatusPlaced — заказ размещён, резервирование ещё не выполнено.
	OrderStatusPlaced OrderStatus = "placed"
	// OrderStatusConfirmed — заказ подтверждён, сток зарезервирован.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCanceled — заказ отменён; терминальный статус.
	OrderStatusCanceled OrderStatus = "canceled"
)

// CanConfirm сообщает, допустим ли переход в confirmed из текущего статуса.
func (s OrderStatus) CanConfirm() bool {
	return s == OrderStatusPlaced
}

// CanCancel сообщает, допустим ли переход в canceled из текущего статуса.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPlaced || s == OrderStatusConfirmed
}

// IsTerminal — у статуса нет исходящих переходов.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCanceled
}

// Valid проверяет, что значение принадлежит известному набору статусов.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPlaced, OrderStatusConfirmed, OrderStatusCanceled:
		return true
	default:
		return false
	}
}
