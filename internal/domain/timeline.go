package domain

import "time"

// Типы событий таймлайна заказа.
const (
	TimelineEventOrderPlaced    = "OrderPlaced"
	TimelineEventOrderConfirmed = "OrderConfirmed"
	TimelineEventOrderCanceled  = "OrderCanceled"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
