package domain

import "time"

// OrderRepository описывает write-путь хранилища заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get загружает заказ для мутации (вместе с токеном версии) или ErrOrderNotFound.
	Get(id string) (Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking:
	// при несовпадении версии возвращает ErrVersionConflict и ничего не перезаписывает.
	Save(order Order) error
	// SaveWithProducts атомарно сохраняет заказ и затронутые товары в одном
	// коммите. Несовпадение версии любой записи откатывает весь коммит и
	// возвращает ErrVersionConflict — ровно один из конкурирующих писателей
	// выигрывает, проигравший повторяет попытку.
	SaveWithProducts(order Order, products []Product) error
}

// ProductRepository описывает write-путь хранилища товаров.
type ProductRepository interface {
	Create(product Product) error
	Get(id string) (Product, error)
	Save(product Product) error
}

// OrderFilter задаёт критерии выборки заказов; нулевые поля не фильтруют.
type OrderFilter struct {
	CustomerID string
	Status     OrderStatus
	DateFrom   time.Time
	DateTo     time.Time
}

// OrderReadRepository — read-путь: точечные чтения и постраничные выборки.
// Не участвует в проверке токенов версий и не держит блокировок, видимых
// писателям; возвращает снимки, безопасные для конкурентного чтения.
type OrderReadRepository interface {
	GetByID(id string) (Order, error)
	// List возвращает страницу заказов (новые первыми, id как tiebreak)
	// и общее количество записей под фильтром независимо от страницы.
	List(filter OrderFilter, page, pageSize int) ([]Order, int, error)
}

// ProductReadRepository — read-путь каталога для предварительных проверок.
type ProductReadRepository interface {
	// GetByIDs возвращает найденные товары; отсутствующие id просто опускаются.
	GetByIDs(ids []string) ([]Product, error)
}
