package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
	"github.com/vladislavdragonenkov/stockoms/internal/metrics"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateOrderLine — запрошенная позиция нового заказа. Цена не передаётся:
// она фиксируется из каталога в момент создания.
type CreateOrderLine struct {
	ProductID string
	Qty       int32
}

// CreateOrderInput — входные данные операции создания заказа.
type CreateOrderInput struct {
	CustomerID string
	Currency   string
	Lines      []CreateOrderLine
}

// OrderView — заказ вместе с его таймлайном для read-пути.
type OrderView struct {
	Order    domain.Order
	Timeline []domain.TimelineEvent
}

// Service реализует операции жизненного цикла заказа поверх репозиториев.
// Конкуренция разрешается оптимистично: проигравший конфликт версии писатель
// перечитывает состояние и повторяет попытку в пределах бюджета RetryConfig.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	reader   domain.OrderReadRepository
	catalog  domain.ProductReadRepository
	timeline domain.TimelineRepository
	retry    RetryConfig
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	reader domain.OrderReadRepository,
	catalog domain.ProductReadRepository,
	timeline domain.TimelineRepository,
	retry RetryConfig,
	logger *log.Entry,
) *Service {
	svc := newService(orders, products, reader, catalog, timeline, retry, logger)
	svc.metrics = metrics.NewOrderMetrics()
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	reader domain.OrderReadRepository,
	catalog domain.ProductReadRepository,
	timeline domain.TimelineRepository,
	retry RetryConfig,
	logger *log.Entry,
) *Service {
	return newService(orders, products, reader, catalog, timeline, retry, logger)
}

func newService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	reader domain.OrderReadRepository,
	catalog domain.ProductReadRepository,
	timeline domain.TimelineRepository,
	retry RetryConfig,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:   orders,
		products: products,
		reader:   reader,
		catalog:  catalog,
		timeline: timeline,
		retry:    retry.normalized(),
		logger:   logger,
	}
}

// CreateOrder создаёт заказ в статусе placed. Сток не резервируется: проверка
// доступности здесь — только ранний отсев заведомо невыполнимых заказов.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	if err := validateCreateInput(in); err != nil {
		return domain.Order{}, err
	}

	requested := aggregateRequestedQty(in.Lines)
	productByID, err := s.lookupCatalog(in.Lines)
	if err != nil {
		return domain.Order{}, err
	}

	for id, qty := range requested {
		product := productByID[id]
		if product.Available < qty {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID: id,
				Requested: qty,
				Available: product.Available,
			}
		}
	}

	now := time.Now().UTC()
	lines := make([]domain.OrderLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		lines = append(lines, domain.OrderLine{
			ID:             uuid.NewString(),
			ProductID:      line.ProductID,
			Qty:            line.Qty,
			UnitPriceMinor: productByID[line.ProductID].UnitPriceMinor,
			CreatedAt:      now,
		})
	}

	order, err := domain.NewOrder(uuid.NewString(), in.CustomerID, in.Currency, lines, now)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.appendTimeline(order.ID, domain.TimelineEventOrderPlaced, "", now)
	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total_minor": order.TotalMinor(),
	}).Info("order created")

	return order, nil
}

// ConfirmOrder подтверждает заказ и резервирует сток по всем его позициям.
// Заказ и товары коммитятся атомарно; проигрыш по версии любой записи ведёт
// к полному перечитыванию и повтору в пределах бюджета.
func (s *Service) ConfirmOrder(ctx context.Context, orderID string) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordOpStarted()
		defer func() {
			s.metrics.RecordOpFinished()
			s.metrics.RecordConfirmDuration(time.Since(start))
		}()
	}

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Order{}, err
		}

		order, err := s.orders.Get(orderID)
		if err != nil {
			return domain.Order{}, err
		}

		now := time.Now().UTC()
		if err := order.Confirm(now); err != nil {
			return domain.Order{}, err
		}

		products, err := s.reserveForOrder(&order, now)
		if err != nil {
			return domain.Order{}, err
		}

		err = s.orders.SaveWithProducts(order, products)
		if err == nil {
			order.Version++
			s.appendTimeline(order.ID, domain.TimelineEventOrderConfirmed, "", now)
			if s.metrics != nil {
				s.metrics.RecordOrderConfirmed()
				s.metrics.RecordAttempts("confirm", attempt)
			}
			s.logger.WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt,
			}).Info("order confirmed")
			return order, nil
		}
		if !domain.IsVersionConflict(err) {
			return domain.Order{}, fmt.Errorf("save confirmed order: %w", err)
		}

		if s.metrics != nil {
			s.metrics.RecordVersionConflict()
		}
		s.logger.WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt,
		}).Warn("version conflict on confirm, retrying")

		if attempt < s.retry.MaxAttempts {
			if err := sleepWithContext(ctx, s.retry.delayFor(attempt)); err != nil {
				return domain.Order{}, err
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordRetryExhausted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     orderID,
		"max_attempts": s.retry.MaxAttempts,
	}).Error("confirm failed after all retry attempts")
	return domain.Order{}, fmt.Errorf("confirm order %s: %w", orderID, domain.ErrRetryExhausted)
}

// CancelOrder отменяет заказ. Для подтверждённого заказа зарезервированный
// сток возвращается в каталог тем же атомарным коммитом.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason string) (domain.Order, error) {
	if s.metrics != nil {
		s.metrics.RecordOpStarted()
		defer s.metrics.RecordOpFinished()
	}

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Order{}, err
		}

		order, err := s.orders.Get(orderID)
		if err != nil {
			return domain.Order{}, err
		}

		wasConfirmed := order.IsConfirmed()
		now := time.Now().UTC()
		if err := order.Cancel(reason, now); err != nil {
			return domain.Order{}, err
		}

		if wasConfirmed {
			products, releaseErr := s.releaseForOrder(&order, now)
			if releaseErr != nil {
				return domain.Order{}, releaseErr
			}
			err = s.orders.SaveWithProducts(order, products)
		} else {
			err = s.orders.Save(order)
		}
		if err == nil {
			order.Version++
			s.appendTimeline(order.ID, domain.TimelineEventOrderCanceled, reason, now)
			if s.metrics != nil {
				s.metrics.RecordOrderCanceled()
				s.metrics.RecordAttempts("cancel", attempt)
			}
			s.logger.WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt,
				"released": wasConfirmed,
			}).Info("order canceled")
			return order, nil
		}
		if !domain.IsVersionConflict(err) {
			return domain.Order{}, fmt.Errorf("save canceled order: %w", err)
		}

		if s.metrics != nil {
			s.metrics.RecordVersionConflict()
		}
		s.logger.WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt,
		}).Warn("version conflict on cancel, retrying")

		if attempt < s.retry.MaxAttempts {
			if err := sleepWithContext(ctx, s.retry.delayFor(attempt)); err != nil {
				return domain.Order{}, err
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordRetryExhausted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     orderID,
		"max_attempts": s.retry.MaxAttempts,
	}).Error("cancel failed after all retry attempts")
	return domain.Order{}, fmt.Errorf("cancel order %s: %w", orderID, domain.ErrRetryExhausted)
}

// GetOrder возвращает снимок заказа вместе с его таймлайном.
func (s *Service) GetOrder(ctx context.Context, orderID string) (OrderView, error) {
	if err := ctx.Err(); err != nil {
		return OrderView{}, err
	}

	order, err := s.reader.GetByID(orderID)
	if err != nil {
		return OrderView{}, err
	}

	view := OrderView{Order: order}
	if s.timeline != nil {
		events, err := s.timeline.List(orderID)
		if err != nil {
			// Таймлайн — вспомогательная read-модель, её сбой не роняет чтение заказа.
			s.logger.WithError(err).WithField("order_id", orderID).Warn("list timeline failed")
		} else {
			view.Timeline = events
		}
	}

	return view, nil
}

// ListOrders возвращает страницу заказов и общее количество под фильтром.
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter, page, pageSize int) ([]domain.Order, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return s.reader.List(filter, page, pageSize)
}

// reserveForOrder загружает товары заказа и резервирует запрошенное количество.
// Количество агрегируется по товару: несколько позиций одного товара резервируют сумму.
func (s *Service) reserveForOrder(order *domain.Order, now time.Time) ([]domain.Product, error) {
	requested := aggregateOrderQty(order)

	products := make([]domain.Product, 0, len(requested))
	for _, id := range orderedProductIDs(order) {
		product, err := s.products.Get(id)
		if err != nil {
			return nil, err
		}
		if err := product.ReserveStock(requested[id], now); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// releaseForOrder загружает товары заказа и возвращает зарезервированное количество.
func (s *Service) releaseForOrder(order *domain.Order, now time.Time) ([]domain.Product, error) {
	requested := aggregateOrderQty(order)

	products := make([]domain.Product, 0, len(requested))
	for _, id := range orderedProductIDs(order) {
		product, err := s.products.Get(id)
		if err != nil {
			return nil, err
		}
		if err := product.ReleaseStock(requested[id], now); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// lookupCatalog читает товары позиций из каталога и проверяет, что все найдены.
func (s *Service) lookupCatalog(lines []CreateOrderLine) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	found, err := s.catalog.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}

	productByID := make(map[string]domain.Product, len(found))
	for _, product := range found {
		productByID[product.ID] = product
	}

	var missing []string
	for _, id := range ids {
		if _, ok := productByID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ProductsNotFoundError{IDs: missing}
	}

	return productByID, nil
}

func (s *Service) appendTimeline(orderID, eventType, reason string, occurred time.Time) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	}
}

func validateCreateInput(in CreateOrderInput) error {
	var errs []error

	if in.CustomerID == "" {
		errs = append(errs, domain.ErrCustomerRequired)
	}
	if in.Currency == "" {
		errs = append(errs, domain.ErrCurrencyRequired)
	}
	if len(in.Lines) == 0 {
		errs = append(errs, domain.ErrLinesRequired)
	}
	for _, line := range in.Lines {
		if line.ProductID == "" {
			errs = append(errs, domain.ErrProductIDRequired)
		}
		if line.Qty <= 0 {
			errs = append(errs, domain.ErrLineQtyInvalid)
		}
	}

	return errors.Join(errs...)
}

func aggregateRequestedQty(lines []CreateOrderLine) map[string]int32 {
	requested := make(map[string]int32, len(lines))
	for _, line := range lines {
		requested[line.ProductID] += line.Qty
	}
	return requested
}

func aggregateOrderQty(order *domain.Order) map[string]int32 {
	requested := make(map[string]int32, len(order.Lines))
	for _, line := range order.Lines {
		requested[line.ProductID] += line.Qty
	}
	return requested
}

func orderedProductIDs(order *domain.Order) []string {
	ids := make([]string, 0, len(order.Lines))
	seen := make(map[string]struct{}, len(order.Lines))
	for _, line := range order.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
