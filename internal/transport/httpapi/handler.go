package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
	"github.com/vladislavdragonenkov/stockoms/internal/service/orders"
)

// Handler — тонкая HTTP/JSON-обвязка над сервисом заказов. Вся бизнес-логика
// живёт в service/orders; здесь только связывание запросов и маппинг ошибок.
type Handler struct {
	svc    *orders.Service
	logger *log.Entry
}

// NewHandler создаёт HTTP-обработчик поверх сервиса заказов.
func NewHandler(svc *orders.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register вешает маршруты API на переданный движок.
func (h *Handler) Register(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/orders", h.createOrder)
		api.GET("/orders", h.listOrders)
		api.GET("/orders/:id", h.getOrder)
		api.POST("/orders/:id/confirm", h.confirmOrder)
		api.POST("/orders/:id/cancel", h.cancelOrder)
	}
}

type createOrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int32  `json:"qty" binding:"required"`
}

type createOrderRequest struct {
	CustomerID string                   `json:"customer_id" binding:"required"`
	Currency   string                   `json:"currency" binding:"required"`
	Lines      []createOrderLineRequest `json:"lines" binding:"required"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderLineResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	SubtotalMinor  int64  `json:"subtotal_minor"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	CustomerID   string              `json:"customer_id"`
	Currency     string              `json:"currency"`
	Status       string              `json:"status"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	Lines        []orderLineResponse `json:"lines"`
	TotalMinor   int64               `json:"total_minor"`
	Version      int64               `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type timelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred_at"`
}

type orderViewResponse struct {
	orderResponse
	Timeline []timelineEventResponse `json:"timeline"`
}

type listOrdersResponse struct {
	Orders   []orderResponse `json:"orders"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
		return
	}

	in := orders.CreateOrderInput{
		CustomerID: req.CustomerID,
		Currency:   req.Currency,
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, orders.CreateOrderLine{
			ProductID: line.ProductID,
			Qty:       line.Qty,
		})
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) confirmOrder(c *gin.Context) {
	order, err := h.svc.ConfirmOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) cancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
			return
		}
	}

	order, err := h.svc.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) getOrder(c *gin.Context) {
	view, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := orderViewResponse{
		orderResponse: toOrderResponse(view.Order),
		Timeline:      make([]timelineEventResponse, 0, len(view.Timeline)),
	}
	for _, event := range view.Timeline {
		resp.Timeline = append(resp.Timeline, timelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}

	c.JSON(http.StatusOK, resp)
}

type listOrdersQuery struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

func (h *Handler) listOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := domain.OrderFilter{CustomerID: query.CustomerID}
	if query.Status != "" {
		status := domain.OrderStatus(query.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status", "details": query.Status})
			return
		}
		filter.Status = status
	}
	var err error
	if filter.DateFrom, err = parseOptionalTime(query.DateFrom); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from", "details": err.Error()})
		return
	}
	if filter.DateTo, err = parseOptionalTime(query.DateTo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to", "details": err.Error()})
		return
	}

	page, total, err := h.svc.ListOrders(c.Request.Context(), filter, query.Page, query.PageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := listOrdersResponse{
		Orders:   make([]orderResponse, 0, len(page)),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	for _, order := range page {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}

	c.JSON(http.StatusOK, resp)
}

// renderError переводит доменную таксономию ошибок в HTTP-статусы:
// валидация — 400, отсутствие — 404, конфликт состояния или стока — 409,
// исчерпанный бюджет повторов — 503.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsInvalidTransition(err), domain.IsInsufficientStock(err), domain.IsVersionConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRetryExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrCustomerRequired,
		domain.ErrCurrencyRequired,
		domain.ErrLinesRequired,
		domain.ErrLineQtyInvalid,
		domain.ErrLinePriceInvalid,
		domain.ErrStockQtyInvalid,
		domain.ErrProductIDRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func parseOptionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		Currency:     order.Currency,
		Status:       string(order.Status),
		CancelReason: order.CancelReason,
		Lines:        make([]orderLineResponse, 0, len(order.Lines)),
		TotalMinor:   order.TotalMinor(),
		Version:      order.Version,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Qty:            line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			SubtotalMinor:  line.SubtotalMinor(),
		})
	}
	return resp
}
