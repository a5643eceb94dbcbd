package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/retail-ledger/internal/model"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

type OrderService interface {
	Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error)
	Delete(ctx context.Context, orderID int64) error
	ListWithTotals(ctx context.Context, f model.OrderFilter) ([]*model.OrderWithTotal, int64, error)
	ProductsInOrder(ctx context.Context, orderID int64, limit, offset int) ([]*model.OrderLine, error)
	Statistics(ctx context.Context) (*model.OrderStatistics, error)
}

type LinkService interface {
	LinkOrder(ctx context.Context, orderID, borrowerID int64) (*model.LinkResult, error)
}

type OrderHandler struct {
	svc   OrderService
	links LinkService
}

func RegisterOrderRoutes(e *router.Group, h *OrderHandler) {
	e.POST("/orders", h.CreateOrder)
	e.GET("/orders", h.ListOrders)
	e.GET("/orders/statistics", h.GetStatistics)
	e.GET("/orders/{id}/products", h.ListOrderProducts)
	e.POST("/orders/{id}/borrower", h.LinkBorrower)
	e.DELETE("/orders/{id}", h.DeleteOrder)
}

func NewOrderHandler(orderService OrderService, linkService LinkService) *OrderHandler {
	return &OrderHandler{
		svc:   orderService,
		links: linkService,
	}
}

type createOrderRequest struct {
	Items []model.LineItem `json:"items"`
}

type orderListResponse struct {
	Items []*model.OrderWithTotal `json:"items"`
	Total int64                   `json:"total"`
}

type linkBorrowerRequest struct {
	BorrowerID int64 `json:"borrower_id"`
}

func (h *OrderHandler) CreateOrder(ctx *xhttp.RequestCtx) {
	var req createOrderRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	order, err := h.svc.Create(ctx, model.OrderCreateRequest{Items: req.Items})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, order)
}

func (h *OrderHandler) DeleteOrder(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *OrderHandler) ListOrders(ctx *xhttp.RequestCtx) {
	var f model.OrderFilter

	if v := query(ctx, "sort"); v != "" {
		f.SortBy = model.OrderSort(v)
	}
	if strings.EqualFold(query(ctx, "order"), "asc") {
		f.Ascending = true
	}
	if n, ok := queryInt(ctx, "limit"); ok {
		f.Limit = n
	}
	if n, ok := queryInt(ctx, "offset"); ok {
		f.Offset = n
	}

	items, total, err := h.svc.ListWithTotals(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, orderListResponse{Items: items, Total: total})
}

func (h *OrderHandler) ListOrderProducts(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}
	limit, _ := queryInt(ctx, "limit")
	offset, _ := queryInt(ctx, "offset")

	lines, err := h.svc.ProductsInOrder(ctx, id, limit, offset)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, lines)
}

func (h *OrderHandler) GetStatistics(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Statistics(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, stats)
}

// LinkBorrower charges the order to a borrower. An already linked order
// answers 200 with success=false, it is not an error.
func (h *OrderHandler) LinkBorrower(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	var req linkBorrowerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.links.LinkOrder(ctx, id, req.BorrowerID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, result)
}
