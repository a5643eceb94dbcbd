package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/retail-ledger/internal/model"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

type ProductService interface {
	Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error)
	Update(ctx context.Context, req model.ProductUpdateRequest) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	LowStock(ctx context.Context, limit int) ([]*model.Product, error)
}

type ProductHandler struct {
	svc ProductService
}

func RegisterProductRoutes(e *router.Group, h *ProductHandler) {
	e.POST("/products", h.CreateProduct)
	e.GET("/products", h.ListProducts)
	e.GET("/products/low-stock", h.ListLowStock)
	e.GET("/products/{id}", h.GetProduct)
	e.PUT("/products/{id}", h.UpdateProduct)
	e.DELETE("/products/{id}", h.DeleteProduct)
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		svc: productService,
	}
}

type productRequest struct {
	Name        string  `json:"name"`
	PriceBuy    float64 `json:"price_buy"`
	PriceSell   float64 `json:"price_sell"`
	Stock       *int64  `json:"stock"`
	StockDanger int64   `json:"stock_danger"`
}

type productListResponse struct {
	Items []*model.Product `json:"items"`
	Total int64            `json:"total"`
}

func (h *ProductHandler) CreateProduct(ctx *xhttp.RequestCtx) {
	var req productRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	product, err := h.svc.Create(ctx, model.ProductCreateRequest{
		Name:        req.Name,
		PriceBuy:    req.PriceBuy,
		PriceSell:   req.PriceSell,
		Stock:       req.Stock,
		StockDanger: req.StockDanger,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, product)
}

func (h *ProductHandler) UpdateProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}

	var req productRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	product, err := h.svc.Update(ctx, model.ProductUpdateRequest{
		ID:          id,
		Name:        req.Name,
		PriceBuy:    req.PriceBuy,
		PriceSell:   req.PriceSell,
		Stock:       req.Stock,
		StockDanger: req.StockDanger,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, product)
}

func (h *ProductHandler) DeleteProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ProductHandler) GetProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid product id")
		return
	}

	product, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, product)
}

func (h *ProductHandler) ListProducts(ctx *xhttp.RequestCtx) {
	var f model.ProductFilter

	if v := query(ctx, "search"); v != "" {
		f.Search = &v
	}
	if v := query(ctx, "sort"); v != "" {
		f.SortBy = model.ProductSort(v)
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

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, productListResponse{Items: items, Total: total})
}

func (h *ProductHandler) ListLowStock(ctx *xhttp.RequestCtx) {
	limit, _ := queryInt(ctx, "limit")

	items, err := h.svc.LowStock(ctx, limit)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, items)
}
