package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/retail-ledger/internal/model"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

type BorrowerService interface {
	Create(ctx context.Context, req model.BorrowerCreateRequest) (*model.Borrower, error)
	Get(ctx context.Context, id int64) (*model.Borrower, error)
	List(ctx context.Context, f model.BorrowerFilter) ([]*model.Borrower, int64, error)
	UpdateAmount(ctx context.Context, id int64, amount float64) error
	Delete(ctx context.Context, id int64) error
	SnapshotOrders(ctx context.Context, borrowerID int64) ([]*model.SnapshotOrder, error)
}

type BorrowerHandler struct {
	svc BorrowerService
}

func RegisterBorrowerRoutes(e *router.Group, h *BorrowerHandler) {
	e.POST("/borrowers", h.CreateBorrower)
	e.GET("/borrowers", h.ListBorrowers)
	e.GET("/borrowers/{id}", h.GetBorrower)
	e.GET("/borrowers/{id}/orders", h.ListBorrowerOrders)
	e.PUT("/borrowers/{id}/amount", h.UpdateAmount)
	e.DELETE("/borrowers/{id}", h.DeleteBorrower)
}

func NewBorrowerHandler(borrowerService BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{
		svc: borrowerService,
	}
}

type createBorrowerRequest struct {
	Name   string  `json:"name"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type updateAmountRequest struct {
	Amount float64 `json:"amount"`
}

type borrowerListResponse struct {
	Items []*model.Borrower `json:"items"`
	Total int64             `json:"total"`
}

func (h *BorrowerHandler) CreateBorrower(ctx *xhttp.RequestCtx) {
	var req createBorrowerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := parseTime(req.Date)
		if err != nil {
			writeError(ctx, 400, "invalid date")
			return
		}
		date = parsed
	}

	borrower, err := h.svc.Create(ctx, model.BorrowerCreateRequest{
		Name:   req.Name,
		Date:   date,
		Amount: req.Amount,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, borrower)
}

func (h *BorrowerHandler) GetBorrower(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid borrower id")
		return
	}

	borrower, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, borrower)
}

func (h *BorrowerHandler) ListBorrowers(ctx *xhttp.RequestCtx) {
	var f model.BorrowerFilter

	if v := query(ctx, "search"); v != "" {
		f.Search = &v
	}
	if v := query(ctx, "sort"); v != "" {
		f.SortBy = model.BorrowerSort(v)
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
	writeJSON(ctx, 200, borrowerListResponse{Items: items, Total: total})
}

func (h *BorrowerHandler) ListBorrowerOrders(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid borrower id")
		return
	}

	orders, err := h.svc.SnapshotOrders(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, orders)
}

func (h *BorrowerHandler) UpdateAmount(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid borrower id")
		return
	}

	var req updateAmountRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.UpdateAmount(ctx, id, req.Amount); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *BorrowerHandler) DeleteBorrower(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid borrower id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}
