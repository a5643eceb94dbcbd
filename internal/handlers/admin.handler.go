package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/retail-ledger/internal/model"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

type MaintenanceService interface {
	PruneHistory(ctx context.Context) (*model.PruneResult, error)
}

// BackupStore moves the full database image in and out of the process.
type BackupStore interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

type SeedService interface {
	Run(ctx context.Context, products, orders, borrowers int) error
}

type AdminHandler struct {
	maintenance MaintenanceService
	backups     BackupStore
	seeder      SeedService
}

func RegisterAdminRoutes(e *router.Group, h *AdminHandler) {
	e.POST("/admin/prune", h.PruneHistory)
	e.GET("/admin/export", h.ExportImage)
	e.POST("/admin/import", h.ImportImage)
	e.POST("/admin/seed", h.SeedData)
}

func NewAdminHandler(maintenance MaintenanceService, backups BackupStore, seeder SeedService) *AdminHandler {
	return &AdminHandler{
		maintenance: maintenance,
		backups:     backups,
		seeder:      seeder,
	}
}

func (h *AdminHandler) PruneHistory(ctx *xhttp.RequestCtx) {
	result, err := h.maintenance.PruneHistory(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}

// ExportImage streams the full serialized database image.
func (h *AdminHandler) ExportImage(ctx *xhttp.RequestCtx) {
	data, err := h.backups.Export(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/octet-stream")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="ledger.db"`)
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyRaw(data)
}

// ImportImage replaces the entire database with the posted image. The
// payload is validated before anything is overwritten.
func (h *AdminHandler) ImportImage(ctx *xhttp.RequestCtx) {
	data := ctx.PostBody()
	if len(data) == 0 {
		writeError(ctx, 400, "empty body")
		return
	}

	if err := h.backups.Import(ctx, data); err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "imported"})
}

type seedRequest struct {
	Products  int `json:"products"`
	Orders    int `json:"orders"`
	Borrowers int `json:"borrowers"`
}

func (h *AdminHandler) SeedData(ctx *xhttp.RequestCtx) {
	var req seedRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	if err := h.seeder.Run(ctx, req.Products, req.Orders, req.Borrowers); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "seeded"})
}
