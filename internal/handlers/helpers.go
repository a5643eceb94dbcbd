package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/nimasrn/retail-ledger/internal/services"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses. Insufficient
// stock carries its details so the UI can show what was short.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(ctx, 409, map[string]any{
			"error":     stockErr.Error(),
			"product":   stockErr.Product,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrBorrowerNotFound):
		writeError(ctx, 404, err.Error())
	default:
		writeError(ctx, 400, err.Error())
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func queryInt(ctx *xhttp.RequestCtx, key string) (int, bool) {
	if v := query(ctx, key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
