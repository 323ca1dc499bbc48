package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/portal"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, errorResponse{Success: false, Message: msg})
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DownloadReceipt looks up the payment named in the path and serves its
// receipt as an attachment.
func (a *App) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	if a.Finder == nil {
		a.Metrics.observe("unavailable")
		a.error(w, http.StatusServiceUnavailable, "payment lookup is not configured")
		return
	}
	query := chi.URLParam(r, "query")
	p, err := a.Finder.Find(r.Context(), query)
	if err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, portal.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, portal.ErrAmbiguous), errors.Is(err, portal.ErrEmptyQuery):
			code = http.StatusBadRequest
		}
		a.Metrics.observe("lookup_failed")
		a.error(w, code, err.Error())
		return
	}
	a.serve(w, p)
}

// RenderReceipt renders the PaymentRecord posted as JSON. Keys the record
// does not know, such as a portal's id or createdAt, are ignored.
func (a *App) RenderReceipt(w http.ResponseWriter, r *http.Request) {
	var p levyreceipt.PaymentRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		a.Metrics.observe("bad_request")
		a.error(w, http.StatusBadRequest, "invalid payment record: "+err.Error())
		return
	}
	a.serve(w, p)
}

func (a *App) serve(w http.ResponseWriter, p levyreceipt.PaymentRecord) {
	start := time.Now()
	doc, err := a.Renderer.Build(p)
	a.Metrics.buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		code := http.StatusInternalServerError
		outcome := "failed"
		if errors.Is(err, levyreceipt.ErrInvalidInput) || errors.Is(err, levyreceipt.ErrOverflow) {
			code = http.StatusUnprocessableEntity
			outcome = "rejected"
		}
		a.Metrics.observe(outcome)
		a.Logger.Warn().Err(err).Str("receipt", p.ReceiptNumber).Msg("receipt not served")
		a.error(w, code, err.Error())
		return
	}

	a.Metrics.observe("served")
	a.Metrics.receiptBytes.Observe(float64(len(doc.Data)))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}
