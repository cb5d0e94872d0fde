package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/export"
)

func (a *API) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quote, err := a.service.Quote(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := a.service.Checkout(r.Context(), req)
	writeResult(w, r, http.StatusCreated, resp, err)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := strconv.Atoi(strings.TrimSpace(query.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	resp, err := a.service.ListSales(r.Context(), domain.SaleFilter{
		Date:  query.Get("date"),
		Query: query.Get("q"),
		Page:  page,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleClearSales(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, errors.New("confirm=true is required to clear sales history"))
		return
	}
	if err := a.service.ClearSales(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := a.service.GetSaleView(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sale, err := a.service.MarkSalePaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleReturnItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.ReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := a.service.ReturnItem(r.Context(), id, req)
	writeResult(w, r, http.StatusOK, resp, err)
}

func (a *API) handleReturnAll(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := a.service.ReturnAll(r.Context(), id)
	writeResult(w, r, http.StatusOK, resp, err)
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := a.service.Report(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleExportSales(w http.ResponseWriter, r *http.Request) {
	body, name, err := a.service.ExportSalesCSV(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", name, body)
}

func (a *API) handleExportInventory(w http.ResponseWriter, r *http.Request) {
	body, name, err := a.service.ExportInventoryCSV(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", name, body)
}

func (a *API) handleBackup(w http.ResponseWriter, r *http.Request) {
	backup, err := a.service.Backup(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	name := export.BackupFilename(backup.Timestamp.In(a.service.Location()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeJSON(w, http.StatusOK, backup)
}

func (a *API) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req domain.RestoreRequest
	if !decodeLooseJSON(w, r, &req) {
		return
	}
	if err := a.service.Restore(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeAttachment(w http.ResponseWriter, contentType string, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
