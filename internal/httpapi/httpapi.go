package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"skmart/backend/internal/service"
	"skmart/backend/internal/store"
)

const defaultMaxBodyBytes = 10 << 20

type Options struct {
	AllowedOrigin string
	MaxBodyBytes  int64
	// UploadDir is served under /uploads/ when set.
	UploadDir string
	// StaticDir holds the browser UI; empty disables it.
	StaticDir string
}

type API struct {
	service *service.Service
	opts    Options
}

func New(svc *service.Service, opts Options) *API {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &API{service: svc, opts: opts}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(a.securityHeaders)
	r.Use(a.limitBody)

	r.Get("/healthz", a.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", a.handleListCategories)
			r.Post("/", a.handleAddCategory)
			r.Delete("/{id}", a.handleDeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", a.handleListProducts)
			r.Post("/", a.handleSaveProduct)
			r.Get("/next-code", a.handleNextProductCode)
			r.Get("/{id}", a.handleGetProduct)
			r.Delete("/{id}", a.handleDeleteProduct)
			r.Patch("/{id}/stock", a.handleAdjustStock)
		})

		r.Post("/quote", a.handleQuote)
		r.Post("/checkout", a.handleCheckout)

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", a.handleListSales)
			r.Delete("/", a.handleClearSales)
			r.Get("/{id}", a.handleGetSale)
			r.Post("/{id}/pay", a.handleMarkPaid)
			r.Post("/{id}/returns", a.handleReturnItem)
			r.Post("/{id}/return-all", a.handleReturnAll)
		})

		r.Route("/carts/{terminal}", func(r chi.Router) {
			r.Get("/", a.handleGetCart)
			r.Delete("/", a.handleClearCart)
			r.Post("/items", a.handleAddCartItem)
			r.Patch("/items/{productID}", a.handleUpdateCartItem)
			r.Delete("/items/{productID}", a.handleRemoveCartItem)
			r.Put("/bill-discount", a.handleSetBillDiscount)
			r.Post("/checkout", a.handleCartCheckout)
		})

		r.Get("/reports", a.handleReport)
		r.Get("/export/sales.csv", a.handleExportSales)
		r.Get("/export/inventory.csv", a.handleExportInventory)
		r.Get("/backup", a.handleBackup)
		r.Post("/restore", a.handleRestore)
	})

	if a.opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.opts.UploadDir))))
	}
	if a.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(a.opts.StaticDir)))
	}

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.opts.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) {
			r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(startedAt)).
			Msg("request completed")
	})
}

// statusFor maps workflow and store errors onto HTTP statuses. Anything it
// does not recognise is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrReturnQtyExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, err)
}

// writeResult sends payload with status, or with 207 when the ledger write
// succeeded but some stock updates did not.
func writeResult(w http.ResponseWriter, r *http.Request, status int, payload any, err error) {
	var syncErr *service.StockSyncError
	switch {
	case err == nil:
		writeJSON(w, status, payload)
	case errors.As(err, &syncErr):
		writeJSON(w, http.StatusMultiStatus, payload)
	default:
		writeServiceError(w, r, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return finishDecode(w, decoder.Decode(dest))
}

// decodeLooseJSON accepts unknown fields. Product forms and backup files
// carry extra keys the server does not store.
func decodeLooseJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	return finishDecode(w, json.NewDecoder(r.Body).Decode(dest))
}

func finishDecode(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return false
	}
	writeError(w, http.StatusBadRequest, err)
	return false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
