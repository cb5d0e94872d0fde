package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skmart/backend/internal/domain"
)

func terminalParam(r *http.Request) string {
	return chi.URLParam(r, "terminal")
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.GetCart(r.Context(), terminalParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.ClearCart(r.Context(), terminalParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req domain.CartAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := a.service.AddToCart(r.Context(), terminalParam(r), req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	var req domain.CartLineUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := a.service.UpdateCartLine(r.Context(), terminalParam(r), productID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	view, err := a.service.RemoveCartLine(r.Context(), terminalParam(r), productID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleSetBillDiscount(w http.ResponseWriter, r *http.Request) {
	var discount domain.Discount
	if !decodeJSON(w, r, &discount) {
		return
	}
	view, err := a.service.SetCartBillDiscount(r.Context(), terminalParam(r), discount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleCartCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CartCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := a.service.CheckoutCart(r.Context(), terminalParam(r), req.PaymentRequest)
	writeResult(w, r, http.StatusCreated, resp, err)
}
