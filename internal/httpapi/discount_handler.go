package httpapi

import (
	"net/http"

	"storefront-core/internal/discount"
)

type DiscountHandler struct {
	discounts discount.Service
}

func NewDiscountHandler(discounts discount.Service) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// Banner responds 204 when no code is currently active.
func (h *DiscountHandler) Banner(w http.ResponseWriter, r *http.Request) {
	dc, err := h.discounts.FindActiveBanner(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if dc == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, dc)
}

func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.discounts.ListAllActive(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, codes)
}

func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req discount.CreateInput
	if !decodeBody(w, r, &req) {
		return
	}

	dc, err := h.discounts.Create(r.Context(), caller(r), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, dc)
}

func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		invalidID(w, "id")
		return
	}

	if err := h.discounts.DeleteByID(r.Context(), caller(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
