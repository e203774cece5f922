package httpapi

import (
	"net/http"

	"storefront-core/internal/review"
)

type ReviewHandler struct {
	reviews review.Service
}

func NewReviewHandler(reviews review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type ReviewRequestDTO struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

type ProductReviewsDTO struct {
	ProductID     int64            `json:"product_id"`
	AverageRating float64          `json:"average_rating"`
	ReviewCount   int64            `json:"review_count"`
	Reviews       []*review.Review `json:"reviews"`
}

func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		invalidID(w, "id")
		return
	}
	ctx := r.Context()

	reviews, err := h.reviews.ListForProduct(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	avg, err := h.reviews.AverageRating(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	count, err := h.reviews.ReviewCount(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductReviewsDTO{
		ProductID:     id,
		AverageRating: avg,
		ReviewCount:   count,
		Reviews:       reviews,
	})
}

func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		invalidID(w, "id")
		return
	}
	var req ReviewRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	rv, err := h.reviews.Upsert(r.Context(), caller(r), id, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "reviewID")
	if !ok {
		invalidID(w, "reviewID")
		return
	}
	var req ReviewRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	rv, err := h.reviews.Update(r.Context(), caller(r), id, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "reviewID")
	if !ok {
		invalidID(w, "reviewID")
		return
	}

	if err := h.reviews.Delete(r.Context(), caller(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
