package httpapi

import (
	"net/http"

	"storefront-core/internal/wishlist"
)

type WishlistHandler struct {
	wishlists wishlist.Service
}

func NewWishlistHandler(wishlists wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

type WishlistItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

func (h *WishlistHandler) respondWishlist(w http.ResponseWriter, r *http.Request, status int, wl *wishlist.Wishlist, err error) {
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, status, wl)
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wl, err := h.wishlists.Get(r.Context(), caller(r))
	h.respondWishlist(w, r, http.StatusOK, wl, err)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		invalidID(w, "product_id")
		return
	}

	wl, err := h.wishlists.Add(r.Context(), caller(r), req.ProductID)
	h.respondWishlist(w, r, http.StatusCreated, wl, err)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		invalidID(w, "productID")
		return
	}

	wl, err := h.wishlists.Remove(r.Context(), caller(r), productID)
	h.respondWishlist(w, r, http.StatusOK, wl, err)
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	wl, err := h.wishlists.Clear(r.Context(), caller(r))
	h.respondWishlist(w, r, http.StatusOK, wl, err)
}
