package httpapi

import (
	"net/http"

	"storefront-core/internal/cart"

	"github.com/shopspring/decimal"
)

const defaultAddQuantity = 1

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddItemRequestDTO leaves Quantity nil when the field is omitted, which
// adds a single unit.
type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ApplyDiscountRequestDTO struct {
	Code string `json:"code"`
}

// CartDTO adds the derived totals to the stored cart.
type CartDTO struct {
	*cart.Cart
	HasDiscount    bool            `json:"has_discount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

func newCartDTO(c *cart.Cart) CartDTO {
	return CartDTO{
		Cart:           c,
		HasDiscount:    c.HasDiscount(),
		Subtotal:       c.Subtotal(),
		DiscountAmount: c.DiscountAmount(),
		Total:          c.Total(),
	}
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, c *cart.Cart, err error) {
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, status, newCartDTO(c))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), caller(r))
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		invalidID(w, "product_id")
		return
	}

	quantity := defaultAddQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, err := h.carts.AddItem(r.Context(), caller(r), req.ProductID, quantity)
	h.respondCart(w, r, http.StatusCreated, c, err)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		invalidID(w, "productID")
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.carts.SetItemQuantity(r.Context(), caller(r), productID, req.Quantity)
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		invalidID(w, "productID")
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), caller(r), productID)
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req ApplyDiscountRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.carts.ApplyDiscount(r.Context(), caller(r), req.Code)
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) ClearDiscount(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.ClearDiscount(r.Context(), caller(r))
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), caller(r))
	h.respondCart(w, r, http.StatusOK, c, err)
}

func (h *CartHandler) CountItems(w http.ResponseWriter, r *http.Request) {
	n, err := h.carts.Count(r.Context(), caller(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": n})
}
