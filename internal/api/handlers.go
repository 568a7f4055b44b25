package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jarodlopez/homemartshop/internal/catalog"
	"github.com/jarodlopez/homemartshop/internal/checkout"
	"github.com/jarodlopez/homemartshop/internal/domain/cart"
)

type Handlers struct {
	catalog      *catalog.Service
	cart         *cart.Store
	orchestrator *checkout.Orchestrator
}

func NewHandlers(catalogSvc *catalog.Service, cartStore *cart.Store, orchestrator *checkout.Orchestrator) *Handlers {
	return &Handlers{
		catalog:      catalogSvc,
		cart:         cartStore,
		orchestrator: orchestrator,
	}
}

// Catalog Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	// ?product=<id> deep-links a single product detail
	if p, ok := h.catalog.ProductFromQuery(r.Context(), r.URL.Query()); ok {
		respondJSON(w, http.StatusOK, p)
		return
	}

	products, err := h.catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	h.cart.Add(*product)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.cart.UpdateQuantity(id, req.Delta)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/cart/items/")
	h.cart.Remove(id)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handlers) SetCartOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Open bool `json:"open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.cart.SetOpen(req.Open)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *Handlers) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.cart.ApplyDiscountCode(req.Code) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Código inválido"})
		return
	}
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// Checkout Handler

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, checkout.ErrCheckoutInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Hubo un error al procesar tu orden. Intenta nuevamente.",
		})
		return
	}
	if result == nil {
		// Empty cart: guarded no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"order_id":     result.Order.ID,
		"whatsapp_url": result.Link,
	})
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	if i := strings.Index(param, "/"); i >= 0 {
		param = param[:i]
	}
	return param
}
