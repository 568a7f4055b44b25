package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jarodlopez/homemartshop/internal/auth"
	"github.com/jarodlopez/homemartshop/internal/catalog"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

// AdminHandlers serves the catalog management surface used by the POS side.
type AdminHandlers struct {
	docs         store.DocumentStore
	jwtService   *auth.JWTService
	passwordHash string
	cache        *catalog.Cache // optional, invalidated on catalog writes
}

func NewAdminHandlers(docs store.DocumentStore, jwtService *auth.JWTService, passwordHash string) *AdminHandlers {
	return &AdminHandlers{
		docs:         docs,
		jwtService:   jwtService,
		passwordHash: passwordHash,
	}
}

// WithCache attaches the catalog cache so writes can invalidate it.
func (h *AdminHandlers) WithCache(c *catalog.Cache) *AdminHandlers {
	h.cache = c
	return h
}

func (h *AdminHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !auth.CheckPassword(req.Password, h.passwordHash) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(auth.RoleAdmin)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

func (h *AdminHandlers) PutProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Price       string `json:"price"`
		Image       string `json:"image"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Stock       int    `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Name == "" {
		http.Error(w, "id and name are required", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		http.Error(w, "price must be a positive number", http.StatusBadRequest)
		return
	}
	if req.Stock < 0 {
		http.Error(w, "stock must not be negative", http.StatusBadRequest)
		return
	}

	product := store.Product{
		ID:          req.ID,
		Name:        req.Name,
		Price:       price,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		Stock:       req.Stock,
	}
	if err := h.docs.PutProduct(r.Context(), product); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.invalidateCache(r)

	respondJSON(w, http.StatusOK, product)
}

func (h *AdminHandlers) AddStock(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/products/")
	id := strings.TrimSuffix(path, "/stock")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return
	}

	if err := h.docs.AddStock(r.Context(), id, req.Quantity); err != nil {
		if err == store.ErrProductNotFound {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.invalidateCache(r)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Stock added"})
}

func (h *AdminHandlers) invalidateCache(r *http.Request) {
	if h.cache != nil {
		_ = h.cache.Invalidate(r.Context())
	}
}
