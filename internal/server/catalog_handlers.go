package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/repository"
)

// CatalogHandlers implements the product catalog endpoints. Every
// operation is scoped to the caller's organization; a product ID from
// another organization behaves exactly like a missing one.
type CatalogHandlers struct {
	products repository.ProductRepository
}

// NewCatalogHandlers creates handlers backed by the given repository.
func NewCatalogHandlers(products repository.ProductRepository) *CatalogHandlers {
	return &CatalogHandlers{products: products}
}

// ProductRequest carries the writable product fields.
type ProductRequest struct {
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"priceCents"`
	Stock      int    `json:"stock"`
}

// ProductResponse represents product data in API responses.
type ProductResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ListProducts handles GET /api/products
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	products, err := h.products.List(r.Context(), orgID)
	if err != nil {
		log.Printf("catalog: list failed (org_id=%s): %v", orgID, err)
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("catalog: failed to encode response: %v", err)
	}
}

// CreateProduct handles POST /api/products
func (h *CatalogHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product := &models.Product{
		OrganizationID: orgID,
		Name:           req.Name,
		SKU:            req.SKU,
		PriceCents:     req.PriceCents,
		Stock:          req.Stock,
	}
	if err := product.ValidateForCreate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			http.Error(w, "A product with this SKU already exists", http.StatusConflict)
			return
		}
		log.Printf("catalog: create failed (org_id=%s sku=%s): %v", orgID, req.SKU, err)
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(newProductResponse(product)); err != nil {
		log.Printf("catalog: failed to encode response: %v", err)
	}
}

// GetProduct handles GET /api/products/{productID}
func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	product, err := h.products.GetByID(r.Context(), orgID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Printf("catalog: get failed (org_id=%s product_id=%s): %v", orgID, productID, err)
		http.Error(w, "Failed to get product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newProductResponse(product)); err != nil {
		log.Printf("catalog: failed to encode response: %v", err)
	}
}

// UpdateProduct handles PUT /api/products/{productID}
func (h *CatalogHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	productID := chi.URLParam(r, "productID")
	product := &models.Product{
		ID:             productID,
		OrganizationID: orgID,
		Name:           req.Name,
		SKU:            req.SKU,
		PriceCents:     req.PriceCents,
		Stock:          req.Stock,
	}
	if err := product.ValidateForCreate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Product not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			http.Error(w, "A product with this SKU already exists", http.StatusConflict)
		default:
			log.Printf("catalog: update failed (org_id=%s product_id=%s): %v", orgID, productID, err)
			http.Error(w, "Failed to update product", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newProductResponse(product)); err != nil {
		log.Printf("catalog: failed to encode response: %v", err)
	}
}

// DeleteProduct handles DELETE /api/products/{productID}. Deletion is a
// soft flag; sales that reference the product keep resolving.
func (h *CatalogHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.products.SoftDelete(r.Context(), orgID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		log.Printf("catalog: delete failed (org_id=%s product_id=%s): %v", orgID, productID, err)
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
