package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EliabLM/pos-system-api/internal/db/models"
	"github.com/EliabLM/pos-system-api/internal/repository"
)

// SalesHandlers implements the sales endpoints. Creating a sale resolves
// current product prices server-side and decrements stock atomically;
// the client submits only product IDs and quantities.
type SalesHandlers struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
}

// NewSalesHandlers creates handlers backed by the given repositories.
func NewSalesHandlers(sales repository.SaleRepository, products repository.ProductRepository) *SalesHandlers {
	return &SalesHandlers{sales: sales, products: products}
}

// SaleItemRequest is one line of a sale as submitted by the client.
// Prices are never accepted from the client.
type SaleItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest carries the items of a new sale.
type CreateSaleRequest struct {
	Items []SaleItemRequest `json:"items"`
}

// SaleItemResponse is one line of a sale in API responses.
type SaleItemResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// SaleResponse represents sale data in API responses.
type SaleResponse struct {
	ID         string             `json:"id"`
	StoreID    string             `json:"storeId"`
	UserID     string             `json:"userId"`
	Items      []SaleItemResponse `json:"items"`
	TotalCents int64              `json:"totalCents"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
}

func newSaleResponse(s *models.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return SaleResponse{
		ID:         s.ID,
		StoreID:    s.StoreID,
		UserID:     s.UserID,
		Items:      items,
		TotalCents: s.TotalCents,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
	}
}

// ListSales handles GET /api/sales
func (h *SalesHandlers) ListSales(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	sales, err := h.sales.List(r.Context(), orgID)
	if err != nil {
		log.Printf("sales: list failed (org_id=%s): %v", orgID, err)
		http.Error(w, "Failed to list sales", http.StatusInternalServerError)
		return
	}

	resp := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		resp = append(resp, newSaleResponse(&sales[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("sales: failed to encode response: %v", err)
	}
}

// CreateSale handles POST /api/sales
func (h *SalesHandlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	claims, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}
	if claims.StoreID == nil || *claims.StoreID == "" {
		http.Error(w, "No store assigned", http.StatusForbidden)
		return
	}

	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "At least one item is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	items := make([]models.SaleItem, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			http.Error(w, "Item quantity must be positive", http.StatusBadRequest)
			return
		}
		product, err := h.products.GetByID(ctx, orgID, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				http.Error(w, fmt.Sprintf("Product not found: %s", item.ProductID), http.StatusNotFound)
				return
			}
			log.Printf("sales: product lookup failed (org_id=%s product_id=%s): %v", orgID, item.ProductID, err)
			http.Error(w, "Failed to create sale", http.StatusInternalServerError)
			return
		}
		items = append(items, models.SaleItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		total += int64(item.Quantity) * product.PriceCents
	}

	sale := &models.Sale{
		OrganizationID: orgID,
		StoreID:        *claims.StoreID,
		UserID:         claims.UserID,
		Items:          items,
		TotalCents:     total,
		Status:         models.SaleStatusPaid,
	}
	if err := h.sales.Create(ctx, sale); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			http.Error(w, "Insufficient stock", http.StatusUnprocessableEntity)
		case errors.Is(err, repository.ErrNotFound):
			// Product deleted between the price lookup and the decrement
			http.Error(w, "Product not found", http.StatusNotFound)
		default:
			log.Printf("sales: create failed (org_id=%s): %v", orgID, err)
			http.Error(w, "Failed to create sale", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(newSaleResponse(sale)); err != nil {
		log.Printf("sales: failed to encode response: %v", err)
	}
}

// GetSale handles GET /api/sales/{saleID}
func (h *SalesHandlers) GetSale(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := organizationScope(w, r)
	if !ok {
		return
	}

	saleID := chi.URLParam(r, "saleID")
	sale, err := h.sales.GetByID(r.Context(), orgID, saleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Sale not found", http.StatusNotFound)
			return
		}
		log.Printf("sales: get failed (org_id=%s sale_id=%s): %v", orgID, saleID, err)
		http.Error(w, "Failed to get sale", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newSaleResponse(sale)); err != nil {
		log.Printf("sales: failed to encode response: %v", err)
	}
}
