package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/internal/stock/service"
	"github.com/wiphouse/wiphouse-backend/pkg/httputil"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
)

// ItemHandler handles item master endpoints
type ItemHandler struct {
	service *service.StockService
	logger  *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc *service.StockService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: svc,
		logger:  log,
	}
}

type itemPayload struct {
	ItemCode         string  `json:"item_code" validate:"required,max=100"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=500"`
	UnitsPerBox      int     `json:"units_per_box" validate:"required,min=1"`
	MinStock         *int    `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	MaxStock         *int    `json:"max_stock,omitempty" validate:"omitempty,gte=0"`
	ExpiryWindowDays *int    `json:"expiry_window_days,omitempty" validate:"omitempty,min=1"`
}

func (p *itemPayload) toItem() *repository.Item {
	return &repository.Item{
		ItemCode:         p.ItemCode,
		Description:      p.Description,
		UnitsPerBox:      p.UnitsPerBox,
		MinStock:         p.MinStock,
		MaxStock:         p.MaxStock,
		ExpiryWindowDays: p.ExpiryWindowDays,
	}
}

// List lists item master records
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	items, total, err := h.service.ListItems(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, items, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get gets an item by ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Create creates a new item master record
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&payload); err != nil {
		httputil.Error(w, err)
		return
	}

	item := payload.toItem()
	if err := h.service.CreateItem(r.Context(), item); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, item)
}

// Update updates an item master record
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload itemPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&payload); err != nil {
		httputil.Error(w, err)
		return
	}

	item := payload.toItem()
	item.ID = id
	if err := h.service.UpdateItem(r.Context(), item); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Delete soft deletes an item master record
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
