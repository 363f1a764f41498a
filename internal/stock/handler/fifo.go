package handler

import (
	"net/http"
	"strconv"

	"github.com/wiphouse/wiphouse-backend/internal/stock/service"
	"github.com/wiphouse/wiphouse-backend/pkg/httputil"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
)

// FifoHandler handles consumption recommendation endpoints
type FifoHandler struct {
	service *service.StockService
	logger  *logger.Logger
}

// NewFifoHandler creates a new FIFO handler
func NewFifoHandler(svc *service.StockService, log *logger.Logger) *FifoHandler {
	return &FifoHandler{
		service: svc,
		logger:  log,
	}
}

// Recommendations returns oldest-first consumption recommendations
func (h *FifoHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = service.DefaultFifoLimit
	}

	itemCode := r.URL.Query().Get("item_code")

	recs, err := h.service.Recommendations(r.Context(), itemCode, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, recs)
}
