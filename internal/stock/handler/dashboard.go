package handler

import (
	"net/http"

	"github.com/wiphouse/wiphouse-backend/internal/stock/service"
	"github.com/wiphouse/wiphouse-backend/pkg/httputil"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service *service.StockService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.StockService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

type dashboardResponse struct {
	Items []service.ClassifiedItem `json:"items"`
	Stats *service.DashboardStats  `json:"stats"`
}

// Get returns the classified stock dashboard for the unit in scope
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dashboardResponse{Items: items, Stats: stats})
}
