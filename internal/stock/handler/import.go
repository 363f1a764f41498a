package handler

import (
	"io"
	"net/http"

	"github.com/wiphouse/wiphouse-backend/internal/stock/events"
	"github.com/wiphouse/wiphouse-backend/internal/stock/importer"
	"github.com/wiphouse/wiphouse-backend/pkg/config"
	"github.com/wiphouse/wiphouse-backend/pkg/errors"
	"github.com/wiphouse/wiphouse-backend/pkg/httputil"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// ImportHandler handles spreadsheet upload endpoints
type ImportHandler struct {
	importer  *importer.Importer
	publisher *events.StockEventPublisher
	cfg       config.ImportConfig
	logger    *logger.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(imp *importer.Importer, publisher *events.StockEventPublisher, cfg config.ImportConfig, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importer:  imp,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

// ImportStorage imports a storage (incoming stock) spreadsheet
func (h *ImportHandler) ImportStorage(w http.ResponseWriter, r *http.Request) {
	h.importUpload(w, r, importer.KindStorage)
}

// ImportSupply imports a supply (outgoing stock) spreadsheet
func (h *ImportHandler) ImportSupply(w http.ResponseWriter, r *http.Request) {
	h.importUpload(w, r, importer.KindSupply)
}

func (h *ImportHandler) importUpload(w http.ResponseWriter, r *http.Request, kind importer.RowKind) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxFileBytes); err != nil {
		httputil.Error(w, errors.BadRequest("uploaded file exceeds the size limit"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.BadRequest("uploaded file could not be read"))
		return
	}

	raw, err := importer.ReadWorkbook(header.Filename, data, h.cfg.MaxFileBytes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rows := importer.ParseRows(raw, kind)

	result, err := h.importer.Import(r.Context(), rows)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if unitCode, scopeErr := scope.Unit(r.Context()); scopeErr == nil {
		h.publisher.PublishImportCompleted(r.Context(), events.ImportCompletedEvent{
			UnitCode:       unitCode,
			Kind:           string(kind),
			Success:        result.Success,
			ProcessedRows:  result.ProcessedRows,
			SuccessfulRows: result.SuccessfulRows,
			ErrorRows:      result.ErrorRows,
		})
	}

	// Partial success is still a 200: the report body carries the row
	// level outcome either way.
	httputil.JSON(w, http.StatusOK, result)
}
