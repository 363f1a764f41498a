package events

import (
	"context"

	"github.com/wiphouse/wiphouse-backend/pkg/logger"
	"github.com/wiphouse/wiphouse-backend/pkg/messaging"
)

// Publisher is the broker seam behind StockEventPublisher.
// messaging.Publisher is the production implementation.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// StockEventPublisher publishes stock-related events
type StockEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewStockEventPublisher creates a stock event publisher bound to the
// stock events exchange
func NewStockEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*StockEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStockEvents, "stock-service", log)
	if err != nil {
		return nil, err
	}

	return NewStockEventPublisherWith(publisher, log), nil
}

// NewStockEventPublisherWith wraps an existing Publish implementation
func NewStockEventPublisherWith(pub Publisher, log *logger.Logger) *StockEventPublisher {
	return &StockEventPublisher{
		publisher: pub,
		logger:    log,
	}
}

// ImportCompletedEvent is emitted after every import call, successful
// or not, so downstream consumers can track ingestion activity.
type ImportCompletedEvent struct {
	UnitCode       string `json:"unit_code"`
	Kind           string `json:"kind"`
	Success        bool   `json:"success"`
	ProcessedRows  int    `json:"processed_rows"`
	SuccessfulRows int    `json:"successful_rows"`
	ErrorRows      int    `json:"error_rows"`
}

// StockAlertEvent is emitted for items classified outside Normal
type StockAlertEvent struct {
	UnitCode      string `json:"unit_code"`
	ItemCode      string `json:"item_code"`
	Status        string `json:"status"`
	TotalBoxStock int    `json:"total_box_stock"`
}

// PublishImportCompleted publishes an import completed event.
// Best-effort: a publish failure is logged, never surfaced to the
// import caller.
func (p *StockEventPublisher) PublishImportCompleted(ctx context.Context, event ImportCompletedEvent) {
	if p == nil {
		return
	}

	if err := p.publisher.Publish(ctx, messaging.EventImportCompleted, event); err != nil {
		p.logger.Error().Err(err).
			Str("unit", event.UnitCode).
			Msg("failed to publish import completed event")
	}
}

// PublishStockAlert publishes a stock alert event. Best-effort.
func (p *StockEventPublisher) PublishStockAlert(ctx context.Context, event StockAlertEvent) {
	if p == nil {
		return
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, event); err != nil {
		p.logger.Error().Err(err).
			Str("unit", event.UnitCode).
			Str("item_code", event.ItemCode).
			Msg("failed to publish stock alert event")
	}
}
