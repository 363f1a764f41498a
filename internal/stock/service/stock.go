package service

import (
	"context"
	"sort"
	"time"

	"github.com/wiphouse/wiphouse-backend/internal/stock/events"
	"github.com/wiphouse/wiphouse-backend/internal/stock/repository"
	"github.com/wiphouse/wiphouse-backend/pkg/logger"
	"github.com/wiphouse/wiphouse-backend/pkg/scope"
)

// StockService handles the read path: snapshot rows in, classified
// dashboard rows out. All operations are request-scoped and stateless
// apart from the underlying store.
type StockService struct {
	itemRepo     *repository.ItemRepository
	snapshotRepo *repository.SnapshotRepository
	ledgerRepo   *repository.LedgerRepository
	publisher    *events.StockEventPublisher
	logger       *logger.Logger
	now          func() time.Time
}

// NewStockService creates a new stock service
func NewStockService(
	itemRepo *repository.ItemRepository,
	snapshotRepo *repository.SnapshotRepository,
	ledgerRepo *repository.LedgerRepository,
	publisher *events.StockEventPublisher,
	log *logger.Logger,
) *StockService {
	return &StockService{
		itemRepo:     itemRepo,
		snapshotRepo: snapshotRepo,
		ledgerRepo:   ledgerRepo,
		publisher:    publisher,
		logger:       log,
		now:          time.Now,
	}
}

// DashboardStats are the per-status counts shown above the table
type DashboardStats struct {
	TotalItems    int `json:"total_items"`
	TotalBoxStock int `json:"total_box_stock"`
	ExpiredCount  int `json:"expired_count"`
	NearExpired   int `json:"near_expired_count"`
	ShortageCount int `json:"shortage_count"`
	OverStock     int `json:"over_stock_count"`
	NormalCount   int `json:"normal_count"`
}

// Dashboard loads the unit's snapshot rows, aggregates them per item
// code and classifies each position against the unit's policy. Output
// is sorted by item code. Items in the master with no ledger activity
// appear with zero stock so shortage rules still see them.
func (s *StockService) Dashboard(ctx context.Context) ([]ClassifiedItem, *DashboardStats, error) {
	unitCode, err := scope.Unit(ctx)
	if err != nil {
		return nil, nil, err
	}

	policy, ok := PolicyFor(unitCode)
	if !ok {
		return nil, nil, scope.ErrNoUnitInContext
	}

	rows, err := s.snapshotRepo.ListByScope(ctx)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.itemRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	itemsByCode := make(map[string]*repository.Item, len(items))
	for _, item := range items {
		itemsByCode[item.ItemCode] = item
	}

	aggregated := AggregateSnapshots(rows)

	seen := make(map[string]bool, len(aggregated))
	now := s.now()

	classified := make([]ClassifiedItem, 0, len(aggregated)+len(items))
	for _, agg := range aggregated {
		seen[agg.ItemCode] = true
		classified = append(classified, Classify(now, agg, itemsByCode[agg.ItemCode], policy))
	}

	// Master items with no snapshot rows still get a row: zero stock,
	// unknown timestamp.
	for _, item := range items {
		if seen[item.ItemCode] {
			continue
		}
		agg := AggregatedStock{ItemCode: item.ItemCode}
		classified = append(classified, Classify(now, agg, item, policy))
	}

	sort.Slice(classified, func(i, j int) bool {
		return classified[i].ItemCode < classified[j].ItemCode
	})

	stats := &DashboardStats{TotalItems: len(classified)}
	for _, ci := range classified {
		stats.TotalBoxStock += ci.TotalBoxStock
		switch ci.Status {
		case StatusExpired:
			stats.ExpiredCount++
		case StatusNearExpired:
			stats.NearExpired++
		case StatusShortage:
			stats.ShortageCount++
		case StatusOverStock:
			stats.OverStock++
		default:
			stats.NormalCount++
		}
	}

	s.publishAlerts(ctx, unitCode, classified)

	return classified, stats, nil
}

// publishAlerts emits one alert event per non-normal position.
// Fire and forget; a broker hiccup never fails a dashboard read.
func (s *StockService) publishAlerts(ctx context.Context, unitCode string, classified []ClassifiedItem) {
	for _, ci := range classified {
		if ci.Status == StatusNormal {
			continue
		}
		s.publisher.PublishStockAlert(ctx, events.StockAlertEvent{
			UnitCode:      unitCode,
			ItemCode:      ci.ItemCode,
			Status:        ci.Status,
			TotalBoxStock: ci.TotalBoxStock,
		})
	}
}

// Recommendations returns the FIFO consumption recommendations for
// the unit in context, optionally filtered by item-code substring.
func (s *StockService) Recommendations(ctx context.Context, itemCodeFilter string, limit int) ([]FifoRecommendation, error) {
	rows, err := s.ledgerRepo.ListInStock(ctx, itemCodeFilter)
	if err != nil {
		return nil, err
	}

	return RecommendFIFO(rows, limit), nil
}

// Item master passthroughs

// CreateItem creates a new item master record
func (s *StockService) CreateItem(ctx context.Context, item *repository.Item) error {
	return s.itemRepo.Create(ctx, item)
}

// GetItem gets an item by ID
func (s *StockService) GetItem(ctx context.Context, id string) (*repository.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

// ListItems lists items with pagination
func (s *StockService) ListItems(ctx context.Context, page, perPage int) ([]*repository.Item, int64, error) {
	return s.itemRepo.List(ctx, page, perPage)
}

// UpdateItem updates an item master record
func (s *StockService) UpdateItem(ctx context.Context, item *repository.Item) error {
	return s.itemRepo.Update(ctx, item)
}

// DeleteItem soft deletes an item master record
func (s *StockService) DeleteItem(ctx context.Context, id string) error {
	return s.itemRepo.SoftDelete(ctx, id)
}
