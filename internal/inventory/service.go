package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error
	GetByProduct(ctx context.Context, productID int64) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
	Create(ctx context.Context, input CreateInput) (Record, error)
	UpdateLevels(ctx context.Context, productID int64, qty, min, max int) (Record, error)
	Alerts(ctx context.Context) (Alerts, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory ledger operations.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns inventory records for active products.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	return s.repo.List(ctx, filter)
}

// GetByProduct loads the record for one product.
func (s *Service) GetByProduct(ctx context.Context, productID int64) (Record, error) {
	if productID <= 0 {
		return Record{}, fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
	}
	return s.repo.GetByProduct(ctx, productID)
}

// CreateRecord establishes tracking for a product. A product has at most one
// inventory record.
func (s *Service) CreateRecord(ctx context.Context, input CreateInput) (Record, error) {
	if input.ProductID <= 0 {
		return Record{}, fmt.Errorf("%w: product id is required", shared.ErrInvalidInput)
	}
	if input.QuantityInStock < 0 {
		return Record{}, fmt.Errorf("%w: quantity must not be negative", shared.ErrInvalidInput)
	}
	if input.MinimumStockLevel <= 0 {
		input.MinimumStockLevel = 10
	}
	if input.MaximumStockLevel <= 0 {
		input.MaximumStockLevel = 100
	}
	return s.repo.Create(ctx, input)
}

// UpdateLevels applies partial level changes on top of the current record.
func (s *Service) UpdateLevels(ctx context.Context, productID int64, input UpdateInput) (Record, error) {
	existing, err := s.GetByProduct(ctx, productID)
	if err != nil {
		return Record{}, err
	}
	qty := existing.QuantityInStock
	minLevel := existing.MinimumStockLevel
	maxLevel := existing.MaximumStockLevel
	if input.QuantityInStock != nil {
		if *input.QuantityInStock < 0 {
			return Record{}, fmt.Errorf("%w: quantity must not be negative", shared.ErrInvalidInput)
		}
		qty = *input.QuantityInStock
	}
	if input.MinimumStockLevel != nil {
		minLevel = *input.MinimumStockLevel
	}
	if input.MaximumStockLevel != nil {
		maxLevel = *input.MaximumStockLevel
	}
	return s.repo.UpdateLevels(ctx, productID, qty, minLevel, maxLevel)
}

// Restock increases stock by a positive delta and stamps last_restocked.
func (s *Service) Restock(ctx context.Context, productID int64, quantity int, actorID int64) (Record, error) {
	if productID <= 0 {
		return Record{}, fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
	}
	if quantity <= 0 {
		return Record{}, fmt.Errorf("%w: restock quantity must be greater than 0", shared.ErrInvalidInput)
	}
	var rec Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, ledger TxLedger) error {
		var err error
		rec, err = ledger.Restock(ctx, productID, quantity)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	if s.audit != nil {
		log := shared.AuditLog{
			ActorID:  actorID,
			Action:   "inventory.restock",
			Entity:   "inventory",
			EntityID: strconv.FormatInt(productID, 10),
			Meta:     map[string]any{"quantity": quantity, "new_level": rec.QuantityInStock},
		}
		if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
			s.logger.Warn("audit restock", slog.Any("error", err))
		}
	}
	return rec, nil
}

// Alerts returns current stock warnings.
func (s *Service) Alerts(ctx context.Context) (Alerts, error) {
	return s.repo.Alerts(ctx)
}
