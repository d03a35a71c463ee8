package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/products"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// RepositoryPort abstracts purchase persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
}

// CatalogPort resolves products at order time.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// IdempotencyPort deduplicates retried submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

const idempotencyModule = "orders"

// Service coordinates the purchase workflow.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	idempotency IdempotencyPort
	audit       AuditPort
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, catalog CatalogPort, idempotency IdempotencyPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, idempotency: idempotency, audit: audit, logger: logger}
}

// Create places a new purchase. The order rows and every stock reservation
// commit in one transaction; if any line cannot be reserved, nothing is
// written and stock is untouched. Unit prices are frozen from the catalog at
// this moment.
func (s *Service) Create(ctx context.Context, input CreateInput, idempotencyKey string) (Purchase, error) {
	if len(input.Items) == 0 {
		return Purchase{}, fmt.Errorf("%w: at least one item is required", shared.ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return Purchase{}, fmt.Errorf("%w: invalid product id", shared.ErrInvalidInput)
		}
		if item.Quantity <= 0 {
			return Purchase{}, fmt.Errorf("%w: quantity must be greater than 0", shared.ErrInvalidInput)
		}
		if seen[item.ProductID] {
			return Purchase{}, fmt.Errorf("%w: duplicate product %d in order", shared.ErrInvalidInput, item.ProductID)
		}
		seen[item.ProductID] = true
	}

	status := StatusPending
	if input.Status != nil {
		if !input.Status.Valid() {
			return Purchase{}, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, *input.Status)
		}
		if *input.Status == StatusCancelled {
			return Purchase{}, fmt.Errorf("%w: an order cannot start cancelled", shared.ErrInvalidInput)
		}
		status = *input.Status
	}
	paymentStatus := PaymentPending
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.Valid() {
			return Purchase{}, fmt.Errorf("%w: unknown payment status %q", shared.ErrInvalidInput, *input.PaymentStatus)
		}
		paymentStatus = *input.PaymentStatus
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Purchase{}, fmt.Errorf("%w: order already submitted", shared.ErrConflict)
			}
			return Purchase{}, err
		}
	}

	// Freeze prices before opening the transaction. Inactive products are
	// rejected the same as missing ones.
	items := make([]PurchaseItem, 0, len(input.Items))
	total := decimal.Zero
	for _, req := range input.Items {
		product, err := s.catalog.Get(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				err = fmt.Errorf("%w: product %d not available", shared.ErrInvalidInput, req.ProductID)
			}
			s.releaseKey(ctx, idempotencyKey)
			return Purchase{}, err
		}
		subtotal := product.SellingPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		items = append(items, PurchaseItem{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.SellingPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	var purchaseID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		id, err := repo.Insert(ctx, Purchase{
			UserID:          input.UserID,
			Status:          status,
			TotalAmount:     total,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   paymentStatus,
			ShippingAddress: input.ShippingAddress,
			Notes:           input.Notes,
		})
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		purchaseID = id
		for _, item := range items {
			if err := repo.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			item.PurchaseID = id
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert purchase item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return Purchase{}, err
	}

	s.record(ctx, input.UserID, "orders.create", purchaseID, map[string]any{"total_amount": total.String(), "items": len(items)})
	return s.repo.Get(ctx, purchaseID)
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Delete(ctx, key); err != nil && s.logger != nil {
		s.logger.Warn("release idempotency key", slog.Any("error", err))
	}
}

// Get loads a purchase. Customers only see their own orders; staff see all.
func (s *Service) Get(ctx context.Context, id int64, principal shared.Principal) (Purchase, error) {
	purchase, err := s.repo.Get(ctx, id)
	if err != nil {
		return Purchase{}, err
	}
	if !principal.IsStaff() && purchase.UserID != principal.UserID {
		return Purchase{}, shared.ErrNotFound
	}
	return purchase, nil
}

// List returns purchases visible to the principal. Customers are always
// scoped to their own history regardless of the requested filter.
func (s *Service) List(ctx context.Context, filter ListFilter, principal shared.Principal) ([]Purchase, int, error) {
	if !principal.IsStaff() {
		filter.UserID = principal.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// Cancel reverses a pending purchase. Every reserved unit goes back to stock
// in the same transaction that flips the status. Completed and cancelled
// orders are final.
func (s *Service) Cancel(ctx context.Context, id int64, principal shared.Principal) (Purchase, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		purchase, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !principal.IsStaff() && purchase.UserID != principal.UserID {
			return shared.ErrNotFound
		}
		if purchase.Status != StatusPending {
			return fmt.Errorf("%w: cannot cancel a %s order", shared.ErrInvalidTransition, purchase.Status)
		}
		items, err := repo.Items(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := repo.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return repo.UpdateStatus(ctx, id, StatusCancelled)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.record(ctx, principal.UserID, "orders.cancel", id, nil)
	return s.repo.Get(ctx, id)
}

// Update applies staff edits. Status changes here follow the same forward-only
// rule but never move stock; cancellation with restock goes through Cancel.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, principal shared.Principal) (Purchase, error) {
	if input.Status != nil && !input.Status.Valid() {
		return Purchase{}, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, *input.Status)
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.Valid() {
		return Purchase{}, fmt.Errorf("%w: unknown payment status %q", shared.ErrInvalidInput, *input.PaymentStatus)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		purchase, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if input.Status != nil && *input.Status != purchase.Status {
			if purchase.Status.Final() {
				return fmt.Errorf("%w: %s orders are final", shared.ErrInvalidTransition, purchase.Status)
			}
			if *input.Status == StatusCancelled {
				return fmt.Errorf("%w: use the cancel operation to restore stock", shared.ErrInvalidTransition)
			}
			if err := repo.UpdateStatus(ctx, id, *input.Status); err != nil {
				return err
			}
		}
		if input.PaymentMethod != nil || input.PaymentStatus != nil || input.ShippingAddress != nil || input.Notes != nil {
			return repo.UpdateDetails(ctx, id, input)
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	s.record(ctx, principal.UserID, "orders.update", id, nil)
	return s.repo.Get(ctx, id)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, purchaseID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "purchase",
		EntityID: strconv.FormatInt(purchaseID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
		s.logger.Warn("audit purchase", slog.String("action", action), slog.Any("error", err))
	}
}
