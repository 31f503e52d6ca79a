package service

import (
	"context"
	"errors"

	"perfume-pos/internal/events"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderFlow moves e-commerce orders out of pending. A returned order puts
// its stock back; a delivered one has no stock effect.
type OrderFlow interface {
	UpdateStatus(ctx context.Context, saleID uuid.UUID, target model.EcommerceStatus, userID string) (*model.Sale, error)
}

type orderFlow struct {
	sales     repository.SaleRepository
	ledger    InventoryLedger
	publisher events.Publisher
	tracer    trace.Tracer
	log       *zap.Logger
}

func NewOrderFlow(
	sales repository.SaleRepository,
	ledger InventoryLedger,
	publisher events.Publisher,
	tracer trace.Tracer,
	log *zap.Logger,
) OrderFlow {
	return &orderFlow{sales: sales, ledger: ledger, publisher: publisher, tracer: tracer, log: log}
}

func (f *orderFlow) UpdateStatus(ctx context.Context, saleID uuid.UUID, target model.EcommerceStatus, userID string) (*model.Sale, error) {
	ctx, span := f.tracer.Start(ctx, "sale.ecommerce_status", trace.WithAttributes(
		attribute.String("sale.id", saleID.String()),
		attribute.String("sale.target_status", string(target)),
	))
	defer span.End()

	sale, restored, err := f.updateStatus(ctx, saleID, target, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	publish(ctx, f.publisher, f.log, events.New(events.TypeSaleEcommerceStatus, sale.ID, events.EcommerceStatusChanged{
		SaleID:        sale.ID,
		From:          string(model.StatusPending),
		To:            string(target),
		LinesRestored: restored,
	}))
	return sale, nil
}

func (f *orderFlow) updateStatus(ctx context.Context, saleID uuid.UUID, target model.EcommerceStatus, userID string) (*model.Sale, int, error) {
	// 1. Validate target
	if target != model.StatusDelivered && target != model.StatusReturned {
		return nil, 0, ErrInvalidStatus
	}

	// 2. Load and check the current state
	sale, err := f.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrSaleNotFound
		}
		return nil, 0, err
	}
	if !sale.Fulfillment.IsEcommerce() {
		return nil, 0, ErrNotEcommerce
	}
	if sale.Fulfillment.Status() != model.StatusPending {
		return nil, 0, ErrAlreadyFinal
	}

	// 3. Claim the transition. Only one concurrent caller gets past this.
	pending := model.Ecommerce(model.StatusPending)
	next := model.Ecommerce(target)
	if err := f.sales.TransitionFulfillment(ctx, sale.ID, pending, next, userID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, 0, ErrAlreadyFinal
		}
		return nil, 0, err
	}
	sale.Fulfillment = next
	sale.UpdatedBy = userID

	// 4. Put returned stock back
	restored := 0
	if target == model.StatusReturned {
		restored = f.restoreLines(ctx, sale)
	}

	f.log.Info("e-commerce order finalised",
		zap.String("sale_id", sale.ID.String()),
		zap.String("status", string(target)),
		zap.Int("lines_restored", restored),
		zap.String("user_id", userID),
	)
	return sale, restored, nil
}

// restoreLines returns every line's stock to its product. A line whose
// product cannot be restored is logged and skipped.
func (f *orderFlow) restoreLines(ctx context.Context, sale *model.Sale) int {
	restored := 0
	for _, line := range sale.Lines {
		var err error
		if line.IsDecant {
			if !line.DecantMl.Valid || !line.DecantMl.Decimal.IsPositive() {
				continue
			}
			_, err = f.ledger.RestoreDecant(ctx, line.ProductID, line.DecantMl.Decimal)
		} else {
			_, err = f.ledger.RestoreUnits(ctx, line.ProductID, line.Quantity)
		}
		if err != nil {
			f.log.Warn("stock not restored for returned line",
				zap.String("sale_id", sale.ID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Int("position", line.Position),
				zap.Error(err),
			)
			continue
		}
		restored++
	}
	return restored
}
