package service

import (
	"context"
	"errors"
	"time"

	"perfume-pos/internal/events"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PurchaseInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	TotalCost decimal.Decimal `json:"total_cost" validate:"gt=0"`
	Notes     string          `json:"notes"`
}

type PurchaseService interface {
	RecordPurchase(ctx context.Context, in PurchaseInput, userID string) (*model.Purchase, error)
	ListPurchases(ctx context.Context, from, to string) ([]model.Purchase, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	publisher events.Publisher
	tracer    trace.Tracer
	log       *zap.Logger
	loc       *time.Location
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	publisher events.Publisher,
	tracer trace.Tracer,
	log *zap.Logger,
	loc *time.Location,
) PurchaseService {
	return &purchaseService{purchases: purchases, publisher: publisher, tracer: tracer, log: log, loc: loc}
}

// RecordPurchase adds the bought units to stock and folds the unit cost into
// the product's purchase price.
func (s *purchaseService) RecordPurchase(ctx context.Context, in PurchaseInput, userID string) (*model.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "purchase.record", trace.WithAttributes(
		attribute.String("product.id", in.ProductID.String()),
		attribute.Int("purchase.quantity", in.Quantity),
	))
	defer span.End()

	if err := validate(in); err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		TotalCost: in.TotalCost,
		Notes:     in.Notes,
	}
	purchase.CreatedBy = userID
	purchase.UpdatedBy = userID

	product, err := s.purchases.Record(ctx, purchase, func(p *model.Product) error {
		p.ApplyStock(p.Stock().RestoreUnits(in.Quantity))
		p.PurchasePrice = averagePurchasePrice(p.PurchasePrice, purchase.UnitCost())
		p.UpdatedBy = userID
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	purchase.Product = product

	s.log.Info("purchase recorded",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", in.Quantity),
		zap.String("purchase_price", product.PurchasePrice.String()),
	)
	publish(ctx, s.publisher, s.log, events.New(events.TypePurchaseRecorded, purchase.ID, events.PurchaseRecorded{
		PurchaseID: purchase.ID,
		ProductID:  product.ID,
		Quantity:   purchase.Quantity,
		TotalCost:  purchase.TotalCost,
	}))
	return purchase, nil
}

// averagePurchasePrice takes the unit cost when no price is known yet and
// otherwise the rounded midpoint of the old price and the unit cost.
func averagePurchasePrice(current, unitCost decimal.Decimal) decimal.Decimal {
	if !current.IsPositive() {
		return unitCost.Round(2)
	}
	return current.Add(unitCost).Div(decimal.NewFromInt(2)).Round(0)
}

func (s *purchaseService) ListPurchases(ctx context.Context, from, to string) ([]model.Purchase, error) {
	start, end, err := dayBounds(from, to, s.loc)
	if err != nil {
		return nil, err
	}
	return s.purchases.Find(ctx, start, end)
}
