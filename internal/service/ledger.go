package service

import (
	"context"
	"errors"

	"perfume-pos/internal/events"
	"perfume-pos/internal/inventory"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Consumption is the committed result of taking stock out of a product.
type Consumption struct {
	Product *model.Product
	Pour    inventory.Pour
	Cost    decimal.Decimal // attributed purchase cost of the poured volume
}

// InventoryLedger performs atomic stock mutations on single products. Each
// call commits on its own; a failed call changes nothing.
type InventoryLedger interface {
	ConsumeDecant(ctx context.Context, productID uuid.UUID, ml decimal.Decimal) (*Consumption, error)
	ConsumeUnits(ctx context.Context, productID uuid.UUID, n int) (*Consumption, error)
	RestoreUnits(ctx context.Context, productID uuid.UUID, n int) (*model.Product, error)
	RestoreDecant(ctx context.Context, productID uuid.UUID, ml decimal.Decimal) (*model.Product, error)
}

type inventoryLedger struct {
	products  repository.ProductRepository
	publisher events.Publisher
	log       *zap.Logger
}

func NewInventoryLedger(products repository.ProductRepository, publisher events.Publisher, log *zap.Logger) InventoryLedger {
	return &inventoryLedger{products: products, publisher: publisher, log: log}
}

func (l *inventoryLedger) ConsumeDecant(ctx context.Context, productID uuid.UUID, ml decimal.Decimal) (*Consumption, error) {
	if !fitsMlScale(ml) {
		return nil, ErrInvalidDecantRequest
	}
	var (
		pour   inventory.Pour
		cost   decimal.Decimal
		before int
	)
	p, err := l.products.MutateStock(ctx, productID, func(p *model.Product) error {
		if !p.DecantCapable() {
			return ErrNotDecantSource
		}
		next, poured, err := p.Stock().ConsumeDecant(ml)
		if err != nil {
			return err
		}
		before = p.StockUnits
		p.ApplyStock(next)
		pour = poured
		cost = inventory.PourCost(p.PurchasePrice, p.Bottle.SizeMl, ml)
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	l.log.Debug("decant poured",
		zap.String("product_id", p.ID.String()),
		zap.String("ml", ml.String()),
		zap.Int("bottles_opened", pour.BottlesOpened),
		zap.String("open_remainder_ml", p.Bottle.OpenRemainderMl.String()),
	)
	l.notifyLowStock(ctx, p, before)
	return &Consumption{Product: p, Pour: pour, Cost: cost}, nil
}

func (l *inventoryLedger) ConsumeUnits(ctx context.Context, productID uuid.UUID, n int) (*Consumption, error) {
	var before int
	p, err := l.products.MutateStock(ctx, productID, func(p *model.Product) error {
		next, err := p.Stock().ConsumeUnits(n)
		if err != nil {
			return err
		}
		before = p.StockUnits
		p.ApplyStock(next)
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	l.notifyLowStock(ctx, p, before)
	return &Consumption{Product: p, Cost: p.PurchasePrice}, nil
}

func (l *inventoryLedger) RestoreUnits(ctx context.Context, productID uuid.UUID, n int) (*model.Product, error) {
	p, err := l.products.MutateStock(ctx, productID, func(p *model.Product) error {
		p.ApplyStock(p.Stock().RestoreUnits(n))
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return p, nil
}

func (l *inventoryLedger) RestoreDecant(ctx context.Context, productID uuid.UUID, ml decimal.Decimal) (*model.Product, error) {
	var folded int
	p, err := l.products.MutateStock(ctx, productID, func(p *model.Product) error {
		next, n := p.Stock().RestoreDecant(ml)
		p.ApplyStock(next)
		folded = n
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	if folded > 0 {
		l.log.Info("returned decant completed bottles",
			zap.String("product_id", p.ID.String()),
			zap.Int("bottles_folded", folded),
		)
	}
	return p, nil
}

// mlScale is the number of decimal places volumes are stored with.
const mlScale = 2

func fitsMlScale(ml decimal.Decimal) bool {
	return ml.Equal(ml.Truncate(mlScale))
}

// checkMlScale rejects volumes the numeric(10,2) columns would round.
func checkMlScale(values ...decimal.Decimal) error {
	for _, v := range values {
		if !fitsMlScale(v) {
			return ErrInvalidVolume
		}
	}
	return nil
}

// notifyLowStock fires when a consumption takes a product below its threshold.
func (l *inventoryLedger) notifyLowStock(ctx context.Context, p *model.Product, before int) {
	if !p.IsLowStock() || before < p.LowStockThreshold {
		return
	}
	publish(ctx, l.publisher, l.log, events.New(events.TypeProductLowStock, p.ID, events.LowStock{
		ProductID:  p.ID,
		Name:       p.Name,
		StockUnits: p.StockUnits,
		Threshold:  p.LowStockThreshold,
	}))
}

func ledgerError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return mapInventoryError(err)
}

// publish sends evt and only logs a failure. Events never fail a request.
func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, evt events.Event) {
	if err := pub.Publish(ctx, evt); err != nil {
		log.Warn("event publish failed",
			zap.String("type", evt.Type),
			zap.String("key", evt.Key),
			zap.Error(err),
		)
	}
}
