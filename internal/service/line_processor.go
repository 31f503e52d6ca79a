package service

import (
	"context"
	"errors"

	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// LineRequest is one item of a sale as submitted by the till.
//
// UnitPrice overrides the catalog selling price when present. A numeric
// string such as "25" is an override too, not a fallback to the catalog
// price: tills that post form values as strings keep their manual prices.
// DecantMl carries at most two decimal places.
type LineRequest struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	IsDecant  bool             `json:"is_decant"`
	DecantMl  decimal.Decimal  `json:"decant_ml"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// LineProcessor turns a line request into a priced SaleLine, consuming stock
// as it goes. The consumption is committed before Process returns.
type LineProcessor interface {
	Process(ctx context.Context, index int, req LineRequest) (*model.SaleLine, error)
}

type lineProcessor struct {
	products repository.ProductRepository
	ledger   InventoryLedger
	tracer   trace.Tracer
}

func NewLineProcessor(products repository.ProductRepository, ledger InventoryLedger, tracer trace.Tracer) LineProcessor {
	return &lineProcessor{products: products, ledger: ledger, tracer: tracer}
}

func (lp *lineProcessor) Process(ctx context.Context, index int, req LineRequest) (*model.SaleLine, error) {
	ctx, span := lp.tracer.Start(ctx, "sale.process_line", trace.WithAttributes(
		attribute.Int("line.index", index),
		attribute.String("product.id", req.ProductID.String()),
		attribute.Bool("line.decant", req.IsDecant),
	))
	defer span.End()

	line, err := lp.process(ctx, index, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	line.Position = index
	return line, nil
}

func (lp *lineProcessor) process(ctx context.Context, index int, req LineRequest) (*model.SaleLine, error) {
	fail := func(name string, err error) error {
		return &LineError{Index: index, ProductID: req.ProductID, ProductName: name, Err: err}
	}

	// 1. Resolve product
	product, err := lp.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail("", ErrProductNotFound)
		}
		return nil, fail("", err)
	}

	// 2. Price: override or catalog
	price := product.SellingPrice
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fail(product.Name, validationError("unit price must not be negative"))
		}
		price = *req.UnitPrice
	}

	// 3. Consume
	if req.IsDecant {
		if !req.DecantMl.IsPositive() || !fitsMlScale(req.DecantMl) {
			return nil, fail(product.Name, ErrInvalidDecantRequest)
		}
		if !product.DecantCapable() {
			return nil, fail(product.Name, ErrNotDecantSource)
		}
		c, err := lp.ledger.ConsumeDecant(ctx, product.ID, req.DecantMl)
		if err != nil {
			return nil, fail(product.Name, err)
		}
		return &model.SaleLine{
			ProductID:        product.ID,
			ProductName:      c.Product.Name,
			Quantity:         1,
			UnitPrice:        price,
			Total:            price,
			IsDecant:         true,
			DecantMl:         decimal.NewNullDecimal(c.Pour.Ml),
			PurchaseUnitCost: c.Cost,
			Benefit:          price.Sub(c.Cost),
		}, nil
	}

	if req.Quantity <= 0 {
		return nil, fail(product.Name, ErrInvalidQuantity)
	}
	c, err := lp.ledger.ConsumeUnits(ctx, product.ID, req.Quantity)
	if err != nil {
		return nil, fail(product.Name, err)
	}

	qty := decimal.NewFromInt(int64(req.Quantity))
	total := price.Mul(qty)
	return &model.SaleLine{
		ProductID:        product.ID,
		ProductName:      c.Product.Name,
		Quantity:         req.Quantity,
		UnitPrice:        price,
		Total:            total,
		PurchaseUnitCost: c.Cost,
		Benefit:          total.Sub(c.Cost.Mul(qty)),
	}, nil
}
