package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"
	"perfume-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultBestSellerLimit = 10

type ProductInput struct {
	Name              string            `json:"name" validate:"required"`
	Brand             string            `json:"brand"`
	Type              model.ProductType `json:"type" validate:"required,oneof=perfume decant accessory"`
	Barcode           string            `json:"barcode"`
	PurchasePrice     decimal.Decimal   `json:"purchase_price" validate:"gte=0"`
	SellingPrice      decimal.Decimal   `json:"selling_price" validate:"gt=0"`
	BottleSizeMl      decimal.Decimal   `json:"bottle_size_ml" validate:"gte=0"`
	StockUnits        int               `json:"stock_units" validate:"gte=0"`
	OpenRemainderMl   decimal.Decimal   `json:"open_remainder_ml" validate:"gte=0"`
	LowStockThreshold *int              `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	ParentProductID   *uuid.UUID        `json:"parent_product_id"`
}

type StockAdjustment struct {
	StockUnits      int              `json:"stock_units" validate:"gte=0"`
	OpenRemainderMl *decimal.Decimal `json:"open_remainder_ml"`
}

type DecantInput struct {
	Name         string          `json:"name"`
	SizeMl       decimal.Decimal `json:"size_ml" validate:"gt=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gt=0"`
	StockUnits   int             `json:"stock_units" validate:"gte=0"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, in ProductInput, userID string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, userID string) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, adj StockAdjustment, userID string) (*model.Product, error)
	CreateDecant(ctx context.Context, parentID uuid.UUID, in DecantInput, userID string) (*model.Product, error)
	BestSellers(ctx context.Context, from, to string, limit int) ([]repository.BestSeller, error)
}

type catalogService struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	log      *zap.Logger
	loc      *time.Location
}

func NewCatalogService(products repository.ProductRepository, sales repository.SaleRepository, log *zap.Logger, loc *time.Location) CatalogService {
	return &catalogService{products: products, sales: sales, log: log, loc: loc}
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput, userID string) (*model.Product, error) {
	// 1. Validate input
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := checkMlScale(in.BottleSizeMl, in.OpenRemainderMl); err != nil {
		return nil, err
	}

	// 2. Build and normalise stock
	product := &model.Product{
		Name:              in.Name,
		Brand:             in.Brand,
		Type:              in.Type,
		Barcode:           in.Barcode,
		PurchasePrice:     in.PurchasePrice,
		SellingPrice:      in.SellingPrice,
		StockUnits:        in.StockUnits,
		LowStockThreshold: 1,
		ParentProductID:   in.ParentProductID,
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = *in.LowStockThreshold
	}
	if in.Type != model.ProductAccessory {
		product.Bottle = model.Bottle{SizeMl: in.BottleSizeMl, OpenRemainderMl: in.OpenRemainderMl}
	}
	product.ApplyStock(product.Stock().Normalize())

	// 3. Persist
	product.CreatedBy = userID
	product.UpdatedBy = userID
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct changes catalog fields. Stock counts are left alone (see
// AdjustStock) but are re-normalized against the new bottle size, so a shrunk
// bottle folds any remainder it no longer holds into closed units.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, userID string) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := checkMlScale(in.BottleSizeMl, in.OpenRemainderMl); err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, id, func(p *model.Product) error {
		p.Name = in.Name
		p.Brand = in.Brand
		p.Type = in.Type
		p.Barcode = in.Barcode
		p.PurchasePrice = in.PurchasePrice
		p.SellingPrice = in.SellingPrice
		if in.LowStockThreshold != nil {
			p.LowStockThreshold = *in.LowStockThreshold
		}
		if in.Type == model.ProductAccessory {
			p.Bottle = model.Bottle{SizeMl: decimal.Zero, OpenRemainderMl: decimal.Zero}
		} else {
			p.Bottle.SizeMl = in.BottleSizeMl
			p.ApplyStock(p.Stock().Normalize())
		}
		p.UpdatedBy = userID
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.products.FindAll(ctx, filter)
}

func (s *catalogService) LowStock(ctx context.Context) ([]model.Product, error) {
	return s.products.FindLowStock(ctx)
}

// AdjustStock sets the absolute stock after a count. An open remainder of a
// bottle or more is folded into closed units.
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, adj StockAdjustment, userID string) (*model.Product, error) {
	if err := validate(adj); err != nil {
		return nil, err
	}
	if adj.OpenRemainderMl != nil {
		if adj.OpenRemainderMl.IsNegative() {
			return nil, ErrInvalidStockEdit
		}
		if err := checkMlScale(*adj.OpenRemainderMl); err != nil {
			return nil, err
		}
	}

	product, err := s.products.MutateStock(ctx, id, func(p *model.Product) error {
		stock := p.Stock()
		stock.Units = adj.StockUnits
		if adj.OpenRemainderMl != nil {
			stock.OpenMl = *adj.OpenRemainderMl
		}
		p.ApplyStock(stock.Normalize())
		p.UpdatedBy = userID
		return nil
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	s.log.Info("stock adjusted",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock_units", product.StockUnits),
		zap.String("open_remainder_ml", product.Bottle.OpenRemainderMl.String()),
		zap.String("user_id", userID),
	)
	return product, nil
}

// CreateDecant derives a decant product from a perfume. Brand and purchase
// price come from the parent.
func (s *catalogService) CreateDecant(ctx context.Context, parentID uuid.UUID, in DecantInput, userID string) (*model.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := checkMlScale(in.SizeMl); err != nil {
		return nil, err
	}

	parent, err := s.GetProduct(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Type != model.ProductPerfume {
		return nil, validationError("parent product must be a perfume")
	}

	name := in.Name
	if name == "" {
		name = fmt.Sprintf("%s %sml decant", parent.Name, in.SizeMl.String())
	}

	decant := &model.Product{
		Name:              name,
		Brand:             parent.Brand,
		Type:              model.ProductDecant,
		PurchasePrice:     parent.PurchasePrice,
		SellingPrice:      in.SellingPrice,
		StockUnits:        in.StockUnits,
		LowStockThreshold: 1,
		Bottle:            model.Bottle{SizeMl: in.SizeMl},
		ParentProductID:   &parent.ID,
	}
	decant.CreatedBy = userID
	decant.UpdatedBy = userID

	if err := s.products.Create(ctx, decant); err != nil {
		return nil, err
	}
	return decant, nil
}

// BestSellers ranks products by units sold between from and to (whole days,
// either bound optional).
func (s *catalogService) BestSellers(ctx context.Context, from, to string, limit int) ([]repository.BestSeller, error) {
	if limit <= 0 {
		limit = defaultBestSellerLimit
	}

	start, end, err := dayBounds(from, to, s.loc)
	if err != nil {
		return nil, err
	}
	return s.sales.BestSellers(ctx, start, end, limit)
}

// validate runs struct validation and reports the first failure as ErrValidation.
func validate(in interface{}) error {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		first := errs[0]
		return validationError("field '%s' failed on '%s'", first.FailedField, first.Tag)
	}
	return nil
}
