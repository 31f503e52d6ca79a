package repository

import (
	"context"

	"perfume-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMutation edits a locked product in place. Returning an error rolls
// the transaction back and nothing is written.
type StockMutation func(p *model.Product) error

type ProductFilter struct {
	Query string
	Type  model.ProductType
}

// InventorySummary for the stats overview
type InventorySummary struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, id uuid.UUID, fn StockMutation) (*model.Product, error)
	MutateStock(ctx context.Context, id uuid.UUID, fn StockMutation) (*model.Product, error)
	Summary(ctx context.Context) (*InventorySummary, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	query := r.db.WithContext(ctx)
	if filter.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_units < low_stock_threshold").
		Order("stock_units ASC, name ASC").
		Find(&products).Error
	return products, err
}

// Update locks the product, applies fn and writes catalog and stock fields in
// one transaction. A bottle size change and the remainder it bounds are
// stored together.
func (r *productRepo) Update(ctx context.Context, id uuid.UUID, fn StockMutation) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, id, &product); err != nil {
			return err
		}
		if err := fn(&product); err != nil {
			return err
		}
		return tx.Model(&product).
			Select("name", "brand", "type", "barcode", "purchase_price", "selling_price",
				"low_stock_threshold", "stock_units", "bottle_size_ml", "bottle_open_remainder_ml", "updated_by").
			Updates(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// MutateStock locks the product row (SELECT ... FOR UPDATE), applies fn and
// persists the stock fields, all in one transaction.
func (r *productRepo) MutateStock(ctx context.Context, id uuid.UUID, fn StockMutation) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, id, &product); err != nil {
			return err
		}
		if err := fn(&product); err != nil {
			return err
		}
		return saveStockFields(tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Summary(ctx context.Context) (*InventorySummary, error) {
	var stats InventorySummary
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock_units < low_stock_threshold").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	err := db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock_units * purchase_price), 0)").
		Row().Scan(&stats.TotalValuation)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func lockProduct(tx *gorm.DB, id uuid.UUID, dest *model.Product) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, "id = ?", id).Error
}

func saveStockFields(tx *gorm.DB, p *model.Product) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"stock_units":              p.StockUnits,
			"bottle_open_remainder_ml": p.Bottle.OpenRemainderMl,
			"purchase_price":           p.PurchasePrice,
			"updated_by":               p.UpdatedBy,
		}).Error
}
