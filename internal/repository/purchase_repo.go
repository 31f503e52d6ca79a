package repository

import (
	"context"
	"time"

	"perfume-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Record(ctx context.Context, purchase *model.Purchase, fn StockMutation) (*model.Product, error)
	Find(ctx context.Context, from, to *time.Time) ([]model.Purchase, error)
	TotalCost(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

// Record locks the purchased product, applies fn to it and inserts the
// purchase row in the same transaction.
func (r *purchaseRepo) Record(ctx context.Context, purchase *model.Purchase, fn StockMutation) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, purchase.ProductID, &product); err != nil {
			return err
		}
		if err := fn(&product); err != nil {
			return err
		}
		if err := saveStockFields(tx, &product); err != nil {
			return err
		}
		return tx.Omit("Product").Create(purchase).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *purchaseRepo) Find(ctx context.Context, from, to *time.Time) ([]model.Purchase, error) {
	var purchases []model.Purchase
	query := r.db.WithContext(ctx).Preload("Product")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}
	err := query.Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) TotalCost(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Select("COALESCE(SUM(total_cost), 0)").
		Where("created_at >= ? AND created_at < ?", start, end).
		Row().Scan(&total)
	return total, err
}
