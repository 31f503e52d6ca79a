package repository

import (
	"context"
	"errors"
	"time"

	"perfume-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleState is returned by compare-and-set updates that matched no row.
var ErrStaleState = errors.New("row no longer in expected state")

// SaleQuery filters sale listings. Zero fields do not filter.
type SaleQuery struct {
	From          *time.Time
	To            *time.Time
	EcommerceOnly bool
	Status        model.EcommerceStatus
	Limit         int
}

// BestSeller aggregates sale lines per product.
type BestSeller struct {
	ProductID     uuid.UUID         `json:"product_id"`
	Name          string            `json:"name"`
	Type          model.ProductType `json:"type"`
	SellingPrice  decimal.Decimal   `json:"selling_price"`
	StockUnits    int               `json:"stock_units"`
	TotalQuantity int64             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal   `json:"total_revenue"`
}

// SaleMutation edits a locked sale in place.
type SaleMutation func(s *model.Sale) error

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Find(ctx context.Context, q SaleQuery) ([]model.Sale, error)
	UpdateCredit(ctx context.Context, id uuid.UUID, fn SaleMutation) (*model.Sale, error)
	TransitionFulfillment(ctx context.Context, id uuid.UUID, from, to model.Fulfillment, actor string) error
	BestSellers(ctx context.Context, from, to *time.Time, limit int) ([]BestSeller, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale with its lines and credit info.
func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := withDetails(r.db.WithContext(ctx)).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) Find(ctx context.Context, q SaleQuery) ([]model.Sale, error) {
	var sales []model.Sale
	query := withDetails(r.db.WithContext(ctx))

	if q.From != nil {
		query = query.Where("date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("date < ?", *q.To)
	}
	if q.EcommerceOnly {
		query = query.Where("fulfillment <> ?", model.FulfillmentImmediate)
	}
	if q.Status != "" {
		query = query.Where("fulfillment = ?", model.Ecommerce(q.Status))
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	err := query.Order("date DESC").Find(&sales).Error
	return sales, err
}

// UpdateCredit locks the sale, lets fn edit its credit info and upserts the
// result. Concurrent payments on the same sale are serialized.
func (r *saleRepo) UpdateCredit(ctx context.Context, id uuid.UUID, fn SaleMutation) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Preload("Lines", byPosition).Preload("Credit").First(&sale, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&sale); err != nil {
			return err
		}
		if sale.Credit == nil {
			return nil
		}
		sale.Credit.SaleID = sale.ID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"paid_now", "remaining", "updated_at"}),
		}).Create(sale.Credit).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// TransitionFulfillment moves a sale from one fulfillment to another only if
// it is still in from. Otherwise ErrStaleState.
func (r *saleRepo) TransitionFulfillment(ctx context.Context, id uuid.UUID, from, to model.Fulfillment, actor string) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND fulfillment = ?", id, from).
		Updates(map[string]interface{}{"fulfillment": to, "updated_by": actor})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// BestSellers ranks products by units sold. A decant line counts as one unit.
func (r *saleRepo) BestSellers(ctx context.Context, from, to *time.Time, limit int) ([]BestSeller, error) {
	query := r.db.WithContext(ctx).Table("sale_lines AS l").
		Select(`
			l.product_id, p.name, p.type, p.selling_price, p.stock_units,
			COALESCE(SUM(l.quantity), 0) AS total_quantity,
			COALESCE(SUM(l.total), 0) AS total_revenue
		`).
		Joins("JOIN sales s ON s.id = l.sale_id AND s.deleted_at IS NULL").
		Joins("JOIN products p ON p.id = l.product_id")
	if from != nil {
		query = query.Where("s.date >= ?", *from)
	}
	if to != nil {
		query = query.Where("s.date < ?", *to)
	}

	rows, err := query.
		Group("l.product_id, p.name, p.type, p.selling_price, p.stock_units").
		Order("total_quantity DESC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []BestSeller{}
	for rows.Next() {
		var b BestSeller
		if err := rows.Scan(&b.ProductID, &b.Name, &b.Type, &b.SellingPrice, &b.StockUnits, &b.TotalQuantity, &b.TotalRevenue); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", byPosition).Preload("Credit")
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
