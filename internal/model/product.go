package model

import (
	"perfume-pos/internal/inventory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductPerfume   ProductType = "perfume"
	ProductDecant    ProductType = "decant"
	ProductAccessory ProductType = "accessory"
)

// Bottle is the payload carried by decant-capable products.
type Bottle struct {
	SizeMl          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"size_ml"`
	OpenRemainderMl decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"open_remainder_ml"`
}

type Product struct {
	BaseModel
	Name    string      `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Brand   string      `gorm:"type:varchar(255)" json:"brand"`
	Type    ProductType `gorm:"type:varchar(20);not null;default:'perfume'" json:"type" validate:"required,oneof=perfume decant accessory"`
	Barcode string      `gorm:"type:varchar(64);index" json:"barcode,omitempty"`

	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"selling_price"`

	StockUnits        int    `gorm:"not null;default:0" json:"stock_units"`
	LowStockThreshold int    `gorm:"not null;default:1" json:"low_stock_threshold"`
	Bottle            Bottle `gorm:"embedded;embeddedPrefix:bottle_" json:"bottle"`

	// Set on decant products derived from a whole-bottle perfume.
	ParentProductID *uuid.UUID `gorm:"type:uuid;index" json:"parent_product_id,omitempty"`
}

// DecantCapable reports whether ml can be poured from this product.
func (p *Product) DecantCapable() bool {
	return p.Type != ProductAccessory && p.Bottle.SizeMl.IsPositive()
}

// Stock returns the ledger view of the product.
func (p *Product) Stock() inventory.Stock {
	s := inventory.Stock{Units: p.StockUnits}
	if p.Type != ProductAccessory {
		s.OpenMl = p.Bottle.OpenRemainderMl
		s.BottleMl = p.Bottle.SizeMl
	}
	return s
}

// ApplyStock writes a ledger value back onto the product.
func (p *Product) ApplyStock(s inventory.Stock) {
	p.StockUnits = s.Units
	if p.Type != ProductAccessory {
		p.Bottle.OpenRemainderMl = s.OpenMl
	}
}

func (p *Product) IsLowStock() bool {
	return p.StockUnits < p.LowStockThreshold
}
