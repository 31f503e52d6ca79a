package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a supplier intake of closed units.
type Purchase struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	TotalCost decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
}

// UnitCost is TotalCost spread over Quantity.
func (p *Purchase) UnitCost() decimal.Decimal {
	if p.Quantity <= 0 {
		return decimal.Zero
	}
	return p.TotalCost.Div(decimal.NewFromInt(int64(p.Quantity)))
}
