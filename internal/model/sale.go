package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCredit PaymentType = "credit"
)

type EcommerceStatus string

const (
	StatusPending   EcommerceStatus = "pending"
	StatusDelivered EcommerceStatus = "delivered"
	StatusReturned  EcommerceStatus = "returned"
)

// Fulfillment is either FulfillmentImmediate, a walk-in sale that is final
// as soon as it is recorded, or the status of an e-commerce order.
type Fulfillment string

const FulfillmentImmediate Fulfillment = "immediate"

// Ecommerce returns the fulfillment of an e-commerce order in the given status.
func Ecommerce(status EcommerceStatus) Fulfillment {
	return Fulfillment(status)
}

func (f Fulfillment) IsEcommerce() bool {
	return f != FulfillmentImmediate
}

// Status reports an immediate sale as delivered.
func (f Fulfillment) Status() EcommerceStatus {
	if f == FulfillmentImmediate {
		return StatusDelivered
	}
	return EcommerceStatus(f)
}

// Sale is immutable once created except for Credit and Fulfillment.
type Sale struct {
	BaseModel
	Date         time.Time       `gorm:"not null;index" json:"date"`
	PaymentType  PaymentType     `gorm:"type:varchar(10);not null" json:"payment_type"`
	Lines        []SaleLine      `gorm:"foreignKey:SaleID" json:"items"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	BenefitTotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"benefit_total"`
	Credit       *CreditInfo     `gorm:"foreignKey:SaleID" json:"credit_info,omitempty"`
	Fulfillment  Fulfillment     `gorm:"type:varchar(12);not null;index" json:"fulfillment"`
}

// ApplyLineTotals sets TotalAmount and BenefitTotal to the sums over Lines.
func (s *Sale) ApplyLineTotals() {
	total, benefit := decimal.Zero, decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Total)
		benefit = benefit.Add(l.Benefit)
	}
	s.TotalAmount = total
	s.BenefitTotal = benefit
}

// CashCollected is what the sale has brought into the till so far.
func (s *Sale) CashCollected() decimal.Decimal {
	if s.PaymentType == PaymentCredit {
		if s.Credit == nil {
			return decimal.Zero
		}
		return s.Credit.PaidNow
	}
	return s.TotalAmount
}

type SaleLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position    int       `gorm:"not null" json:"position"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`

	Quantity  int                 `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Total     decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"total"`
	IsDecant  bool                `gorm:"not null;default:false" json:"is_decant"`
	DecantMl  decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"decant_ml"`

	PurchaseUnitCost decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"purchase_unit_cost"`
	Benefit          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"benefit"`
}

func (l *SaleLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// CreditInfo invariant: PaidNow + Remaining == Sale.TotalAmount.
type CreditInfo struct {
	SaleID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"-"`
	PaidNow   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"paid_now"`
	Remaining decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining"`
	Phone     string          `gorm:"type:varchar(30)" json:"phone,omitempty"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CreditInfo) TableName() string {
	return "sale_credits"
}

// SaleResponse is the API shape of a sale.
type SaleResponse struct {
	ID              uuid.UUID       `json:"id"`
	Date            time.Time       `json:"date"`
	PaymentType     PaymentType     `json:"payment_type"`
	Items           []SaleLine      `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BenefitTotal    decimal.Decimal `json:"benefit_total"`
	CreditInfo      *CreditInfo     `json:"credit_info,omitempty"`
	IsEcommerce     bool            `json:"is_ecommerce"`
	EcommerceStatus EcommerceStatus `json:"ecommerce_status"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (s *Sale) ToResponse() SaleResponse {
	items := s.Lines
	if items == nil {
		items = []SaleLine{}
	}
	return SaleResponse{
		ID:              s.ID,
		Date:            s.Date,
		PaymentType:     s.PaymentType,
		Items:           items,
		TotalAmount:     s.TotalAmount,
		BenefitTotal:    s.BenefitTotal,
		CreditInfo:      s.Credit,
		IsEcommerce:     s.Fulfillment.IsEcommerce(),
		EcommerceStatus: s.Fulfillment.Status(),
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
