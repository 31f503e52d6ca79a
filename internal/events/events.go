// Package events publishes domain events after the database has committed.
// Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeSaleCreated         = "sale.created"
	TypeSaleCreditPayment   = "sale.credit_payment"
	TypeSaleEcommerceStatus = "sale.ecommerce_status"
	TypePurchaseRecorded    = "purchase.recorded"
	TypeProductLowStock     = "product.low_stock"
)

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// New stamps an event keyed by its aggregate id.
func New(eventType string, key uuid.UUID, payload any) Event {
	return Event{
		Type:       eventType,
		Key:        key.String(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type SaleCreated struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	PaymentType string          `json:"payment_type"`
	Fulfillment string          `json:"fulfillment"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       int             `json:"lines"`
}

type CreditPayment struct {
	SaleID    uuid.UUID       `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidNow   decimal.Decimal `json:"paid_now"`
	Remaining decimal.Decimal `json:"remaining"`
}

type EcommerceStatusChanged struct {
	SaleID        uuid.UUID `json:"sale_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	LinesRestored int       `json:"lines_restored"`
}

type PurchaseRecorded struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

type LowStock struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	StockUnits int       `json:"stock_units"`
	Threshold  int       `json:"threshold"`
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
