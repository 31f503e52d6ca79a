package service

import (
	"context"
	"errors"
	"time"

	"perfume-pos/internal/events"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditLedger records instalments against credit sales.
type CreditLedger interface {
	ApplyPayment(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal, userID string) (*model.Sale, error)
}

type creditLedger struct {
	sales     repository.SaleRepository
	publisher events.Publisher
	tracer    trace.Tracer
	log       *zap.Logger
	now       func() time.Time
}

func NewCreditLedger(sales repository.SaleRepository, publisher events.Publisher, tracer trace.Tracer, log *zap.Logger) CreditLedger {
	return &creditLedger{sales: sales, publisher: publisher, tracer: tracer, log: log, now: time.Now}
}

// ApplyPayment adds amount to what has been paid on the sale. Overpayment is
// accepted: paid stops at the total and remaining at zero.
func (c *creditLedger) ApplyPayment(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal, userID string) (*model.Sale, error) {
	ctx, span := c.tracer.Start(ctx, "sale.credit_payment", trace.WithAttributes(
		attribute.String("sale.id", saleID.String()),
		attribute.String("payment.amount", amount.String()),
	))
	defer span.End()

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	sale, err := c.sales.UpdateCredit(ctx, saleID, func(s *model.Sale) error {
		if s.PaymentType != model.PaymentCredit {
			return ErrNotACreditSale
		}
		s.Credit = applyCreditPayment(s.TotalAmount, s.Credit, amount)
		s.Credit.UpdatedAt = c.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrSaleNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.log.Info("credit payment applied",
		zap.String("sale_id", sale.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("remaining", sale.Credit.Remaining.String()),
		zap.String("user_id", userID),
	)
	publish(ctx, c.publisher, c.log, events.New(events.TypeSaleCreditPayment, sale.ID, events.CreditPayment{
		SaleID:    sale.ID,
		Amount:    amount,
		PaidNow:   sale.Credit.PaidNow,
		Remaining: sale.Credit.Remaining,
	}))
	return sale, nil
}

// applyCreditPayment returns the credit info after a payment. A sale recorded
// without credit info starts from nothing paid.
func applyCreditPayment(total decimal.Decimal, credit *model.CreditInfo, amount decimal.Decimal) *model.CreditInfo {
	if credit == nil {
		credit = &model.CreditInfo{PaidNow: decimal.Zero, Remaining: total}
	}
	paid := decimal.Min(total, credit.PaidNow.Add(amount))
	credit.PaidNow = paid
	credit.Remaining = decimal.Max(decimal.Zero, total.Sub(paid))
	return credit
}
