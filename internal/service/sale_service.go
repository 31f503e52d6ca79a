package service

import (
	"context"
	"errors"
	"strings"
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

const salesListLimit = 200

// Flag is a boolean that also accepts "true", "1" and any JSON number equal
// to 1 (1, 1.0, 1e0) from JSON clients. Anything else reads as false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch raw {
	case "true", `"true"`, `"1"`:
		*f = true
		return nil
	}
	n, err := decimal.NewFromString(raw)
	*f = Flag(err == nil && n.Equal(decimal.NewFromInt(1)))
	return nil
}

type CreditRequest struct {
	PaidNow   decimal.Decimal  `json:"paid_now"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
	Phone     string           `json:"phone"`
	DueDate   string           `json:"due_date"`
}

type CreateSaleRequest struct {
	Date        string            `json:"date"`
	PaymentType model.PaymentType `json:"payment_type"`
	Items       []LineRequest     `json:"items"`
	CreditInfo  *CreditRequest    `json:"credit_info"`
	IsEcommerce Flag              `json:"is_ecommerce"`
}

type SaleService interface {
	CreateSale(ctx context.Context, req CreateSaleRequest, userID string) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, date, month string) ([]model.Sale, error)
	ListEcommerce(ctx context.Context, status model.EcommerceStatus, date string) ([]model.Sale, error)
}

type saleService struct {
	sales     repository.SaleRepository
	lines     LineProcessor
	publisher events.Publisher
	tracer    trace.Tracer
	log       *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	lines LineProcessor,
	publisher events.Publisher,
	tracer trace.Tracer,
	log *zap.Logger,
	loc *time.Location,
) SaleService {
	return &saleService{
		sales:     sales,
		lines:     lines,
		publisher: publisher,
		tracer:    tracer,
		log:       log,
		loc:       loc,
		now:       time.Now,
	}
}

// CreateSale processes the items in order and records the sale. The first
// failing item stops the sale: nothing is recorded and that item consumed no
// stock, but items before it stay consumed.
func (s *saleService) CreateSale(ctx context.Context, req CreateSaleRequest, userID string) (*model.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "sale.create", trace.WithAttributes(
		attribute.String("sale.payment_type", string(req.PaymentType)),
		attribute.Int("sale.items", len(req.Items)),
		attribute.Bool("sale.ecommerce", bool(req.IsEcommerce)),
	))
	defer span.End()

	sale, err := s.createSale(ctx, req, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID.String()))

	publish(ctx, s.publisher, s.log, events.New(events.TypeSaleCreated, sale.ID, events.SaleCreated{
		SaleID:      sale.ID,
		PaymentType: string(sale.PaymentType),
		Fulfillment: string(sale.Fulfillment),
		TotalAmount: sale.TotalAmount,
		Lines:       len(sale.Lines),
	}))
	return sale, nil
}

func (s *saleService) createSale(ctx context.Context, req CreateSaleRequest, userID string) (*model.Sale, error) {
	// 1. Validate the request before touching stock
	if req.PaymentType != model.PaymentCash && req.PaymentType != model.PaymentCredit {
		return nil, ErrInvalidPayment
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}

	date := s.now()
	if req.Date != "" {
		d, err := parseInstant(req.Date, s.loc)
		if err != nil {
			return nil, err
		}
		date = d
	}

	var dueDate *time.Time
	if req.PaymentType == model.PaymentCredit && req.CreditInfo != nil && req.CreditInfo.DueDate != "" {
		d, err := parseInstant(req.CreditInfo.DueDate, s.loc)
		if err != nil {
			return nil, err
		}
		dueDate = &d
	}

	// 2. Process lines in order, stopping at the first failure
	lines := make([]model.SaleLine, 0, len(req.Items))
	for i, item := range req.Items {
		line, err := s.lines.Process(ctx, i, item)
		if err != nil {
			s.log.Warn("sale aborted",
				zap.Int("failed_item", i),
				zap.Int("items_consumed", i),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		lines = append(lines, *line)
	}

	sale := &model.Sale{
		Date:        date,
		PaymentType: req.PaymentType,
		Lines:       lines,
		Fulfillment: model.FulfillmentImmediate,
	}
	if req.IsEcommerce {
		sale.Fulfillment = model.Ecommerce(model.StatusPending)
	}
	sale.ApplyLineTotals()

	// 3. Credit terms
	if sale.PaymentType == model.PaymentCredit {
		sale.Credit = newCreditInfo(sale.TotalAmount, req.CreditInfo, dueDate)
		sale.Credit.UpdatedAt = s.now()
	}

	// 4. Attribution and persistence
	sale.CreatedBy = userID
	sale.UpdatedBy = userID

	if err := s.sales.Create(ctx, sale); err != nil {
		s.log.Error("sale not recorded after stock was consumed",
			zap.Int("items_consumed", len(lines)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.TotalAmount.String()),
		zap.String("fulfillment", string(sale.Fulfillment)),
	)
	return sale, nil
}

// newCreditInfo builds the credit terms of a new sale. Remaining defaults to
// what is left after the down payment; both amounts are floored at zero and
// the down payment cannot exceed the total.
func newCreditInfo(total decimal.Decimal, req *CreditRequest, dueDate *time.Time) *model.CreditInfo {
	credit := &model.CreditInfo{DueDate: dueDate}
	if req == nil {
		credit.Remaining = total
		return credit
	}

	paid := decimal.Min(decimal.Max(req.PaidNow, decimal.Zero), total)
	remaining := total.Sub(paid)
	if req.Remaining != nil && !req.Remaining.IsZero() {
		remaining = *req.Remaining
	}

	credit.PaidNow = paid
	credit.Remaining = decimal.Max(remaining, decimal.Zero)
	credit.Phone = req.Phone
	return credit
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// ListSales returns up to 200 sales of one day or one month, newest first.
// With neither filter it returns the latest 200.
func (s *saleService) ListSales(ctx context.Context, date, month string) ([]model.Sale, error) {
	q := repository.SaleQuery{Limit: salesListLimit}

	var (
		p   Period
		err error
	)
	switch {
	case date != "":
		p, err = dayPeriod(date, s.now(), s.loc)
	case month != "":
		p, err = monthPeriod(month, s.now(), s.loc)
	default:
		return s.sales.Find(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	q.From, q.To = &p.Start, &p.End
	return s.sales.Find(ctx, q)
}

func (s *saleService) ListEcommerce(ctx context.Context, status model.EcommerceStatus, date string) ([]model.Sale, error) {
	q := repository.SaleQuery{EcommerceOnly: true}

	switch status {
	case "", model.StatusPending, model.StatusDelivered, model.StatusReturned:
		q.Status = status
	default:
		return nil, validationError("unknown e-commerce status %q", status)
	}

	if date != "" {
		p, err := dayPeriod(date, s.now(), s.loc)
		if err != nil {
			return nil, err
		}
		q.From, q.To = &p.Start, &p.End
	}
	return s.sales.Find(ctx, q)
}
