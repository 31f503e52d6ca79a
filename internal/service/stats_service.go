package service

import (
	"context"
	"time"

	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// Summary of one period. SalesTotal is cash actually collected: credit sales
// count what has been paid so far and e-commerce orders count once delivered.
type Summary struct {
	SalesCount      int             `json:"sales_count"`
	SalesTotal      decimal.Decimal `json:"sales_total"`
	MarginFromSales decimal.Decimal `json:"margin_from_sales"`
	PurchasesTotal  decimal.Decimal `json:"purchases_total"`
}

type StatsReport struct {
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Summary
}

type StatsService interface {
	Daily(ctx context.Context, date string) (*StatsReport, error)
	Monthly(ctx context.Context, month string) (*StatsReport, error)
	Range(ctx context.Context, from, to string) (*StatsReport, error)
	Inventory(ctx context.Context) (*repository.InventorySummary, error)
}

type statsService struct {
	sales     repository.SaleRepository
	purchases repository.PurchaseRepository
	products  repository.ProductRepository
	loc       *time.Location
	now       func() time.Time
}

func NewStatsService(
	sales repository.SaleRepository,
	purchases repository.PurchaseRepository,
	products repository.ProductRepository,
	loc *time.Location,
) StatsService {
	return &statsService{sales: sales, purchases: purchases, products: products, loc: loc, now: time.Now}
}

func (s *statsService) Daily(ctx context.Context, date string) (*StatsReport, error) {
	p, err := dayPeriod(date, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, p.Start.Format(dayLayout), p)
}

func (s *statsService) Monthly(ctx context.Context, month string) (*StatsReport, error) {
	p, err := monthPeriod(month, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, p.Start.Format(monthLayout), p)
}

// Range covers whole days between from and to, or the last seven days.
func (s *statsService) Range(ctx context.Context, from, to string) (*StatsReport, error) {
	p, err := rangePeriod(from, to, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	label := p.Start.Format(dayLayout) + ".." + p.End.AddDate(0, 0, -1).Format(dayLayout)
	return s.report(ctx, label, p)
}

func (s *statsService) Inventory(ctx context.Context) (*repository.InventorySummary, error) {
	return s.products.Summary(ctx)
}

func (s *statsService) report(ctx context.Context, label string, p Period) (*StatsReport, error) {
	sales, err := s.sales.Find(ctx, repository.SaleQuery{From: &p.Start, To: &p.End})
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.TotalCost(ctx, p.Start, p.End)
	if err != nil {
		return nil, err
	}

	summary := SummarizeSales(sales)
	summary.PurchasesTotal = purchases
	return &StatsReport{Label: label, From: p.Start, To: p.End, Summary: summary}, nil
}

// SummarizeSales folds sales into a Summary, leaving PurchasesTotal at zero.
func SummarizeSales(sales []model.Sale) Summary {
	sum := Summary{SalesTotal: decimal.Zero, MarginFromSales: decimal.Zero, PurchasesTotal: decimal.Zero}
	for i := range sales {
		sale := &sales[i]
		if sale.Fulfillment.IsEcommerce() && sale.Fulfillment.Status() != model.StatusDelivered {
			continue
		}
		sum.SalesCount++
		sum.SalesTotal = sum.SalesTotal.Add(sale.CashCollected())
		sum.MarginFromSales = sum.MarginFromSales.Add(sale.BenefitTotal)
	}
	return sum
}
