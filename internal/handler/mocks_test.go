package handler

import (
	"context"

	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"
	"perfume-pos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockSales struct{ mock.Mock }

func (m *mockSales) CreateSale(ctx context.Context, req service.CreateSaleRequest, userID string) (*model.Sale, error) {
	args := m.Called(ctx, req, userID)
	sale, _ := args.Get(0).(*model.Sale)
	return sale, args.Error(1)
}

func (m *mockSales) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	args := m.Called(ctx, id)
	sale, _ := args.Get(0).(*model.Sale)
	return sale, args.Error(1)
}

func (m *mockSales) ListSales(ctx context.Context, date, month string) ([]model.Sale, error) {
	args := m.Called(ctx, date, month)
	sales, _ := args.Get(0).([]model.Sale)
	return sales, args.Error(1)
}

func (m *mockSales) ListEcommerce(ctx context.Context, status model.EcommerceStatus, date string) ([]model.Sale, error) {
	args := m.Called(ctx, status, date)
	sales, _ := args.Get(0).([]model.Sale)
	return sales, args.Error(1)
}

type mockCredit struct{ mock.Mock }

func (m *mockCredit) ApplyPayment(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal, userID string) (*model.Sale, error) {
	args := m.Called(ctx, saleID, amount, userID)
	sale, _ := args.Get(0).(*model.Sale)
	return sale, args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) UpdateStatus(ctx context.Context, saleID uuid.UUID, target model.EcommerceStatus, userID string) (*model.Sale, error) {
	args := m.Called(ctx, saleID, target, userID)
	sale, _ := args.Get(0).(*model.Sale)
	return sale, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) CreateProduct(ctx context.Context, in service.ProductInput, userID string) (*model.Product, error) {
	args := m.Called(ctx, in, userID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) UpdateProduct(ctx context.Context, id uuid.UUID, in service.ProductInput, userID string) (*model.Product, error) {
	args := m.Called(ctx, id, in, userID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *mockCatalog) LowStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *mockCatalog) AdjustStock(ctx context.Context, id uuid.UUID, adj service.StockAdjustment, userID string) (*model.Product, error) {
	args := m.Called(ctx, id, adj, userID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) CreateDecant(ctx context.Context, parentID uuid.UUID, in service.DecantInput, userID string) (*model.Product, error) {
	args := m.Called(ctx, parentID, in, userID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockCatalog) BestSellers(ctx context.Context, from, to string, limit int) ([]repository.BestSeller, error) {
	args := m.Called(ctx, from, to, limit)
	rows, _ := args.Get(0).([]repository.BestSeller)
	return rows, args.Error(1)
}

type mockStats struct{ mock.Mock }

func (m *mockStats) Daily(ctx context.Context, date string) (*service.StatsReport, error) {
	args := m.Called(ctx, date)
	r, _ := args.Get(0).(*service.StatsReport)
	return r, args.Error(1)
}

func (m *mockStats) Monthly(ctx context.Context, month string) (*service.StatsReport, error) {
	args := m.Called(ctx, month)
	r, _ := args.Get(0).(*service.StatsReport)
	return r, args.Error(1)
}

func (m *mockStats) Range(ctx context.Context, from, to string) (*service.StatsReport, error) {
	args := m.Called(ctx, from, to)
	r, _ := args.Get(0).(*service.StatsReport)
	return r, args.Error(1)
}

func (m *mockStats) Inventory(ctx context.Context) (*repository.InventorySummary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repository.InventorySummary)
	return s, args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*service.LoginResponse)
	return r, args.Error(1)
}

func (m *mockAuth) ResetPassword(ctx context.Context, email, newPassword string) error {
	return m.Called(ctx, email, newPassword).Error(0)
}

func (m *mockAuth) EnsureOwner(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}
