package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"perfume-pos/internal/events"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memProducts is an in-memory ProductRepository. MutateStock holds the
// mutex for the whole read-modify-write like the row lock does.
type memProducts struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Product
}

func newMemProducts(products ...*model.Product) *memProducts {
	r := &memProducts{items: map[uuid.UUID]model.Product{}}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.LowStockThreshold == 0 {
			p.LowStockThreshold = 1
		}
		r.items[p.ID] = *p
	}
	return r
}

func (r *memProducts) get(id uuid.UUID) model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

func (r *memProducts) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.items[p.ID] = *p
	return nil
}

func (r *memProducts) FindAll(_ context.Context, f repository.ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.items {
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memProducts) FindLowStock(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.items {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) Update(_ context.Context, id uuid.UUID, fn repository.StockMutation) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutateLocked(id, fn)
}

func (r *memProducts) MutateStock(_ context.Context, id uuid.UUID, fn repository.StockMutation) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutateLocked(id, fn)
}

func (r *memProducts) mutateLocked(id uuid.UUID, fn repository.StockMutation) (*model.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	r.items[id] = p
	return &p, nil
}

func (r *memProducts) Summary(_ context.Context) (*repository.InventorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &repository.InventorySummary{TotalValuation: decimal.Zero}
	for _, p := range r.items {
		s.TotalProducts++
		if p.IsLowStock() {
			s.LowStockCount++
		}
		s.TotalValuation = s.TotalValuation.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.StockUnits))))
	}
	return s, nil
}

// memSales is an in-memory SaleRepository.
type memSales struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Sale
}

func newMemSales(sales ...*model.Sale) *memSales {
	r := &memSales{items: map[uuid.UUID]model.Sale{}}
	for _, s := range sales {
		_ = r.Create(context.Background(), s)
	}
	return r
}

func cloneSale(s model.Sale) model.Sale {
	s.Lines = append([]model.SaleLine(nil), s.Lines...)
	if s.Credit != nil {
		c := *s.Credit
		s.Credit = &c
	}
	return s
}

func (r *memSales) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *memSales) Create(_ context.Context, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Lines {
		if s.Lines[i].ID == uuid.Nil {
			s.Lines[i].ID = uuid.New()
		}
		s.Lines[i].SaleID = s.ID
	}
	if s.Credit != nil {
		s.Credit.SaleID = s.ID
	}
	r.items[s.ID] = cloneSale(*s)
	return nil
}

func (r *memSales) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := cloneSale(s)
	return &c, nil
}

func (r *memSales) Find(_ context.Context, q repository.SaleQuery) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Sale{}
	for _, s := range r.items {
		if q.From != nil && s.Date.Before(*q.From) {
			continue
		}
		if q.To != nil && !s.Date.Before(*q.To) {
			continue
		}
		if q.EcommerceOnly && !s.Fulfillment.IsEcommerce() {
			continue
		}
		if q.Status != "" && s.Fulfillment != model.Ecommerce(q.Status) {
			continue
		}
		out = append(out, cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *memSales) UpdateCredit(_ context.Context, id uuid.UUID, fn repository.SaleMutation) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s = cloneSale(s)
	if err := fn(&s); err != nil {
		return nil, err
	}
	if s.Credit != nil {
		s.Credit.SaleID = s.ID
	}
	r.items[id] = cloneSale(s)
	return &s, nil
}

func (r *memSales) TransitionFulfillment(_ context.Context, id uuid.UUID, from, to model.Fulfillment, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.Fulfillment != from {
		return repository.ErrStaleState
	}
	s.Fulfillment = to
	s.UpdatedBy = actor
	r.items[id] = s
	return nil
}

func (r *memSales) BestSellers(_ context.Context, from, to *time.Time, limit int) ([]repository.BestSeller, error) {
	sales, _ := r.Find(context.Background(), repository.SaleQuery{From: from, To: to})
	byProduct := map[uuid.UUID]*repository.BestSeller{}
	for _, s := range sales {
		for _, l := range s.Lines {
			b, ok := byProduct[l.ProductID]
			if !ok {
				b = &repository.BestSeller{ProductID: l.ProductID, Name: l.ProductName, TotalRevenue: decimal.Zero}
				byProduct[l.ProductID] = b
			}
			b.TotalQuantity += int64(l.Quantity)
			b.TotalRevenue = b.TotalRevenue.Add(l.Total)
		}
	}
	out := []repository.BestSeller{}
	for _, b := range byProduct {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalQuantity > out[j].TotalQuantity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memPurchases records purchases against a memProducts store.
type memPurchases struct {
	products *memProducts
	mu       sync.Mutex
	items    []model.Purchase
}

func (r *memPurchases) Record(_ context.Context, p *model.Purchase, fn repository.StockMutation) (*model.Product, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	product, err := r.products.mutateLocked(p.ProductID, fn)
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.items = append(r.items, *p)
	r.mu.Unlock()
	return product, nil
}

func (r *memPurchases) Find(_ context.Context, from, to *time.Time) ([]model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Purchase{}
	for _, p := range r.items {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPurchases) TotalCost(_ context.Context, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	list, _ := r.Find(context.Background(), &start, &end)
	for _, p := range list {
		total = total.Add(p.TotalCost)
	}
	return total, nil
}

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{items: map[uuid.UUID]model.User{}}
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUsers) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *memUsers) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.FullName = u.FullName
	cur.Role = u.Role
	cur.IsActive = u.IsActive
	cur.UpdatedBy = u.UpdatedBy
	r.items[u.ID] = cur
	return nil
}

func (r *memUsers) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.items[u.ID] = *u
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashed
	r.items[id] = u
	return nil
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture wires the sale-side services over in-memory stores.
type fixture struct {
	products *memProducts
	sales    *memSales
	pub      *recordingPublisher
	ledger   InventoryLedger
	lines    LineProcessor
	saleSvc  *saleService
	credit   CreditLedger
	flow     OrderFlow
}

func newFixture(products ...*model.Product) *fixture {
	f := &fixture{
		products: newMemProducts(products...),
		sales:    newMemSales(),
		pub:      &recordingPublisher{},
	}
	log := zap.NewNop()
	f.ledger = NewInventoryLedger(f.products, f.pub, log)
	f.lines = NewLineProcessor(f.products, f.ledger, testTracer)
	f.saleSvc = NewSaleService(f.sales, f.lines, f.pub, testTracer, log, time.UTC).(*saleService)
	f.credit = NewCreditLedger(f.sales, f.pub, testTracer, log)
	f.flow = NewOrderFlow(f.sales, f.ledger, f.pub, testTracer, log)
	return f
}

func perfume(name string, units int, openMl, bottleMl, purchase, selling string) *model.Product {
	return &model.Product{
		Name:          name,
		Type:          model.ProductPerfume,
		StockUnits:    units,
		PurchasePrice: dec(purchase),
		SellingPrice:  dec(selling),
		Bottle:        model.Bottle{SizeMl: dec(bottleMl), OpenRemainderMl: dec(openMl)},
	}
}

func accessory(name string, units int, purchase, selling string) *model.Product {
	return &model.Product{
		Name:          name,
		Type:          model.ProductAccessory,
		StockUnits:    units,
		PurchasePrice: dec(purchase),
		SellingPrice:  dec(selling),
	}
}
