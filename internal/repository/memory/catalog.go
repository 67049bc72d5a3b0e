package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

type productRepo struct{ st *state }

func (r productRepo) hydrate(p model.Product) model.Product {
	p.Type, p.Distributor = nil, nil
	if t, ok := r.st.d.types[p.TypeID]; ok {
		p.Type = &t
	}
	if p.DistributorID != nil {
		if d, ok := r.st.d.distributors[*p.DistributorID]; ok {
			p.Distributor = &d
		}
	}
	return p
}

func (r productRepo) put(product *model.Product) error {
	for id, p := range r.st.d.products {
		if id != product.ID && p.Barcode == product.Barcode {
			return duplicate("idx_products_barcode")
		}
	}
	r.st.stamp(&product.BaseModel)
	stored := *product
	stored.Type, stored.Distributor = nil, nil
	r.st.d.products[product.ID] = stored
	return nil
}

func (r productRepo) Create(_ context.Context, product *model.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.put(product)
}

func (r productRepo) Save(_ context.Context, product *model.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.put(product)
}

func (r productRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	p, ok := r.st.d.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = r.hydrate(p)
	return &p, nil
}

func (r productRepo) FindMatch(_ context.Context, name string, typeID uuid.UUID, distributorID *uuid.UUID) (*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var found *model.Product
	for _, p := range r.st.d.products {
		if !p.IsActive || p.Name != name || p.TypeID != typeID {
			continue
		}
		if (distributorID == nil) != (p.DistributorID == nil) {
			continue
		}
		if distributorID != nil && *distributorID != *p.DistributorID {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r productRepo) BarcodeExists(_ context.Context, barcode string) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, p := range r.st.d.products {
		if p.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func (r productRepo) ListStocked(_ context.Context, f repository.ProductFilter) ([]model.StockedProduct, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.StockedProduct
	for key, qty := range r.st.d.stock {
		if key.shop != f.ShopID {
			continue
		}
		p, ok := r.st.d.products[key.product]
		if !ok || !activeMatches(f.IsActive, p.IsActive) || !contains(f.Search, p.Name, p.Barcode) {
			continue
		}
		if f.TypeID != nil && p.TypeID != *f.TypeID {
			continue
		}
		if f.DistributorID != nil && (p.DistributorID == nil || *p.DistributorID != *f.DistributorID) {
			continue
		}
		if f.MinPrice != nil && p.SellPrice.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.SellPrice.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.MinStock != nil && qty < *f.MinStock {
			continue
		}
		if f.MaxStock != nil && qty > *f.MaxStock {
			continue
		}
		rows = append(rows, model.StockedProduct{Product: r.hydrate(p), Stock: qty})
	}
	less := byCreated(func(p model.StockedProduct) time.Time { return p.CreatedAt })
	switch f.SortBy {
	case "name":
		less = func(a, b model.StockedProduct) bool { return a.Name < b.Name }
	case "sellPrice":
		less = func(a, b model.StockedProduct) bool { return a.SellPrice.LessThan(b.SellPrice) }
	case "buyPrice":
		less = func(a, b model.StockedProduct) bool { return a.BuyPrice.LessThan(b.BuyPrice) }
	case "stock":
		less = func(a, b model.StockedProduct) bool { return a.Stock < b.Stock }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

type typeRepo struct{ st *state }

func (r typeRepo) FindAll(_ context.Context) ([]model.ProductType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	out := make([]model.ProductType, 0, len(r.st.d.types))
	for _, t := range r.st.d.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r typeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	t, ok := r.st.d.types[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r typeRepo) Create(_ context.Context, t *model.ProductType) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.types {
		if existing.Name == t.Name {
			return duplicate("idx_product_types_name")
		}
	}
	r.st.stamp(&t.BaseModel)
	r.st.d.types[t.ID] = *t
	return nil
}

func (r typeRepo) SeedDefaults(ctx context.Context) error {
	existing, _ := r.FindAll(ctx)
	have := map[string]bool{}
	for _, t := range existing {
		have[t.Name] = true
	}
	for _, name := range model.DefaultProductTypes {
		if have[name] {
			continue
		}
		if err := r.Create(ctx, &model.ProductType{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

type stockRepo struct{ st *state }

func (r stockRepo) Find(_ context.Context, shopID, productID uuid.UUID) (*model.ShopProduct, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	qty, ok := r.st.d.stock[stockKey{shopID, productID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sp := &model.ShopProduct{ShopID: shopID, ProductID: productID, Stock: qty}
	if p, ok := r.st.d.products[productID]; ok {
		sp.Product = &p
	}
	return sp, nil
}

func (r stockRepo) Increment(_ context.Context, shopID, productID uuid.UUID, qty int) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.d.stock[stockKey{shopID, productID}] += qty
	return nil
}

func (r stockRepo) Decrement(_ context.Context, shopID, productID uuid.UUID, qty int) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	key := stockKey{shopID, productID}
	cur, ok := r.st.d.stock[key]
	if !ok || cur < qty {
		return repository.ErrInsufficientStock
	}
	r.st.d.stock[key] = cur - qty
	return nil
}

func (r stockRepo) CreateStockIn(_ context.Context, in *model.StockIn) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.stockIns {
		if existing.Invoice == in.Invoice {
			return duplicate("idx_stock_ins_invoice")
		}
	}
	r.st.stamp(&in.BaseModel)
	details := make([]model.StockInDetail, len(in.Details))
	for i := range in.Details {
		in.Details[i].StockInID = in.ID
		r.st.stamp(&in.Details[i].BaseModel)
		details[i] = in.Details[i]
		details[i].Product = nil
	}
	stored := *in
	stored.Distributor = nil
	stored.Details = details
	r.st.d.stockIns[in.ID] = stored
	return nil
}

func (r stockRepo) FindStockIn(_ context.Context, id uuid.UUID) (*model.StockIn, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	in, ok := r.st.d.stockIns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.DistributorID != nil {
		if d, ok := r.st.d.distributors[*in.DistributorID]; ok {
			in.Distributor = &d
		}
	}
	details := make([]model.StockInDetail, len(in.Details))
	for i, det := range in.Details {
		if p, ok := r.st.d.products[det.ProductID]; ok {
			det.Product = &p
		}
		details[i] = det
	}
	in.Details = details
	return &in, nil
}

func (r stockRepo) ListStockIn(_ context.Context, f repository.StockInFilter) ([]model.StockIn, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.StockIn
	for _, in := range r.st.d.stockIns {
		if in.ShopID != f.ShopID || !contains(f.Search, in.Invoice) {
			continue
		}
		if f.DistributorID != nil && (in.DistributorID == nil || *in.DistributorID != *f.DistributorID) {
			continue
		}
		if f.From != nil && in.InvoiceDate.Before(*f.From) {
			continue
		}
		if f.To != nil && in.InvoiceDate.After(*f.To) {
			continue
		}
		in.Details = nil
		rows = append(rows, in)
	}
	less := byCreated(func(in model.StockIn) time.Time { return in.CreatedAt })
	switch f.SortBy {
	case "invoiceDate":
		less = func(a, b model.StockIn) bool { return a.InvoiceDate.Before(b.InvoiceDate) }
	case "totalAmount":
		less = func(a, b model.StockIn) bool { return a.TotalAmount.LessThan(b.TotalAmount) }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

func (r stockRepo) CreateStockOut(_ context.Context, out *model.StockOut) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.stockOuts {
		if existing.Invoice == out.Invoice {
			return duplicate("idx_stock_outs_invoice")
		}
	}
	r.st.stamp(&out.BaseModel)
	details := make([]model.StockOutDetail, len(out.Details))
	for i := range out.Details {
		out.Details[i].StockOutID = out.ID
		r.st.stamp(&out.Details[i].BaseModel)
		details[i] = out.Details[i]
	}
	stored := *out
	stored.Details = details
	r.st.d.stockOuts[out.ID] = stored
	return nil
}

func (r stockRepo) Movement(_ context.Context, shopID uuid.UUID, from, to time.Time) ([]repository.StockMovementData, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	byDay := map[string]*repository.StockMovementData{}
	bucket := func(at time.Time) *repository.StockMovementData {
		day := at.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = &repository.StockMovementData{Date: day}
		}
		return byDay[day]
	}
	within := func(at time.Time) bool { return !at.Before(from) && !at.After(to) }
	for _, in := range r.st.d.stockIns {
		if in.ShopID != shopID || !within(in.CreatedAt) {
			continue
		}
		for _, det := range in.Details {
			bucket(in.CreatedAt).Inbound += det.Quantity
		}
	}
	for _, out := range r.st.d.stockOuts {
		if out.ShopID != shopID || !within(out.CreatedAt) {
			continue
		}
		for _, det := range out.Details {
			bucket(out.CreatedAt).Outbound += det.Quantity
		}
	}
	results := make([]repository.StockMovementData, 0, len(byDay))
	for _, v := range byDay {
		results = append(results, *v)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r stockRepo) Stats(_ context.Context, shopID uuid.UUID, lowStock int) (*repository.DashboardStats, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	stats := &repository.DashboardStats{TotalValuation: decimal.Zero}
	for key, qty := range r.st.d.stock {
		p, ok := r.st.d.products[key.product]
		if key.shop != shopID || !ok || !p.IsActive {
			continue
		}
		stats.TotalProducts++
		if qty < lowStock {
			stats.LowStockCount++
		}
		stats.TotalValuation = stats.TotalValuation.Add(p.BuyPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return stats, nil
}

type distributorRepo struct{ st *state }

func (r distributorRepo) put(d *model.Distributor) {
	r.st.stamp(&d.BaseModel)
	r.st.d.distributors[d.ID] = *d
}

func (r distributorRepo) Create(_ context.Context, d *model.Distributor) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.put(d)
	return nil
}

func (r distributorRepo) Save(_ context.Context, d *model.Distributor) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.put(d)
	return nil
}

func (r distributorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Distributor, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	d, ok := r.st.d.distributors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r distributorRepo) List(_ context.Context, f repository.DistributorFilter) ([]model.Distributor, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.Distributor
	for _, d := range r.st.d.distributors {
		if f.ShopID != nil && !r.st.d.links[stockKey{d.ID, *f.ShopID}] {
			continue
		}
		if !activeMatches(f.IsActive, d.IsActive) || !contains(f.Search, d.Name, d.Email, d.Phone) {
			continue
		}
		rows = append(rows, d)
	}
	less := byCreated(func(d model.Distributor) time.Time { return d.CreatedAt })
	if f.SortBy == "name" {
		less = func(a, b model.Distributor) bool { return a.Name < b.Name }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

func (r distributorRepo) Link(_ context.Context, distributorID, shopID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.d.links[stockKey{distributorID, shopID}] = true
	return nil
}

func (r distributorRepo) IsLinked(_ context.Context, distributorID, shopID uuid.UUID) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.d.links[stockKey{distributorID, shopID}], nil
}
