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

type customerRepo struct{ st *state }

func (r customerRepo) put(c *model.Customer) {
	r.st.stamp(&c.BaseModel)
	r.st.d.customers[c.ID] = *c
}

func (r customerRepo) Create(_ context.Context, c *model.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.put(c)
	return nil
}

func (r customerRepo) Save(_ context.Context, c *model.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.put(c)
	return nil
}

func (r customerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	c, ok := r.st.d.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r customerRepo) List(_ context.Context, f repository.CustomerFilter) ([]model.Customer, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.Customer
	for _, c := range r.st.d.customers {
		if c.ShopID != f.ShopID || !activeMatches(f.IsActive, c.IsActive) || !contains(f.Search, c.Name, c.NIK, c.Phone) {
			continue
		}
		rows = append(rows, c)
	}
	less := byCreated(func(c model.Customer) time.Time { return c.CreatedAt })
	if f.SortBy == "name" {
		less = func(a, b model.Customer) bool { return a.Name < b.Name }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

type transactionRepo struct{ st *state }

func (r transactionRepo) Create(_ context.Context, tx *model.Transaction) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.transactions {
		if existing.Invoice == tx.Invoice {
			return duplicate("idx_transactions_invoice")
		}
	}
	r.st.stamp(&tx.BaseModel)
	details := make([]model.TransactionDetail, len(tx.Details))
	for i := range tx.Details {
		tx.Details[i].TransactionID = tx.ID
		r.st.stamp(&tx.Details[i].BaseModel)
		details[i] = tx.Details[i]
		details[i].Product = nil
	}
	stored := *tx
	stored.Customer, stored.CreatedBy, stored.Installments = nil, nil, nil
	stored.Details = details
	r.st.d.transactions[tx.ID] = stored
	return nil
}

func (r transactionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	t, ok := r.st.d.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.CustomerID != nil {
		if c, ok := r.st.d.customers[*t.CustomerID]; ok {
			t.Customer = &c
		}
	}
	if u, ok := r.st.d.users[t.CreatedByID]; ok {
		t.CreatedBy = &u
	}
	details := make([]model.TransactionDetail, len(t.Details))
	for i, det := range t.Details {
		if p, ok := r.st.d.products[det.ProductID]; ok {
			det.Product = &p
		}
		details[i] = det
	}
	t.Details = details
	for _, inst := range r.st.d.installments {
		if inst.TransactionID == id {
			t.Installments = append(t.Installments, inst)
		}
	}
	sort.SliceStable(t.Installments, func(i, j int) bool {
		return t.Installments[i].PaidAt.Before(t.Installments[j].PaidAt)
	})
	return &t, nil
}

func (r transactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]model.Transaction, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.Transaction
	for _, t := range r.st.d.transactions {
		if t.ShopID != f.ShopID || !contains(f.Search, t.Invoice) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Payment != "" && t.Payment != f.Payment {
			continue
		}
		if f.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *f.CustomerID) {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.CreatedAt.After(*f.To) {
			continue
		}
		if t.CustomerID != nil {
			if c, ok := r.st.d.customers[*t.CustomerID]; ok {
				t.Customer = &c
			}
		}
		t.Details = nil
		rows = append(rows, t)
	}
	less := byCreated(func(t model.Transaction) time.Time { return t.CreatedAt })
	switch f.SortBy {
	case "totalAmount":
		less = func(a, b model.Transaction) bool { return a.TotalAmount.LessThan(b.TotalAmount) }
	case "invoice":
		less = func(a, b model.Transaction) bool { return a.Invoice < b.Invoice }
	}
	items, total := page(rows, f.ListParams, less)
	return items, total, nil
}

func (r transactionRepo) ApplyPayment(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.d.transactions[id]
	if !ok || t.Payment != model.PaymentCredit {
		return repository.ErrOverpayment
	}
	paid := t.PaidAmount.Add(amount)
	if paid.GreaterThan(t.TotalAmount) {
		return repository.ErrOverpayment
	}
	t.PaidAmount = paid
	t.Status = model.DeriveStatus(t.Payment, paid, t.TotalAmount)
	t.UpdatedAt = r.st.now()
	r.st.d.transactions[id] = t
	return nil
}

func (r transactionRepo) CreateInstallment(_ context.Context, inst *model.Installment) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.transactions[inst.TransactionID]; !ok {
		return repository.ErrNotFound
	}
	r.st.stamp(&inst.BaseModel)
	r.st.d.installments[inst.ID] = *inst
	return nil
}

type historyRepo struct{ st *state }

func (r historyRepo) Append(_ context.Context, h *model.History) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = r.st.now()
	}
	r.st.d.history = append(r.st.d.history, *h)
	return nil
}

// List returns newest first; rows written in the same instant keep reverse insertion order.
func (r historyRepo) List(_ context.Context, subject model.HistorySubject, subjectID uuid.UUID) ([]model.History, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var rows []model.History
	for i := len(r.st.d.history) - 1; i >= 0; i-- {
		h := r.st.d.history[i]
		if h.Subject == subject && h.SubjectID == subjectID {
			rows = append(rows, h)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// HistoryFor is a test helper returning every row written for one subject.
func (s *Store) HistoryFor(subject model.HistorySubject, subjectID uuid.UUID) []model.History {
	rows, _ := historyRepo{s.st}.List(context.Background(), subject, subjectID)
	return rows
}
