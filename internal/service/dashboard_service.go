package service

import (
	"context"
	"time"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

const (
	DefaultLowStock     = 10
	DefaultMovementDays = 7
	maxMovementDays     = 90
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, actor *Actor, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, actor *Actor) (*repository.DashboardStats, error)
}

type dashboardService struct {
	base
	lowStock int
}

func NewDashboardService(store repository.Store, lowStock int, opts ...Option) DashboardService {
	if lowStock <= 0 {
		lowStock = DefaultLowStock
	}
	return &dashboardService{base: newBase(store, opts), lowStock: lowStock}
}

// GetStockMovement returns one row per calendar day, oldest first, covering the last days days.
func (s *dashboardService) GetStockMovement(ctx context.Context, actor *Actor, days int) ([]repository.StockMovementData, error) {
	if err := actor.require(policy.ViewDashboard); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	rows, err := s.store.Stock().Movement(ctx, shopID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return fillDays(rows, startDate, endDate), nil
}

// fillDays adds zero rows for days without movement so charts get a continuous axis.
func fillDays(rows []repository.StockMovementData, from, to time.Time) []repository.StockMovementData {
	byDate := make(map[string]repository.StockMovementData, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	var out []repository.StockMovementData
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for d := start; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if r, ok := byDate[key]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, repository.StockMovementData{Date: key})
	}
	return out
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, actor *Actor) (*repository.DashboardStats, error) {
	if err := actor.require(policy.ViewDashboard); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	return s.store.Stock().Stats(ctx, shopID, s.lowStock)
}
