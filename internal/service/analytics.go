package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/repository"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

type AnalyticsService interface {
	Summary(ctx context.Context) (*dto.AnalysisResponse, error)
}

type analyticsServiceImpl struct {
	orderRepo repository.OrderRepository
	now       func() time.Time
}

func NewAnalyticsService(orderRepo repository.OrderRepository) AnalyticsService {
	return &analyticsServiceImpl{
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

// Summary aggregates paid orders: totals, sales per month and the best
// selling products of the current month.
func (s *analyticsServiceImpl) Summary(ctx context.Context) (*dto.AnalysisResponse, error) {
	orders, err := s.orderRepo.ListPaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list paid orders: %v", ErrPersistence, err)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	totalSales := decimal.Zero
	monthly := make(map[time.Time]decimal.Decimal)
	sold := make(map[string]*dto.TopProduct)

	for _, order := range orders {
		totalSales = totalSales.Add(order.TotalAmount)

		created := order.CreatedAt.In(now.Location())
		month := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, now.Location())
		monthly[month] = monthly[month].Add(order.TotalAmount)

		if created.Before(monthStart) {
			continue
		}
		for _, item := range order.Items {
			p, ok := sold[item.ProductID]
			if !ok {
				p = &dto.TopProduct{ProductID: item.ProductID, Name: item.Name}
				sold[item.ProductID] = p
			}
			p.Sales += item.Quantity
		}
	}

	months := make([]time.Time, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	salesOverTime := make([]dto.MonthlySales, 0, len(months))
	for _, m := range months {
		salesOverTime = append(salesOverTime, dto.MonthlySales{
			Month: m.Format("01/2006"),
			Sales: monthly[m].Round(2),
		})
	}

	top := make([]dto.TopProduct, 0, len(sold))
	for _, p := range sold {
		top = append(top, *p)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Sales != top[j].Sales {
			return top[i].Sales > top[j].Sales
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	return &dto.AnalysisResponse{
		Success:       true,
		TotalOrders:   len(orders),
		TotalSales:    totalSales.Round(2),
		SalesOverTime: salesOverTime,
		TopProducts:   top,
	}, nil
}
