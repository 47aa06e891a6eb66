package service

import (
	"context"
	"sync"

	"storefront-order-service/internal/model"
	"storefront-order-service/internal/repository"
	"storefront-order-service/internal/shipping"

	"golang.org/x/sync/errgroup"
)

const (
	lookupBatchSize   = 100
	lookupConcurrency = 4
)

type productLookupImpl struct {
	productRepo repository.ProductRepository
	batchSize   int
}

// NewProductLookup resolves products in IN-query batches, fanning the batches
// out concurrently. Unknown ids are left out of the result.
func NewProductLookup(productRepo repository.ProductRepository) shipping.ProductLookup {
	return &productLookupImpl{
		productRepo: productRepo,
		batchSize:   lookupBatchSize,
	}
}

func (l *productLookupImpl) Lookup(ctx context.Context, productIDs []string) (map[string]*model.Product, error) {
	seen := make(map[string]struct{}, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var (
		mu       sync.Mutex
		products = make(map[string]*model.Product, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for start := 0; start < len(ids); start += l.batchSize {
		batch := ids[start:min(start+l.batchSize, len(ids))]

		g.Go(func() error {
			found, err := l.productRepo.FindMany(gctx, batch)
			if err != nil {
				return err
			}

			mu.Lock()
			for _, p := range found {
				products[p.ID] = p
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return products, nil
}
