package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

const catalogListKey = "catalog:products"

func catalogProductKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

// CatalogService serves the read-only product catalog
type CatalogService struct {
	store  store.Repository
	cache  CatalogCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service; cache may be nil
func NewCatalogService(store store.Repository, cache CatalogCache, ttl time.Duration) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// SeedDefaults inserts the sample products when the catalog is empty and
// returns how many were inserted.
func (s *CatalogService) SeedDefaults(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SeedDefaults")
	defer span.End()

	inserted := 0
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		count, err := tx.CountProducts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, product := range models.SampleProducts() {
			product := product
			if err := tx.CreateProduct(ctx, &product); err != nil {
				return fmt.Errorf("failed to seed product: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		s.invalidate(ctx, catalogListKey)
		s.logger.Info("Catalog seeded", zap.Int("count", inserted))
	}
	return inserted, nil
}

// List returns all products in insertion order
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.List")
	defer span.End()

	var products []models.Product
	if s.fromCache(ctx, catalogListKey, &products) {
		return products, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.toCache(ctx, catalogListKey, products)
	return products, nil
}

// Get returns one product
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Get")
	defer span.End()

	key := catalogProductKey(id)

	var cached models.Product
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.store.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.toCache(ctx, key, product)
	return product, nil
}

func (s *CatalogService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	found, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		util.CatalogCacheTotal.WithLabelValues("error").Inc()
		s.logger.Error("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		util.CatalogCacheTotal.WithLabelValues("miss").Inc()
		return false
	}

	util.CatalogCacheTotal.WithLabelValues("hit").Inc()
	return true
}

func (s *CatalogService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Error("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Error("Catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
