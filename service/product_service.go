package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"imprenta-studio/models"
	"imprenta-studio/pricing"
	"imprenta-studio/repository"
)

// ErrProductUnavailable wraps a catalog integrity error: the product
// exists but its pricing data is broken, so the page must show a
// "product unavailable" state instead of a broken pricing widget.
var ErrProductUnavailable = errors.New("product unavailable")

// productCacheTTL bounds how stale a cached product document may get
const productCacheTTL = 5 * time.Minute

// ProductService loads product documents, validates their pricing data
// into a catalog, and caches the documents in Redis in front of
// Postgres. The cached value is the raw product document; validation
// runs on every load so a bad catalog is never served from cache as
// good.
type ProductService struct {
	productRepo repository.ProductRepositoryInterface
	rdb         *redis.Client
}

// NewProductService creates a new ProductService. rdb may be nil, in
// which case every lookup goes to the database.
func NewProductService(productRepo repository.ProductRepositoryInterface, rdb *redis.Client) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		rdb:         rdb,
	}
}

// GetCatalog returns the validated pricing catalog for a product.
// Catalog integrity errors are wrapped in ErrProductUnavailable and
// logged once here, at the page boundary.
func (s *ProductService) GetCatalog(ctx context.Context, slug string) (*pricing.Catalog, error) {
	product, err := s.getProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	catalog, err := pricing.NewCatalog(product)
	if err != nil {
		log.Printf("❌ GetCatalog: Product %s rejected: %v", slug, err)
		return nil, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}
	return catalog, nil
}

// ListProducts returns the active products, optionally by category
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	return s.productRepo.ListActive(ctx, category)
}

// getProduct fetches the product document, trying the Redis cache
// first. Cache failures degrade to the database, never to an error.
func (s *ProductService) getProduct(ctx context.Context, slug string) (*models.Product, error) {
	cacheKey := fmt.Sprintf("product:%s", slug)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var product models.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				log.Printf("⚡ getProduct: Cache hit for %s", slug)
				return &product, nil
			}
			log.Printf("⚠️  getProduct: Failed to unmarshal cached product %s, falling back to DB", slug)
		} else if err != nil && err != redis.Nil {
			log.Printf("⚠️  getProduct: Cache read for %s failed: %v", slug, err)
		}
	}

	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(product); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, productCacheTTL).Err(); err != nil {
				log.Printf("⚠️  getProduct: Cache write for %s failed: %v", slug, err)
			}
		}
	}

	return product, nil
}

// InvalidateProduct drops a product document from the cache, e.g.
// after an admin catalog edit.
func (s *ProductService) InvalidateProduct(ctx context.Context, slug string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, fmt.Sprintf("product:%s", slug)).Err(); err != nil {
		log.Printf("⚠️  InvalidateProduct: Failed to drop %s from cache: %v", slug, err)
	}
}
