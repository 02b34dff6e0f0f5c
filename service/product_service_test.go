package service

import (
	"context"
	"errors"
	"testing"

	"imprenta-studio/repository"
)

func TestGetCatalogNotFound(t *testing.T) {
	svc := NewProductService(&fakeProductRepo{product: testProduct()}, nil)

	_, err := svc.GetCatalog(context.Background(), "no-such-product")
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetCatalogRejectsBrokenPricing(t *testing.T) {
	product := testProduct()
	// Break bulk discount monotonicity: the larger tier gets a higher
	// per-unit price.
	product.Tiers[1].PricePerUnit = 600
	product.Tiers[1].BasePrice = 300000
	svc := NewProductService(&fakeProductRepo{product: product}, nil)

	_, err := svc.GetCatalog(context.Background(), product.Slug)
	if !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestGetCatalogSortsTiers(t *testing.T) {
	product := testProduct()
	product.Tiers[0], product.Tiers[1] = product.Tiers[1], product.Tiers[0]
	svc := NewProductService(&fakeProductRepo{product: product}, nil)

	catalog, err := svc.GetCatalog(context.Background(), product.Slug)
	if err != nil {
		t.Fatalf("GetCatalog: %v", err)
	}
	if catalog.Tiers[0].Quantity != 100 || catalog.Tiers[1].Quantity != 500 {
		t.Fatalf("tiers not sorted by quantity: %+v", catalog.Tiers)
	}
}
