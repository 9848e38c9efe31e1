package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amberfield/storefront-client/internal/gateway"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
)

type stubCatalogGateway struct {
	products []gateway.ProductSummaryPayload
	detail   *gateway.ProductDetailPayload
	vendors  []gateway.VendorPayload
	err      error
}

func (s *stubCatalogGateway) ListProducts(ctx context.Context) ([]gateway.ProductSummaryPayload, error) {
	return s.products, s.err
}

func (s *stubCatalogGateway) GetProduct(ctx context.Context, id int64) (*gateway.ProductDetailPayload, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func (s *stubCatalogGateway) ListVendors(ctx context.Context) ([]gateway.VendorPayload, error) {
	return s.vendors, s.err
}

func (s *stubCatalogGateway) GetVendor(ctx context.Context, id int64) (*gateway.VendorPayload, []gateway.ProductSummaryPayload, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return &s.vendors[0], s.products, nil
}

func TestListProductsAppliesDefaults(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	gw := &stubCatalogGateway{products: []gateway.ProductSummaryPayload{
		{ID: 1, Name: "Honey", Price: &price, MainImagePath: "/img/honey.jpg", Rating: 4.5},
		{ID: 2},
	}}
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Honey" || !products[0].Price.Equal(price) {
		t.Fatalf("unexpected product %+v", products[0])
	}
	if products[1].Name != fallbackProductName {
		t.Fatalf("missing name must fall back, got %q", products[1].Name)
	}
	if !products[1].Price.IsZero() {
		t.Fatalf("missing price must default to zero, got %s", products[1].Price)
	}
	if products[1].ImageURL != fallbackImageURL {
		t.Fatalf("missing image must fall back, got %q", products[1].ImageURL)
	}
}

func TestGetProductCarriesDetailFields(t *testing.T) {
	price := decimal.RequireFromString("3.00")
	gw := &stubCatalogGateway{detail: &gateway.ProductDetailPayload{
		ProductSummaryPayload: gateway.ProductSummaryPayload{ID: 9, Name: "Jam", Price: &price},
		Description:           "small batch",
		Stock:                 14,
	}}
	svc, _ := NewService(gw)

	product, err := svc.GetProduct(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Description != "small batch" || product.Stock != 14 {
		t.Fatalf("unexpected detail %+v", product)
	}
}

func TestGetVendorReturnsProducts(t *testing.T) {
	gw := &stubCatalogGateway{
		vendors:  []gateway.VendorPayload{{ID: 5, Name: "Amber Apiary", Rating: 4.8}},
		products: []gateway.ProductSummaryPayload{{ID: 1, Name: "Honey"}},
	}
	svc, _ := NewService(gw)

	vendor, products, err := svc.GetVendor(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vendor.Name != "Amber Apiary" {
		t.Fatalf("unexpected vendor %+v", vendor)
	}
	if len(products) != 1 || products[0].Name != "Honey" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestErrorsPassThrough(t *testing.T) {
	gw := &stubCatalogGateway{err: pkgerrors.New(pkgerrors.CodeNetwork, "down")}
	svc, _ := NewService(gw)

	if _, err := svc.ListProducts(context.Background()); !pkgerrors.HasCode(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), 1); !pkgerrors.HasCode(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
}
