// Package catalog exposes the read-only product and vendor browsing
// surface. Browsing works anonymously; only cart mutation needs a
// session.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amberfield/storefront-client/internal/gateway"
)

// Product is a catalog entry with display defaults applied.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	ImageURL    string
	Rating      float64
	VendorID    int64
	VendorName  string
	Description string
	Stock       int
}

// Vendor is a marketplace seller.
type Vendor struct {
	ID          int64
	Name        string
	Description string
	Rating      float64
	LogoURL     string
}

const (
	fallbackProductName = "Unknown Product"
	fallbackImageURL    = "https://placehold.co/100x100?text=Product"
)

type catalogGateway interface {
	ListProducts(ctx context.Context) ([]gateway.ProductSummaryPayload, error)
	GetProduct(ctx context.Context, id int64) (*gateway.ProductDetailPayload, error)
	ListVendors(ctx context.Context) ([]gateway.VendorPayload, error)
	GetVendor(ctx context.Context, id int64) (*gateway.VendorPayload, []gateway.ProductSummaryPayload, error)
}

// Service fetches catalog data from the gateway.
type Service struct {
	gw catalogGateway
}

func NewService(gw catalogGateway) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	return &Service{gw: gw}, nil
}

// ListProducts returns the browsable catalog.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	payloads, err := s.gw.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(payloads))
	for _, p := range payloads {
		products = append(products, productFromSummary(p))
	}
	return products, nil
}

// GetProduct returns one product with its detail fields.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	payload, err := s.gw.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product := productFromSummary(payload.ProductSummaryPayload)
	product.Description = payload.Description
	product.Stock = payload.Stock
	return &product, nil
}

// ListVendors returns all marketplace vendors.
func (s *Service) ListVendors(ctx context.Context) ([]Vendor, error) {
	payloads, err := s.gw.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	vendors := make([]Vendor, 0, len(payloads))
	for _, v := range payloads {
		vendors = append(vendors, vendorFromPayload(v))
	}
	return vendors, nil
}

// GetVendor returns one vendor and its products.
func (s *Service) GetVendor(ctx context.Context, id int64) (*Vendor, []Product, error) {
	payload, productPayloads, err := s.gw.GetVendor(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	vendor := vendorFromPayload(*payload)
	products := make([]Product, 0, len(productPayloads))
	for _, p := range productPayloads {
		products = append(products, productFromSummary(p))
	}
	return &vendor, products, nil
}

func productFromSummary(p gateway.ProductSummaryPayload) Product {
	name := p.Name
	if name == "" {
		name = fallbackProductName
	}
	price := decimal.Zero
	if p.Price != nil {
		price = *p.Price
	}
	image := p.MainImagePath
	if image == "" {
		image = fallbackImageURL
	}
	return Product{
		ID:         p.ID,
		Name:       name,
		Price:      price,
		ImageURL:   image,
		Rating:     p.Rating,
		VendorID:   p.VendorID,
		VendorName: p.VendorName,
	}
}

func vendorFromPayload(v gateway.VendorPayload) Vendor {
	return Vendor{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Rating:      v.Rating,
		LogoURL:     v.LogoPath,
	}
}
