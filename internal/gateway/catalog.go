package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ProductSummaryPayload is one entry of GET /products.
type ProductSummaryPayload struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	MainImagePath string           `json:"main_image_path"`
	Rating        float64          `json:"rating"`
	VendorID      int64            `json:"vendor_id"`
	VendorName    string           `json:"vendor_name"`
}

// ProductDetailPayload is the response of GET /products/{id}.
type ProductDetailPayload struct {
	ProductSummaryPayload
	Description string `json:"description"`
	Stock       int    `json:"stock"`
}

type productListPayload struct {
	Products []ProductSummaryPayload `json:"products"`
}

// ListProducts fetches the browsable product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]ProductSummaryPayload, error) {
	var payload productListPayload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products"}, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*ProductDetailPayload, error) {
	var payload ProductDetailPayload
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// VendorPayload is one marketplace vendor.
type VendorPayload struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	LogoPath    string  `json:"logo_path"`
}

type vendorListPayload struct {
	Vendors []VendorPayload `json:"vendors"`
}

// ListVendors fetches all vendors.
func (c *Client) ListVendors(ctx context.Context) ([]VendorPayload, error) {
	var payload vendorListPayload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/vendors"}, &payload); err != nil {
		return nil, err
	}
	return payload.Vendors, nil
}

// GetVendor fetches a single vendor with its products.
func (c *Client) GetVendor(ctx context.Context, id int64) (*VendorPayload, []ProductSummaryPayload, error) {
	var payload struct {
		VendorPayload
		Products []ProductSummaryPayload `json:"products"`
	}
	path := fmt.Sprintf("/vendors/%d", id)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &payload); err != nil {
		return nil, nil, err
	}
	return &payload.VendorPayload, payload.Products, nil
}
