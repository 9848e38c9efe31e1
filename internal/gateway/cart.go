package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// CartItemPayload mirrors one cart line as the API returns it. Product is
// a pointer on purpose: the API omits it when the product has been
// deleted since the item was added.
type CartItemPayload struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *ProductPayload `json:"product"`
}

// ProductPayload is the product sub-object embedded in cart items.
// Price is a pointer because the API sends it as either a JSON number or
// a quoted string, and sometimes not at all.
type ProductPayload struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	MainImagePath string           `json:"main_image_path"`
}

// CartPayload is the wire shape of GET /cart.
type CartPayload struct {
	Items   []CartItemPayload `json:"items"`
	Total   *decimal.Decimal  `json:"total,omitempty"`
	TaxRate *decimal.Decimal  `json:"tax_rate,omitempty"`
}

// FetchCart loads the authenticated user's cart.
func (c *Client) FetchCart(ctx context.Context) (*CartPayload, error) {
	var payload CartPayload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/cart"}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddItem puts a product in the cart. The server assigns the item id, so
// callers re-fetch the cart afterwards.
func (c *Client) AddItem(ctx context.Context, productID int64, quantity int) error {
	body := addItemRequest{ProductID: productID, Quantity: quantity}
	return c.do(ctx, request{method: http.MethodPost, path: "/cart/add", body: body}, nil)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItemQuantity sets the quantity of an existing cart item.
func (c *Client) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	path := fmt.Sprintf("/cart/items/%d", itemID)
	return c.do(ctx, request{method: http.MethodPut, path: path, body: updateQuantityRequest{Quantity: quantity}}, nil)
}

// RemoveItem deletes a single cart item.
func (c *Client) RemoveItem(ctx context.Context, itemID int64) error {
	path := fmt.Sprintf("/cart/items/%d", itemID)
	return c.do(ctx, request{method: http.MethodDelete, path: path}, nil)
}

// ClearCart empties the cart server-side.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/cart/clear"}, nil)
}
