package gateway

import (
	"context"
	"net/http"
)

// CreateOrderInput carries the checkout form fields to POST /orders. The
// cart reference is implicit: the server consumes the caller's active
// cart.
type CreateOrderInput struct {
	ShippingName         string `json:"shipping_name"`
	ShippingAddressLine1 string `json:"shipping_address_line1"`
	ShippingAddressLine2 string `json:"shipping_address_line2,omitempty"`
	ShippingCity         string `json:"shipping_city"`
	ShippingState        string `json:"shipping_state"`
	ShippingPostalCode   string `json:"shipping_postal_code"`
	ShippingCountry      string `json:"shipping_country"`
	ShippingPhone        string `json:"shipping_phone"`
	PaymentMethod        string `json:"payment_method"`
	Notes                string `json:"notes,omitempty"`
}

// OrderPayload is the order-creation response; only the id matters to
// this client.
type OrderPayload struct {
	ID int64 `json:"id"`
}

// CreateOrder places an order from the current cart. The idempotency key
// protects against double submission on retries.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput, idempotencyKey string) (*OrderPayload, error) {
	req := request{
		method: http.MethodPost,
		path:   "/orders",
		body:   input,
	}
	if idempotencyKey != "" {
		req.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var payload OrderPayload
	if err := c.do(ctx, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
