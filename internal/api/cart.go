package api

import (
	"context"
	"fmt"
	"net/http"
)

// CartRemote is the boundary to the server-side cart. Every call is fallible;
// the caller owns retry and consistency policy.
type CartRemote interface {
	FetchCart(ctx context.Context) ([]RemoteCartLine, error)
	AddItem(ctx context.Context, productID uint, productOptionID *uint, quantity int) error
	SetQuantity(ctx context.Context, cartID uint, quantity int) error
	RemoveItem(ctx context.Context, cartID uint) error
}

type cartRemote struct {
	client *Client
}

func NewCartRemote(client *Client) CartRemote {
	return &cartRemote{client: client}
}

type cartListResponse struct {
	Items []RemoteCartLine `json:"items"`
}

type addItemRequest struct {
	ProductID       uint  `json:"product_id"`
	ProductOptionID *uint `json:"product_option_id,omitempty"`
	Quantity        int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (r *cartRemote) FetchCart(ctx context.Context) ([]RemoteCartLine, error) {
	var resp cartListResponse
	if err := r.client.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return resp.Items, nil
}

func (r *cartRemote) AddItem(ctx context.Context, productID uint, productOptionID *uint, quantity int) error {
	req := addItemRequest{
		ProductID:       productID,
		ProductOptionID: productOptionID,
		Quantity:        quantity,
	}
	return r.client.do(ctx, http.MethodPost, "/cart", req, nil)
}

func (r *cartRemote) SetQuantity(ctx context.Context, cartID uint, quantity int) error {
	req := setQuantityRequest{Quantity: quantity}
	path := fmt.Sprintf("/cart/%d", cartID)
	return r.client.do(ctx, http.MethodPost, path, req, nil)
}

func (r *cartRemote) RemoveItem(ctx context.Context, cartID uint) error {
	path := fmt.Sprintf("/cart/%d", cartID)
	return r.client.do(ctx, http.MethodDelete, path, nil, nil)
}
