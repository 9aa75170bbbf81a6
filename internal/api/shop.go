package api

import (
	"context"
	"fmt"
	"net/http"
)

// ProductResolver resolves a product id to its display snapshot.
type ProductResolver interface {
	FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error)
}

// BreweryDirectory looks up a brewery and its product set by id.
type BreweryDirectory interface {
	FetchBrewery(ctx context.Context, breweryID uint) (*BreweryDetail, error)
}

// ShopRemote combines the read-only shop lookups the client needs.
type ShopRemote interface {
	ProductResolver
	BreweryDirectory
}

type shopRemote struct {
	client *Client
}

func NewShopRemote(client *Client) ShopRemote {
	return &shopRemote{client: client}
}

func (r *shopRemote) FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error) {
	var product ProductSnapshot
	path := fmt.Sprintf("/products/%d", productID)
	if err := r.client.do(ctx, http.MethodGet, path, nil, &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

func (r *shopRemote) FetchBrewery(ctx context.Context, breweryID uint) (*BreweryDetail, error) {
	var detail BreweryDetail
	path := fmt.Sprintf("/breweries/%d", breweryID)
	if err := r.client.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch brewery: %w", err)
	}
	return &detail, nil
}
