package cart

import "github.com/hanjan/hanjan-client/internal/api"

// Line is one purchasable entry in the cart: a server-assigned identity plus
// a resolved product snapshot. Quantity is always in [1, MaxQuantity]; a line
// that would drop below 1 is removed instead.
type Line struct {
	CartID           uint                `json:"cart_id"`
	Product          api.ProductSnapshot `json:"product"`
	SelectedOptionID *uint               `json:"selected_option_id,omitempty"`
	Quantity         int                 `json:"quantity"`
	MaxQuantity      int                 `json:"max_quantity"`
}
