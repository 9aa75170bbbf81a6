package api

// ProductSnapshot is the denormalized product display data carried inside a
// cart line and inside brewery detail responses.
type ProductSnapshot struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Brewery  string  `json:"brewery"`
	Price    float64 `json:"price"`
	Volume   string  `json:"volume"` // 용량 (예: 750ml)
	ImageURL string  `json:"image_url"`
}

type Brewery struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// BreweryDetail is a brewery together with its product set, preloaded so a
// deep link can render without a second round trip.
type BreweryDetail struct {
	Brewery
	Products []ProductSnapshot `json:"products"`
}

// RemoteCartLine is one cart entry as the server returns it. The product is
// referenced by id only; the client resolves the snapshot separately.
type RemoteCartLine struct {
	CartID          uint  `json:"id"`
	ProductID       uint  `json:"product_id"`
	ProductOptionID *uint `json:"product_option_id,omitempty"`
	Quantity        int   `json:"quantity"`
}
