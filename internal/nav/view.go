package nav

import (
	"github.com/hanjan/hanjan-client/internal/api"
)

// View identifies one top-level screen. The whole navigation contract lives
// in URL query parameters; there is no path-based routing.
type View string

const (
	ViewHome          View = "home"
	ViewAbout         View = "about"
	ViewBrewery       View = "brewery"
	ViewShop          View = "shop"
	ViewCommunity     View = "community"
	ViewLogin         View = "login"
	ViewBreweryDetail View = "brewery-detail"
	ViewProductDetail View = "product-detail"
	ViewCart          View = "cart"
)

// Valid reports whether v is one of the named views.
func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewAbout, ViewBrewery, ViewShop, ViewCommunity,
		ViewLogin, ViewBreweryDetail, ViewProductDetail, ViewCart:
		return true
	}
	return false
}

// Search type values carried in the searchType query parameter.
const (
	SearchTypeProduct = "product"
	SearchTypeBrewery = "brewery"
)

// State is the resolved view plus its selection data. Exactly one view is
// active; selection fields are populated only when the view requires them.
// Derived fresh from the URL on every navigation signal, never persisted.
type State struct {
	View            View
	Brewery         *api.Brewery
	BreweryProducts []api.ProductSnapshot
	ProductID       uint
	Search          string
	SearchType      string
	Category        string
}
