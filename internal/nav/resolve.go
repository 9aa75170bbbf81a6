package nav

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hanjan/hanjan-client/internal/api"
	"github.com/hanjan/hanjan-client/pkg/logger"
)

// Query parameter names making up the navigation contract.
const (
	ParamView       = "view"
	ParamBrewery    = "brewery"
	ParamProduct    = "product"
	ParamSearch     = "search"
	ParamSearchType = "searchType"
	ParamCategory   = "category"
)

// Resolve derives the active view from URL query parameters. Precedence,
// first match wins:
//
//  1. product param present: shop view with the product selected (product
//     detail is a sub-state of shop, not a top-level view).
//  2. brewery param present: brewery-detail when the lookup resolves, with
//     the brewery and its products preloaded; brewery list otherwise, so a
//     dangling deep link never renders a broken page.
//  3. recognized view param: adopted verbatim, except that a search whose
//     type disagrees with the requested view overrides the view to match
//     the search type.
//  4. default: home.
//
// Malformed parameters and lookup failures degrade to the same defaults;
// Resolve always returns a valid State.
func Resolve(ctx context.Context, query url.Values, breweries api.BreweryDirectory) State {
	if productID, ok := uintParam(query, ParamProduct); ok {
		return State{
			View:      ViewShop,
			ProductID: productID,
			Category:  query.Get(ParamCategory),
		}
	}

	if breweryID, ok := uintParam(query, ParamBrewery); ok {
		return resolveBrewery(ctx, breweryID, breweries)
	}

	if view := View(query.Get(ParamView)); view.Valid() {
		state := State{
			View:       view,
			Search:     query.Get(ParamSearch),
			SearchType: query.Get(ParamSearchType),
			Category:   query.Get(ParamCategory),
		}
		return applySearchOverride(state)
	}

	return State{View: ViewHome}
}

func resolveBrewery(ctx context.Context, breweryID uint, breweries api.BreweryDirectory) State {
	if breweries != nil {
		detail, err := breweries.FetchBrewery(ctx, breweryID)
		if err == nil && detail != nil {
			return State{
				View:            ViewBreweryDetail,
				Brewery:         &detail.Brewery,
				BreweryProducts: detail.Products,
			}
		}
		if err != nil {
			logger.Warn("Brewery deep link did not resolve, falling back to list", map[string]interface{}{
				"brewery_id": breweryID,
				"error":      err.Error(),
			})
		}
	}
	return State{View: ViewBrewery}
}

// applySearchOverride corrects the view when an accompanying search has a
// type that disagrees with it, e.g. a product-typed search landing on the
// brewery view.
func applySearchOverride(state State) State {
	if state.Search == "" {
		return state
	}
	switch state.SearchType {
	case SearchTypeProduct:
		if state.View == ViewBrewery {
			state.View = ViewShop
		}
	case SearchTypeBrewery:
		if state.View == ViewShop {
			state.View = ViewBrewery
		}
	}
	return state
}

func uintParam(query url.Values, name string) (uint, bool) {
	raw := query.Get(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
