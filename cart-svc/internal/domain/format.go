package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultFoodImage = "images/default-food.svg"

func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}

// ResolveImageURL turns a stored image reference into a URL the browser can
// load. apiBaseURL is the backend API root, e.g. http://host/api.
func ResolveImageURL(apiBaseURL, ref string) string {
	if ref == "" {
		return DefaultFoodImage
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	backend := strings.Replace(apiBaseURL, "/api", "", 1)
	if strings.HasPrefix(ref, "/") {
		return backend + ref
	}
	return backend + "/media/" + ref
}
