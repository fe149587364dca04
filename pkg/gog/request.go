package gog

import (
	"net/url"
	"strconv"
)

// Catalog defaults used when the caller leaves an option unset.
const (
	DefaultLimit = 48
	DefaultOrder = "desc:trending"
)

// CatalogOptions selects one catalog page. Zero fields fall back to the
// client's defaults; no cursor is kept between calls.
type CatalogOptions struct {
	Limit int
	Order string
	// Page is 1-based; 0 omits the parameter and lets the API pick the first page.
	Page int
}

// merge returns o with unset fields taken from def.
func (o CatalogOptions) merge(def CatalogOptions) CatalogOptions {
	if o.Limit <= 0 {
		o.Limit = def.Limit
	}
	if o.Order == "" {
		o.Order = def.Order
	}
	if o.Page < 0 {
		o.Page = 0
	}
	return o
}

func (o CatalogOptions) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("order", o.Order)
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return q
}
