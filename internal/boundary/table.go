// Package boundary defines the declarative dispatch table evaluated for
// every inbound request before application routes run. It maps
// (method, path, query) to a rate limit bucket and an auth gate
// requirement, independently of the HTTP layer.
package boundary

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/serroba/storefront-gate/internal/ratelimit"
)

// BucketRule binds an exact method+path to a rate limit bucket.
// Exempt rules explicitly opt an endpoint out of the general read limit.
type BucketRule struct {
	Method string
	Path   string
	Bucket ratelimit.Bucket
	Exempt bool
}

// GateRule marks a path as requiring an authenticated session. When Query
// is set, the gate only applies if the named query parameter equals Value.
type GateRule struct {
	Path  string
	Query string
	Value string
}

// Route is the dispatch result for a single request.
type Route struct {
	Bucket  ratelimit.Bucket
	Limited bool
	Gated   bool
}

// Table is the ordered dispatch table. Paths outside APIPrefix are never
// inspected, so static assets and non-API routes pass through untouched.
type Table struct {
	APIPrefix string
	Buckets   []BucketRule
	Gates     []GateRule
}

// DefaultTable returns the production dispatch table.
func DefaultTable() Table {
	return Table{
		APIPrefix: "/api/",
		Buckets: []BucketRule{
			{Method: http.MethodPost, Path: "/api/checkout", Bucket: ratelimit.BucketCheckout},
			{Method: http.MethodPost, Path: "/api/subscribe", Bucket: ratelimit.BucketForm},
			{Method: http.MethodPost, Path: "/api/answers", Bucket: ratelimit.BucketForm},
			// Countdown is polled at high frequency by every visitor;
			// counting it would starve the general budget.
			{Method: http.MethodGet, Path: "/api/countdown", Exempt: true},
		},
		Gates: []GateRule{
			{Path: "/api/checkout"},
			{Path: "/api/collections", Query: "handle", Value: "shop"},
		},
	}
}

// Match resolves the route for a request. Bucket rules are evaluated in
// order and the first match wins; reads under the API prefix that match no
// rule fall back to the general bucket. The gate requirement is resolved
// independently of rate limiting.
func (t Table) Match(method, path string, query url.Values) Route {
	var route Route

	if !strings.HasPrefix(path, t.APIPrefix) {
		return route
	}

	matched := false

	for _, rule := range t.Buckets {
		if rule.Method == method && rule.Path == path {
			matched = true

			if !rule.Exempt {
				route.Bucket = rule.Bucket
				route.Limited = true
			}

			break
		}
	}

	if !matched && isRead(method) {
		route.Bucket = ratelimit.BucketGeneral
		route.Limited = true
	}

	for _, rule := range t.Gates {
		if rule.Path != path {
			continue
		}

		if rule.Query == "" || query.Get(rule.Query) == rule.Value {
			route.Gated = true

			break
		}
	}

	return route
}

func isRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
