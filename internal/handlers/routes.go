package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the gate and storefront routes. Rate limiting
// and access gating are not configured here: the boundary middleware owns
// that dispatch table.
func RegisterRoutes(api huma.API, authHandler *AuthHandler, shopHandler *ShopHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-password",
		Method:      http.MethodPost,
		Path:        "/api/password",
		Summary:     "Submit the shop password",
		Description: "Verifies the password and issues the session cookie granting access to gated resources.",
		Tags:        []string{"Auth"},
	}, authHandler.SubmitPassword)

	huma.Register(api, huma.Operation{
		OperationID: "auth-status",
		Method:      http.MethodGet,
		Path:        "/api/auth/status",
		Summary:     "Report authentication status",
		Tags:        []string{"Auth"},
	}, authHandler.AuthStatus)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodDelete,
		Path:        "/api/logout",
		Summary:     "Clear the session cookie",
		Tags:        []string{"Auth"},
	}, authHandler.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "create-checkout",
		Method:      http.MethodPost,
		Path:        "/api/checkout",
		Summary:     "Create a checkout",
		Description: "Validates the cart against the catalog and returns a checkout URL.",
		Tags:        []string{"Shop"},
	}, shopHandler.CreateCheckout)

	huma.Register(api, huma.Operation{
		OperationID: "get-collection",
		Method:      http.MethodGet,
		Path:        "/api/collections",
		Summary:     "Fetch a collection",
		Tags:        []string{"Shop"},
	}, shopHandler.GetCollection)

	huma.Register(api, huma.Operation{
		OperationID: "subscribe",
		Method:      http.MethodPost,
		Path:        "/api/subscribe",
		Summary:     "Capture an email/SMS signup",
		Tags:        []string{"Shop"},
	}, shopHandler.Subscribe)

	huma.Register(api, huma.Operation{
		OperationID: "submit-answer",
		Method:      http.MethodPost,
		Path:        "/api/answers",
		Summary:     "Submit a puzzle answer",
		Tags:        []string{"Shop"},
	}, shopHandler.SubmitAnswer)

	huma.Register(api, huma.Operation{
		OperationID: "countdown",
		Method:      http.MethodGet,
		Path:        "/api/countdown",
		Summary:     "Live launch countdown",
		Tags:        []string{"Shop"},
	}, shopHandler.Countdown)
}
