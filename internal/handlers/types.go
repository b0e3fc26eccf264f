package handlers

import (
	"net/http"
	"time"

	"github.com/serroba/storefront-gate/internal/shop"
)

// SubmitPasswordRequest carries the raw password submission body. The body
// is parsed by hand so malformed JSON maps to a generic 400.
type SubmitPasswordRequest struct {
	RawBody []byte
}

// SubmitPasswordResponse reports success and sets the session cookie.
type SubmitPasswordResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

// AuthStatusRequest reads the session cookie, if present.
type AuthStatusRequest struct {
	Session string `cookie:"shop_session"`
}

// AuthStatusResponse reports the caller's gate state.
type AuthStatusResponse struct {
	Body struct {
		IsAuthenticated  bool `json:"isAuthenticated"`
		RequiresPassword bool `json:"requiresPassword"`
	}
}

// LogoutResponse clears the session cookie.
type LogoutResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

// CreateCheckoutRequest is the request body for creating a checkout.
type CreateCheckoutRequest struct {
	Body struct {
		Items []shop.CheckoutLine `doc:"Cart lines to check out" json:"items"`
	}
}

// CreateCheckoutResponse carries the URL the client is redirected to.
type CreateCheckoutResponse struct {
	Body struct {
		CheckoutURL string `doc:"Checkout URL" json:"checkoutUrl"`
	}
}

// GetCollectionRequest selects a collection by handle.
type GetCollectionRequest struct {
	Handle string `doc:"Collection handle" example:"lookbook" query:"handle"`
}

// GetCollectionResponse returns the collection's product list.
type GetCollectionResponse struct {
	Body shop.Collection
}

// SubscribeRequest captures an email or SMS signup.
type SubscribeRequest struct {
	Body struct {
		Email string `doc:"Email address" json:"email,omitempty"`
		Phone string `doc:"Phone number"  json:"phone,omitempty"`
	}
}

// SubscribeResponse acknowledges the signup.
type SubscribeResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// SubmitAnswerRequest is a puzzle answer submission.
type SubmitAnswerRequest struct {
	Body struct {
		QuestionID string `doc:"Question identifier" json:"questionId"`
		Answer     string `doc:"Submitted answer"    json:"answer"`
	}
}

// SubmitAnswerResponse reports whether the answer was correct.
type SubmitAnswerResponse struct {
	Body struct {
		Correct bool `json:"correct"`
	}
}

// CountdownResponse is the live countdown state polled by every visitor.
type CountdownResponse struct {
	Body struct {
		LaunchAt    time.Time `json:"launchAt"`
		RemainingMs int64     `json:"remainingMs"`
		Live        bool      `json:"live"`
	}
}
