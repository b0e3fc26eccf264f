package shop

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyCart indicates a checkout request without any lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity indicates a line with a non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrUnknownVariant indicates a line referencing a variant the catalog
	// does not know.
	ErrUnknownVariant = errors.New("unknown variant")
)

// CheckoutLine is one cart entry in a checkout request.
type CheckoutLine struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutSession is the server-side state behind a checkout URL.
type CheckoutSession struct {
	Token     string         `json:"token"`
	Lines     []CheckoutLine `json:"lines"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CheckoutStore persists checkout sessions until they expire.
type CheckoutStore interface {
	Save(ctx context.Context, session *CheckoutSession, ttl time.Duration) error
}

// TokenGenerator produces opaque checkout tokens.
type TokenGenerator func() string

// CheckoutService validates carts and creates checkout sessions.
type CheckoutService struct {
	catalog       Catalog
	store         CheckoutStore
	generateToken TokenGenerator
	baseURL       string
	ttl           time.Duration
}

// NewCheckoutService creates a checkout service with an injected token
// generator.
func NewCheckoutService(
	catalog Catalog,
	store CheckoutStore,
	generator TokenGenerator,
	baseURL string,
	ttl time.Duration,
) *CheckoutService {
	return &CheckoutService{
		catalog:       catalog,
		store:         store,
		generateToken: generator,
		baseURL:       baseURL,
		ttl:           ttl,
	}
}

// Create validates the cart against the catalog, persists a session and
// returns the checkout URL.
func (s *CheckoutService) Create(ctx context.Context, lines []CheckoutLine) (string, error) {
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return "", ErrInvalidQuantity
		}

		if _, err := s.catalog.Variant(ctx, line.VariantID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", fmt.Errorf("%w: %s", ErrUnknownVariant, line.VariantID)
			}

			return "", err
		}
	}

	session := &CheckoutSession{
		Token:     s.generateToken(),
		Lines:     lines,
		CreatedAt: time.Now(),
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/checkout/%s", s.baseURL, session.Token), nil
}
