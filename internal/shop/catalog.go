// Package shop holds the thin storefront domain behind the boundary:
// catalog lookups, checkout session creation, subscriber capture and
// answer checking.
package shop

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates a missing collection or variant.
	ErrNotFound = errors.New("not found")
)

// Product is a purchasable variant within a collection.
type Product struct {
	VariantID string `json:"variantId"`
	Title     string `json:"title"`
	// PriceCents avoids floating point money.
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// Collection groups products under a handle such as "shop" or "lookbook".
type Collection struct {
	Handle   string    `json:"handle"`
	Title    string    `json:"title"`
	Products []Product `json:"products"`
}

// Catalog defines read access to collections and variants.
type Catalog interface {
	Collection(ctx context.Context, handle string) (*Collection, error)
	Variant(ctx context.Context, variantID string) (*Product, error)
}
