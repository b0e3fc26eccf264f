package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/storefront-gate/internal/shop"
	"go.uber.org/zap"
)

// ShopHandler handles the storefront application routes behind the boundary.
type ShopHandler struct {
	catalog     shop.Catalog
	checkout    *shop.CheckoutService
	subscribers shop.SubscriberStore
	answers     *shop.AnswerChecker
	launchAt    time.Time
	logger      *zap.Logger
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(
	catalog shop.Catalog,
	checkout *shop.CheckoutService,
	subscribers shop.SubscriberStore,
	answers *shop.AnswerChecker,
	launchAt time.Time,
	logger *zap.Logger,
) *ShopHandler {
	return &ShopHandler{
		catalog:     catalog,
		checkout:    checkout,
		subscribers: subscribers,
		answers:     answers,
		launchAt:    launchAt,
		logger:      logger,
	}
}

// CreateCheckout validates the cart and returns a checkout URL.
func (h *ShopHandler) CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (*CreateCheckoutResponse, error) {
	url, err := h.checkout.Create(ctx, req.Body.Items)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrEmptyCart),
			errors.Is(err, shop.ErrInvalidQuantity),
			errors.Is(err, shop.ErrUnknownVariant):
			return nil, huma.Error400BadRequest(err.Error())
		default:
			h.logger.Error("failed to create checkout", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create checkout")
		}
	}

	resp := &CreateCheckoutResponse{}
	resp.Body.CheckoutURL = url

	return resp, nil
}

// GetCollection returns the products of the requested collection.
func (h *ShopHandler) GetCollection(ctx context.Context, req *GetCollectionRequest) (*GetCollectionResponse, error) {
	if req.Handle == "" {
		return nil, huma.Error400BadRequest("handle is required")
	}

	collection, err := h.catalog.Collection(ctx, req.Handle)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return nil, huma.Error404NotFound("collection not found")
		}

		h.logger.Error("failed to fetch collection",
			zap.String("handle", req.Handle),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to fetch collection")
	}

	return &GetCollectionResponse{Body: *collection}, nil
}

// Subscribe captures an email/SMS signup.
func (h *ShopHandler) Subscribe(ctx context.Context, req *SubscribeRequest) (*SubscribeResponse, error) {
	if req.Body.Email == "" && req.Body.Phone == "" {
		return nil, huma.Error400BadRequest(shop.ErrMissingContact.Error())
	}

	subscriber := &shop.Subscriber{
		Email:     req.Body.Email,
		Phone:     req.Body.Phone,
		CreatedAt: time.Now(),
	}

	if err := h.subscribers.Save(ctx, subscriber); err != nil {
		h.logger.Error("failed to save subscriber", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save subscription")
	}

	resp := &SubscribeResponse{}
	resp.Body.Success = true

	return resp, nil
}

// SubmitAnswer checks a puzzle answer submission.
func (h *ShopHandler) SubmitAnswer(_ context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if req.Body.QuestionID == "" {
		return nil, huma.Error400BadRequest("questionId is required")
	}

	resp := &SubmitAnswerResponse{}
	resp.Body.Correct = h.answers.Check(req.Body.QuestionID, req.Body.Answer)

	return resp, nil
}

// Countdown reports the launch countdown state.
func (h *ShopHandler) Countdown(_ context.Context, _ *struct{}) (*CountdownResponse, error) {
	now := time.Now()
	remaining := h.launchAt.Sub(now)

	resp := &CountdownResponse{}
	resp.Body.LaunchAt = h.launchAt
	resp.Body.Live = remaining <= 0

	if remaining > 0 {
		resp.Body.RemainingMs = remaining.Milliseconds()
	}

	return resp, nil
}
