package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/storefront-gate/internal/shop"
)

// MemoryCatalog is an in-memory implementation of shop.Catalog, seeded at
// construction.
type MemoryCatalog struct {
	mu          sync.RWMutex
	collections map[string]*shop.Collection
	variants    map[string]*shop.Product
}

// NewMemoryCatalog creates a catalog from the given collections.
func NewMemoryCatalog(collections ...*shop.Collection) *MemoryCatalog {
	c := &MemoryCatalog{
		collections: make(map[string]*shop.Collection),
		variants:    make(map[string]*shop.Product),
	}

	for _, collection := range collections {
		c.collections[collection.Handle] = collection

		for i := range collection.Products {
			product := &collection.Products[i]
			c.variants[product.VariantID] = product
		}
	}

	return c
}

func (c *MemoryCatalog) Collection(_ context.Context, handle string) (*shop.Collection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	collection, ok := c.collections[handle]
	if !ok {
		return nil, shop.ErrNotFound
	}

	return collection, nil
}

func (c *MemoryCatalog) Variant(_ context.Context, variantID string) (*shop.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.variants[variantID]
	if !ok {
		return nil, shop.ErrNotFound
	}

	return product, nil
}

// MemoryCheckoutStore is an in-memory implementation of shop.CheckoutStore.
type MemoryCheckoutStore struct {
	mu       sync.RWMutex
	sessions map[string]*shop.CheckoutSession
}

// NewMemoryCheckoutStore creates a new in-memory checkout store.
func NewMemoryCheckoutStore() *MemoryCheckoutStore {
	return &MemoryCheckoutStore{
		sessions: make(map[string]*shop.CheckoutSession),
	}
}

func (m *MemoryCheckoutStore) Save(_ context.Context, session *shop.CheckoutSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.Token] = session

	return nil
}

// Get retrieves a stored session, for tests.
func (m *MemoryCheckoutStore) Get(token string) (*shop.CheckoutSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[token]

	return session, ok
}

// MemorySubscriberStore is an in-memory implementation of
// shop.SubscriberStore.
type MemorySubscriberStore struct {
	mu          sync.Mutex
	subscribers []*shop.Subscriber
}

// NewMemorySubscriberStore creates a new in-memory subscriber store.
func NewMemorySubscriberStore() *MemorySubscriberStore {
	return &MemorySubscriberStore{}
}

func (m *MemorySubscriberStore) Save(_ context.Context, subscriber *shop.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscribers = append(m.subscribers, subscriber)

	return nil
}

// All returns the captured subscribers, for tests.
func (m *MemorySubscriberStore) All() []*shop.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*shop.Subscriber(nil), m.subscribers...)
}

var (
	_ shop.Catalog         = (*MemoryCatalog)(nil)
	_ shop.CheckoutStore   = (*MemoryCheckoutStore)(nil)
	_ shop.SubscriberStore = (*MemorySubscriberStore)(nil)
)
