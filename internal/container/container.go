package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/storefront-gate/internal/audit"
	auditstore "github.com/serroba/storefront-gate/internal/audit/store"
	"github.com/serroba/storefront-gate/internal/auth"
	"github.com/serroba/storefront-gate/internal/boundary"
	"github.com/serroba/storefront-gate/internal/handlers"
	"github.com/serroba/storefront-gate/internal/health"
	"github.com/serroba/storefront-gate/internal/messaging"
	"github.com/serroba/storefront-gate/internal/middleware"
	"github.com/serroba/storefront-gate/internal/ratelimit"
	"github.com/serroba/storefront-gate/internal/shop"
	"github.com/serroba/storefront-gate/internal/store"
	"go.uber.org/zap"
)

const (
	checkoutTokenLength = 21
	requestIDLength     = 12
	checkoutSessionTTL  = 30 * time.Minute
	auditConsumerGroup  = "audit"
)

// Options holds the service configuration. Secrets have no defaults: an
// absent shop password leaves the gate open, and a password without a
// session secret fails closed.
type Options struct {
	Port          int    `default:"8888"           help:"Port to listen on"                                                     short:"p"`
	RedisAddr     string `default:"localhost:6379" help:"Redis server address"                                                  short:"r"`
	PostgresDSN   string `help:"Postgres DSN for the audit store (optional)"`
	ShopPassword  string `help:"Password protecting the shop collection and checkout; empty leaves the gate open"`
	SessionSecret string `help:"Secret keying session cookie tokens; required when a shop password is set"`
	SessionMaxAge int    `default:"0"              help:"Session cookie Max-Age in seconds (0 issues a browser-session cookie)"`
	SecureCookies bool   `default:"false"          help:"Mark session cookies Secure"`
	LaunchAt      string `help:"RFC3339 launch time for the countdown endpoint"`
	FailMode      string `default:"open"           enum:"open,closed"                                                           help:"Rate limiter behavior when the store is unavailable"`
	LogFormat     string `default:"console"        enum:"console,json"                                                          help:"Log output format"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the audit database pool. The pool is nil when
// no DSN is configured; consumers fall back to the logging store.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.PostgresDSN == "" {
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return pgxpool.New(ctx, opts.PostgresDSN)
	})
}

// RateLimitPackage provides the Redis-backed sliding window limiter with
// the production bucket policy.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.BucketLimiter, error) {
		client := do.MustInvoke[*redis.Client](i)
		limitStore := store.NewRateLimitRedisStore(client)

		return ratelimit.NewBucketLimiter(limitStore, ratelimit.DefaultPolicy()), nil
	})
}

// AuthPackage provides the password gate.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.Gate, error) {
		opts := do.MustInvoke[*Options](i)

		return auth.NewGate(auth.Config{
			Password: opts.ShopPassword,
			Secret:   opts.SessionSecret,
			Secure:   opts.SecureCookies,
			MaxAge:   opts.SessionMaxAge,
		}), nil
	})
}

// PublisherGroupPackage provides the audit event publisher and the typed
// publish functions used by the server.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.AuthAttemptEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.AuthAttemptEvent](group.Publisher(), audit.TopicAuthAttempt), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.RateLimitExceededEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[audit.RateLimitExceededEvent](group.Publisher(), audit.TopicRateLimited), nil
	})
}

// ShopPackage provides the catalog, checkout service, subscriber store and
// answer checker.
func ShopPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shop.Catalog, error) {
		return store.NewMemoryCatalog(seedCollections()...), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shop.CheckoutService, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)
		catalog := do.MustInvoke[shop.Catalog](i)

		generator, err := nanoid.Standard(checkoutTokenLength)
		if err != nil {
			return nil, err
		}

		baseURL := fmt.Sprintf("http://localhost:%d", opts.Port)

		return shop.NewCheckoutService(
			catalog,
			store.NewRedisCheckoutStore(client),
			generator,
			baseURL,
			checkoutSessionTTL,
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (shop.SubscriberStore, error) {
		client := do.MustInvoke[*redis.Client](i)

		return store.NewRedisSubscriberStore(client), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shop.AnswerChecker, error) {
		return shop.NewAnswerChecker(seedAnswers()), nil
	})
}

// HTTPPackage provides the chi router and the huma API with the boundary
// middleware and all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		gate := do.MustInvoke[*auth.Gate](i)
		limiter := do.MustInvoke[*ratelimit.BucketLimiter](i)
		publishAttempt := do.MustInvoke[messaging.Publish[audit.AuthAttemptEvent]](i)
		publishRateLimited := do.MustInvoke[messaging.Publish[audit.RateLimitExceededEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("Storefront Gate", "1.0.0"))

		requestID, err := nanoid.Standard(requestIDLength)
		if err != nil {
			return nil, err
		}

		api.UseMiddleware(middleware.RequestMeta(api, requestID))
		api.UseMiddleware(middleware.Boundary(api, middleware.BoundaryConfig{
			Table:              boundary.DefaultTable(),
			Limiter:            limiter,
			Gate:               gate,
			FailMode:           ratelimit.ParseFailMode(opts.FailMode),
			Logger:             logger,
			PublishRateLimited: publishRateLimited,
		}))

		launchAt, err := parseLaunchAt(opts.LaunchAt)
		if err != nil {
			return nil, err
		}

		authHandler := handlers.NewAuthHandler(gate, publishAttempt, logger)
		shopHandler := handlers.NewShopHandler(
			do.MustInvoke[shop.Catalog](i),
			do.MustInvoke[*shop.CheckoutService](i),
			do.MustInvoke[shop.SubscriberStore](i),
			do.MustInvoke[*shop.AnswerChecker](i),
			launchAt,
			logger,
		)

		handlers.RegisterRoutes(api, authHandler, shopHandler)

		var postgresChecker health.Checker
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			postgresChecker = health.NewPostgresChecker(pool)
		}

		redisChecker := health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		health.RegisterRoutes(api, health.NewHandler(redisChecker, postgresChecker))

		return api, nil
	})
}

// ConsumerGroupPackage provides the audit store and the consumer group for
// the consumer binary.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (audit.Store, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		pool := do.MustInvoke[*pgxpool.Pool](i)
		if pool == nil {
			return auditstore.NewNoop(logger), nil
		}

		auditStore := store.NewAuditPostgresStore(pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return auditStore, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)
		auditStore := do.MustInvoke[audit.Store](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: auditConsumerGroup,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, audit.TopicAuthAttempt, auditStore.SaveAuthAttempt, logger))
		group.Add(messaging.NewConsumer(subscriber, audit.TopicRateLimited, auditStore.SaveRateLimitExceeded, logger))

		return group, nil
	})
}

func parseLaunchAt(value string) (time.Time, error) {
	if value == "" {
		// No launch time configured means the drop is already live.
		return time.Now(), nil
	}

	launchAt, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid launch time %q: %w", value, err)
	}

	return launchAt, nil
}

// seedCollections is the built-in catalog used until a real product feed
// is wired in.
func seedCollections() []*shop.Collection {
	return []*shop.Collection{
		{
			Handle: "shop",
			Title:  "The Drop",
			Products: []shop.Product{
				{VariantID: "variant-tee-black", Title: "Logo Tee (Black)", PriceCents: 3500},
				{VariantID: "variant-tee-white", Title: "Logo Tee (White)", PriceCents: 3500},
				{VariantID: "variant-hoodie", Title: "Zip Hoodie", PriceCents: 8500},
				{VariantID: "variant-cap", Title: "Dad Cap", PriceCents: 2800},
			},
		},
		{
			Handle: "lookbook",
			Title:  "Lookbook",
			Products: []shop.Product{
				{VariantID: "variant-poster", Title: "Campaign Poster", PriceCents: 1500},
			},
		},
	}
}

func seedAnswers() map[string]string {
	return map[string]string{
		"q1": "midnight",
		"q2": "velvet",
		"q3": "static",
	}
}
