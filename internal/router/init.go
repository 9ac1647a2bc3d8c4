package router

import (
	"github.com/oksasatya/pixel-news/config"
	"github.com/oksasatya/pixel-news/internal/application"
	"github.com/oksasatya/pixel-news/internal/container"
	"github.com/oksasatya/pixel-news/internal/domain/policy"
	"github.com/oksasatya/pixel-news/internal/infrastructure/payment"
	pginfra "github.com/oksasatya/pixel-news/internal/infrastructure/postgres"
	"github.com/oksasatya/pixel-news/internal/infrastructure/search"
	"github.com/oksasatya/pixel-news/internal/infrastructure/storage"
	handlers "github.com/oksasatya/pixel-news/internal/interface/http"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/internal/router/modules"
	"github.com/oksasatya/pixel-news/pkg/helpers"
)

// Services are the application services behind the HTTP modules.
type Services struct {
	Articles   *application.ArticleService
	Users      *application.UserService
	Auth       *application.AuthService
	Publishers *application.PublisherService
	Analytics  *application.AnalyticsService
	Payments   *application.PaymentService
	Ledger     *application.LedgerService
	Roles      *application.RoleResolver
}

func policyOptions(cfg *config.Config) policy.Options {
	return policy.Options{
		PremiumTeaser:    cfg.PremiumTeaser,
		CreatorMayDelete: cfg.ArticleDeletePolicy == config.DeletePolicyAdminOrCreator,
	}
}

// BuildServices wires repositories and adapters into services. Optional
// adapters are only set when their client exists, so services see a nil interface.
func BuildServices(c *container.Container) *Services {
	cfg, logger := c.Config, c.Logger
	pe := policy.NewEngine(policyOptions(cfg))

	users := pginfra.NewUserRepository(c.Pool, cfg.DBQueryTimeout)
	articles := pginfra.NewArticleRepository(c.Pool, cfg.DBQueryTimeout)
	publishers := pginfra.NewPublisherRepository(c.Pool, cfg.DBQueryTimeout)
	subs := pginfra.NewSubscriptionRepository(c.Pool, cfg.DBQueryTimeout)
	analytics := pginfra.NewAnalyticsRepository(c.Pool, cfg.DBQueryTimeout)

	var index application.ArticleIndex
	if c.ES != nil {
		index = search.NewArticleIndex(c.ES, cfg.ESArticlesIndex)
	}
	var images application.ImageStore
	if c.GCS != nil {
		images = storage.NewImageStore(c.GCS, cfg.GCSBucket)
	}
	var receipts application.ReceiptPublisher
	if c.Receipts != nil {
		receipts = c.Receipts
	}
	var gateway application.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		helpers.LogWarn(logger, "stripe key missing; payment intents disabled", nil, nil)
	}

	roles := application.NewRoleResolver(users, c.Redis, cfg.RoleCacheTTL, logger)
	return &Services{
		Articles:   application.NewArticleService(articles, publishers, pe, index, images, logger),
		Users:      application.NewUserService(users, analytics, roles, pe, logger),
		Auth:       application.NewAuthService(users, c.JWT, logger),
		Publishers: application.NewPublisherService(publishers, pe, logger),
		Analytics:  application.NewAnalyticsService(analytics, pe, logger),
		Payments:   application.NewPaymentService(gateway, cfg.PaymentCurrency, cfg.PaymentTimeout, logger),
		Ledger:     application.NewLedgerService(subs, users, roles, pe, receipts, logger),
		Roles:      roles,
	}
}

// InitModules registers every feature module on the registry.
func InitModules(r *Registry, c *container.Container, svc *Services) {
	cfg := c.Config
	auth := middleware.NewAuthenticator(c.JWT, svc.Roles, cfg.BearerAuth())
	limits := modules.Limits{Redis: c.Redis, Enabled: cfg.RateLimitEnabled}

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure), cfg.BearerAuth()), auth, limits))
	r.Add(modules.NewArticleModule(handlers.NewArticleHandler(svc.Articles), auth, limits))
	r.Add(modules.NewPublisherModule(handlers.NewPublisherHandler(svc.Publishers), auth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, svc.Analytics), auth, limits))
	r.Add(modules.NewSubscriptionModule(handlers.NewSubscriptionHandler(svc.Ledger, svc.Payments), auth, limits))
	r.Add(modules.NewAdminModule(handlers.NewAnalyticsHandler(svc.Analytics), auth))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limits))
	}
}
