package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/wichananm65/xinchao-storefront/internal/admin"
	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/catalog"
	"github.com/wichananm65/xinchao-storefront/internal/concierge"
	"github.com/wichananm65/xinchao-storefront/internal/config"
	"github.com/wichananm65/xinchao-storefront/internal/database"
	"github.com/wichananm65/xinchao-storefront/internal/feed"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
	"github.com/wichananm65/xinchao-storefront/internal/logger"
	"github.com/wichananm65/xinchao-storefront/internal/metrics"
	"github.com/wichananm65/xinchao-storefront/internal/persistence"
	"github.com/wichananm65/xinchao-storefront/internal/transcript"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

// server is the wired storefront: the HTTP app plus the workers it depends on.
type server struct {
	app     *fiber.App
	poller  *catalog.Poller
	hub     *feed.Hub
	chats   *concierge.Manager
	closers []io.Closer
}

func (s *server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.poller.Run(ctx) })
	g.Go(func() error { return srv.hub.Run(ctx, srv.poller.Subscribe()) })
	g.Go(func() error { return srv.chats.Run(ctx) })
	g.Go(func() error {
		log.Info("storefront listening", zap.String("addr", cfg.Addr))
		return srv.app.Listen(cfg.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newServer wires every component. Only configuration errors fail here: a
// configured remote store that cannot be reached is recorded and reads fall
// back to the local store until it answers.
func newServer(ctx context.Context, cfg config.Config, log *zap.Logger) (*server, error) {
	srv := &server{}
	m := metrics.New()
	rec := apperr.NewLogRecorder(log, m.Registry)

	local, err := openLocalStore(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := local.(io.Closer); ok {
		srv.closers = append(srv.closers, c)
	}

	var (
		productRemote    persistence.Remote[catalog.Item]
		transcriptRemote persistence.Remote[transcript.Transcript]
	)
	if cfg.RemoteConfigured() {
		db, err := database.Open(cfg.RemoteStoreURL, cfg.RemoteStoreKey)
		if err != nil {
			srv.Close()
			return nil, err
		}
		srv.closers = append(srv.closers, db)

		schema := database.NewSchema(db)
		if err := schema.Ensure(ctx); err != nil {
			rec.Record(ctx, apperr.New(apperr.RemoteUnavailable, "ensure schema", "remote", err))
		}
		productRemote = persistence.Guard[catalog.Item](catalog.NewPostgresRepository(db), schema.Ensure)
		transcriptRemote = persistence.Guard[transcript.Transcript](transcript.NewPostgresRepository(db), schema.Ensure)
		log.Info("remote store configured")
	} else {
		log.Info("remote store not configured, using the local store only", zap.String("local_store", cfg.LocalStore))
	}

	catalogService := catalog.NewService(persistence.New(productRemote, local, rec, catalog.StoreOptions()))
	transcriptService := transcript.NewService(persistence.New(transcriptRemote, local, rec, transcript.StoreOptions()))
	srv.poller = catalog.NewPoller(catalogService, cfg.CatalogPollInterval, log)

	srv.hub = feed.NewHub(feed.HubConfig{
		TTL:      cfg.FeedSessionTTL,
		Recorder: rec,
		Log:      log,
		OnActivate: func(sessionID, itemID string) {
			m.FeedActivations.WithLabelValues(itemID).Inc()
			log.Debug("feed item activated", zap.String("session", sessionID), zap.String("item", itemID))
		},
	})
	social := feed.NewSocialStore(local, rec)

	leads := concierge.NewLeadStore(local, rec)
	srv.chats = concierge.NewManager(concierge.ManagerConfig{
		Provider: concierge.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		Logger:   transcriptService,
		Leads:    leads,
		Recorder: rec,
		Log:      log,
		TTL:      cfg.FeedSessionTTL,
	})
	if cfg.AnthropicAPIKey == "" {
		log.Info("no chat credential configured, the concierge answers offline")
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	setupCORS(app, cfg.CORSAllowOrigins)
	app.Use(logger.Middleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":           "ok",
			"remoteConfigured": catalogService.IsRemoteConfigured(),
		})
	})
	m.RegisterPublicRoutes(app)

	catalogHandler := catalog.NewHandler(catalogService)
	catalogHandler.RegisterPublicRoutes(app)
	feed.NewHandler(srv.hub, social, srv.poller).RegisterPublicRoutes(app)
	concierge.NewHandler(srv.chats, leads, catalogService, srv.hub, log).RegisterPublicRoutes(app)

	adminHandler := admin.NewHandler(cfg.AdminPassword, cfg.JWTSecret)
	adminHandler.RegisterPublicRoutes(app)
	adminRoutes := adminHandler.Group(app)
	catalogHandler.RegisterAdminRoutes(adminRoutes)
	transcript.NewHandler(transcriptService).RegisterAdminRoutes(adminRoutes)

	srv.app = app
	return srv, nil
}

func openLocalStore(cfg config.Config) (kvstore.Store, error) {
	switch cfg.LocalStore {
	case config.LocalStoreSQLite:
		return kvstore.OpenSQLite(cfg.LocalStorePath)
	case config.LocalStoreRedis:
		return kvstore.OpenRedis(kvstore.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "storefront:",
		})
	default:
		return kvstore.NewMemory(), nil
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + feed.VisitorHeader,
	}))
}
