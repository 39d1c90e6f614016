package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/wichananm65/pet-shop-storefront/internal/cart"
	"github.com/wichananm65/pet-shop-storefront/internal/category"
	"github.com/wichananm65/pet-shop-storefront/internal/config"
	"github.com/wichananm65/pet-shop-storefront/internal/database"
	"github.com/wichananm65/pet-shop-storefront/internal/delivery"
	"github.com/wichananm65/pet-shop-storefront/internal/favorite"
	"github.com/wichananm65/pet-shop-storefront/internal/logging"
	"github.com/wichananm65/pet-shop-storefront/internal/metrics"
	"github.com/wichananm65/pet-shop-storefront/internal/order"
	"github.com/wichananm65/pet-shop-storefront/internal/product"
	"github.com/wichananm65/pet-shop-storefront/internal/recommended"
	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	recorder := metrics.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		if db, err = database.Open(cfg.DatabaseURL); err != nil {
			return err
		}
		defer db.Close()
		if err := database.EnsureSchema(db); err != nil {
			return err
		}
	}

	// catalog
	var productRepo product.Repository
	if db != nil {
		productRepo = product.NewPostgresRepository(db)
	} else {
		productRepo = product.NewInMemoryRepository(nil)
	}
	if len(productRepo.List()) == 0 {
		if err := productRepo.Reset(product.SampleCatalog(time.Now().UTC())); err != nil {
			logger.Warn("could not seed sample catalog", zap.Error(err))
		}
	}
	productService := product.NewService(productRepo)

	// cart
	store, err := newCartStore(cfg, db)
	if err != nil {
		return err
	}
	cartService := cart.NewService(cart.ServiceDeps{
		Store:   store,
		Catalog: productService,
		Logger:  logger.Named("cart"),
		Metrics: recorder,
	})

	packing := delivery.Options{MaxWeightKg: cfg.Delivery.MaxWeightKg, MaxVolumeCm3: cfg.Delivery.MaxVolumeCm3}

	// orders
	var orderRepo order.Repository = order.NewInMemoryRepository()
	if db != nil {
		orderRepo = order.NewPostgresRepository(db)
	}
	orderService := order.NewService(order.ServiceDeps{
		Repo:           orderRepo,
		Carts:          cartService,
		Packing:        packing,
		ShippingPerBox: cfg.Delivery.ShippingPerBox,
		Logger:         logger.Named("order"),
		Metrics:        recorder,
	})

	// favorites
	var favoriteRepo favorite.Repository = favorite.NewInMemoryRepository()
	if db != nil {
		favoriteRepo = favorite.NewPostgresRepository(db)
	}
	favoriteService := favorite.NewService(favoriteRepo, productService)

	// recommendations
	baskets, err := recommended.LoadBaskets(cfg.Recommender.BasketsFile)
	if err != nil {
		return err
	}
	var remote recommended.Remote
	if cfg.Recommender.URL != "" {
		remote = recommended.NewHTTPRemote(cfg.Recommender.URL, cfg.Recommender.Timeout, cfg.Recommender.RPS)
	}
	scorer := recommended.NewScorer(recommended.ScorerDeps{
		Baskets: baskets,
		Remote:  remote,
		Logger:  logger.Named("recommended"),
		Metrics: recorder,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	setupCORS(app)
	app.Use(logging.Middleware(logger))
	app.Use(recorder.Middleware())
	recorder.RegisterRoutes(app)

	if cfg.JWTSecret != "" {
		app.Use(session.JWT(cfg.JWTSecret))
	} else {
		logger.Warn("JWT_SECRET is not set; every shopper is anonymous")
	}
	for _, prefix := range []string{"/api/v1/cart", "/api/v1/product/cart", "/api/v1/product/recommended", "/api/v1/favorites"} {
		app.Use(prefix, session.Owner())
	}

	recommended.NewHandler(recommended.HandlerDeps{
		Scorer:    scorer,
		Carts:     cartService,
		Catalog:   productService,
		Purchases: orderService,
		Favorites: favoriteService,
		Logger:    logger.Named("recommended"),
	}).RegisterPublicRoutes(app)
	cart.NewHandler(cartService).RegisterRoutes(app)
	favorite.NewHandler(favoriteService).RegisterRoutes(app)
	delivery.NewHandler(cartService, packing, recorder).RegisterRoutes(app)

	category.NewHandler(category.NewService(productService)).RegisterPublicRoutes(app)
	productHandler := product.NewHandler(productService, cfg.AllowResetProducts)
	productHandler.RegisterPublicRoutes(app)
	productHandler.RegisterAdminRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("cartStore", cfg.Cart.Store))
		errs <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func newCartStore(cfg config.Config, db *sql.DB) (cart.Store, error) {
	switch cfg.Cart.Store {
	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres cart store needs a database")
		}
		return cart.NewPostgresStore(db), nil
	case config.StoreRedis:
		client, err := cart.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cart.NewRedisStore(client), nil
	default:
		return cart.NewMemoryStore(), nil
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Set-Cookie",
	}))
}
