package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/bookstore/internal/config"
	"github.com/iliyamo/bookstore/internal/database"
	"github.com/iliyamo/bookstore/internal/handler"
	"github.com/iliyamo/bookstore/internal/middleware"
	"github.com/iliyamo/bookstore/internal/queue"
	"github.com/iliyamo/bookstore/internal/repository"
	"github.com/iliyamo/bookstore/internal/router"
	"github.com/iliyamo/bookstore/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter. Both
	// middlewares degrade to no-ops when the client is nil.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	books := repository.NewBookRepo(db)
	categories := repository.NewCategoryRepo(db)
	reviews := repository.NewReviewRepo(db)
	customers := repository.NewCustomerRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	points := repository.NewPointsRepo(db)

	// Services over their store adapters.
	settlementStore := repository.NewSettlementStore(db, customers, carts, books, orders, points)
	cartSvc := service.NewCartService(repository.NewCartStore(carts, books))
	checkoutSvc := service.NewCheckoutService(settlementStore)
	loyaltySvc := service.NewLoyaltyService(settlementStore)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(books, categories, reviews)
	adminH := handler.NewAdminHandler(books, categories)
	adminPointsH := handler.NewAdminPointsHandler(loyaltySvc, customers)
	cartH := handler.NewCartHandler(cartSvc, customers)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc, customers, orders)
	pointsH := handler.NewPointsHandler(customers, points)
	reviewH := handler.NewReviewHandler(reviews, books)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Prometheus())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Route-scoped: only the public catalog GETs go through the cache.
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, cacheMW)
	router.RegisterCustomer(e, cfg.JWTSecret, cartH, checkoutH, pointsH, reviewH)
	router.RegisterAdmin(e, cfg.JWTSecret, adminH, adminPointsH)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Background consumer keeps its own reconnect loop.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
