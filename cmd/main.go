package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/redis/go-redis/v9"

	"relist/internal/caching"
	"relist/internal/common"
	"relist/internal/config"
	"relist/internal/handlers"
	"relist/internal/jobs"
	"relist/internal/jobs/background"
	"relist/internal/middleware"
	"relist/internal/models"
	"relist/internal/repositories"
	"relist/internal/services"
	"relist/internal/shopify"
	"relist/pkg/database"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Println("WARNING: JWT_SECRET not set, using a random secret; tokens will not survive restarts")
	}

	pool, err := database.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	cache := caching.NewCacheService(redisClient)

	minioService, err := services.NewMinioService(
		getEnv("MINIO_ENDPOINT", "localhost:9000"),
		getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		getEnv("MINIO_SECRET_KEY", "minioadmin"),
		getEnv("MINIO_BUCKET", "listing-images"),
		os.Getenv("MINIO_USE_SSL") == "true",
	)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}
	if err := minioService.EnsureBucketExists(ctx); err != nil {
		log.Fatalf("failed to prepare storage bucket: %v", err)
	}

	shopifyCfg := config.LoadShopifyConfig()

	// Repositories
	tenantRepo := repositories.NewTenantRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	listingRepo := repositories.NewSecondHandProductRepository(pool)
	imageRepo := repositories.NewSecondHandImageRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	cartRepo := repositories.NewCartRepository(pool)
	cartItemRepo := repositories.NewCartItemRepository(pool)
	discountRepo := repositories.NewDiscountRepository(pool)

	// Services
	newFinder := func(tenant *models.Tenant) shopify.ProductFinder {
		return shopify.NewClient(*tenant.ShopifyAppURL, *tenant.ShopifyAccessToken, shopifyCfg.APIVersion, shopifyCfg.Timeout)
	}
	verificationService := services.NewVerificationService(newFinder, cache)
	listingService := services.NewSecondHandService(listingRepo, imageRepo, verificationService, minioService, cache)
	tenantService := services.NewTenantService(tenantRepo)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(jwtSecret, cache)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, cartItemRepo, productRepo, discountRepo)
	discountService := services.NewDiscountService(discountRepo)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	authHandlers := handlers.NewAuthHandlers(userService, authService)
	tenantHandlers := handlers.NewTenantHandlers(tenantService)
	userHandlers := handlers.NewUserHandlers(userService)
	listingHandlers := handlers.NewSecondHandHandlers(listingService, verificationService)
	productHandlers := handlers.NewProductHandlers(productService)
	cartHandlers := handlers.NewCartHandlers(cartService)
	discountHandlers := handlers.NewDiscountHandlers(discountService)
	webhookHandlers := handlers.NewWebhookHandlers(listingService, cache, tenantRepo, shopifyCfg.WebhookSecret)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Pre(echomw.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.Health)
	e.GET("/ready", healthHandlers.Ready)

	// Webhooks authenticate with HMAC, not JWT.
	wh := e.Group("/webhooks/shopify")
	wh.POST("/products/update", webhookHandlers.HandleProductUpdate)
	wh.POST("/products/delete", webhookHandlers.HandleProductDelete)

	resolveTenant := middleware.ResolveTenant(tenantRepo)

	v1 := e.Group("/v1")

	// Public, tenant-resolved routes.
	public := v1.Group("", resolveTenant)
	public.POST("/auth/signup", authHandlers.Signup)
	public.POST("/auth/login", authHandlers.Login)
	public.POST("/auth/refresh", authHandlers.Refresh)
	public.POST("/listings/verify", listingHandlers.Verify)
	public.GET("/listings", listingHandlers.ListApproved)
	public.GET("/listings/search", listingHandlers.Search)
	public.GET("/listings/:id", listingHandlers.Get)
	public.GET("/listings/images/:imageID/url", listingHandlers.ImageURL)

	// Authenticated routes.
	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.JWTCustomClaims)
		},
		SuccessHandler: middleware.BindClaims,
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c, "invalid or missing token")
		},
	}
	auth := v1.Group("", echojwt.WithConfig(jwtConfig))

	auth.POST("/auth/logout", authHandlers.Logout)
	auth.GET("/auth/me", authHandlers.Me)

	auth.POST("/listings", listingHandlers.Create, resolveTenant)
	auth.GET("/listings/mine", listingHandlers.MyListings)
	auth.PATCH("/listings/:id", listingHandlers.Update)
	auth.DELETE("/listings/:id", listingHandlers.Delete)

	auth.GET("/products", productHandlers.List)
	auth.GET("/products/:id", productHandlers.Get)

	auth.GET("/cart", cartHandlers.Get)
	auth.POST("/cart/items", cartHandlers.AddItem)
	auth.DELETE("/cart/items/:productID", cartHandlers.RemoveItem)
	auth.POST("/cart/discount", cartHandlers.ApplyDiscount)
	auth.GET("/cart/totals", cartHandlers.Totals)
	auth.POST("/cart/checkout", cartHandlers.Checkout)
	auth.DELETE("/cart", cartHandlers.Abandon)
	auth.GET("/cart/history", cartHandlers.History)

	auth.GET("/discounts", discountHandlers.List)
	auth.GET("/discounts/:id", discountHandlers.Get)

	// Admin-only routes.
	admin := auth.Group("/admin", middleware.RequireAdmin)
	admin.GET("/listings/pending", listingHandlers.ListPending)
	admin.POST("/listings/:id/approve", listingHandlers.Approve)
	admin.POST("/listings/:id/reject", listingHandlers.Reject)

	admin.POST("/products", productHandlers.Create)
	admin.PATCH("/products/:id", productHandlers.Update)
	admin.DELETE("/products/:id", productHandlers.Delete)

	admin.POST("/discounts", discountHandlers.Create)
	admin.PATCH("/discounts/:id", discountHandlers.Update)
	admin.DELETE("/discounts/:id", discountHandlers.Delete)

	admin.POST("/users", userHandlers.Create)
	admin.GET("/users", userHandlers.List)
	admin.GET("/users/:id", userHandlers.Get)
	admin.PATCH("/users/:id", userHandlers.Update)
	admin.DELETE("/users/:id", userHandlers.Delete)

	admin.POST("/tenants", tenantHandlers.Create)
	admin.GET("/tenants", tenantHandlers.List)
	admin.GET("/tenants/:id", tenantHandlers.Get)
	admin.PATCH("/tenants/:id", tenantHandlers.Update)
	admin.DELETE("/tenants/:id", tenantHandlers.Delete)

	// Background re-verification sweep.
	reverifyJob := jobs.NewReverificationJob(tenantRepo, listingRepo, newFinder, cache, 100)
	scheduler, err := background.NewScheduler(reverifyJob)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("scheduler shutdown error: %v", err)
		}
	}()

	port := getEnv("PORT", "8080")
	log.Fatal(e.Start(":" + port))
}
