package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Addisaurus/Tallow-Website/internal/cart"
	"github.com/Addisaurus/Tallow-Website/internal/checkout"
	"github.com/Addisaurus/Tallow-Website/internal/order"
	"github.com/Addisaurus/Tallow-Website/internal/payment"

	h "github.com/Addisaurus/Tallow-Website/internal/http"
)

type Config struct {
	HTTPPort string
	BaseURL  string

	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	MigrationsDir string

	RedisAddr     string
	RedisPassword string

	StripeSecretKey     string
	StripeWebhookSecret string

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxWebhookBodySize int64
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnvInt("DB_PORT", 5432),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "tallow"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxWebhookBodySize: 1 << 16, // 64KB, events are small
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := loadConfig()

	if cfg.StripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}

	creds := &order.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsDir,
	}
	repo, err := order.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer repo.Close()
	log.Printf("Connected to postgres at %s:%d", cfg.DBHost, cfg.DBPort)

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Connected to redis at %s", cfg.RedisAddr)

	cartService := cart.NewService(cart.NewRedisStore(redisClient))

	processor := payment.NewStripeProcessor(cfg.StripeSecretKey)
	parser := payment.NewEventParser(cfg.StripeWebhookSecret)
	if parser.Insecure() {
		log.Printf("INSECURE: webhook signature verification is DISABLED, set STRIPE_WEBHOOK_SECRET in production")
	}

	successURL := cfg.BaseURL + "/api/v1/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := cfg.BaseURL + "/cart"
	checkoutService := checkout.NewService(cartService, repo, processor, successURL, cancelURL)

	productHandler := h.NewProductHandler()
	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	orderHandler := h.NewOrderHandler(checkoutService, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(parser, checkoutService, cfg.RequestTimeout, cfg.MaxWebhookBodySize)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The webhook comes from the processor, not a browser; no session.
		r.Post("/webhooks/payment", webhookHandler.HandleEvent)

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMiddleware)

			r.Get("/product", productHandler.GetProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_name}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_name}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/checkout/success", checkoutHandler.Success)

			r.Get("/orders/confirmation/{token}", orderHandler.GetByToken)
			r.Post("/orders/{token}/cancel", checkoutHandler.Cancel)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
