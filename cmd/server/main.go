package main // Entry point package

import (
	"flag" // Command-line flags
	"fmt"  // Formatted output
	"log"  // Logging library

	"github.com/joho/godotenv"    // Optional .env file loading
	"github.com/labstack/echo/v4" // Echo web framework
	"golang.org/x/crypto/bcrypt"  // bcrypt cost for admin token hashing

	"github.com/foodsave/reservation-api/internal/catalog"
	"github.com/foodsave/reservation-api/internal/config"
	"github.com/foodsave/reservation-api/internal/database"
	"github.com/foodsave/reservation-api/internal/handler"
	"github.com/foodsave/reservation-api/internal/middleware"
	"github.com/foodsave/reservation-api/internal/notify"
	"github.com/foodsave/reservation-api/internal/payment"
	"github.com/foodsave/reservation-api/internal/queue"
	"github.com/foodsave/reservation-api/internal/repository"
	"github.com/foodsave/reservation-api/internal/router"
	queue_publisher "github.com/foodsave/reservation-api/internal/service"
	"github.com/foodsave/reservation-api/internal/utils"
)

func main() {
	hashToken := flag.String("hash-admin-token", "", "print a bcrypt hash of the given token for ADMIN_TOKEN_HASH, then exit")
	flag.Parse()
	if *hashToken != "" {
		hash, err := utils.HashAdminToken(*hashToken, bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hashing admin token failed: %v", err)
		}
		fmt.Println(hash)
		return
	}

	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the admin response cache.  A nil
	// client disables both; the service runs without them.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	reservations := repository.NewReservationRepo(db)
	partners := repository.NewPartnerRepo(db)
	gateway := payment.NewClient(cfg.StripeSecretKey)
	mailer := notify.NewMailer(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.AdminEmail, cfg.BaseURL, cfg.PublicLogoURL)

	// The notification consumer drains reservation.paid and sends the
	// confirmation mails; it reconnects on broker failures forever.
	go func() {
		if err := queue.StartNotificationConsumer(mailer); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	checkoutHandler := handler.NewCheckoutHandler(reservations, gateway, catalog.Default(), cfg.BaseURL)
	webhookHandler := handler.NewWebhookHandler(reservations, cfg.StripeWebhookSecret, queue_publisher.PublishReservationPaid)
	partnerHandler := handler.NewPartnerHandler(partners, mailer)
	adminHandler := handler.NewAdminHandler(reservations, partners)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCheckout(e, checkoutHandler, webhookHandler, rateLimit)
	router.RegisterPartners(e, partnerHandler, rateLimit)
	router.RegisterAdmin(e, adminHandler, middleware.RequireAdminToken(cfg.AdminToken, cfg.AdminTokenHash), cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
