// cmd/api/main.go
// Main entry point: bootstraps all components and starts the server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oddoapp/pickme-backend/internal/auth"
	"github.com/oddoapp/pickme-backend/internal/common/database"
	"github.com/oddoapp/pickme-backend/internal/common/utils"
	"github.com/oddoapp/pickme-backend/internal/config"
	"github.com/oddoapp/pickme-backend/internal/matches"
	"github.com/oddoapp/pickme-backend/internal/meetups"
	"github.com/oddoapp/pickme-backend/internal/notify"
	"github.com/oddoapp/pickme-backend/internal/picks"
	"github.com/oddoapp/pickme-backend/internal/reviews"
	"github.com/oddoapp/pickme-backend/internal/users"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("Starting PickMe API")

	// 1. Environment
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	// 2. Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	// 3. PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 4. Redis (optional: proposal rate limiting degrades gracefully)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable (%v), continuing without rate limiting", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	// 5. Migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database migrations completed")

	// 6. Users
	usersRepo := users.NewPostgresRepository(db)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(usersService)

	// 7. Auth
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, auth.Config{
		JWTSecret:          cfg.JWTSecret,
		BCryptCost:         cfg.BCryptCost,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	// 8. Notifications
	var emailProvider notify.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notify.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("Using SendGrid for emails")
	default:
		emailProvider = notify.NewMockEmailProvider()
		log.Println("Using mock email provider")
	}

	var smsProvider notify.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = notify.NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("Using Twilio for SMS")
	default:
		smsProvider = notify.NewMockSMSProvider()
	}

	notifyService := notify.NewService(emailProvider, smsProvider, usersRepo,
		cfg.EnableEmailNotifications, cfg.EnableSMSNotifications)

	// 9. Pick requests
	picksRepo := picks.NewPostgresRepository(db)
	picksService := picks.NewService(picksRepo, picks.Config{
		TTL:                 cfg.PickRequestTTL,
		MaxSearchRadius:     cfg.MaxSearchRadius,
		DefaultSearchRadius: cfg.DefaultSearchRadius,
	})
	picksHandler := picks.NewHandler(picksService)

	// 10. Matches
	limiter := matches.NewRedisProposalLimiter(redisClient, cfg.ProposalsMax, cfg.ProposalsWindow)
	matchesRepo := matches.NewPostgresRepository(db, picksRepo)
	matchesService := matches.NewService(matchesRepo, picksRepo, limiter, notifyService)
	matchesHandler := matches.NewHandler(matchesService)

	// 11. Meetups
	meetupsRepo := meetups.NewPostgresRepository(db, picksRepo)
	meetupsService := meetups.NewService(meetupsRepo)
	meetupsHandler := meetups.NewHandler(meetupsService)

	// 12. Reviews
	reviewsRepo := reviews.NewPostgresRepository(db)
	reviewsService := reviews.NewService(reviewsRepo, meetupsRepo, reviews.DefaultScoreAdjuster)
	reviewsHandler := reviews.NewHandler(reviewsService)

	// 13. Background expiry sweep
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	picks.NewScheduler(picksService, cfg.ExpirySweepInterval).Start(schedulerCtx)
	log.Printf("Expiry sweep running every %s", cfg.ExpirySweepInterval)

	// 14. Router
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler)
	users.RegisterRoutes(router, usersHandler, authMiddleware.Authenticate)
	picks.RegisterRoutes(router, picksHandler, authMiddleware.Authenticate)
	matches.RegisterRoutes(router, matchesHandler, authMiddleware.Authenticate)
	meetups.RegisterRoutes(router, meetupsHandler, authMiddleware.Authenticate)
	reviews.RegisterRoutes(router, reviewsHandler, authMiddleware.Authenticate)

	// 15. Server with graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown: ", err)
	}

	log.Println("Server stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// loggingMiddleware logs all requests with status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema. Idempotent: every statement is
// IF NOT EXISTS so repeated startups are safe.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,

		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            name VARCHAR(100) NOT NULL,
            phone_number VARCHAR(20),
            age INT,
            bio TEXT,
            interests TEXT[] NOT NULL DEFAULT '{}',
            safety_score INT NOT NULL DEFAULT 50,
            completed_meetups INT NOT NULL DEFAULT 0,
            is_verified BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,

		`CREATE TABLE IF NOT EXISTS pick_requests (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            activity_type VARCHAR(20) NOT NULL,
            subject VARCHAR(200) NOT NULL,
            duration_minutes INT NOT NULL,
            latitude DOUBLE PRECISION NOT NULL,
            longitude DOUBLE PRECISION NOT NULL,
            location GEOGRAPHY(POINT, 4326) NOT NULL,
            status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_pick_requests_location
            ON pick_requests USING GIST (location)`,
		`CREATE INDEX IF NOT EXISTS idx_pick_requests_status_expires
            ON pick_requests (status, expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pick_requests_user
            ON pick_requests (user_id)`,

		`CREATE TABLE IF NOT EXISTS matches (
            id BIGSERIAL PRIMARY KEY,
            pick_request_id BIGINT NOT NULL REFERENCES pick_requests(id),
            picker_user_id BIGINT NOT NULL REFERENCES users(id),
            status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
            approved_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT uq_match_pick_picker UNIQUE (pick_request_id, picker_user_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_matches_picker
            ON matches (picker_user_id)`,

		`CREATE TABLE IF NOT EXISTS meetups (
            id BIGSERIAL PRIMARY KEY,
            match_id BIGINT NOT NULL REFERENCES matches(id),
            status VARCHAR(20) NOT NULL DEFAULT 'NOT_STARTED',
            picker_confirmed_start BOOLEAN NOT NULL DEFAULT FALSE,
            requester_confirmed_start BOOLEAN NOT NULL DEFAULT FALSE,
            picker_confirmed_end BOOLEAN NOT NULL DEFAULT FALSE,
            requester_confirmed_end BOOLEAN NOT NULL DEFAULT FALSE,
            started_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_meetups_match
            ON meetups (match_id)`,

		`CREATE TABLE IF NOT EXISTS reviews (
            id BIGSERIAL PRIMARY KEY,
            meetup_id BIGINT NOT NULL REFERENCES meetups(id),
            reviewer_id BIGINT NOT NULL REFERENCES users(id),
            reviewed_user_id BIGINT NOT NULL REFERENCES users(id),
            rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
            badges TEXT[] NOT NULL DEFAULT '{}',
            would_meet_again BOOLEAN NOT NULL DEFAULT FALSE,
            comment TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT uq_review_meetup_reviewer UNIQUE (meetup_id, reviewer_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_reviewed_user
            ON reviews (reviewed_user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
