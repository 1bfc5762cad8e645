package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"communityevents/config"
	_ "communityevents/docs"
	"communityevents/internal/adapters/auth"
	"communityevents/internal/adapters/email"
	"communityevents/internal/adapters/media"
	"communityevents/internal/adapters/telemetry"
	deliveryhttp "communityevents/internal/delivery/http"
	"communityevents/internal/delivery/http/controllers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/repository/postgres"
	"communityevents/internal/services"
)

//go:generate swag init -d ../../ -g cmd/api/main.go -o ../../docs

// @title Community Events API
// @version 1.0
// @description Community events with registration, QR check-in, comments, ratings and favorites.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(middleware.LogAttrs)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	// Repositories
	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	uploader, err := media.NewImageUploader(media.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	}, logger)
	if err != nil {
		return err
	}
	metrics, err := telemetry.NewAttendanceMetrics()
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	resolver := services.NewEventResolver(participantRepo, commentRepo, ratingRepo, favoriteRepo)
	timeout := cfg.RequestTimeout
	eventService := services.NewEventService(txManager, eventRepo, categoryRepo, resolver, uploader, timeout)
	attendanceService := services.NewAttendanceService(txManager, eventRepo, participantRepo, userRepo, emailService, metrics, logger, timeout)
	commentService := services.NewCommentService(txManager, eventRepo, commentRepo, timeout)
	ratingService := services.NewRatingService(txManager, eventRepo, ratingRepo, timeout)
	favoriteService := services.NewFavoriteService(txManager, eventRepo, favoriteRepo, resolver, timeout)
	categoryService := services.NewCategoryService(categoryRepo, timeout)
	userService := services.NewUserService(txManager, userRepo, hasher, timeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry, emailService, logger)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:       controllers.NewAuthController(logger, authService),
		Category:   controllers.NewCategoryController(logger, categoryService),
		Event:      controllers.NewEventController(logger, eventService),
		Attendance: controllers.NewAttendanceController(logger, attendanceService),
		Comment:    controllers.NewCommentController(logger, commentService),
		Rating:     controllers.NewRatingController(logger, ratingService),
		Favorite:   controllers.NewFavoriteController(logger, favoriteService),
		User:       controllers.NewUserController(logger, userService),
	}, verifier, userRepo, db.PingContext, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.Handler(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
