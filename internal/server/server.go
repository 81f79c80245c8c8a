// Package server boots the bistro HTTP server: configuration, Mongo,
// storage, the job queue, and the route table, then serves until a
// shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/bistro-boss-server/app/controllers"
	"github.com/shashiranjanraj/bistro-boss-server/app/jobs"
	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/app/routes"
	"github.com/shashiranjanraj/bistro-boss-server/app/services"
	"github.com/shashiranjanraj/bistro-boss-server/config"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/cache"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/database"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/logger"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/metrics"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/sslcommerz"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/stripe"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/queue"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/reqid"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/router"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/storage"
)

const (
	queueWorkers    = 4
	shutdownTimeout = 10 * time.Second
)

// Start boots every subsystem and blocks until the process receives
// SIGINT/SIGTERM or the listener fails.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelBoot()

	db, err := database.Connect(bootCtx)
	if err != nil {
		return err
	}

	// transactionId uniqueness backs the idempotent trusted-client path;
	// refuse to serve without it.
	if err := repositories.NewTransactionRepository(db.DB).EnsureIndexes(bootCtx); err != nil {
		return err
	}

	storage.Connect()

	if err := cache.Connect(bootCtx); err != nil {
		logger.L.Warn("menu cache disabled", slog.String("error", err.Error()))
	}

	if config.QueueDriver() == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
		queue.SetDriver(queue.NewRedisDriver(rdb))
	}
	queue.UseCollection(db.DB.Collection("failed_jobs"))
	jobs.Register()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	queue.StartWorkers(workerCtx, queueWorkers)

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	// Prometheus endpoint sits outside the API groups.
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, buildDeps(db))

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("bistro boss server listening",
			slog.String("port", config.AppPort()),
			slog.String("env", config.AppEnv()))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		logger.L.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutCtx); err != nil {
		logger.L.Error("server shutdown", slog.String("error", err.Error()))
	}
	stopWorkers()
	if err := db.Close(shutCtx); err != nil {
		logger.L.Error("mongo disconnect", slog.String("error", err.Error()))
	}
	return nil
}

// notifyByMail queues the order-confirmation mail. Queue failures are
// logged and swallowed: the payment is already committed and the response
// already on its way to the client.
func notifyByMail(t *models.Transaction) {
	err := queue.Dispatch(jobs.OrderMailName, &jobs.OrderMailJob{
		Email:         t.Email,
		TransactionID: t.TransactionID,
		Amount:        t.Price,
		Currency:      t.Currency,
	})
	if err != nil {
		logger.L.Error("order mail dispatch",
			slog.String("transaction_id", t.TransactionID),
			slog.String("error", err.Error()))
	}
}

// buildDeps wires repositories, services and controllers around the
// connected database.
func buildDeps(db *database.Mongo) routes.Deps {
	userRepo := repositories.NewUserRepository(db.DB)
	dishRepo := repositories.NewDishRepository(db.DB)
	reviewRepo := repositories.NewReviewRepository(db.DB)
	cartRepo := repositories.NewCartRepository(db.DB)
	txnRepo := repositories.NewTransactionRepository(db.DB)

	authSvc := services.NewAuthService(userRepo)
	paymentSvc := services.NewPaymentService(
		txnRepo,
		cartRepo,
		sslcommerz.New(),
		stripe.New(),
		notifyByMail,
	)

	return routes.Deps{
		Auth:      controllers.NewAuthController(authSvc),
		Payment:   controllers.NewPaymentController(paymentSvc),
		Dish:      controllers.NewDishController(dishRepo),
		Review:    controllers.NewReviewController(reviewRepo),
		Cart:      controllers.NewCartController(cartRepo),
		User:      controllers.NewUserController(userRepo),
		Authorize: authSvc.Authorize,
	}
}
