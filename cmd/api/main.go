package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/config"
	"tshirt-orders/internal/db"
	"tshirt-orders/internal/events"
	"tshirt-orders/internal/httpserver"
	"tshirt-orders/internal/metrics"
	confirmationrepo "tshirt-orders/internal/repository/confirmation"
	orderrepo "tshirt-orders/internal/repository/order"
	schedulerepo "tshirt-orders/internal/repository/schedule"
	cartsvc "tshirt-orders/internal/service/cart"
	deadlinesvc "tshirt-orders/internal/service/deadline"
	ordersvc "tshirt-orders/internal/service/order"
	redemptionsvc "tshirt-orders/internal/service/redemption"
	"tshirt-orders/internal/sweeper"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	clk := clock.NewSystem()
	m := metrics.New()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPub.Close()
		publisher = kafkaPub
		logger.Printf("publishing order events to %s", cfg.Kafka.Topic)
	}

	orderRepo := orderrepo.NewPostgres(dbpool)
	confirmationRepo := confirmationrepo.NewPostgres(dbpool)

	scheduleRepo := schedulerepo.NewPostgres(dbpool)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		scheduleRepo = schedulerepo.NewCached(scheduleRepo, client, cfg.Redis.TTL, logger)
		logger.Printf("schedule cache enabled via %s", cfg.Redis.Addr)
	}

	deadlineService := deadlinesvc.New(scheduleRepo, logger)
	orderService := ordersvc.New(
		orderRepo,
		confirmationRepo,
		deadlineService,
		publisher,
		clk,
		logger,
		ordersvc.WithReviewTimeout(cfg.ReviewTimeout),
		ordersvc.WithMetrics(m),
	)
	cartService := cartsvc.New(orderRepo, deadlineService, clk)

	var codec redemptionsvc.Codec = redemptionsvc.PlainCodec{}
	if cfg.CodeSecret != "" {
		codec = redemptionsvc.NewHMACCodec(cfg.CodeSecret)
	}
	redemptionService := redemptionsvc.New(orderRepo, codec, publisher, clk)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Orders:      orderService,
		Cart:        cartService,
		Redemption:  redemptionService,
		Deadlines:   deadlineService,
		Clock:       clk,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweeper.New(orderService, cfg.SweepInterval, logger).Run(sweepCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
