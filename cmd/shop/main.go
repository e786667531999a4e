package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-checkout-reserver/internal/basket"
	"github.com/ariefcatur/go-checkout-reserver/internal/catalog"
	"github.com/ariefcatur/go-checkout-reserver/internal/checkout"
	"github.com/ariefcatur/go-checkout-reserver/internal/config"
	"github.com/ariefcatur/go-checkout-reserver/internal/httpx"
	kafkax "github.com/ariefcatur/go-checkout-reserver/internal/kafka"
	"github.com/ariefcatur/go-checkout-reserver/internal/order"
	"github.com/ariefcatur/go-checkout-reserver/internal/postgres"
	"github.com/ariefcatur/go-checkout-reserver/internal/redisx"
	"github.com/ariefcatur/go-checkout-reserver/internal/reservation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[shop] ", log.LstdFlags)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Dead-letter producer
	dlq := kafkax.NewProducer(cfg.KafkaBrokers, checkout.TopicReservationDeadLetter, 1024)
	dlq.Start(ctx)

	// Stores & workflow
	baskets := &basket.Store{R: rdb}
	products := &catalog.Repo{DB: db}
	orders := &order.Repo{DB: db}
	assembler := &order.Assembler{Baskets: baskets, Catalog: products, Orders: orders}
	gateway := &reservation.Gateway{
		URL:    cfg.ReserverURL,
		Client: &http.Client{Timeout: cfg.ReserveTimeout},
	}
	orchestrator := &checkout.Orchestrator{
		Baskets:     baskets,
		Orders:      assembler,
		Reserver:    gateway,
		Attempts:    &checkout.AttemptRepo{DB: db},
		DLQ:         dlq,
		MaxAttempts: cfg.ReserveMaxAttempts,
		Backoff:     cfg.ReserveBackoff,
		Service:     cfg.ServiceName,
		Log:         logger,
	}

	router := httpx.NewRouter()
	sh := &httpx.ShopHandler{
		Baskets:  baskets,
		Catalog:  products,
		Orders:   orders,
		Checkout: orchestrator,
		Log:      logger,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	dlq.Close()
	cancel()
	dlq.WaitClosed()
}
