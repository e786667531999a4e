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

	"github.com/ariefcatur/go-checkout-reserver/internal/config"
	"github.com/ariefcatur/go-checkout-reserver/internal/httpx"
	"github.com/ariefcatur/go-checkout-reserver/internal/reserver"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[reserver] ", log.LstdFlags)

	store, err := reserver.NewPebbleStore(cfg.ReserverDataDir)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer store.Close()

	router := httpx.NewRouter()
	h := &reserver.Handler{Store: store, Log: logger}
	h.Register(router)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
