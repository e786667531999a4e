package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-checkout-reserver/internal/checkout"
	"github.com/ariefcatur/go-checkout-reserver/internal/config"
	kafkax "github.com/ariefcatur/go-checkout-reserver/internal/kafka"
	"github.com/ariefcatur/go-checkout-reserver/internal/postgres"
	"github.com/ariefcatur/go-checkout-reserver/internal/redisx"
	"github.com/ariefcatur/go-checkout-reserver/internal/reservation"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[redeliver] ", log.LstdFlags)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	attempts := &checkout.AttemptRepo{DB: db}
	gateway := &reservation.Gateway{
		URL:    cfg.ReserverURL,
		Client: &http.Client{Timeout: cfg.ReserveTimeout},
	}

	group := getenv("REDELIVER_GROUP", "reservation-redeliver")
	workers := mustAtoi(os.Getenv("REDELIVER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, checkout.TopicReservationDeadLetter, workers)

	handler := func(ctx context.Context, m kafkago.Message) error {
		var env checkout.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			logger.Printf("drop malformed envelope: %v", err)
			return nil
		}
		if env.EventType != checkout.EventReservationSendFailed {
			return nil
		}

		// dedup by event id; a redelivered send is a second durable write
		// at the receiver, so skip events we already handled
		dkey := fmt.Sprintf(redisx.KeyDedup, "redeliver", env.EventID)
		if seen, _ := redisx.Exists(ctx, rdb, dkey); seen {
			return nil
		}

		var p checkout.ReservationSendFailedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			logger.Printf("drop malformed payload: %v", err)
			return nil
		}

		if err := gateway.SendPayload(ctx, p.Order); err != nil {
			// leave the offset uncommitted; kafka redelivers later
			return fmt.Errorf("resend order %s: %w", p.OrderID, err)
		}
		if err := attempts.MarkReserved(ctx, p.AttemptID); err != nil {
			logger.Printf("order %s reserved but attempt %s not marked: %v", p.OrderID, p.AttemptID, err)
		}
		_ = rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
		logger.Printf("redelivered order %s (attempt %s)", p.OrderID, p.AttemptID)
		return nil
	}

	go func() {
		logger.Printf("consumer started: group=%s topic=%s workers=%d", group, checkout.TopicReservationDeadLetter, workers)
		if err := cons.Start(ctx, handler); err != nil {
			logger.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Println("shutting down consumer...")
	cancel()
}
