package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckoutOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "checkout_attempts_total",
		Help:      "Checkout attempts by terminal outcome.",
	}, []string{"outcome"})

	ReserveRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "reserve_send_retries_total",
		Help:      "Reservation hand-off attempts beyond the first.",
	})

	DeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Name:      "reserve_dead_lettered_total",
		Help:      "Orders published to the reservation dead-letter topic.",
	})

	ReservationRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reserver",
		Name:      "records_written_total",
		Help:      "Durable reservation records written.",
	})
)

func Handler() http.Handler { return promhttp.Handler() }
