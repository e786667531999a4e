package reserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-checkout-reserver/internal/metrics"
	"github.com/ariefcatur/go-checkout-reserver/internal/reservation"
)

// OrderDetails is what the receiver reads out of the posted order. Any
// extra fields in the body are ignored but still stored, because the
// record body is the raw payload as received.
type OrderDetails struct {
	OrderDate  string `json:"orderDate"`
	OrderItems []struct {
		ProductID int64 `json:"productId"`
		Units     int   `json:"units"`
	} `json:"orderItems"`
}

type Handler struct {
	Store Store
	Log   *log.Logger
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/api/reserveitems", h.reserveItems)
}

func (h *Handler) reserveItems(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var details *OrderDetails
	if err := json.Unmarshal(raw, &details); err != nil || details == nil {
		h.Log.Printf("failed to parse order details: %v", err)
		http.Error(w, "failed to parse order details", http.StatusBadRequest)
		return
	}

	key := reservation.RecordKey(details.OrderDate)
	rec := Record{
		Key:         key,
		ContentType: "application/json",
		Body:        raw,
	}
	if err := h.Store.Put(rec); err != nil {
		h.Log.Printf("store record %s: %v", key, err)
		http.Error(w, fmt.Sprintf("an error occurred: %v", err), http.StatusInternalServerError)
		return
	}

	metrics.ReservationRecords.Inc()
	h.Log.Printf("stored %s (%d items)", key, len(details.OrderItems))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Order %s has been processed.", details.OrderDate)
}
