package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-checkout-reserver/internal/basket"
	"github.com/ariefcatur/go-checkout-reserver/internal/catalog"
	"github.com/ariefcatur/go-checkout-reserver/internal/checkout"
	"github.com/ariefcatur/go-checkout-reserver/internal/order"
	"github.com/ariefcatur/go-checkout-reserver/internal/session"
)

type CheckoutRunner interface {
	Checkout(ctx context.Context, sess session.Session, updates map[int64]int, ship *order.Address) (checkout.Result, error)
}

type BasketStore interface {
	GetOrCreate(ctx context.Context, owner string) (basket.Basket, error)
	Put(ctx context.Context, b basket.Basket) error
}

type ProductLister interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, orderID string) (order.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error)
}

type ShopHandler struct {
	Baskets  BasketStore
	Catalog  ProductLister
	Orders   OrderReader
	Checkout CheckoutRunner
	Log      *log.Logger
}

type AddItemReq struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type CheckoutReq struct {
	Items []AddItemReq   `json:"items"`
	Ship  *order.Address `json:"ship,omitempty"`
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.listProducts)
	r.Get("/api/basket", h.getBasket)
	r.Post("/api/basket/items", h.addItem)
	r.Post("/api/checkout", h.submitCheckout)
	r.Get("/api/orders/{id}", h.getOrder)
	r.Get("/api/my/orders", h.listMyOrders)
}

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load products"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ShopHandler) getBasket(w http.ResponseWriter, r *http.Request) {
	sess := session.Resolve(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Baskets.GetOrCreate(ctx, sess.BuyerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load basket"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *ShopHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID <= 0 || req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	sess := session.Resolve(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Baskets.GetOrCreate(ctx, sess.BuyerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load basket"})
		return
	}

	b.Add(req.ProductID, req.Qty)
	if err := h.Baskets.Put(ctx, b); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save basket"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// submitCheckout maps workflow outcomes onto the caller contract: a
// redirect to the success page, a redirect back to the (still extant)
// basket, a validation response, or a hard failure.
func (h *ShopHandler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	updates := make(map[int64]int, len(req.Items))
	for _, it := range req.Items {
		updates[it.ProductID] = it.Qty
	}

	sess := session.Resolve(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, sess, updates, req.Ship)
	switch res.Outcome {
	case checkout.OutcomeSuccess:
		http.Redirect(w, r, "/checkout/success?order="+res.Order.ID, http.StatusSeeOther)
	case checkout.OutcomeEmptyBasket:
		http.Redirect(w, r, "/basket", http.StatusSeeOther)
	case checkout.OutcomeInvalidInput:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid checkout submission"})
	default:
		if h.Log != nil {
			h.Log.Printf("checkout failed (%s): %v", res.Reason, err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "checkout failed"})
	}
}

func (h *ShopHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, orderID)
	if errors.Is(err, order.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load order"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *ShopHandler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	sess := session.Resolve(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByBuyer(ctx, sess.BuyerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load orders"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
