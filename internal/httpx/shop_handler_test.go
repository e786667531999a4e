package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-checkout-reserver/internal/basket"
	"github.com/ariefcatur/go-checkout-reserver/internal/catalog"
	"github.com/ariefcatur/go-checkout-reserver/internal/checkout"
	"github.com/ariefcatur/go-checkout-reserver/internal/order"
	"github.com/ariefcatur/go-checkout-reserver/internal/session"
)

type memBaskets struct{ baskets map[string]basket.Basket }

func (m *memBaskets) Get(ctx context.Context, owner string) (basket.Basket, error) {
	b, ok := m.baskets[owner]
	if !ok {
		return basket.Basket{}, basket.ErrNotFound
	}
	return b, nil
}

func (m *memBaskets) GetOrCreate(ctx context.Context, owner string) (basket.Basket, error) {
	b, ok := m.baskets[owner]
	if !ok {
		b = basket.Basket{Owner: owner}
		m.baskets[owner] = b
	}
	return b, nil
}

func (m *memBaskets) Put(ctx context.Context, b basket.Basket) error {
	m.baskets[b.Owner] = b
	return nil
}

func (m *memBaskets) Delete(ctx context.Context, owner string) error {
	delete(m.baskets, owner)
	return nil
}

type stubCatalog []catalog.Product

func (s stubCatalog) ListProducts(ctx context.Context) ([]catalog.Product, error) { return s, nil }

type stubOrders struct{ o order.Order }

func (s *stubOrders) GetByID(ctx context.Context, orderID string) (order.Order, error) {
	if orderID != s.o.ID {
		return order.Order{}, order.ErrNotFound
	}
	return s.o, nil
}

func (s *stubOrders) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return []order.Order{s.o}, nil
}

type stubCheckout struct {
	res  checkout.Result
	err  error
	sess session.Session
}

func (s *stubCheckout) Checkout(ctx context.Context, sess session.Session, updates map[int64]int, ship *order.Address) (checkout.Result, error) {
	s.sess = sess
	return s.res, s.err
}

func newShopServer(h *ShopHandler) *httptest.Server {
	r := NewRouter()
	h.Register(r)
	return httptest.NewServer(r)
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestSubmitCheckoutOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		res          checkout.Result
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "success redirects to confirmation",
			res:          checkout.Result{Outcome: checkout.OutcomeSuccess, Order: order.Order{ID: "o-1"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/checkout/success?order=o-1",
		},
		{
			name:         "empty basket redirects back to basket",
			res:          checkout.Result{Outcome: checkout.OutcomeEmptyBasket},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/basket",
		},
		{
			name:       "invalid input",
			res:        checkout.Result{Outcome: checkout.OutcomeInvalidInput},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "hard failure",
			res:        checkout.Result{Outcome: checkout.OutcomeFailure, Reason: checkout.ReasonReservationUnreachable},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCheckout{res: tt.res}
			srv := newShopServer(&ShopHandler{
				Baskets:  &memBaskets{baskets: map[string]basket.Basket{}},
				Catalog:  stubCatalog{},
				Orders:   &stubOrders{},
				Checkout: stub,
			})
			defer srv.Close()

			body, _ := json.Marshal(CheckoutReq{Items: []AddItemReq{{ProductID: 1, Qty: 2}}})
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/checkout", bytes.NewReader(body))
			req.Header.Set("X-User", "alice")

			resp, err := noRedirectClient().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
			}
			assert.Equal(t, "alice", stub.sess.BuyerID)
		})
	}
}

func TestSubmitCheckoutRejectsBadJSON(t *testing.T) {
	stub := &stubCheckout{}
	srv := newShopServer(&ShopHandler{
		Baskets:  &memBaskets{baskets: map[string]basket.Basket{}},
		Catalog:  stubCatalog{},
		Orders:   &stubOrders{},
		Checkout: stub,
	})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/checkout", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddItemAndGetBasket(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]basket.Basket{}}
	srv := newShopServer(&ShopHandler{
		Baskets:  baskets,
		Catalog:  stubCatalog{},
		Orders:   &stubOrders{},
		Checkout: &stubCheckout{},
	})
	defer srv.Close()

	body, _ := json.Marshal(AddItemReq{ProductID: 7, Qty: 2})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/basket/items", bytes.NewReader(body))
	req.Header.Set("X-User", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b basket.Basket
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, "alice", b.Owner)
	assert.Equal(t, []basket.Line{{ProductID: 7, Qty: 2}}, b.Lines)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/basket", nil)
	req.Header.Set("X-User", "alice")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, []basket.Line{{ProductID: 7, Qty: 2}}, b.Lines)
}

func TestGetOrder(t *testing.T) {
	orders := &stubOrders{o: order.Order{ID: "o-1", BuyerID: "alice", TotalCents: 100}}
	srv := newShopServer(&ShopHandler{
		Baskets:  &memBaskets{baskets: map[string]basket.Basket{}},
		Catalog:  stubCatalog{},
		Orders:   orders,
		Checkout: &stubCheckout{},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders/o-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/orders/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
