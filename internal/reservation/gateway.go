package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ariefcatur/go-checkout-reserver/internal/order"
)

// ErrTransmission covers every way a hand-off can fail: transport error,
// timeout, or a non-2xx status from the reserver. The gateway itself never
// retries; the retry policy lives with the caller.
var ErrTransmission = errors.New("reservation transmission failed")

type Gateway struct {
	URL    string
	Client *http.Client
}

// Send serializes the order and performs exactly one POST to the reserver.
// Success means a 2xx acknowledgment; anything else is ErrTransmission.
func (g *Gateway) Send(ctx context.Context, o order.Order) error {
	return g.SendPayload(ctx, FromOrder(o))
}

// SendPayload posts an already-built payload, used when redelivering
// dead-lettered orders.
func (g *Gateway) SendPayload(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", p.OrderID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: reserver returned %d", ErrTransmission, resp.StatusCode)
	}
	return nil
}
