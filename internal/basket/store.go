package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-checkout-reserver/internal/redisx"
)

var ErrNotFound = errors.New("basket not found")

// Store keeps one basket record per owner key in Redis. Redis serializes
// per-key, which is all the concurrency control the basket needs.
type Store struct{ R *redis.Client }

func (s *Store) key(owner string) string { return fmt.Sprintf(redisx.KeyBasket, owner) }

func (s *Store) Get(ctx context.Context, owner string) (Basket, error) {
	raw, err := s.R.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Basket{}, ErrNotFound
	}
	if err != nil {
		return Basket{}, fmt.Errorf("get basket: %w", err)
	}
	var b Basket
	if err := json.Unmarshal(raw, &b); err != nil {
		return Basket{}, fmt.Errorf("decode basket: %w", err)
	}
	return b, nil
}

// GetOrCreate returns the owner's basket, creating an empty one if absent.
func (s *Store) GetOrCreate(ctx context.Context, owner string) (Basket, error) {
	b, err := s.Get(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		b = Basket{Owner: owner}
		if err := s.Put(ctx, b); err != nil {
			return Basket{}, err
		}
		return b, nil
	}
	return b, err
}

func (s *Store) Put(ctx context.Context, b Basket) error {
	b.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode basket: %w", err)
	}
	if err := s.R.Set(ctx, s.key(b.Owner), raw, redisx.TTLBasket).Err(); err != nil {
		return fmt.Errorf("put basket: %w", err)
	}
	return nil
}

// Delete retires the basket. Deleting an absent basket is not an error.
func (s *Store) Delete(ctx context.Context, owner string) error {
	if err := s.R.Del(ctx, s.key(owner)).Err(); err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}
	return nil
}
