package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/battolapablo/marketgo/internal/kafka"
	"github.com/battolapablo/marketgo/internal/orders"
	"github.com/battolapablo/marketgo/internal/redisx"
)

// Service consumes order.placed events and warms the order read cache so the
// first GET after placement is served from redis. Replayed events are
// dropped via the dedup key.
type Service struct {
	Store       orders.Store
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	order, err := s.Store.OrderByID(ctx, p.OrderID)
	if err != nil {
		// The order may have been rolled back since; nothing to cache.
		log.Printf("%s: order %s not cacheable: %v", s.ServiceName, p.OrderID, err)
		return nil
	}
	b, err := json.Marshal(order)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrder, order.ID)
	return s.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err()
}
