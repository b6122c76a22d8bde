package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/battolapablo/marketgo/internal/kafka"
)

// Store is the persistence surface the assembler drives. *Repo implements it
// on postgres; tests use an in-memory ledger with the same semantics.
type Store interface {
	UserByID(ctx context.Context, id string) (*User, error)
	PlaceOrder(ctx context.Context, user *User, productIDs []string) (*Order, error)
	OrderByID(ctx context.Context, id string) (*Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service orchestrates order placement: identity check, reservation,
// persistence, then the placed event. There is no partial-success state; any
// failure surfaces as one of the named errors with stock untouched.
type Service struct {
	Store       Store
	Producer    Publisher // optional; nil skips event publishing
	ServiceName string
}

func (s *Service) PlaceOrder(ctx context.Context, userID string, productIDs []string, traceID string) (*Order, error) {
	user, err := s.Store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, ErrEmptyOrder
	}
	order, err := s.Store.PlaceOrder(ctx, user, productIDs)
	if err != nil {
		return nil, err
	}
	s.publishPlaced(order, traceID)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.Store.OrderByID(ctx, orderID)
}

func (s *Service) publishPlaced(o *Order, traceID string) {
	if s.Producer == nil {
		return
	}
	ids := make([]string, len(o.Detail.Products))
	for i, p := range o.Detail.Products {
		ids[i] = p.ID
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderPlacedPayload{
			OrderID:    o.ID,
			UserID:     o.User.ID,
			ProductIDs: ids,
			Total:      o.Detail.Price.StringFixed(2),
		}),
	}
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
