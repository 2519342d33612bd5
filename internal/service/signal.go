package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bergason/inventory"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func LedgerChannel(inventoryID string) string {
	return "inventory:ledger:" + inventoryID
}

// Publish fans a ledger event out to everyone watching the inventory.
func (s *SignalService) Publish(ctx context.Context, event inventory.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, LedgerChannel(event.InventoryID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime bridges one websocket session onto the pub/sub bus. Each value on
// request replaces the session's subscription set; events stream out on
// response until the context ends or request closes.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, response chan<- inventory.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	events := pubsub.Channel()

	var current []string
	for {
		select {
		case <-ctx.Done():
			return
		case ids, ok := <-request:
			if !ok {
				return
			}
			if len(current) > 0 {
				if err := pubsub.Unsubscribe(ctx, current...); err != nil {
					slog.ErrorContext(ctx, "failed to unsubscribe",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
			current = current[:0]
			for _, id := range ids {
				current = append(current, LedgerChannel(id))
			}
			if len(current) > 0 {
				if err := pubsub.Subscribe(ctx, current...); err != nil {
					slog.ErrorContext(ctx, "failed to subscribe",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			var event inventory.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode ledger event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
