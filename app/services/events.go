package services

import (
	"time"

	"github.com/shashiranjanraj/sweetshop/pkg/event"
)

// EventStockChanged is fired on the event bus after every committed
// purchase or restock.
const EventStockChanged = "stock.changed"

// StockChange is the EventStockChanged payload.
type StockChange struct {
	SweetID  string    `json:"sweet_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Delta    int       `json:"delta"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// WithEvents publishes a StockChange on bus for every stock movement.
func WithEvents(bus *event.Bus) InventoryOption {
	return func(s *InventoryService) { s.events = bus }
}

func (s *InventoryService) publish(sweetID, name string, quantity, delta int, reason string) {
	s.events.Fire(EventStockChanged, StockChange{
		SweetID:  sweetID,
		Name:     name,
		Quantity: quantity,
		Delta:    delta,
		Reason:   reason,
		At:       s.now().UTC(),
	})
}
