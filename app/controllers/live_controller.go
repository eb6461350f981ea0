package controllers

import (
	"time"

	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/sse"
	"github.com/shashiranjanraj/sweetshop/pkg/ws"
)

const heartbeat = 20 * time.Second

// LiveController streams stock movements to storefronts.
type LiveController struct {
	events *event.Bus
	hub    *ws.Hub
}

func NewLiveController(events *event.Bus, hub *ws.Hub) *LiveController {
	return &LiveController{events: events, hub: hub}
}

// Stream handles GET /api/sweets/stream as Server-Sent Events.
func (c *LiveController) Stream(cx *ctx.Context) {
	changes := make(chan services.StockChange, 16)
	stop := c.events.Listen(services.EventStockChanged, func(p any) {
		change, ok := p.(services.StockChange)
		if !ok {
			return
		}
		select {
		case changes <- change:
		default:
		}
	})
	defer stop()

	stream, err := sse.New(cx.W, cx.R)
	if err != nil {
		cx.Logger().Warn("sse stream not opened", "error", err)
		return
	}

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-stream.Done():
			return
		case change := <-changes:
			if err := stream.Send("stock", change); err != nil {
				return
			}
		case <-tick.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}

// Socket handles GET /api/sweets/live as a WebSocket.
func (c *LiveController) Socket(cx *ctx.Context) {
	c.hub.Serve(cx.W, cx.R)
}
