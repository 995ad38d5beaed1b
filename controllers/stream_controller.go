package controllers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"freight-app/realtime"
)

// pingInterval keeps idle connections alive through proxies.
const pingInterval = 15 * time.Second

type StreamController struct {
	Hub *realtime.Hub
}

func NewStreamController(hub *realtime.Hub) *StreamController {
	return &StreamController{Hub: hub}
}

// Stream serves the live shipment feed as server-sent events.
func (c *StreamController) Stream(ctx *fiber.Ctx) error {
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ch := c.Hub.Subscribe()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer c.Hub.Unsubscribe(ch)

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", msg)
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, "event: ping\ndata: {}\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
