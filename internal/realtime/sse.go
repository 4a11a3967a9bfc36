package realtime

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
)

// SSEHandler streams hub events to a dashboard over server-sent events.
// Keep-alives go out as SSE comments; a failed write means the client is
// gone and the subscription is torn down.
func SSEHandler(hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		sub := hub.Subscribe()

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer hub.Unsubscribe(sub)

			for evt := range sub.Events() {
				if evt.Name == events.KeepAlive {
					if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
						return
					}
				} else {
					data, err := json.Marshal(evt)
					if err != nil {
						continue
					}
					if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, data); err != nil {
						return
					}
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))

		return nil
	}
}
