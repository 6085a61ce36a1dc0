package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raheva/mirror/internal/hub"
)

// pingInterval keeps idle SSE and websocket connections alive through
// proxies and lets the hub learn about dead viewers.
const pingInterval = 30 * time.Second

// handleSSE streams hub events to one viewer until it disconnects.
func (s *Server) handleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	viewer := s.hub.Subscribe()
	defer s.hub.Unsubscribe(viewer)

	ctx := c.Request.Context()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-viewer.Events():
			if !ok {
				return
			}
			writeSSE(c.Writer, ev.Type, ev)
			c.Writer.Flush()
		case <-ping.C:
			writeSSE(c.Writer, hub.EventPing, hub.Event{Type: hub.EventPing})
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
