package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleEventStream streams call events to the operator dashboard as SSE.
func (h *Handler) HandleEventStream(c *gin.Context) {
	ctx := c.Request.Context()

	feed, cancel := h.events.Subscribe(subscriberBuffer)
	defer cancel()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.Info(ctx, "dashboard subscribed to call events")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-feed:
			if !ok {
				return false
			}
			c.SSEvent(e.Type, e)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"timestamp": t.UTC()})
			return true
		}
	})
	h.logger.Info(ctx, "dashboard event stream closed")
}
