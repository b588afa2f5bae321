package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

type eventsHandler struct {
	broker *events.Broker
}

func registerEventRoutes(rg *gin.RouterGroup, broker *events.Broker) {
	h := &eventsHandler{broker: broker}
	rg.GET("/events", h.streamEvents)
}

// parseTypes reads the comma separated "types" filter. Empty means every type.
func parseTypes(raw string) []events.Type {
	var out []events.Type
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, events.Type(part))
		}
	}
	return out
}

// streamEvents godoc
// @Summary Stream ledger change events
// @Description Server-sent events; the subscription ends with the request.
// @Tags events
// @Produce text/event-stream
// @Param   types query string false "Comma separated event types"
// @Success 200 {string} string "event stream"
// @Security BearerAuth
// @Router /events [get]
func (h *eventsHandler) streamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	sub := h.broker.Subscribe(ctx, parseTypes(c.Query("types"))...)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	logger.Info("Event stream opened")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			return true
		}
	})
	logger.Info("Event stream closed", slog.String("reason", closeReason(ctx.Err())))
}

func closeReason(err error) string {
	if err != nil {
		return err.Error()
	}
	return "subscription released"
}
