package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apiarycd/svndesk/internal/events"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const keepAliveInterval = 15 * time.Second

type Handler struct {
	broker *events.Broker

	logger *zap.Logger
}

func NewHandler(broker *events.Broker, logger *zap.Logger) handler.Handler {
	return &Handler{
		broker: broker,

		logger: logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/events", h.stream)
}

func (h *Handler) stream(c *fiber.Ctx) error {
	id, ch, err := h.broker.Subscribe()
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	h.logger.Debug("event subscriber connected", zap.Stringer("subscriber", id))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			h.broker.Unsubscribe(id)
			h.logger.Debug("event subscriber disconnected", zap.Stringer("subscriber", id))
		}()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if writeErr := writeEvent(w, ev); writeErr != nil {
					h.logger.Warn("failed to write event", zap.String("event", ev.Name), zap.Error(writeErr))
					return
				}
			case <-ticker.C:
				if _, writeErr := w.WriteString(": keep-alive\n\n"); writeErr != nil {
					return
				}
			}

			if flushErr := w.Flush(); flushErr != nil {
				return
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, ev events.Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if _, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}
