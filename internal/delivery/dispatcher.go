package delivery

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/metrics"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/presence"
)

var _ model.Notifier = (*Dispatcher)(nil)

// Dispatcher pushes events to live connections found in the presence
// registry. Every push is fire-and-forget: no acknowledgment, no retry, no
// queuing beyond the per-connection outbound buffer.
type Dispatcher struct {
	registry *presence.Registry
	logger   *logger.Logger
}

// NewDispatcher creates a Dispatcher backed by the given registry.
func NewDispatcher(registry *presence.Registry, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notify delivers (event, payload) to every live connection of the user. An
// offline user is a successful no-op: the recipient picks the change up on
// the next fetch. A connection whose queue is full has the event dropped.
func (d *Dispatcher) Notify(_ context.Context, userID uuid.UUID, event string, payload any) {
	conns := d.registry.Lookup(userID)
	if len(conns) == 0 {
		metrics.PushOffline.Inc()
		return
	}

	body, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		d.logger.Error("failed to encode event", "event", event, "user_id", userID, "error", err)
		return
	}

	for _, c := range conns {
		if c.Enqueue(body) {
			metrics.PushOK.Inc()
			continue
		}
		metrics.PushDropped.Inc()
		d.logger.Warn("dropping event, outbound queue full",
			"event", event,
			"user_id", userID)
	}
}
