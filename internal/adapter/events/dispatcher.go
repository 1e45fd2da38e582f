package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/ports"
)

// Dispatcher is a synchronous in-process event bus. Handlers run in the
// publishing goroutine; a handler error is logged and does not stop delivery
// to the remaining handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *logrus.Logger
}

// NewDispatcher creates a new in-process dispatcher.
func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event type.
func (d *Dispatcher) Subscribe(eventType string, handler ports.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Publish delivers the event to every handler subscribed to its type.
func (d *Dispatcher) Publish(ctx context.Context, event ports.Event) error {
	d.mu.RLock()
	handlers := d.handlers[event.Type]
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"event_type": event.Type,
				"event_id":   event.ID,
			}).Warn("Event handler failed")
		}
	}
	return nil
}
