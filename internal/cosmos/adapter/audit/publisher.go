package audit

import (
	"context"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/shared/eventbus"
	"cosmos-admin/internal/shared/logger"
)

const source = "cosmos-admin"

var _ repository.EventPublisher = (*Publisher)(nil)

// Publisher puts audit events on an event bus; sinks subscribe to the bus.
type Publisher struct {
	bus eventbus.EventBusInterface
}

// NewPublisher creates a publisher over bus.
func NewPublisher(bus eventbus.EventBusInterface) *Publisher {
	return &Publisher{bus: bus}
}

// Publish implements repository.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event *model.AuditEvent) error {
	return p.bus.Publish(ctx, eventbus.NewBasicEventWithSource(event.Type, event, source))
}

// LogSink returns a handler that writes every audit event to log.
func LogSink(log logger.Logger) eventbus.Handler {
	log = log.WithComponent("audit")
	return func(ctx context.Context, event eventbus.Event) error {
		fields := map[string]interface{}{
			"event_type": event.Type(),
			"source":     event.Source(),
		}
		if audit, ok := event.Data().(*model.AuditEvent); ok {
			fields["database_id"] = audit.DatabaseID
			if audit.CollectionID != "" {
				fields["collection_id"] = audit.CollectionID
			}
			for k, v := range audit.Details {
				fields[k] = v
			}
		}
		log.WithContext(ctx).WithFields(fields).Info("audit")
		return nil
	}
}
