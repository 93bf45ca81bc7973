// Package notification bridges domain events to the notification email queue.
// Domain modules publish events without knowing about email providers; this
// module subscribes and enqueues the corresponding worker tasks.
package notification

import (
	"context"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/scheduler"
	"leadmarket_backend/platform/logger"
)

type Module struct {
	enqueuer scheduler.NotificationEnqueuer
	log      *logger.Logger
}

func NewModule(enqueuer scheduler.NotificationEnqueuer, log *logger.Logger) *Module {
	return &Module{
		enqueuer: enqueuer,
		log:      log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.LeadRevealed{}.EventName(), m)
	bus.Subscribe(events.LeadMatched{}.EventName(), m)
	bus.Subscribe(events.CreditsGranted{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	if m.enqueuer == nil {
		return nil
	}

	switch e := event.(type) {
	case events.LeadAssigned:
		return m.enqueuer.EnqueueLeadAssignedEmail(ctx, scheduler.LeadEmailPayload{
			LeadID:       e.LeadID.String(),
			ContractorID: e.ContractorID.String(),
		})
	case events.LeadRevealed:
		return m.enqueuer.EnqueueLeadRevealedEmail(ctx, scheduler.LeadEmailPayload{
			LeadID:       e.LeadID.String(),
			ContractorID: e.ContractorID.String(),
		})
	case events.LeadMatched:
		return m.enqueuer.EnqueueLeadMatchedEmail(ctx, scheduler.LeadEmailPayload{
			LeadID:       e.LeadID.String(),
			ContractorID: e.ContractorID.String(),
		})
	case events.CreditsGranted:
		return m.enqueuer.EnqueueCreditsGrantedEmail(ctx, scheduler.CreditsGrantedEmailPayload{
			ContractorID: e.ContractorID.String(),
			Credits:      e.Amount,
		})
	}

	return nil
}
