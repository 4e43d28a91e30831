package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/coffee-shop/internal/events"
)

// AuditService records drink events in the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventDrinkCreated, a.handleDrinkEvent)
	a.dispatcher.Subscribe(events.EventDrinkUpdated, a.handleDrinkEvent)
	a.dispatcher.Subscribe(events.EventDrinkDeleted, a.handleDrinkEvent)
	a.dispatcher.Subscribe(events.EventDrinksReset, a.handleDrinkEvent)
}

func (a *AuditService) handleDrinkEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.DrinkID != 0 {
		fields = append(fields, zap.Int64("drink_id", event.DrinkID))
	}
	if event.Actor.Subject != "" {
		fields = append(fields,
			zap.String("subject", event.Actor.Subject),
			zap.Strings("permissions", event.Actor.Permissions))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	a.logger.Info("drink event", fields...)
	return nil
}
