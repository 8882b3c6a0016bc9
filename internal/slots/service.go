package slots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-overlay/internal/monitor"
)

// Subscriber is the source of target window events.
type Subscriber interface {
	Subscribe() (<-chan monitor.Event, func())
}

// Service feeds target window events into a Manager.
type Service struct {
	manager    *Manager
	subscriber Subscriber
}

func NewService(manager *Manager, subscriber Subscriber) Service {
	return Service{
		manager:    manager,
		subscriber: subscriber,
	}
}

func (s Service) String() string {
	return "slots.Service"
}

func (s Service) Serve(ctx context.Context) error {
	eventC, unsubscribe := s.subscriber.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				return fmt.Errorf("%s: subscription closed", s)
			}
			s.Handle(ev)
		}
	}
}

// Handle applies one target window event.
func (s Service) Handle(ev monitor.Event) {
	switch ev := ev.(type) {
	case monitor.ResolutionChanged:
		slog.Debug("target resolution changed", "resolution", ev.Resolution)
		s.manager.ResolutionChanged(ev.Resolution)
	case monitor.ScreenModeChanged:
		slog.Debug("target screen mode changed", "screen-mode", ev.ScreenMode)
		s.manager.ScreenModeChanged(ev.ScreenMode)
	case monitor.PositionChanged:
		slog.Debug("target position changed", "x", ev.Position.X, "y", ev.Position.Y)
		s.manager.PositionChanged(ev.Position)
	}
}
