// Package monitor publishes geometry changes of the target window.
package monitor

import (
	"context"
	"sync"

	"github.com/ItsNotGoodName/x-overlay/internal/bus"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
)

type Event interface {
	event()
}

type (
	ResolutionChanged struct {
		Resolution overlay.Resolution
	}
	ScreenModeChanged struct {
		ScreenMode overlay.ScreenMode
	}
	PositionChanged struct {
		Position overlay.Point
	}
)

func (ResolutionChanged) event() {}
func (ScreenModeChanged) event() {}
func (PositionChanged) event()   {}

// Publisher is the graphic settings publisher. Each event kind is published
// only when its value differs from the last published one.
type Publisher struct {
	hub *bus.Hub[Event]

	mu   sync.Mutex
	last overlay.Geometry
}

func NewPublisher() *Publisher {
	return &Publisher{
		hub: bus.NewHub[Event](),
	}
}

func (p *Publisher) Subscribe() (<-chan Event, func()) {
	return p.hub.Subscribe(8)
}

// Publish sends the events for every field of g that changed.
func (p *Publisher) Publish(ctx context.Context, g overlay.Geometry) error {
	for _, ev := range p.diff(g) {
		if err := p.hub.Broadcast(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) diff(g overlay.Geometry) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []Event
	if g.Resolution != nil && (p.last.Resolution == nil || *p.last.Resolution != *g.Resolution) {
		res := *g.Resolution
		p.last.Resolution = &res
		events = append(events, ResolutionChanged{Resolution: res})
	}
	if g.ScreenMode != nil && (p.last.ScreenMode == nil || *p.last.ScreenMode != *g.ScreenMode) {
		mode := *g.ScreenMode
		p.last.ScreenMode = &mode
		events = append(events, ScreenModeChanged{ScreenMode: mode})
	}
	if g.Position != nil && (p.last.Position == nil || *p.last.Position != *g.Position) {
		point := *g.Position
		p.last.Position = &point
		events = append(events, PositionChanged{Position: point})
	}
	return events
}

// Forget clears the last published geometry so the next Publish sends every
// field, e.g. after the target window was recreated.
func (p *Publisher) Forget() {
	p.mu.Lock()
	p.last = overlay.Geometry{}
	p.mu.Unlock()
}
