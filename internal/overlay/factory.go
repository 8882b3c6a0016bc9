package overlay

import (
	"fmt"
	"time"
)

// Factory constructs the overlay variant of a mode.
type Factory interface {
	Create(mode Mode) (*Overlay, error)
}

type FactoryFunc func(mode Mode) (*Overlay, error)

func (fn FactoryFunc) Create(mode Mode) (*Overlay, error) {
	return fn(mode)
}

// NewFactory returns the default factory. Timers read the clock now.
func NewFactory(now func() time.Time) Factory {
	return FactoryFunc(func(mode Mode) (*Overlay, error) {
		return New(mode, now)
	})
}

func New(mode Mode, now func() time.Time) (*Overlay, error) {
	switch mode {
	case ModeFrameData:
		return newOverlay(mode, NewFrameData()), nil
	case ModeConsole:
		return newOverlay(mode, NewConsole()), nil
	case ModeTimer:
		return newOverlay(mode, NewTimer(now)), nil
	case ModeNotes:
		return newOverlay(mode, NewNotes()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}
