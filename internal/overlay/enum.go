package overlay

import (
	"errors"
	"fmt"

	"github.com/ItsNotGoodName/x-overlay/mosaic"
)

var (
	ErrUnknownMode       = errors.New("unknown overlay mode")
	ErrUnknownPosition   = errors.New("unknown overlay position")
	ErrUnknownLayout     = errors.New("unknown overlay layout")
	ErrUnknownScreenMode = errors.New("unknown screen mode")
)

// Mode is the content type of an overlay. Its integer value is the class id
// used to key overlay instances.
type Mode int

const (
	ModeNone Mode = iota
	ModeFrameData
	ModeConsole
	ModeTimer
	ModeNotes
)

var modeNames = map[Mode]string{
	ModeFrameData: "FRAMEDATA",
	ModeConsole:   "CONSOLE",
	ModeTimer:     "TIMER",
	ModeNotes:     "NOTES",
}

// Modes returns every selectable mode in class id order.
func Modes() []Mode {
	return []Mode{ModeFrameData, ModeConsole, ModeTimer, ModeNotes}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	if m == ModeNone {
		return "NONE"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Position is the screen anchor of an overlay relative to the target window.
type Position int

const (
	TopLeft Position = iota
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
)

var positionNames = [...]string{
	TopLeft:      "TOP_LEFT",
	TopCenter:    "TOP_CENTER",
	TopRight:     "TOP_RIGHT",
	BottomLeft:   "BOTTOM_LEFT",
	BottomCenter: "BOTTOM_CENTER",
	BottomRight:  "BOTTOM_RIGHT",
}

func Positions() []Position {
	return []Position{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight}
}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

func ParsePosition(name string) (Position, error) {
	for i, n := range positionNames {
		if n == name {
			return Position(i), nil
		}
	}
	return TopLeft, fmt.Errorf("%w: %q", ErrUnknownPosition, name)
}

// Align returns the horizontal and vertical alignment of the anchor.
func (p Position) Align() (mosaic.Align, mosaic.Align) {
	switch p {
	case TopCenter:
		return mosaic.AlignCenter, mosaic.AlignStart
	case TopRight:
		return mosaic.AlignEnd, mosaic.AlignStart
	case BottomLeft:
		return mosaic.AlignStart, mosaic.AlignEnd
	case BottomCenter:
		return mosaic.AlignCenter, mosaic.AlignEnd
	case BottomRight:
		return mosaic.AlignEnd, mosaic.AlignEnd
	default:
		return mosaic.AlignStart, mosaic.AlignStart
	}
}

// Layout is the number of simultaneously active slots.
type Layout int

const (
	LayoutOne Layout = iota + 1
	LayoutTwo
	LayoutThree
	LayoutFour

	// MaxLayout defines the slot capacity.
	MaxLayout = LayoutFour
)

var layoutNames = map[Layout]string{
	LayoutOne:   "ONE",
	LayoutTwo:   "TWO",
	LayoutThree: "THREE",
	LayoutFour:  "FOUR",
}

func Layouts() []Layout {
	return []Layout{LayoutOne, LayoutTwo, LayoutThree, LayoutFour}
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Slots returns the number of active slots for the layout.
func (l Layout) Slots() int {
	return int(l)
}

func ParseLayout(name string) (Layout, error) {
	for layout, n := range layoutNames {
		if n == name {
			return layout, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// ScreenMode is how the target window is presented.
type ScreenMode int

const (
	Windowed ScreenMode = iota
	Fullscreen
	Borderless
)

var screenModeNames = [...]string{
	Windowed:   "WINDOWED",
	Fullscreen: "FULLSCREEN",
	Borderless: "BORDERLESS",
}

func (s ScreenMode) String() string {
	if s < 0 || int(s) >= len(screenModeNames) {
		return fmt.Sprintf("ScreenMode(%d)", int(s))
	}
	return screenModeNames[s]
}

func ParseScreenMode(name string) (ScreenMode, error) {
	for i, n := range screenModeNames {
		if n == name {
			return ScreenMode(i), nil
		}
	}
	return Windowed, fmt.Errorf("%w: %q", ErrUnknownScreenMode, name)
}
