package overlay

import (
	"fmt"
	"maps"

	"github.com/ItsNotGoodName/x-overlay/mosaic"
)

type Resolution struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

type Point struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
}

// Geometry is the last known state of the target window. Nil fields have not
// been observed yet.
type Geometry struct {
	Resolution *Resolution
	ScreenMode *ScreenMode
	Position   *Point
}

// Rect returns the target window rectangle, or an empty one when the
// resolution is unknown.
func (g Geometry) Rect() mosaic.Rect {
	if g.Resolution == nil {
		return mosaic.Rect{}
	}
	var rect mosaic.Rect
	if g.Position != nil {
		rect.X, rect.Y = g.Position.X, g.Position.Y
	}
	rect.W, rect.H = g.Resolution.Width, g.Resolution.Height
	return rect
}

// ThemeKeys are the style keys every overlay understands.
var ThemeKeys = []string{
	"background",
	"foreground",
	"accent",
	"font_family",
	"font_size",
	"opacity",
}

// Theme maps style keys to values.
type Theme map[string]string

func (t Theme) Clone() Theme {
	return maps.Clone(t)
}

// Settings is a snapshot of the user-visible look of an overlay.
type Settings struct {
	Position Position
	Theme    Theme
	// Columns is nil when the overlay has no column settings.
	Columns []string
}
