package overlay

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/ItsNotGoodName/x-overlay/mosaic"
	"github.com/google/uuid"
)

// Margin is the distance in pixels between an overlay and the edges of the
// target window.
const Margin = 10

var (
	ErrNotWritable = errors.New("overlay is not writable")
	ErrNoColumns   = errors.New("overlay has no display columns")
)

// Content is the mode specific part of an overlay.
type Content interface {
	// Size returns the preferred size for a target of the given resolution.
	Size(res Resolution) (w, h uint16)
	// DefaultTheme returns the theme used before any theme is applied.
	DefaultTheme() Theme
}

// Columnar is implemented by content that shows a configurable set of columns.
type Columnar interface {
	Columns() []string
	SetColumns(columns []string)
}

// Overlay is one renderable surface. It is not safe for concurrent use; the
// slot manager serializes access.
type Overlay struct {
	id      string
	mode    Mode
	content Content
	writer  io.Writer
	columns Columnar

	enabled       bool
	automaticHide bool
	position      Position
	theme         Theme
	geometry      Geometry
}

func newOverlay(mode Mode, content Content) *Overlay {
	o := &Overlay{
		id:      uuid.NewString(),
		mode:    mode,
		content: content,
		theme:   content.DefaultTheme().Clone(),
	}
	o.writer, _ = content.(io.Writer)
	o.columns, _ = content.(Columnar)
	return o
}

func (o *Overlay) String() string {
	return fmt.Sprintf("overlay.Overlay(mode=%s, enabled=%t, position=%s)", o.mode, o.enabled, o.position)
}

func (o *Overlay) ID() string {
	return o.id
}

func (o *Overlay) Mode() Mode {
	return o.mode
}

func (o *Overlay) Content() Content {
	return o.content
}

func (o *Overlay) Enabled() bool {
	return o.enabled
}

func (o *Overlay) SetEnable(enable bool) {
	o.enabled = enable
}

func (o *Overlay) AutomaticHide() bool {
	return o.automaticHide
}

func (o *Overlay) SetAutomaticHide(enable bool) {
	o.automaticHide = enable
}

// Visible reports whether the painter should show the overlay.
func (o *Overlay) Visible() bool {
	if !o.enabled {
		return false
	}
	if !o.automaticHide {
		return true
	}
	if o.geometry.Resolution == nil {
		return false
	}
	return o.geometry.ScreenMode == nil || *o.geometry.ScreenMode != Fullscreen
}

func (o *Overlay) Position() Position {
	return o.position
}

func (o *Overlay) SetPosition(position Position) {
	o.position = position
}

func (o *Overlay) Theme() Theme {
	return o.theme.Clone()
}

// SetTheme applies known style keys from theme and keeps the rest.
func (o *Overlay) SetTheme(theme Theme) {
	for _, key := range ThemeKeys {
		if value, ok := theme[key]; ok {
			o.theme[key] = value
		}
	}
}

func (o *Overlay) Writable() bool {
	return o.writer != nil
}

func (o *Overlay) Write(p []byte) (int, error) {
	if o.writer == nil {
		return 0, ErrNotWritable
	}
	return o.writer.Write(p)
}

func (o *Overlay) DisplayColumns() []string {
	if o.columns == nil {
		return nil
	}
	return o.columns.Columns()
}

func (o *Overlay) SetDisplayColumns(columns []string) error {
	if o.columns == nil {
		return ErrNoColumns
	}
	o.columns.SetColumns(slices.Clone(columns))
	return nil
}

// Settings returns a snapshot of the overlay's look.
func (o *Overlay) Settings() Settings {
	s := Settings{
		Position: o.position,
		Theme:    o.theme.Clone(),
	}
	if o.columns != nil {
		s.Columns = slices.Clone(o.columns.Columns())
		if s.Columns == nil {
			s.Columns = []string{}
		}
	}
	return s
}

// SetSettings restores a snapshot taken with Settings. Columns are only
// applied when both the snapshot and the overlay carry them.
func (o *Overlay) SetSettings(s Settings) {
	o.position = s.Position
	o.SetTheme(s.Theme)
	if s.Columns != nil && o.columns != nil {
		o.columns.SetColumns(slices.Clone(s.Columns))
	}
}

// SetSettingsFromOverlay copies the look of other and returns the previous
// settings of o.
func (o *Overlay) SetSettingsFromOverlay(other *Overlay) Settings {
	previous := o.Settings()
	if other != o {
		o.SetSettings(other.Settings())
	}
	return previous
}

func (o *Overlay) Geometry() Geometry {
	return o.geometry
}

func (o *Overlay) SetTargetResolution(res Resolution) {
	o.geometry.Resolution = &res
}

func (o *Overlay) SetTargetScreenMode(mode ScreenMode) {
	o.geometry.ScreenMode = &mode
}

func (o *Overlay) SetTargetPosition(point Point) {
	o.geometry.Position = &point
}

// Rect returns where the overlay is drawn in root window coordinates.
func (o *Overlay) Rect() mosaic.Rect {
	container := o.geometry.Rect()
	if container.Empty() {
		return mosaic.Rect{}
	}
	w, h := o.content.Size(*o.geometry.Resolution)
	ax, ay := o.position.Align()
	return mosaic.Anchor(container, w, h, ax, ay, Margin)
}
