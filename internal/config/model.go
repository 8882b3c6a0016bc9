package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
)

var ErrMissingKey = errors.New("missing key")

const (
	KeyLayout           = "overlay_layout"
	KeyEnable           = "overlay_enable"
	KeyAutomaticHide    = "overlay_automatic_hide"
	KeyFrameDataColumns = "framedata_overlay_columns"
)

// SlotKey returns the key of a per slot field. Slots are numbered from 1.
func SlotKey(slot int, field string) string {
	return fmt.Sprintf("overlay_%d_%s", slot, field)
}

func ModeKey(slot int) string     { return SlotKey(slot, "mode") }
func PositionKey(slot int) string { return SlotKey(slot, "position") }
func ThemeKey(slot int) string    { return SlotKey(slot, "theme") }

// Error is a setting whose value cannot be used.
type Error struct {
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s=%q: %s", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Settings is the flat key/value overlay configuration.
type Settings map[string]string

var defaultSettings = Settings{
	ModeKey(1):          overlay.ModeFrameData.String(),
	PositionKey(1):      overlay.TopLeft.String(),
	ThemeKey(1):         "classic.toml",
	ModeKey(2):          overlay.ModeConsole.String(),
	PositionKey(2):      overlay.TopRight.String(),
	ThemeKey(2):         "classic.toml",
	ModeKey(3):          overlay.ModeTimer.String(),
	PositionKey(3):      overlay.BottomLeft.String(),
	ThemeKey(3):         "classic.toml",
	ModeKey(4):          overlay.ModeNotes.String(),
	PositionKey(4):      overlay.BottomRight.String(),
	ThemeKey(4):         "classic.toml",
	KeyLayout:           overlay.LayoutOne.String(),
	KeyEnable:           "true",
	KeyAutomaticHide:    "false",
	KeyFrameDataColumns: strings.Join(overlay.FrameDataColumns, ","),
}

func Defaults() Settings {
	return defaultSettings.Merge(nil)
}

// Merge returns a copy of s overridden by other.
func (s Settings) Merge(other Settings) Settings {
	merged := make(Settings, len(s)+len(other))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

func (s Settings) lookup(key string) (string, error) {
	value, ok := s[key]
	if !ok {
		return "", &Error{Key: key, Err: ErrMissingKey}
	}
	return value, nil
}

func (s Settings) Mode(slot int) (overlay.Mode, error) {
	key := ModeKey(slot)
	value, err := s.lookup(key)
	if err != nil {
		return overlay.ModeNone, err
	}
	mode, err := overlay.ParseMode(value)
	if err != nil {
		return overlay.ModeNone, &Error{Key: key, Value: value, Err: err}
	}
	return mode, nil
}

func (s Settings) Position(slot int) (overlay.Position, error) {
	key := PositionKey(slot)
	value, err := s.lookup(key)
	if err != nil {
		return overlay.TopLeft, err
	}
	position, err := overlay.ParsePosition(value)
	if err != nil {
		return overlay.TopLeft, &Error{Key: key, Value: value, Err: err}
	}
	return position, nil
}

// Theme returns the theme filename of a slot.
func (s Settings) Theme(slot int) string {
	return s[ThemeKey(slot)]
}

func (s Settings) Layout() (overlay.Layout, error) {
	value, err := s.lookup(KeyLayout)
	if err != nil {
		return 0, err
	}
	layout, err := overlay.ParseLayout(value)
	if err != nil {
		return 0, &Error{Key: KeyLayout, Value: value, Err: err}
	}
	return layout, nil
}

func (s Settings) Enable() (bool, error) {
	return s.bool(KeyEnable)
}

func (s Settings) AutomaticHide() (bool, error) {
	return s.bool(KeyAutomaticHide)
}

func (s Settings) bool(key string) (bool, error) {
	value, err := s.lookup(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &Error{Key: key, Value: value, Err: err}
	}
	return b, nil
}

// FrameDataColumns returns the comma separated visible frame data columns.
func (s Settings) FrameDataColumns() []string {
	columns := []string{}
	for _, c := range strings.Split(s[KeyFrameDataColumns], ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}
