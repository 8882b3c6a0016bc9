package slots

import (
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/mosaic"
)

type Snapshot struct {
	ActiveSlots int            `json:"active_slots"`
	Enabled     bool           `json:"enabled"`
	Target      TargetState    `json:"target"`
	Slots       []SlotState    `json:"slots"`
	Overlays    []OverlayState `json:"overlays"`
}

// TargetState is the last observed target window geometry. Empty fields have
// not been observed yet.
type TargetState struct {
	Resolution *overlay.Resolution `json:"resolution,omitempty"`
	ScreenMode string              `json:"screen_mode,omitempty"`
	Position   *overlay.Point      `json:"position,omitempty"`
}

type SlotState struct {
	// Slot is numbered from 1.
	Slot   int    `json:"slot"`
	Mode   string `json:"mode"`
	Active bool   `json:"active"`
}

type OverlayState struct {
	ID            string        `json:"id"`
	Mode          string        `json:"mode"`
	Enabled       bool          `json:"enabled"`
	Visible       bool          `json:"visible"`
	AutomaticHide bool          `json:"automatic_hide"`
	Position      string        `json:"position"`
	Theme         overlay.Theme `json:"theme"`
	Columns       []string      `json:"columns,omitempty"`
	Rect          mosaic.Rect   `json:"rect"`
}

func newOverlayState(o *overlay.Overlay) OverlayState {
	return OverlayState{
		ID:            o.ID(),
		Mode:          o.Mode().String(),
		Enabled:       o.Enabled(),
		Visible:       o.Visible(),
		AutomaticHide: o.AutomaticHide(),
		Position:      o.Position().String(),
		Theme:         o.Theme(),
		Columns:       o.DisplayColumns(),
		Rect:          o.Rect(),
	}
}

// Snapshot returns a copy of the manager state for display.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		ActiveSlots: m.active,
		Enabled:     m.enabled,
		Target: TargetState{
			Resolution: m.geometry.Resolution,
			Position:   m.geometry.Position,
		},
		Slots:    make([]SlotState, 0, len(m.slots)),
		Overlays: make([]OverlayState, 0, len(m.overlays)),
	}
	if m.geometry.ScreenMode != nil {
		s.Target.ScreenMode = m.geometry.ScreenMode.String()
	}
	for slot, mode := range m.slots {
		s.Slots = append(s.Slots, SlotState{
			Slot:   slot + 1,
			Mode:   mode.String(),
			Active: m.isActive(slot),
		})
	}
	for _, mode := range overlay.Modes() {
		if o, ok := m.overlays[mode]; ok {
			s.Overlays = append(s.Overlays, newOverlayState(o))
		}
	}
	return s
}
