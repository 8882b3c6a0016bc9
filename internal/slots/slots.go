// Package slots assigns overlay modes to a fixed number of slots and keeps
// every overlay instance in sync with the target window geometry.
package slots

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ItsNotGoodName/x-overlay/internal/config"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/internal/theme"
)

var (
	ErrSlotRange    = errors.New("slot out of range")
	ErrSlotEmpty    = errors.New("slot is empty")
	ErrSwapTarget   = errors.New("swap target is not assigned to a slot")
	ErrModeAssigned = errors.New("mode is assigned to another active slot")
	ErrLayout       = errors.New("layout exceeds slot capacity")
)

// Catalog resolves theme filenames.
type Catalog interface {
	Resolve(mode overlay.Mode, filename string) (overlay.Theme, error)
	Get(mode overlay.Mode, index int) (overlay.Theme, error)
}

// Manager owns the slot array and the overlay instances. All methods are safe
// for concurrent use.
type Manager struct {
	mu sync.Mutex

	factory  overlay.Factory
	catalog  Catalog
	slots    []overlay.Mode
	overlays map[overlay.Mode]*overlay.Overlay
	active   int
	enabled  bool
	autoHide bool
	geometry overlay.Geometry
}

func New(factory overlay.Factory, catalog Catalog) *Manager {
	return &Manager{
		factory:  factory,
		catalog:  catalog,
		slots:    make([]overlay.Mode, overlay.MaxLayout.Slots()),
		overlays: make(map[overlay.Mode]*overlay.Overlay),
	}
}

func (m *Manager) Capacity() int {
	return len(m.slots)
}

func (m *Manager) ActiveSlots() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Mode returns the mode assigned to slot.
func (m *Manager) Mode(slot int) (overlay.Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSlot(slot); err != nil {
		return overlay.ModeNone, err
	}
	return m.slots[slot], nil
}

// Overlay returns the cached instance of mode.
func (m *Manager) Overlay(mode overlay.Mode) (*overlay.Overlay, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.overlays[mode]
	return o, ok
}

// Do runs fn while holding the manager lock.
func (m *Manager) Do(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

func (m *Manager) checkSlot(slot int) error {
	if slot < 0 || slot >= len(m.slots) {
		return fmt.Errorf("%w: %d", ErrSlotRange, slot)
	}
	return nil
}

func (m *Manager) occupant(slot int) (*overlay.Overlay, error) {
	if err := m.checkSlot(slot); err != nil {
		return nil, err
	}
	o, ok := m.overlays[m.slots[slot]]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSlotEmpty, slot)
	}
	return o, nil
}

func (m *Manager) isActive(slot int) bool {
	return slot >= 0 && slot < m.active
}

// activeSlot returns the active slot holding mode, or -1.
func (m *Manager) activeSlot(mode overlay.Mode) int {
	return slices.Index(m.slots[:m.active], mode)
}

// refresh enables the instance of mode when overlays are enabled and an
// active slot holds mode, and disables it otherwise.
func (m *Manager) refresh(mode overlay.Mode) {
	if o, ok := m.overlays[mode]; ok {
		o.SetEnable(m.enabled && m.activeSlot(mode) != -1)
	}
}

// checkActive returns an error when a mode appears twice in the first n slots.
func checkActive(slots []overlay.Mode, n int) error {
	for i := 1; i < n; i++ {
		if slots[i] == overlay.ModeNone {
			continue
		}
		if j := slices.Index(slots[:i], slots[i]); j != -1 {
			return fmt.Errorf("%w: %s in slot %d and %d", ErrModeAssigned, slots[i], j+1, i+1)
		}
	}
	return nil
}

// getOrCreate returns the cached instance of mode, creating it from the last
// known geometry and, if given, the settings of previous.
func (m *Manager) getOrCreate(mode overlay.Mode, previous *overlay.Overlay) (*overlay.Overlay, error) {
	if o, ok := m.overlays[mode]; ok {
		return o, nil
	}

	slog.Debug("creating overlay", "mode", mode)
	o, err := m.factory.Create(mode)
	if err != nil {
		return nil, err
	}

	if m.geometry.ScreenMode != nil {
		o.SetTargetScreenMode(*m.geometry.ScreenMode)
	}
	if m.geometry.Resolution != nil {
		o.SetTargetResolution(*m.geometry.Resolution)
	}
	if m.geometry.Position != nil {
		o.SetTargetPosition(*m.geometry.Position)
	}
	o.SetAutomaticHide(m.autoHide)

	if previous != nil {
		slog.Debug("initializing overlay with previous settings", "mode", mode, "previous", previous.Mode())
		o.SetSettingsFromOverlay(previous)
	}

	m.overlays[mode] = o
	return o, nil
}

// ChangeMode assigns mode to slot. With swap the slot exchanges modes with
// the slot currently holding mode, and the two overlays exchange settings.
func (m *Manager) ChangeMode(mode overlay.Mode, slot int, swap bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSlot(slot); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %s", overlay.ErrUnknownMode, mode)
	}

	previousMode := m.slots[slot]
	slog.Debug("changing mode",
		"layout", overlay.Layout(m.active),
		"mode", mode,
		"previous", previousMode,
		"slot", slot+1,
		"swap", swap)

	if previousMode == mode {
		return nil
	}

	previous := m.overlays[previousMode]

	if swap {
		other := m.activeSlot(mode)
		if other == -1 {
			other = slices.Index(m.slots, mode)
		}
		target, ok := m.overlays[mode]
		if other == -1 || !ok {
			return fmt.Errorf("%w: %s", ErrSwapTarget, mode)
		}

		swapped := slices.Clone(m.slots)
		swapped[slot], swapped[other] = swapped[other], swapped[slot]
		if err := checkActive(swapped, m.active); err != nil {
			return err
		}

		if previous != nil {
			previous.SetEnable(false)
		}

		copy(m.slots, swapped)

		if previous != nil {
			slog.Debug("swapping overlay settings", "mode", mode, "previous", previousMode)
			settings := previous.SetSettingsFromOverlay(target)
			target.SetSettings(settings)
		}

		m.refresh(previousMode)
		m.refresh(mode)
		return nil
	}

	if other := m.activeSlot(mode); other != -1 && m.isActive(slot) {
		return fmt.Errorf("%w: %s in slot %d", ErrModeAssigned, mode, other+1)
	}

	if previous != nil {
		previous.SetEnable(false)
	}

	target, ok := m.overlays[mode]
	if !ok {
		var err error
		target, err = m.getOrCreate(mode, previous)
		if err != nil {
			return err
		}
	} else if previous != nil {
		slog.Debug("swapping overlay settings", "mode", mode, "previous", previousMode)
		settings := target.SetSettingsFromOverlay(previous)
		previous.SetSettings(settings)
	}

	m.slots[slot] = mode
	m.refresh(previousMode)
	m.refresh(mode)

	return nil
}

// ChangePosition moves the overlay in slot. With swap the active overlay
// currently at position moves to the slot's old position.
func (m *Manager) ChangePosition(position overlay.Position, slot int, swap bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.occupant(slot)
	if err != nil {
		return err
	}

	slog.Debug("changing position",
		"layout", overlay.Layout(m.active),
		"slot", slot+1,
		"position", position,
		"swap", swap)

	if !swap {
		o.SetPosition(position)
		return nil
	}

	var partner *overlay.Overlay
	for i := 0; i < m.active; i++ {
		candidate, ok := m.overlays[m.slots[i]]
		if ok && candidate.Position() == position {
			partner = candidate
			break
		}
	}
	if partner == nil {
		return fmt.Errorf("%w: no active overlay at %s", ErrSwapTarget, position)
	}

	slog.Debug("swapping overlay positions", "mode", o.Mode(), "other", partner.Mode())
	previousPosition := o.Position()
	o.SetPosition(position)
	partner.SetPosition(previousPosition)
	return nil
}

func (m *Manager) ChangeTheme(theme overlay.Theme, slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.occupant(slot)
	if err != nil {
		return err
	}
	o.SetTheme(theme)
	return nil
}

// ChangeLayout toggles only the slots whose activation changes. Growing over
// a slot whose mode is already active fails.
func (m *Manager) ChangeLayout(layout overlay.Layout) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLayout(layout); err != nil {
		return err
	}
	if err := checkActive(m.slots, layout.Slots()); err != nil {
		return err
	}

	lo, hi := min(m.active, layout.Slots()), max(m.active, layout.Slots())
	from := m.active
	m.active = layout.Slots()
	for slot := lo; slot < hi; slot++ {
		slog.Debug("turning overlay", "mode", m.slots[slot], "on", from < m.active)
		m.refresh(m.slots[slot])
	}

	slog.Debug("changing layout", "from", overlay.Layout(from), "to", layout)
	return nil
}

func (m *Manager) checkLayout(layout overlay.Layout) error {
	if layout.Slots() < 0 || layout.Slots() > len(m.slots) {
		return fmt.Errorf("%w: %s", ErrLayout, layout)
	}
	return nil
}

// EnableOverlays shows the occupants of the active slots, or hides every
// overlay.
func (m *Manager) EnableOverlays(enable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enableOverlays(enable)
}

func (m *Manager) enableOverlays(enable bool) {
	m.enabled = enable
	for mode := range m.overlays {
		m.refresh(mode)
	}
}

func (m *Manager) EnableAutomaticHide(enable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.autoHide = enable
	for _, o := range m.overlays {
		o.SetAutomaticHide(enable)
	}
}

// SetFrameDataColumns sets the visible frame data columns, creating the frame
// data overlay when it does not exist yet.
func (m *Manager) SetFrameDataColumns(columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.setFrameDataColumns(columns)
}

func (m *Manager) setFrameDataColumns(columns []string) error {
	o, err := m.getOrCreate(overlay.ModeFrameData, nil)
	if err != nil {
		return err
	}
	return o.SetDisplayColumns(columns)
}

type reloadSlot struct {
	mode     overlay.Mode
	position overlay.Position
	theme    overlay.Theme
}

type reloadPlan struct {
	slots         []reloadSlot
	layout        overlay.Layout
	enable        bool
	automaticHide bool
	columns       []string
}

// Check reports whether settings would reload without applying them.
func (m *Manager) Check(settings config.Settings) error {
	_, err := m.plan(settings)
	return err
}

func (m *Manager) plan(settings config.Settings) (reloadPlan, error) {
	layout, err := settings.Layout()
	if err != nil {
		return reloadPlan{}, err
	}
	if err := m.checkLayout(layout); err != nil {
		return reloadPlan{}, &config.Error{Key: config.KeyLayout, Value: layout.String(), Err: err}
	}

	slots := make([]reloadSlot, len(m.slots))
	for i := range slots {
		mode, err := settings.Mode(i + 1)
		if err != nil {
			return reloadPlan{}, err
		}
		if i < layout.Slots() {
			if j := slices.IndexFunc(slots[:i], func(s reloadSlot) bool { return s.mode == mode }); j != -1 {
				return reloadPlan{}, &config.Error{Key: config.ModeKey(i + 1), Value: mode.String(), Err: fmt.Errorf("%w: %d", ErrModeAssigned, j+1)}
			}
		}

		position, err := settings.Position(i + 1)
		if err != nil {
			return reloadPlan{}, err
		}

		slots[i] = reloadSlot{
			mode:     mode,
			position: position,
			theme:    m.resolveTheme(mode, settings.Theme(i+1)),
		}
	}
	enable, err := settings.Enable()
	if err != nil {
		return reloadPlan{}, err
	}
	automaticHide, err := settings.AutomaticHide()
	if err != nil {
		return reloadPlan{}, err
	}

	return reloadPlan{
		slots:         slots,
		layout:        layout,
		enable:        enable,
		automaticHide: automaticHide,
		columns:       settings.FrameDataColumns(),
	}, nil
}

// Reload applies settings. Nothing changes when a setting is invalid. A mode
// held by more than one slot takes the position and theme of its first slot.
func (m *Manager) Reload(settings config.Settings) error {
	p, err := m.plan(settings)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range p.slots {
		m.slots[i] = s.mode
		if slices.IndexFunc(p.slots[:i], func(prev reloadSlot) bool { return prev.mode == s.mode }) != -1 {
			continue
		}

		o, err := m.getOrCreate(s.mode, nil)
		if err != nil {
			return err
		}
		o.SetPosition(s.position)
		o.SetTheme(s.theme)
	}

	m.autoHide = p.automaticHide
	for _, o := range m.overlays {
		o.SetAutomaticHide(p.automaticHide)
	}
	if err := m.setFrameDataColumns(p.columns); err != nil {
		return err
	}
	m.active = p.layout.Slots()
	m.enableOverlays(p.enable)

	slog.Debug("reloaded overlays", "layout", p.layout, "enable", p.enable, "slots", m.slots)
	return nil
}

// resolveTheme falls back to the first theme of the mode when filename is
// unknown.
func (m *Manager) resolveTheme(mode overlay.Mode, filename string) overlay.Theme {
	t, err := m.catalog.Resolve(mode, filename)
	if err == nil {
		return t
	}

	slog.Warn("Failed to resolve theme", "mode", mode, "theme", filename, "error", err)
	if errors.Is(err, theme.ErrNotFound) {
		if t, err := m.catalog.Get(mode, 0); err == nil {
			return t
		}
	}
	return nil
}

// ResolutionChanged updates every cached overlay, active or not.
func (m *Manager) ResolutionChanged(res overlay.Resolution) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.geometry.Resolution = &res
	for _, o := range m.overlays {
		o.SetTargetResolution(res)
	}
}

func (m *Manager) ScreenModeChanged(mode overlay.ScreenMode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.geometry.ScreenMode = &mode
	for _, o := range m.overlays {
		o.SetTargetScreenMode(mode)
	}
}

func (m *Manager) PositionChanged(point overlay.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.geometry.Position = &point
	for _, o := range m.overlays {
		o.SetTargetPosition(point)
	}
}

// Write forwards p to the enabled, writable overlays of the active slots. It
// never fails.
func (m *Manager) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for slot := 0; slot < m.active; slot++ {
		o, ok := m.overlays[m.slots[slot]]
		if !ok || !o.Writable() || !o.Enabled() {
			continue
		}
		if _, err := o.Write(p); err != nil {
			slog.Debug("failed to write to overlay", "mode", o.Mode(), "error", err)
		}
	}

	return len(p), nil
}

// Content runs fn with the content of mode while holding the manager lock.
// The overlay is created when it does not exist yet.
func (m *Manager) Content(mode overlay.Mode, fn func(content overlay.Content) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.getOrCreate(mode, nil)
	if err != nil {
		return err
	}
	return fn(o.Content())
}
