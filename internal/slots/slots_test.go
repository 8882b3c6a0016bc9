package slots

import (
	"sync"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-overlay/internal/config"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()

	catalog, err := theme.Default()
	require.NoError(t, err)
	return New(overlay.NewFactory(time.Now), catalog)
}

func reloaded(t *testing.T, override config.Settings) *Manager {
	t.Helper()

	m := newManager(t)
	require.NoError(t, m.Reload(config.Defaults().Merge(override)))
	return m
}

func overlayOf(t *testing.T, m *Manager, mode overlay.Mode) *overlay.Overlay {
	t.Helper()

	o, ok := m.Overlay(mode)
	require.True(t, ok, "overlay %s is not cached", mode)
	return o
}

func occupant(t *testing.T, m *Manager, slot int) *overlay.Overlay {
	t.Helper()

	mode, err := m.Mode(slot)
	require.NoError(t, err)
	return overlayOf(t, m, mode)
}

func assertUniqueSlots(t *testing.T, m *Manager) {
	t.Helper()

	seen := map[overlay.Mode]int{}
	for slot := 0; slot < m.ActiveSlots(); slot++ {
		mode, err := m.Mode(slot)
		require.NoError(t, err)
		if mode == overlay.ModeNone {
			continue
		}
		prev, ok := seen[mode]
		assert.False(t, ok, "mode %s in slot %d and %d", mode, prev, slot)
		seen[mode] = slot
	}
}

func enabledModes(m *Manager) []overlay.Mode {
	var modes []overlay.Mode
	for _, mode := range overlay.Modes() {
		if o, ok := m.Overlay(mode); ok && o.Enabled() {
			modes = append(modes, mode)
		}
	}
	return modes
}

func TestReload(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})

	assert.Equal(t, 2, m.ActiveSlots())
	assert.True(t, m.Enabled())
	assert.Equal(t, []overlay.Mode{overlay.ModeFrameData, overlay.ModeConsole}, enabledModes(m))

	fd := occupant(t, m, 0)
	assert.Equal(t, overlay.ModeFrameData, fd.Mode())
	assert.Equal(t, overlay.TopLeft, fd.Position())
	assert.Equal(t, overlay.FrameDataColumns, fd.DisplayColumns())
	assert.Equal(t, overlay.BottomRight, occupant(t, m, 3).Position())
	assertUniqueSlots(t, m)
}

func TestReloadIsIdempotent(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	before := map[overlay.Mode]*overlay.Overlay{}
	for _, mode := range overlay.Modes() {
		before[mode] = overlayOf(t, m, mode)
	}

	require.NoError(t, m.Reload(config.Defaults().Merge(config.Settings{config.KeyLayout: "TWO"})))

	for _, mode := range overlay.Modes() {
		assert.Same(t, before[mode], overlayOf(t, m, mode))
	}
	assert.Equal(t, []overlay.Mode{overlay.ModeFrameData, overlay.ModeConsole}, enabledModes(m))
}

func TestReloadAllowsInactiveDuplicates(t *testing.T) {
	m := reloaded(t, config.Settings{
		config.KeyLayout:      "TWO",
		config.ModeKey(3):     overlay.ModeFrameData.String(),
		config.PositionKey(3): overlay.BottomCenter.String(),
		config.ModeKey(4):     overlay.ModeConsole.String(),
	})

	assert.Equal(t, []overlay.Mode{overlay.ModeFrameData, overlay.ModeConsole}, enabledModes(m))
	assert.Equal(t, overlay.TopLeft, occupant(t, m, 0).Position())
	assert.Same(t, occupant(t, m, 0), occupant(t, m, 2))
	_, ok := m.Overlay(overlay.ModeNotes)
	assert.False(t, ok)

	require.ErrorIs(t, m.ChangeLayout(overlay.LayoutThree), ErrModeAssigned)
	assert.Equal(t, 2, m.ActiveSlots())
	assertUniqueSlots(t, m)
}

func TestCheck(t *testing.T) {
	m := reloaded(t, nil)

	require.NoError(t, m.Check(config.Defaults().Merge(config.Settings{config.KeyLayout: "FOUR"})))
	err := m.Check(config.Defaults().Merge(config.Settings{
		config.KeyLayout:  "TWO",
		config.ModeKey(2): overlay.ModeFrameData.String(),
	}))
	require.ErrorIs(t, err, ErrModeAssigned)
	assert.Equal(t, 1, m.ActiveSlots())
}

func TestReloadInvalidLeavesState(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})

	tests := []config.Settings{
		{config.ModeKey(1): "VIDEO"},
		{config.PositionKey(2): "MIDDLE"},
		{config.KeyLayout: "FIVE"},
		{config.KeyEnable: "maybe"},
		{config.ModeKey(2): overlay.ModeFrameData.String()},
	}
	for _, tt := range tests {
		err := m.Reload(config.Defaults().Merge(config.Settings{config.KeyLayout: "FOUR"}).Merge(tt))
		var cerr *config.Error
		require.ErrorAs(t, err, &cerr)

		assert.Equal(t, 2, m.ActiveSlots())
		mode, err := m.Mode(0)
		require.NoError(t, err)
		assert.Equal(t, overlay.ModeFrameData, mode)
		assert.Equal(t, overlay.TopRight, occupant(t, m, 1).Position())
	}
}

func TestReloadUnknownThemeFallsBack(t *testing.T) {
	m := reloaded(t, config.Settings{config.ThemeKey(1): "missing.toml"})

	catalog, err := theme.Default()
	require.NoError(t, err)
	first, err := catalog.Get(overlay.ModeFrameData, 0)
	require.NoError(t, err)

	assert.Equal(t, first, occupant(t, m, 0).Theme())
}

func TestReloadKeepsUnassignedInstances(t *testing.T) {
	m := reloaded(t, nil)
	fd := overlayOf(t, m, overlay.ModeFrameData)

	require.NoError(t, m.ChangeMode(overlay.ModeTimer, 0, false))
	require.NoError(t, m.Reload(config.Defaults().Merge(config.Settings{
		config.KeyFrameDataColumns: "input,startup",
	})))

	assert.Same(t, fd, overlayOf(t, m, overlay.ModeFrameData))
	assert.Equal(t, []string{"input", "startup"}, fd.DisplayColumns())
}

func TestInstanceReuse(t *testing.T) {
	m := newManager(t)

	m.Do(func() {
		a, err := m.getOrCreate(overlay.ModeNotes, nil)
		require.NoError(t, err)
		b, err := m.getOrCreate(overlay.ModeNotes, nil)
		require.NoError(t, err)
		assert.Same(t, a, b)
	})
}

func TestGetOrCreateSeedsGeometry(t *testing.T) {
	m := newManager(t)
	m.ResolutionChanged(overlay.Resolution{Width: 1920, Height: 1080})
	m.ScreenModeChanged(overlay.Borderless)

	require.NoError(t, m.SetFrameDataColumns([]string{"input"}))

	g := overlayOf(t, m, overlay.ModeFrameData).Geometry()
	require.NotNil(t, g.Resolution)
	assert.Equal(t, overlay.Resolution{Width: 1920, Height: 1080}, *g.Resolution)
	require.NotNil(t, g.ScreenMode)
	assert.Equal(t, overlay.Borderless, *g.ScreenMode)
	assert.Nil(t, g.Position)
}

func TestChangeModeScenario(t *testing.T) {
	m := reloaded(t, config.Settings{
		config.KeyLayout: "TWO",
		config.ModeKey(3): overlay.ModeFrameData.String(),
		config.ModeKey(4): overlay.ModeConsole.String(),
	})
	_, ok := m.Overlay(overlay.ModeTimer)
	require.False(t, ok)
	fd := overlayOf(t, m, overlay.ModeFrameData)
	fdTheme := fd.Theme()

	require.NoError(t, m.ChangeMode(overlay.ModeTimer, 0, false))

	timer := occupant(t, m, 0)
	assert.Equal(t, overlay.ModeTimer, timer.Mode())
	assert.Equal(t, overlay.TopLeft, timer.Position())
	assert.Equal(t, fdTheme, timer.Theme())
	assert.True(t, timer.Enabled())

	console := occupant(t, m, 1)
	assert.Equal(t, overlay.ModeConsole, console.Mode())
	assert.Equal(t, overlay.TopRight, console.Position())
	assert.True(t, console.Enabled())

	assert.Same(t, fd, overlayOf(t, m, overlay.ModeFrameData))
	assert.False(t, fd.Enabled())
	assert.Equal(t, fdTheme, fd.Theme())
	assert.Equal(t, overlay.TopLeft, fd.Position())
	assertUniqueSlots(t, m)
}

func TestChangeModeCreatesWithGeometry(t *testing.T) {
	m := reloaded(t, config.Settings{
		config.KeyLayout: "TWO",
		config.ModeKey(3): overlay.ModeFrameData.String(),
		config.ModeKey(4): overlay.ModeConsole.String(),
	})
	m.ResolutionChanged(overlay.Resolution{Width: 800, Height: 600})

	require.NoError(t, m.ChangeMode(overlay.ModeNotes, 1, false))

	notes := occupant(t, m, 1)
	require.NotNil(t, notes.Geometry().Resolution)
	assert.Equal(t, overlay.Resolution{Width: 800, Height: 600}, *notes.Geometry().Resolution)
	assert.Equal(t, overlay.TopRight, notes.Position())
}

func TestChangeModeExchangesWithExisting(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	fd := overlayOf(t, m, overlay.ModeFrameData)
	timer := overlayOf(t, m, overlay.ModeTimer)
	fdSettings, timerSettings := fd.Settings(), timer.Settings()

	require.NoError(t, m.ChangeMode(overlay.ModeTimer, 0, false))

	assert.Same(t, timer, occupant(t, m, 0))
	assert.True(t, timer.Enabled())
	assert.False(t, fd.Enabled())
	assert.Equal(t, fdSettings.Position, timer.Position())
	assert.Equal(t, fdSettings.Theme, timer.Theme())
	assert.Equal(t, timerSettings.Position, fd.Position())
	assert.Equal(t, timerSettings.Theme, fd.Theme())

	// Slot 3 still holds TIMER, so it cannot become active.
	mode, err := m.Mode(2)
	require.NoError(t, err)
	assert.Equal(t, overlay.ModeTimer, mode)
	require.ErrorIs(t, m.ChangeLayout(overlay.LayoutThree), ErrModeAssigned)
	assert.Equal(t, 2, m.ActiveSlots())
	assertUniqueSlots(t, m)
}

func TestChangeModeInactiveSlot(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	fd := overlayOf(t, m, overlay.ModeFrameData)
	timer := overlayOf(t, m, overlay.ModeTimer)

	require.NoError(t, m.ChangeMode(overlay.ModeFrameData, 2, false))

	assert.True(t, fd.Enabled())
	assert.False(t, timer.Enabled())
	assert.Same(t, fd, occupant(t, m, 0))
	assert.Same(t, fd, occupant(t, m, 2))
	assertUniqueSlots(t, m)
}

func TestChangeModeAssignedToActiveSlot(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})

	err := m.ChangeMode(overlay.ModeConsole, 0, false)
	require.ErrorIs(t, err, ErrModeAssigned)
	assert.True(t, overlayOf(t, m, overlay.ModeFrameData).Enabled())
	assertUniqueSlots(t, m)
}

func TestChangeModeSelf(t *testing.T) {
	m := reloaded(t, nil)
	fd := overlayOf(t, m, overlay.ModeFrameData)

	require.NoError(t, m.ChangeMode(overlay.ModeFrameData, 0, true))
	require.NoError(t, m.ChangeMode(overlay.ModeFrameData, 0, false))
	assert.True(t, fd.Enabled())
	assert.Equal(t, overlay.TopLeft, fd.Position())
}

func TestChangeModeErrors(t *testing.T) {
	m := reloaded(t, nil)

	require.ErrorIs(t, m.ChangeMode(overlay.ModeTimer, -1, false), ErrSlotRange)
	require.ErrorIs(t, m.ChangeMode(overlay.ModeTimer, 4, false), ErrSlotRange)
	require.ErrorIs(t, m.ChangeMode(overlay.ModeNone, 0, false), overlay.ErrUnknownMode)

	empty := newManager(t)
	require.ErrorIs(t, empty.ChangeMode(overlay.ModeTimer, 0, true), ErrSwapTarget)
}

func TestSwapIsInvolution(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "THREE"})
	require.NoError(t, m.SetFrameDataColumns([]string{"input", "on_block"}))

	type state struct {
		modes    []overlay.Mode
		settings map[overlay.Mode]overlay.Settings
		enabled  []overlay.Mode
	}
	capture := func() state {
		s := state{settings: map[overlay.Mode]overlay.Settings{}, enabled: enabledModes(m)}
		for slot := 0; slot < m.Capacity(); slot++ {
			mode, err := m.Mode(slot)
			require.NoError(t, err)
			s.modes = append(s.modes, mode)
		}
		for _, mode := range overlay.Modes() {
			s.settings[mode] = overlayOf(t, m, mode).Settings()
		}
		return s
	}

	for _, slot := range []int{0, 1, 2} {
		for _, mode := range overlay.Modes() {
			before := capture()
			old := before.modes[slot]

			require.NoError(t, m.ChangeMode(mode, slot, true))
			assertUniqueSlots(t, m)
			require.NoError(t, m.ChangeMode(old, slot, true))

			assert.Equal(t, before, capture(), "slot %d mode %s", slot, mode)
		}
	}
}

func TestSwapExchangesSettings(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	fd := overlayOf(t, m, overlay.ModeFrameData)
	console := overlayOf(t, m, overlay.ModeConsole)

	require.NoError(t, m.ChangeMode(overlay.ModeConsole, 0, true))

	assert.Same(t, console, occupant(t, m, 0))
	assert.Same(t, fd, occupant(t, m, 1))
	assert.Equal(t, overlay.TopLeft, console.Position())
	assert.Equal(t, overlay.TopRight, fd.Position())
	assert.True(t, console.Enabled())
	assert.True(t, fd.Enabled())
}

func TestSwapWithInactiveSlot(t *testing.T) {
	m := reloaded(t, nil)
	fd := overlayOf(t, m, overlay.ModeFrameData)
	notes := overlayOf(t, m, overlay.ModeNotes)

	require.NoError(t, m.ChangeMode(overlay.ModeNotes, 0, true))

	assert.True(t, notes.Enabled())
	assert.False(t, fd.Enabled())
	assert.Equal(t, overlay.TopLeft, notes.Position())
	assert.Equal(t, overlay.BottomRight, fd.Position())
}

func TestSwapWhileDisabled(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyEnable: "false", config.KeyLayout: "TWO"})

	require.NoError(t, m.ChangeMode(overlay.ModeConsole, 0, true))
	assert.Empty(t, enabledModes(m))
}

func TestChangePosition(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	fd := overlayOf(t, m, overlay.ModeFrameData)
	console := overlayOf(t, m, overlay.ModeConsole)

	require.NoError(t, m.ChangePosition(overlay.TopRight, 0, false))
	assert.Equal(t, overlay.TopRight, fd.Position())
	assert.Equal(t, overlay.TopRight, console.Position())

	require.NoError(t, m.ChangePosition(overlay.BottomCenter, 1, false))
	require.NoError(t, m.ChangePosition(overlay.BottomCenter, 0, true))
	assert.Equal(t, overlay.BottomCenter, fd.Position())
	assert.Equal(t, overlay.TopRight, console.Position())
}

func TestChangePositionSwapIgnoresInactive(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})

	// NOTES sits at BOTTOM_RIGHT in an inactive slot.
	err := m.ChangePosition(overlay.BottomRight, 0, true)
	require.ErrorIs(t, err, ErrSwapTarget)
	assert.Equal(t, overlay.TopLeft, occupant(t, m, 0).Position())
	assert.Equal(t, overlay.BottomRight, occupant(t, m, 3).Position())
}

func TestChangePositionEmptySlot(t *testing.T) {
	m := newManager(t)
	require.ErrorIs(t, m.ChangePosition(overlay.TopLeft, 0, false), ErrSlotEmpty)
}

func TestChangeTheme(t *testing.T) {
	m := reloaded(t, nil)

	require.NoError(t, m.ChangeTheme(overlay.Theme{"accent": "#ff0000", "unknown": "x"}, 2))

	th := occupant(t, m, 2).Theme()
	assert.Equal(t, "#ff0000", th["accent"])
	assert.NotContains(t, th, "unknown")
}

func TestLayoutSymmetry(t *testing.T) {
	layouts := overlay.Layouts()
	for _, l1 := range layouts {
		for _, l2 := range layouts {
			m := reloaded(t, config.Settings{config.KeyLayout: l1.String()})
			before := enabledModes(m)

			require.NoError(t, m.ChangeLayout(l2))
			assert.Len(t, enabledModes(m), l2.Slots())
			require.NoError(t, m.ChangeLayout(l1))

			assert.Equal(t, before, enabledModes(m), "%s -> %s", l1, l2)
		}
	}
}

func TestLayoutGrowWhileDisabled(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyEnable: "false"})

	require.NoError(t, m.ChangeLayout(overlay.LayoutFour))
	assert.Empty(t, enabledModes(m))

	m.EnableOverlays(true)
	assert.Len(t, enabledModes(m), 4)
}

func TestLayoutKeepsSettings(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "FOUR"})
	before := overlayOf(t, m, overlay.ModeNotes).Settings()

	require.NoError(t, m.ChangeLayout(overlay.LayoutOne))
	require.NoError(t, m.ChangeLayout(overlay.LayoutFour))

	assert.Equal(t, before, overlayOf(t, m, overlay.ModeNotes).Settings())
}

func TestLayoutOutOfRange(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})

	require.ErrorIs(t, m.ChangeLayout(overlay.Layout(9)), ErrLayout)
	require.ErrorIs(t, m.ChangeLayout(overlay.Layout(-1)), ErrLayout)
	assert.Equal(t, 2, m.ActiveSlots())
	assert.Equal(t, []overlay.Mode{overlay.ModeFrameData, overlay.ModeConsole}, enabledModes(m))
}

func TestGeometryReachesInactive(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	console := overlayOf(t, m, overlay.ModeConsole)

	require.NoError(t, m.ChangeLayout(overlay.LayoutOne))
	m.ResolutionChanged(overlay.Resolution{Width: 1280, Height: 720})
	m.PositionChanged(overlay.Point{X: 5, Y: 6})
	m.ScreenModeChanged(overlay.Fullscreen)

	assert.False(t, console.Enabled())
	g := console.Geometry()
	require.NotNil(t, g.Resolution)
	assert.Equal(t, overlay.Resolution{Width: 1280, Height: 720}, *g.Resolution)
	assert.Equal(t, overlay.Point{X: 5, Y: 6}, *g.Position)
	assert.Equal(t, overlay.Fullscreen, *g.ScreenMode)
}

func TestAutomaticHide(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyAutomaticHide: "true"})
	fd := overlayOf(t, m, overlay.ModeFrameData)

	assert.False(t, fd.Visible())
	m.ResolutionChanged(overlay.Resolution{Width: 640, Height: 480})
	assert.True(t, fd.Visible())
	m.ScreenModeChanged(overlay.Fullscreen)
	assert.False(t, fd.Visible())

	m.EnableAutomaticHide(false)
	assert.True(t, fd.Visible())
}

func TestAutomaticHideReachesNewInstances(t *testing.T) {
	m := newManager(t)
	m.EnableAutomaticHide(true)
	require.NoError(t, m.Content(overlay.ModeNotes, func(overlay.Content) error { return nil }))
	assert.True(t, overlayOf(t, m, overlay.ModeNotes).AutomaticHide())

	m = reloaded(t, config.Settings{
		config.KeyLayout:        "TWO",
		config.KeyAutomaticHide: "true",
		config.ModeKey(3):       overlay.ModeFrameData.String(),
		config.ModeKey(4):       overlay.ModeConsole.String(),
	})
	require.NoError(t, m.ChangeMode(overlay.ModeTimer, 0, false))
	assert.True(t, occupant(t, m, 0).AutomaticHide())
}

func TestWriteFanOut(t *testing.T) {
	m := reloaded(t, config.Settings{
		config.KeyLayout:  "TWO",
		config.ModeKey(1): overlay.ModeTimer.String(),
		config.ModeKey(3): overlay.ModeFrameData.String(),
	})

	n, err := m.Write([]byte("x\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	console := overlayOf(t, m, overlay.ModeConsole).Content().(*overlay.Console)
	assert.Equal(t, []string{"x"}, console.Lines())

	fd := overlayOf(t, m, overlay.ModeFrameData).Content().(*overlay.FrameData)
	assert.Empty(t, fd.Rows())
}

func TestWriteSkipsDisabled(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO", config.KeyEnable: "false"})

	_, err := m.Write([]byte("hidden\n"))
	require.NoError(t, err)

	console := overlayOf(t, m, overlay.ModeConsole).Content().(*overlay.Console)
	assert.Empty(t, console.Lines())
}

func TestWriteBeforeReload(t *testing.T) {
	m := newManager(t)

	n, err := m.Write([]byte("nothing to do\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)
}

func TestSnapshot(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "TWO"})
	m.ResolutionChanged(overlay.Resolution{Width: 1920, Height: 1080})
	m.ScreenModeChanged(overlay.Windowed)

	s := m.Snapshot()

	assert.Equal(t, 2, s.ActiveSlots)
	assert.True(t, s.Enabled)
	assert.Equal(t, "WINDOWED", s.Target.ScreenMode)
	assert.Nil(t, s.Target.Position)
	require.Len(t, s.Slots, 4)
	assert.Equal(t, SlotState{Slot: 1, Mode: "FRAMEDATA", Active: true}, s.Slots[0])
	assert.Equal(t, SlotState{Slot: 3, Mode: "TIMER", Active: false}, s.Slots[2])
	require.Len(t, s.Overlays, 4)
	assert.Equal(t, "FRAMEDATA", s.Overlays[0].Mode)
	assert.True(t, s.Overlays[0].Visible)
	assert.False(t, s.Overlays[0].Rect.Empty())
	assert.NotEmpty(t, s.Overlays[0].Columns)
	assert.Empty(t, s.Overlays[1].Columns)
}

func TestContent(t *testing.T) {
	m := newManager(t)

	err := m.Content(overlay.ModeNotes, func(content overlay.Content) error {
		content.(*overlay.Notes).SetText("combo")
		return nil
	})
	require.NoError(t, err)

	notes := overlayOf(t, m, overlay.ModeNotes).Content().(*overlay.Notes)
	assert.Equal(t, "combo", notes.Text())
	require.ErrorIs(t, m.Content(overlay.ModeNone, func(overlay.Content) error { return nil }), overlay.ErrUnknownMode)
}

func TestConcurrentEventsAndCalls(t *testing.T) {
	m := reloaded(t, config.Settings{config.KeyLayout: "THREE"})
	settings := config.Defaults().Merge(config.Settings{config.KeyLayout: "THREE"})

	var wg sync.WaitGroup
	run := func(fn func(i int)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				fn(i)
			}
		}()
	}

	run(func(i int) {
		m.ResolutionChanged(overlay.Resolution{Width: uint16(640 + i), Height: 480})
		m.PositionChanged(overlay.Point{X: int16(i), Y: int16(i)})
		m.ScreenModeChanged(overlay.ScreenMode(i % 3))
	})
	run(func(i int) {
		modes := overlay.Modes()
		_ = m.ChangeMode(modes[i%len(modes)], i%3, true)
	})
	run(func(i int) {
		_ = m.ChangeMode(overlay.ModeNotes, i%4, false)
	})
	run(func(i int) {
		assert.NoError(t, m.Reload(settings))
	})
	run(func(i int) {
		_, err := m.Write([]byte("x\n"))
		assert.NoError(t, err)
	})
	run(func(i int) {
		_ = m.ChangeLayout(overlay.Layouts()[i%4])
		_ = m.Snapshot()
	})
	wg.Wait()

	assertUniqueSlots(t, m)
	m.ResolutionChanged(overlay.Resolution{Width: 1, Height: 1})
	for _, mode := range overlay.Modes() {
		if o, ok := m.Overlay(mode); ok {
			assert.Equal(t, overlay.Resolution{Width: 1, Height: 1}, *o.Geometry().Resolution)
		}
	}
}
