package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/mosaic"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var ErrTargetDestroyed = errors.New("target window destroyed")

// X11 watches the geometry of the window titled Title and publishes changes.
type X11 struct {
	Title     string
	Interval  time.Duration
	Publisher *Publisher
}

func NewX11(title string, publisher *Publisher) X11 {
	return X11{
		Title:     title,
		Interval:  2 * time.Second,
		Publisher: publisher,
	}
}

func (x X11) String() string {
	return fmt.Sprintf("monitor.X11(title=%q)", x.Title)
}

func (x X11) Serve(ctx context.Context) error {
	slog := slog.With("func", "monitor.X11.Serve", "title", x.Title)

	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	atoms, err := internAtoms(conn)
	if err != nil {
		return err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)

	wid, err := x.waitForWindow(ctx, conn, screen.Root, atoms)
	if err != nil {
		return err
	}
	slog.Info("Found target window", "wid", wid)

	if err := xproto.ChangeWindowAttributesChecked(conn, wid, xproto.CwEventMask, []uint32{
		xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange,
	}).Check(); err != nil {
		return err
	}

	x.Publisher.Forget()
	publish := func() error {
		g, err := queryGeometry(conn, screen, wid, atoms)
		if err != nil {
			return err
		}
		return x.Publisher.Publish(ctx, g)
	}
	if err := publish(); err != nil {
		return err
	}

	eventC := make(chan xgb.Event)
	go ReceiveEvents(ctx, conn, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				return nil
			}

			switch ev := ev.(type) {
			case xproto.ConfigureNotifyEvent:
				if ev.Window != wid {
					continue
				}
				slog.Debug("ConfigureNotifyEvent", "width", ev.Width, "height", ev.Height)
				if err := publish(); err != nil {
					return err
				}
			case xproto.PropertyNotifyEvent:
				if ev.Window != wid || ev.Atom != atoms.wmState {
					continue
				}
				if err := publish(); err != nil {
					return err
				}
			case xproto.DestroyNotifyEvent:
				if ev.Window != wid {
					continue
				}
				slog.Debug("exit: target window destroyed")
				return ErrTargetDestroyed
			}
		}
	}
}

func (x X11) waitForWindow(ctx context.Context, conn *xgb.Conn, root xproto.Window, atoms atoms) (xproto.Window, error) {
	interval := x.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		wid, ok, err := findWindow(conn, root, atoms, x.Title)
		if err != nil {
			return 0, err
		}
		if ok {
			return wid, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- xgb.Event) {
	defer close(eventC)
	slog := slog.With("func", "monitor.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		if err != nil {
			slog.Error("failed to read event", "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}

type atoms struct {
	clientList   xproto.Atom
	wmName       xproto.Atom
	utf8String   xproto.Atom
	wmState      xproto.Atom
	wmFullscreen xproto.Atom
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	var a atoms
	for _, item := range []struct {
		atom *xproto.Atom
		name string
	}{
		{&a.clientList, "_NET_CLIENT_LIST"},
		{&a.wmName, "_NET_WM_NAME"},
		{&a.utf8String, "UTF8_STRING"},
		{&a.wmState, "_NET_WM_STATE"},
		{&a.wmFullscreen, "_NET_WM_STATE_FULLSCREEN"},
	} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(item.name)), item.name).Reply()
		if err != nil {
			return atoms{}, err
		}
		*item.atom = reply.Atom
	}
	return a, nil
}

func property32(conn *xgb.Conn, wid xproto.Window, property, typ xproto.Atom) ([]uint32, error) {
	reply, err := xproto.GetProperty(conn, false, wid, property, typ, 0, 1024).Reply()
	if err != nil {
		return nil, err
	}
	values := make([]uint32, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		values = append(values, xgb.Get32(reply.Value[i:]))
	}
	return values, nil
}

func windowTitle(conn *xgb.Conn, wid xproto.Window, a atoms) (string, error) {
	reply, err := xproto.GetProperty(conn, false, wid, a.wmName, a.utf8String, 0, 256).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen > 0 {
		return string(reply.Value), nil
	}

	reply, err = xproto.GetProperty(conn, false, wid, xproto.AtomWmName, xproto.AtomString, 0, 256).Reply()
	if err != nil {
		return "", err
	}
	return string(reply.Value), nil
}

func findWindow(conn *xgb.Conn, root xproto.Window, a atoms, title string) (xproto.Window, bool, error) {
	wids, err := property32(conn, root, a.clientList, xproto.AtomWindow)
	if err != nil {
		return 0, false, err
	}

	for _, wid := range wids {
		name, err := windowTitle(conn, xproto.Window(wid), a)
		if err != nil {
			// The window may have been destroyed between the two requests.
			continue
		}
		if name == title {
			return xproto.Window(wid), true, nil
		}
	}

	return 0, false, nil
}

func queryGeometry(conn *xgb.Conn, screen *xproto.ScreenInfo, wid xproto.Window, a atoms) (overlay.Geometry, error) {
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(wid)).Reply()
	if err != nil {
		return overlay.Geometry{}, err
	}

	coords, err := xproto.TranslateCoordinates(conn, wid, screen.Root, 0, 0).Reply()
	if err != nil {
		return overlay.Geometry{}, err
	}

	states, err := property32(conn, wid, a.wmState, xproto.AtomAtom)
	if err != nil {
		return overlay.Geometry{}, err
	}
	fullscreen := false
	for _, state := range states {
		if xproto.Atom(state) == a.wmFullscreen {
			fullscreen = true
		}
	}

	rect := mosaic.Rect{X: coords.DstX, Y: coords.DstY, W: geom.Width, H: geom.Height}
	screenRect := mosaic.Rect{W: screen.WidthInPixels, H: screen.HeightInPixels}

	res := overlay.Resolution{Width: rect.W, Height: rect.H}
	mode := ScreenModeOf(rect, screenRect, fullscreen)
	point := overlay.Point{X: rect.X, Y: rect.Y}
	return overlay.Geometry{
		Resolution: &res,
		ScreenMode: &mode,
		Position:   &point,
	}, nil
}

// ScreenModeOf classifies a window. A window covering the screen without the
// fullscreen state is borderless.
func ScreenModeOf(window, screen mosaic.Rect, fullscreen bool) overlay.ScreenMode {
	if fullscreen {
		return overlay.Fullscreen
	}
	if window == screen {
		return overlay.Borderless
	}
	return overlay.Windowed
}
