// Package api is the HTTP control surface of the overlay slots.
package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/ItsNotGoodName/x-overlay/internal/build"
	"github.com/ItsNotGoodName/x-overlay/internal/config"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/internal/slots"
	"github.com/ItsNotGoodName/x-overlay/internal/theme"
	"github.com/danielgtaylor/huma/v2"
)

type Handler struct {
	manager *slots.Manager
	catalog *theme.Catalog
	store   config.Store
}

func NewHandler(manager *slots.Manager, catalog *theme.Catalog, store config.Store) Handler {
	return Handler{
		manager: manager,
		catalog: catalog,
		store:   store,
	}
}

type SnapshotOutput struct {
	Body slots.Snapshot
}

type SlotInput struct {
	Slot int `path:"slot" doc:"slot number starting at 1"`
}

type ModeInput struct {
	SlotInput
	Body struct {
		Mode string `json:"mode" enum:"FRAMEDATA,CONSOLE,TIMER,NOTES"`
		Swap bool   `json:"swap,omitempty" doc:"exchange with the slot holding mode"`
	}
}

type PositionInput struct {
	SlotInput
	Body struct {
		Position string `json:"position" enum:"TOP_LEFT,TOP_CENTER,TOP_RIGHT,BOTTOM_LEFT,BOTTOM_CENTER,BOTTOM_RIGHT"`
		Swap     bool   `json:"swap,omitempty" doc:"exchange with the active overlay at position"`
	}
}

type ThemeInput struct {
	SlotInput
	Body struct {
		Theme string `json:"theme" doc:"theme filename" example:"classic.toml"`
	}
}

type LayoutInput struct {
	Body struct {
		Layout string `json:"layout" enum:"ONE,TWO,THREE,FOUR"`
	}
}

type EnableInput struct {
	Body struct {
		Enable        bool  `json:"enable"`
		AutomaticHide *bool `json:"automatic_hide,omitempty"`
	}
}

type ConsoleInput struct {
	Body struct {
		Text string `json:"text"`
	}
}

type NotesInput struct {
	Body struct {
		Text string `json:"text"`
	}
}

type TimerInput struct {
	Action string `path:"action" enum:"start,stop,reset"`
}

type ColumnsInput struct {
	Body struct {
		Columns []string `json:"columns"`
	}
}

type ThemesInput struct {
	Mode string `path:"mode" enum:"FRAMEDATA,CONSOLE,TIMER,NOTES"`
}

type ThemeEntry struct {
	Name     string        `json:"name"`
	Filename string        `json:"filename"`
	Theme    overlay.Theme `json:"theme"`
}

type ThemesOutput struct {
	Body []ThemeEntry
}

type SettingsOutput struct {
	Body config.Settings
}

type SettingsInput struct {
	Body config.Settings
}

type BuildOutput struct {
	Body build.Build
}

func (h Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-overlays",
		Method:      http.MethodGet,
		Path:        "/api/overlays",
		Summary:     "Get slots and overlays",
	}, h.GetOverlays)
	huma.Register(api, huma.Operation{
		OperationID: "put-slot-mode",
		Method:      http.MethodPut,
		Path:        "/api/slots/{slot}/mode",
		Summary:     "Change the mode of a slot",
	}, h.PutSlotMode)
	huma.Register(api, huma.Operation{
		OperationID: "put-slot-position",
		Method:      http.MethodPut,
		Path:        "/api/slots/{slot}/position",
		Summary:     "Change the position of a slot",
	}, h.PutSlotPosition)
	huma.Register(api, huma.Operation{
		OperationID: "put-slot-theme",
		Method:      http.MethodPut,
		Path:        "/api/slots/{slot}/theme",
		Summary:     "Change the theme of a slot",
	}, h.PutSlotTheme)
	huma.Register(api, huma.Operation{
		OperationID: "put-layout",
		Method:      http.MethodPut,
		Path:        "/api/layout",
		Summary:     "Change the number of active slots",
	}, h.PutLayout)
	huma.Register(api, huma.Operation{
		OperationID: "put-enable",
		Method:      http.MethodPut,
		Path:        "/api/enable",
		Summary:     "Show or hide overlays",
	}, h.PutEnable)
	huma.Register(api, huma.Operation{
		OperationID: "put-framedata-columns",
		Method:      http.MethodPut,
		Path:        "/api/framedata/columns",
		Summary:     "Change the visible frame data columns",
	}, h.PutFrameDataColumns)
	huma.Register(api, huma.Operation{
		OperationID: "put-notes",
		Method:      http.MethodPut,
		Path:        "/api/notes",
		Summary:     "Change the notes text",
	}, h.PutNotes)
	huma.Register(api, huma.Operation{
		OperationID: "post-timer",
		Method:      http.MethodPost,
		Path:        "/api/timer/{action}",
		Summary:     "Start, stop or reset the timer",
	}, h.PostTimer)
	huma.Register(api, huma.Operation{
		OperationID: "post-console",
		Method:      http.MethodPost,
		Path:        "/api/console",
		Summary:     "Write text to the writable overlays",
	}, h.PostConsole)
	huma.Register(api, huma.Operation{
		OperationID: "post-reload",
		Method:      http.MethodPost,
		Path:        "/api/reload",
		Summary:     "Reload overlays from the settings file",
	}, h.PostReload)
	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/api/settings",
		Summary:     "Get the stored settings",
	}, h.GetSettings)
	huma.Register(api, huma.Operation{
		OperationID: "patch-settings",
		Method:      http.MethodPatch,
		Path:        "/api/settings",
		Summary:     "Update and apply stored settings",
	}, h.PatchSettings)
	huma.Register(api, huma.Operation{
		OperationID: "get-themes",
		Method:      http.MethodGet,
		Path:        "/api/themes/{mode}",
		Summary:     "List the themes of a mode",
	}, h.GetThemes)
	huma.Register(api, huma.Operation{
		OperationID: "get-build",
		Method:      http.MethodGet,
		Path:        "/api/build",
		Summary:     "Get build information",
	}, h.GetBuild)
}

func (h Handler) GetOverlays(ctx context.Context, input *struct{}) (*SnapshotOutput, error) {
	return &SnapshotOutput{Body: h.manager.Snapshot()}, nil
}

func (h Handler) PutSlotMode(ctx context.Context, input *ModeInput) (*SnapshotOutput, error) {
	mode, err := overlay.ParseMode(input.Body.Mode)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if err := h.manager.ChangeMode(mode, input.Slot-1, input.Body.Swap); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutSlotPosition(ctx context.Context, input *PositionInput) (*SnapshotOutput, error) {
	position, err := overlay.ParsePosition(input.Body.Position)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if err := h.manager.ChangePosition(position, input.Slot-1, input.Body.Swap); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutSlotTheme(ctx context.Context, input *ThemeInput) (*SnapshotOutput, error) {
	mode, err := h.manager.Mode(input.Slot - 1)
	if err != nil {
		return nil, toHTTPError(err)
	}
	t, err := h.catalog.Resolve(mode, input.Body.Theme)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if err := h.manager.ChangeTheme(t, input.Slot-1); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutLayout(ctx context.Context, input *LayoutInput) (*SnapshotOutput, error) {
	layout, err := overlay.ParseLayout(input.Body.Layout)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if err := h.manager.ChangeLayout(layout); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutEnable(ctx context.Context, input *EnableInput) (*SnapshotOutput, error) {
	h.manager.EnableOverlays(input.Body.Enable)
	if input.Body.AutomaticHide != nil {
		h.manager.EnableAutomaticHide(*input.Body.AutomaticHide)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutFrameDataColumns(ctx context.Context, input *ColumnsInput) (*SnapshotOutput, error) {
	for _, c := range input.Body.Columns {
		if !slices.Contains(overlay.FrameDataColumns, c) {
			return nil, huma.Error422UnprocessableEntity("unknown column", &huma.ErrorDetail{
				Location: "body.columns",
				Value:    c,
			})
		}
	}
	if err := h.manager.SetFrameDataColumns(input.Body.Columns); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) PutNotes(ctx context.Context, input *NotesInput) (*struct{}, error) {
	err := h.manager.Content(overlay.ModeNotes, func(content overlay.Content) error {
		content.(*overlay.Notes).SetText(input.Body.Text)
		return nil
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return nil, nil
}

func (h Handler) PostTimer(ctx context.Context, input *TimerInput) (*struct{}, error) {
	err := h.manager.Content(overlay.ModeTimer, func(content overlay.Content) error {
		timer := content.(*overlay.Timer)
		switch input.Action {
		case "start":
			timer.Start()
		case "stop":
			timer.Stop()
		case "reset":
			timer.Reset()
		}
		return nil
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return nil, nil
}

func (h Handler) PostConsole(ctx context.Context, input *ConsoleInput) (*struct{}, error) {
	text := input.Body.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	h.manager.Write([]byte(text))
	return nil, nil
}

func (h Handler) PostReload(ctx context.Context, input *struct{}) (*SnapshotOutput, error) {
	settings, err := h.store.GetSettings()
	if err != nil {
		return nil, err
	}
	if err := h.manager.Reload(settings); err != nil {
		return nil, toHTTPError(err)
	}
	return h.GetOverlays(ctx, nil)
}

func (h Handler) GetSettings(ctx context.Context, input *struct{}) (*SettingsOutput, error) {
	settings, err := h.store.GetSettings()
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: settings}, nil
}

// PatchSettings stores the merged settings and then applies them. Invalid
// settings are neither stored nor applied.
func (h Handler) PatchSettings(ctx context.Context, input *SettingsInput) (*SettingsOutput, error) {
	var stored config.Settings
	err := h.store.UpdateSettings(func(settings config.Settings) (config.Settings, error) {
		settings = settings.Merge(input.Body)
		if err := h.manager.Check(settings); err != nil {
			return nil, err
		}
		stored = settings
		return settings, nil
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	if err := h.manager.Reload(stored); err != nil {
		return nil, toHTTPError(err)
	}
	return &SettingsOutput{Body: stored}, nil
}

func (h Handler) GetThemes(ctx context.Context, input *ThemesInput) (*ThemesOutput, error) {
	mode, err := overlay.ParseMode(input.Mode)
	if err != nil {
		return nil, toHTTPError(err)
	}

	entries := h.catalog.Entries(mode)
	body := make([]ThemeEntry, 0, len(entries))
	for _, e := range entries {
		body = append(body, ThemeEntry{
			Name:     e.Name,
			Filename: e.Filename,
			Theme:    e.Theme,
		})
	}
	return &ThemesOutput{Body: body}, nil
}

func (h Handler) GetBuild(ctx context.Context, input *struct{}) (*BuildOutput, error) {
	return &BuildOutput{Body: build.Current}, nil
}

func toHTTPError(err error) error {
	var configErr *config.Error
	switch {
	case errors.As(err, &configErr):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, slots.ErrSlotRange),
		errors.Is(err, slots.ErrSlotEmpty),
		errors.Is(err, theme.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, slots.ErrSwapTarget),
		errors.Is(err, slots.ErrModeAssigned):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, overlay.ErrUnknownMode),
		errors.Is(err, overlay.ErrUnknownPosition),
		errors.Is(err, overlay.ErrUnknownLayout),
		errors.Is(err, slots.ErrLayout):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return err
	}
}
