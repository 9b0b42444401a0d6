package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/errors"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/plugins/imageoverride"
	"github.com/listenupapp/mediatray/internal/tray"
)

func (s *Server) registerPluginRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPlugins",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins",
		Summary:     "List plugins",
		Description: "Returns the enabled plugins",
		Tags:        []string{"Plugins"},
	}, s.handleListPlugins)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTray",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins/{plugin}/tray",
		Summary:     "Render tray",
		Description: "Returns the current render tree of a plugin tray",
		Tags:        []string{"Trays"},
	}, s.handleGetTray)

	huma.Register(s.api, huma.Operation{
		OperationID: "openTray",
		Method:      http.MethodPost,
		Path:        "/api/v1/plugins/{plugin}/tray/open",
		Summary:     "Open tray",
		Description: "Reloads a plugin tray and returns its render tree",
		Tags:        []string{"Trays"},
	}, s.handleOpenTray)

	huma.Register(s.api, huma.Operation{
		OperationID: "setTrayInput",
		Method:      http.MethodPut,
		Path:        "/api/v1/plugins/{plugin}/tray/input",
		Summary:     "Set tray input",
		Description: "Records the image URL typed into an override tray",
		Tags:        []string{"Trays"},
	}, s.handleSetTrayInput)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveTray",
		Method:      http.MethodPost,
		Path:        "/api/v1/plugins/{plugin}/tray/save",
		Summary:     "Save tray",
		Description: "Saves the tray form and returns the new render tree",
		Tags:        []string{"Trays"},
	}, s.handleSaveTray)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOverrides",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins/{plugin}/overrides",
		Summary:     "List overrides",
		Description: "Returns every overridden entity, optionally filtered by title",
		Tags:        []string{"Overrides"},
	}, s.handleListOverrides)

	huma.Register(s.api, huma.Operation{
		OperationID:   "openOverride",
		Method:        http.MethodPost,
		Path:          "/api/v1/plugins/{plugin}/overrides/{id}/open",
		Summary:       "Open overridden entity",
		Description:   "Closes the tray and navigates to the entity page",
		Tags:          []string{"Overrides"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleOpenOverride)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins/{plugin}/settings",
		Summary:     "Get display settings",
		Description: "Returns the stored spoiler display settings",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/plugins/{plugin}/settings",
		Summary:     "Update display settings",
		Description: "Saves the spoiler display settings and re-runs the page passes",
		Tags:        []string{"Settings"},
	}, s.handleUpdateSettings)
}

// PluginInput selects a plugin.
type PluginInput struct {
	Plugin string `path:"plugin" doc:"Plugin id"`
}

// PluginInfo describes an enabled plugin.
type PluginInfo struct {
	ID   string `json:"id" doc:"Plugin id"`
	Kind string `json:"kind" doc:"override or spoiler"`
}

// ListPluginsOutput lists enabled plugins.
type ListPluginsOutput struct {
	Body []PluginInfo
}

// TrayOutput is a tray render tree.
type TrayOutput struct {
	Body tray.Node
}

// TrayInputRequest is what the user typed.
type TrayInputRequest struct {
	Value string `json:"value" maxLength:"2048" doc:"Image URL, empty to remove the override"`
}

// TrayInputInput wraps TrayInputRequest for Huma.
type TrayInputInput struct {
	Plugin string `path:"plugin" doc:"Plugin id"`
	Body   TrayInputRequest
}

// ListOverridesInput filters the override listing.
type ListOverridesInput struct {
	Plugin string `path:"plugin" doc:"Plugin id"`
	Query  string `query:"q" doc:"Title or id filter"`
}

// ListOverridesOutput is the override listing.
type ListOverridesOutput struct {
	Body []tray.Row
}

// OpenOverrideInput selects an overridden entity.
type OpenOverrideInput struct {
	Plugin string `path:"plugin" doc:"Plugin id"`
	ID     string `path:"id" doc:"Entity id"`
}

// SettingsOutput is the display settings.
type SettingsOutput struct {
	Body domain.DisplaySettings
}

// UpdateSettingsInput replaces the display settings.
type UpdateSettingsInput struct {
	Plugin string `path:"plugin" doc:"Plugin id"`
	Body   domain.DisplaySettings
}

func (s *Server) handleListPlugins(_ context.Context, _ *struct{}) (*ListPluginsOutput, error) {
	out := make([]PluginInfo, 0, len(s.overrides)+1)
	for _, p := range s.deps.Overrides {
		out = append(out, PluginInfo{ID: p.ID(), Kind: "override"})
	}
	if s.deps.Spoilers != nil {
		out = append(out, PluginInfo{ID: s.deps.Spoilers.ID(), Kind: "spoiler"})
	}
	return &ListPluginsOutput{Body: out}, nil
}

func (s *Server) handleGetTray(ctx context.Context, input *PluginInput) (*TrayOutput, error) {
	return s.trayAction(ctx, input.Plugin, nil, nil)
}

func (s *Server) handleOpenTray(ctx context.Context, input *PluginInput) (*TrayOutput, error) {
	return s.trayAction(ctx, input.Plugin,
		func(ctx context.Context, p *imageoverride.Plugin) error {
			// An incomplete prefetch only costs titles in the listing.
			if err := p.Tray().Open(ctx); err != nil {
				s.logger.Warn("tray opened without titles", "plugin", p.ID(), "error", err)
			}
			return nil
		},
		func(ctx context.Context) error {
			return s.deps.Spoilers.Tray().Open(ctx)
		},
	)
}

func (s *Server) handleSaveTray(ctx context.Context, input *PluginInput) (*TrayOutput, error) {
	return s.trayAction(ctx, input.Plugin,
		func(ctx context.Context, p *imageoverride.Plugin) error {
			return p.Tray().Save(ctx)
		},
		func(ctx context.Context) error {
			return s.deps.Spoilers.Tray().Save(ctx)
		},
	)
}

func (s *Server) handleSetTrayInput(ctx context.Context, input *TrayInputInput) (*TrayOutput, error) {
	return s.trayAction(ctx, input.Plugin,
		func(_ context.Context, p *imageoverride.Plugin) error {
			p.Tray().SetInput(input.Body.Value)
			return nil
		},
		func(context.Context) error {
			return errors.Validation("hide-spoilers has no text input")
		},
	)
}

// trayAction runs the matching action on the loop, then renders the tray.
// Nil actions only render.
func (s *Server) trayAction(
	ctx context.Context,
	plugin string,
	onOverride func(context.Context, *imageoverride.Plugin) error,
	onSpoiler func(context.Context) error,
) (*TrayOutput, error) {
	override, isOverride := s.overrides[plugin]
	isSpoiler := s.deps.Spoilers != nil && plugin == s.deps.Spoilers.ID()
	if !isOverride && !isSpoiler {
		return nil, errors.NotFoundf("plugin %q is not enabled", plugin)
	}

	var (
		view      tray.Node
		actionErr error
	)
	err := s.deps.Loop.Do(ctx, func(ctx context.Context) {
		if isOverride {
			if onOverride != nil {
				actionErr = onOverride(ctx, override)
			}
			view = override.Tray().View(ctx)
			return
		}
		if onSpoiler != nil {
			actionErr = onSpoiler(ctx)
		}
		view = s.deps.Spoilers.Tray().View()
	})
	if err != nil {
		return nil, err
	}
	if actionErr != nil {
		return nil, actionErr
	}
	return &TrayOutput{Body: view}, nil
}

func (s *Server) handleListOverrides(ctx context.Context, input *ListOverridesInput) (*ListOverridesOutput, error) {
	p, err := s.overridePlugin(input.Plugin)
	if err != nil {
		return nil, err
	}

	var rows []tray.Row
	var searchErr error
	if err := s.deps.Loop.Do(ctx, func(ctx context.Context) {
		rows, searchErr = p.Tray().Search(ctx, input.Query)
	}); err != nil {
		return nil, err
	}
	if searchErr != nil {
		return nil, searchErr
	}
	return &ListOverridesOutput{Body: rows}, nil
}

func (s *Server) handleOpenOverride(ctx context.Context, input *OpenOverrideInput) (*struct{}, error) {
	p, err := s.overridePlugin(input.Plugin)
	if err != nil {
		return nil, err
	}

	var openErr error
	if err := s.deps.Loop.Do(ctx, func(ctx context.Context) {
		openErr = p.Tray().OpenEntry(ctx, input.ID)
	}); err != nil {
		return nil, err
	}
	return nil, openErr
}

func (s *Server) handleGetSettings(ctx context.Context, input *PluginInput) (*SettingsOutput, error) {
	if err := s.requireSpoilers(input.Plugin); err != nil {
		return nil, err
	}
	ds, err := s.deps.Spoilers.Settings().Load(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: ds}, nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	if err := s.requireSpoilers(input.Plugin); err != nil {
		return nil, err
	}

	var saveErr error
	if err := s.deps.Loop.Do(ctx, func(ctx context.Context) {
		st := s.deps.Spoilers.Tray()
		st.SetForm(input.Body)
		saveErr = st.Save(ctx)
	}); err != nil {
		return nil, err
	}
	if saveErr != nil {
		return nil, saveErr
	}
	return &SettingsOutput{Body: s.deps.Spoilers.Tray().Form()}, nil
}

func (s *Server) overridePlugin(id string) (*imageoverride.Plugin, error) {
	p, ok := s.overrides[id]
	if !ok {
		return nil, errors.NotFoundf("override plugin %q is not enabled", id)
	}
	return p, nil
}

func (s *Server) requireSpoilers(id string) error {
	if id != plugins.HideSpoilersID || s.deps.Spoilers == nil {
		return errors.NotFoundf("plugin %q has no display settings", id)
	}
	return nil
}

// enabledIDs returns the ids of every enabled plugin in a stable order.
func (s *Server) enabledIDs() []string {
	ids := make([]string, 0, len(s.overrides)+1)
	for id := range s.overrides {
		ids = append(ids, id)
	}
	if s.deps.Spoilers != nil {
		ids = append(ids, s.deps.Spoilers.ID())
	}
	slices.Sort(ids)
	return ids
}
