package spoiler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/errors"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/tray"
)

// Client queries that render episode lists.
var InvalidatedQueries = []string{
	"ANIME-COLLECTION-get-library-collection",
	"ANIME-ENTRIES-get-anime-entry",
}

// Form field names.
const (
	FieldHideThumbnails   = "hideThumbnails"
	FieldHideTitles       = "hideTitles"
	FieldHideDescriptions = "hideDescriptions"
	FieldSkipNextEpisode  = "skipNextEpisode"
)

// SettingsStore loads and saves the display settings. *overrides.Settings satisfies it.
type SettingsStore interface {
	SettingsSource
	Save(ctx context.Context, ds domain.DisplaySettings) error
}

// Refresher re-runs the page passes. *Engine satisfies it.
type Refresher interface {
	RefreshAll()
}

// SettingsTray is the hide-spoilers tray: one form bound to the display settings.
type SettingsTray struct {
	plugin   string
	store    SettingsStore
	engine   Refresher
	notifier host.Notifier
	logger   *slog.Logger

	mu   sync.Mutex
	form domain.DisplaySettings
}

// NewSettingsTray creates the tray.
func NewSettingsTray(plugin string, store SettingsStore, engine Refresher, notifier host.Notifier, logger *slog.Logger) *SettingsTray {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SettingsTray{
		plugin:   plugin,
		store:    store,
		engine:   engine,
		notifier: notifier,
		logger:   logger.With("component", "settings-tray"),
	}
}

// Open loads the stored settings into the form.
func (t *SettingsTray) Open(ctx context.Context) error {
	ds, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.form = ds
	t.mu.Unlock()
	return nil
}

// Form returns the unsaved form values.
func (t *SettingsTray) Form() domain.DisplaySettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// SetForm replaces every form value.
func (t *SettingsTray) SetForm(ds domain.DisplaySettings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = ds
}

// SetField sets one form value by name.
func (t *SettingsTray) SetField(field string, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch field {
	case FieldHideThumbnails:
		t.form.HideThumbnails = on
	case FieldHideTitles:
		t.form.HideTitles = on
	case FieldHideDescriptions:
		t.form.HideDescriptions = on
	case FieldSkipNextEpisode:
		t.form.SkipNextEpisode = on
	default:
		return errors.Validationf("unknown field %q", field)
	}
	return nil
}

// Save stores the form, re-runs both passes and confirms with a toast.
func (t *SettingsTray) Save(ctx context.Context) error {
	t.notifier.InvalidateQueries(InvalidatedQueries...)

	if err := t.store.Save(ctx, t.Form()); err != nil {
		t.notifier.Toast(t.plugin, host.ToastError, "Failed to save settings")
		return err
	}
	if err := t.Open(ctx); err != nil {
		t.logger.Warn("failed to reload settings", "error", err)
	}

	t.engine.RefreshAll()
	t.notifier.Toast(t.plugin, host.ToastSuccess, "Settings saved")
	return nil
}

// View renders the tray.
func (t *SettingsTray) View() tray.Node {
	f := t.Form()
	return tray.Stack(
		tray.Text("Hide potential spoilers"),
		tray.Stack(
			tray.Switch("Hide thumbnails", FieldHideThumbnails, f.HideThumbnails),
			tray.Switch("Hide titles", FieldHideTitles, f.HideTitles),
			tray.Switch("Hide descriptions", FieldHideDescriptions, f.HideDescriptions),
		),
		tray.Checkbox("Skip next episode", FieldSkipNextEpisode, f.SkipNextEpisode),
		tray.Button("Save", "save", "primary"),
	)
}
