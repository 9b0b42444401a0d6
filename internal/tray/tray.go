// Package tray drives the override plugins' tray: which entity is focused, the URL input,
// the badge, saving, and the list of every overridden entity.
package tray

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/errors"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/search"
	"github.com/listenupapp/mediatray/internal/validation"
)

// Entry page paths.
const (
	AnimeEntryPath = "/entry"
	MangaEntryPath = "/manga/entry"
)

// Action names the host sends back on clicks.
const (
	ActionSave     = "save"
	ActionOpenPref = "open_"
	FieldURL       = "url"
)

// State is the navigation state of a tray. Zero means no entity is focused.
type State struct {
	CurrentEntityID int `json:"currentEntityId"`
}

// Labels are the user-facing strings of a tray.
type Labels struct {
	Title      string
	Help       string
	InputLabel string
}

// Row is one overridden entity in the tray listing.
type Row struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Target   string `json:"target"`
	Action   string `json:"action"`
}

// Config wires a Controller.
type Config struct {
	Plugin      string
	Labels      Labels
	Adapter     *overrides.Adapter
	Collections host.Collections
	Screen      host.Screen
	Notifier    host.Notifier
	Validator   *validation.Validator
	Index       *search.Index // optional
	Logger      *slog.Logger
}

// Controller is the tray state machine of one override plugin instance.
type Controller struct {
	plugin      string
	labels      Labels
	adapter     *overrides.Adapter
	collections host.Collections
	screen      host.Screen
	notifier    host.Notifier
	validator   *validation.Validator
	index       *search.Index
	logger      *slog.Logger

	mu     sync.Mutex
	state  State
	input  string
	badge  host.Badge
	lookup mediaLookup
}

// mediaLookup resolves entity keys to media, anime first.
type mediaLookup struct {
	anime map[string]*domain.BaseMedia
	manga map[string]*domain.BaseMedia
}

func (l mediaLookup) find(key string) *domain.BaseMedia {
	if m, ok := l.anime[key]; ok {
		return m
	}
	if m, ok := l.manga[key]; ok {
		return m
	}
	return nil
}

// New creates a controller. Call HandleNavigation from the screen's OnNavigate.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	return &Controller{
		plugin:      cfg.Plugin,
		labels:      cfg.Labels,
		adapter:     cfg.Adapter,
		collections: cfg.Collections,
		screen:      cfg.Screen,
		notifier:    cfg.Notifier,
		validator:   v,
		index:       cfg.Index,
		logger:      logger.With("component", "tray"),
	}
}

// Plugin returns the owning plugin id.
func (c *Controller) Plugin() string {
	return c.plugin
}

// State returns the current navigation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Input returns the current input value.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput records what the user typed.
func (c *Controller) SetInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = value
}

// Badge returns the badge last pushed to the host.
func (c *Controller) Badge() host.Badge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badge
}

// EntityFromNavigation returns the focused entity id of a navigation, or 0.
func EntityFromNavigation(nav host.Navigation) int {
	if nav.Pathname != AnimeEntryPath && nav.Pathname != MangaEntryPath {
		return 0
	}
	id, err := strconv.Atoi(nav.Param("id"))
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// HandleNavigation updates the focused entity and reloads the input and badge when it changes.
func (c *Controller) HandleNavigation(ctx context.Context, nav host.Navigation) {
	id := EntityFromNavigation(nav)

	c.mu.Lock()
	changed := c.state.CurrentEntityID != id
	c.state.CurrentEntityID = id
	c.mu.Unlock()

	if changed {
		c.reload(ctx)
	}
}

// Open replays the current screen and reloads the state. With no entity focused it also
// refreshes the title lookups used by the listing.
func (c *Controller) Open(ctx context.Context) error {
	id := EntityFromNavigation(c.screen.Current())
	c.mu.Lock()
	c.state.CurrentEntityID = id
	c.mu.Unlock()

	c.reload(ctx)
	if id != 0 {
		return nil
	}
	return c.prefetch(ctx)
}

// Save stores the input for the focused entity, or removes the override when the input is empty.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	id := c.state.CurrentEntityID
	value := c.input
	c.mu.Unlock()

	if id == 0 {
		return errors.Validation("no entry is open")
	}
	if err := c.validator.Var(FieldURL, value, "omitempty,imageurl"); err != nil {
		return err
	}

	if err := c.adapter.Set(ctx, id, value); err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	c.notifier.Toast(c.plugin, host.ToastInfo, "Saving...")
	c.reload(ctx)

	if err := c.collections.RefreshAnimeCollection(ctx); err != nil {
		c.logger.Warn("anime collection refresh failed", "error", err)
	}
	if err := c.collections.RefreshMangaCollection(ctx); err != nil {
		c.logger.Warn("manga collection refresh failed", "error", err)
	}
	c.notifier.UpdateTray(c.plugin)
	return nil
}

// Overrides lists every overridden entity in ascending key order.
func (c *Controller) Overrides(ctx context.Context) ([]Row, error) {
	all, err := c.adapter.All(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	lookup := c.lookup
	c.mu.Unlock()

	rows := make([]Row, 0, len(all))
	for _, key := range all.SortedKeys() {
		rows = append(rows, newRow(key, all[key], lookup.find(key)))
	}
	return rows, nil
}

func newRow(key, url string, media *domain.BaseMedia) Row {
	row := Row{
		ID:       key,
		Title:    "ID: " + key,
		ImageURL: url,
		Target:   AnimeEntryPath,
		Action:   ActionOpenPref + key,
	}
	if media == nil {
		return row
	}
	if t := media.PreferredTitle(); t != "" {
		row.Title = t
	}
	if media.Type != domain.MediaTypeAnime {
		row.Target = MangaEntryPath
	}
	return row
}

// OpenEntry closes the tray and navigates to the page of an overridden entity.
func (c *Controller) OpenEntry(ctx context.Context, key string) error {
	rows, err := c.Overrides(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.ID != key {
			continue
		}
		c.notifier.CloseTray(c.plugin)
		c.screen.NavigateTo(row.Target, map[string]string{"id": row.ID})
		return nil
	}
	return errors.NotFoundf("no %s override for %s", c.adapter.Kind(), key)
}

// Search filters the listing by title or id. An empty query returns every row.
func (c *Controller) Search(ctx context.Context, q string) ([]Row, error) {
	rows, err := c.Overrides(ctx)
	if err != nil || q == "" || c.index == nil {
		return rows, err
	}

	docs := make([]*search.Document, 0, len(rows))
	c.mu.Lock()
	for _, row := range rows {
		doc := &search.Document{ID: row.ID, Title: row.Title, ImageURL: row.ImageURL}
		if m := c.lookup.find(row.ID); m != nil {
			doc.MediaType = string(m.Type)
			if m.Title != nil {
				doc.AltTitles = []string{m.Title.Romaji, m.Title.English, m.Title.Native}
			}
		}
		docs = append(docs, doc)
	}
	c.mu.Unlock()

	if err := c.index.Replace(docs); err != nil {
		return nil, err
	}
	res, err := c.index.Search(ctx, search.Params{Query: q, Limit: len(docs)})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Row, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]Row, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if row, ok := byID[hit.ID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// View renders the tray.
func (c *Controller) View(ctx context.Context) Node {
	c.mu.Lock()
	focused := c.state.CurrentEntityID != 0
	input := c.input
	c.mu.Unlock()

	var header Node
	if !focused {
		rows, err := c.Overrides(ctx)
		if err != nil {
			c.logger.Warn("failed to list overrides", "error", err)
		}
		list := make([]Node, 0, len(rows))
		for _, row := range rows {
			list = append(list, Flex(Text(row.Title), Button("Open", row.Action, "gray-subtle")))
		}
		header = Stack(
			Stack(Text(c.labels.Title), Hint(c.labels.Help)),
			Stack(list...),
		)
	} else {
		header = Stack()
		header.Hidden = true
	}

	field := Input(c.labels.InputLabel, FieldURL, input)
	field.Placeholder = "Enter a URL"
	editor := Stack(
		field,
		Button("Save", ActionSave, "white"),
	)
	editor.Hidden = !focused

	return Stack(header, editor)
}

// reload re-derives the input and badge from storage.
func (c *Controller) reload(ctx context.Context) {
	id := c.State().CurrentEntityID

	input, badge := "", host.Badge{}
	if id != 0 {
		url, ok, err := c.adapter.Get(ctx, id)
		if err != nil {
			c.logger.Warn("failed to read override", "entity", id, "error", err)
		}
		if ok {
			input, badge = url, host.Badge{Number: 1, Intent: "info"}
		}
	}

	c.mu.Lock()
	c.input = input
	c.badge = badge
	c.mu.Unlock()

	c.notifier.Badge(c.plugin, badge)
}

// prefetch fetches both collections concurrently and rebuilds the title lookups.
func (c *Controller) prefetch(ctx context.Context) error {
	var anime, manga *domain.MediaCollection

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		col, err := c.collections.AnimeCollection(gctx, false)
		if err != nil {
			return fmt.Errorf("anime collection: %w", err)
		}
		anime = col
		return nil
	})
	g.Go(func() error {
		col, err := c.collections.MangaCollection(gctx, false)
		if err != nil {
			return fmt.Errorf("manga collection: %w", err)
		}
		manga = col
		return nil
	})
	err := g.Wait()

	lookup := mediaLookup{anime: indexMedia(anime), manga: indexMedia(manga)}
	c.mu.Lock()
	c.lookup = lookup
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("tray prefetch incomplete", "error", err)
	}
	return err
}

func indexMedia(col *domain.MediaCollection) map[string]*domain.BaseMedia {
	out := make(map[string]*domain.BaseMedia)
	col.Entries(func(entry *domain.MediaListEntry) bool {
		if entry.Media != nil {
			out[entry.Media.Key()] = entry.Media
		}
		return true
	})
	return out
}
