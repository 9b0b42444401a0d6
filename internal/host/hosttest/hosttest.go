// Package hosttest provides in-memory host collaborators for tests.
package hosttest

import (
	"context"
	"encoding/json/jsontext"
	"strconv"
	"sync"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/host"
)

// Toast is a recorded toast.
type Toast struct {
	Plugin  string
	Level   host.ToastLevel
	Message string
}

// Notifier records every effect.
type Notifier struct {
	mu          sync.Mutex
	Toasts      []Toast
	Badges      map[string]host.Badge
	Invalidated [][]string
	Closed      []string
	Updated     []string
}

var _ host.Notifier = (*Notifier)(nil)

// NewNotifier creates an empty recorder.
func NewNotifier() *Notifier {
	return &Notifier{Badges: make(map[string]host.Badge)}
}

func (n *Notifier) Toast(plugin string, level host.ToastLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Toasts = append(n.Toasts, Toast{Plugin: plugin, Level: level, Message: message})
}

func (n *Notifier) Badge(plugin string, badge host.Badge) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Badges[plugin] = badge
}

func (n *Notifier) InvalidateQueries(keys ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Invalidated = append(n.Invalidated, keys)
}

func (n *Notifier) CloseTray(plugin string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Closed = append(n.Closed, plugin)
}

func (n *Notifier) UpdateTray(plugin string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Updated = append(n.Updated, plugin)
}

// Collections serves fixed collections and counts calls.
type Collections struct {
	mu    sync.Mutex
	Anime *domain.MediaCollection
	Manga *domain.MediaCollection
	Err   error

	AnimeFetches   int
	MangaFetches   int
	BypassFetches  int
	AnimeRefreshes int
	MangaRefreshes int
}

var _ host.Collections = (*Collections)(nil)

func (c *Collections) AnimeCollection(_ context.Context, bypassCache bool) (*domain.MediaCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AnimeFetches++
	if bypassCache {
		c.BypassFetches++
	}
	return c.Anime, c.Err
}

func (c *Collections) MangaCollection(_ context.Context, bypassCache bool) (*domain.MediaCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MangaFetches++
	if bypassCache {
		c.BypassFetches++
	}
	return c.Manga, c.Err
}

func (c *Collections) RefreshAnimeCollection(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AnimeRefreshes++
	return nil
}

func (c *Collections) RefreshMangaCollection(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MangaRefreshes++
	return nil
}

// Counts returns the fetch counters under the lock.
func (c *Collections) Counts() (anime, manga, bypass int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AnimeFetches, c.MangaFetches, c.BypassFetches
}

// Emitter records emitted events.
type Emitter struct {
	mu     sync.Mutex
	Events []any
}

func (e *Emitter) Emit(event any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
}

// All returns a copy of the recorded events.
func (e *Emitter) All() []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]any, len(e.Events))
	copy(out, e.Events)
	return out
}

// Collection builds a one-list collection from media.
func Collection(media ...*domain.BaseMedia) *domain.MediaCollection {
	entries := make([]*domain.MediaListEntry, 0, len(media))
	for i, m := range media {
		entries = append(entries, &domain.MediaListEntry{
			Media:   m,
			Unknown: jsontext.Value(`{"id":` + strconv.Itoa(i+1) + `}`),
		})
	}
	return &domain.MediaCollection{
		MediaListCollection: &domain.MediaListCollection{
			Lists: []*domain.MediaListGroup{{Entries: entries, Unknown: jsontext.Value(`{"name":"Watching"}`)}},
		},
	}
}

// Media builds a media with a preferred title.
func Media(id int, mediaType domain.MediaType, title string) *domain.BaseMedia {
	return &domain.BaseMedia{ID: id, Type: mediaType, Title: &domain.MediaTitle{UserPreferred: title}}
}
