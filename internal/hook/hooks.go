package hook

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/errors"
)

// Event names accepted by Dispatch.
const (
	EventAnimeCollection              = "anime-collection"
	EventRawAnimeCollection           = "raw-anime-collection"
	EventMangaCollection              = "manga-collection"
	EventRawMangaCollection           = "raw-manga-collection"
	EventCachedAnimeCollection        = "cached-anime-collection"
	EventAnimeLibraryCollection       = "anime-library-collection"
	EventAnimeLibraryStreamCollection = "anime-library-stream-collection"
	EventMissingEpisodes              = "missing-episodes"
)

// Events lists every dispatchable event in a stable order.
var Events = []string{
	EventAnimeCollection,
	EventRawAnimeCollection,
	EventMangaCollection,
	EventRawMangaCollection,
	EventCachedAnimeCollection,
	EventAnimeLibraryCollection,
	EventAnimeLibraryStreamCollection,
	EventMissingEpisodes,
}

// Hooks holds one pipeline per host event.
type Hooks struct {
	AnimeCollection              *Pipeline[*domain.MediaCollection]
	RawAnimeCollection           *Pipeline[*domain.MediaCollection]
	MangaCollection              *Pipeline[*domain.MediaCollection]
	RawMangaCollection           *Pipeline[*domain.MediaCollection]
	CachedAnimeCollection        *Pipeline[*domain.MediaCollection]
	AnimeLibraryCollection       *Pipeline[*domain.LibraryCollection]
	AnimeLibraryStreamCollection *Pipeline[*domain.StreamCollection]
	MissingEpisodes              *Pipeline[*domain.MissingEpisodes]
}

// NewHooks creates empty pipelines for every event.
func NewHooks(logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "hooks")

	return &Hooks{
		AnimeCollection:              NewPipeline[*domain.MediaCollection](EventAnimeCollection, logger),
		RawAnimeCollection:           NewPipeline[*domain.MediaCollection](EventRawAnimeCollection, logger),
		MangaCollection:              NewPipeline[*domain.MediaCollection](EventMangaCollection, logger),
		RawMangaCollection:           NewPipeline[*domain.MediaCollection](EventRawMangaCollection, logger),
		CachedAnimeCollection:        NewPipeline[*domain.MediaCollection](EventCachedAnimeCollection, logger),
		AnimeLibraryCollection:       NewPipeline[*domain.LibraryCollection](EventAnimeLibraryCollection, logger),
		AnimeLibraryStreamCollection: NewPipeline[*domain.StreamCollection](EventAnimeLibraryStreamCollection, logger),
		MissingEpisodes:              NewPipeline[*domain.MissingEpisodes](EventMissingEpisodes, logger),
	}
}

// Collections returns the four collection pipelines that carry media lists.
func (h *Hooks) Collections() []*Pipeline[*domain.MediaCollection] {
	return []*Pipeline[*domain.MediaCollection]{
		h.AnimeCollection,
		h.RawAnimeCollection,
		h.MangaCollection,
		h.RawMangaCollection,
	}
}

// Dispatch decodes body as the payload of event, runs its pipeline and returns the re-encoded payload.
// Members the payload types do not model are written back as received.
func (h *Hooks) Dispatch(ctx context.Context, event string, body []byte) (jsontext.Value, Trace, error) {
	switch event {
	case EventAnimeCollection:
		return dispatch(ctx, h.AnimeCollection, body)
	case EventRawAnimeCollection:
		return dispatch(ctx, h.RawAnimeCollection, body)
	case EventMangaCollection:
		return dispatch(ctx, h.MangaCollection, body)
	case EventRawMangaCollection:
		return dispatch(ctx, h.RawMangaCollection, body)
	case EventCachedAnimeCollection:
		return dispatch(ctx, h.CachedAnimeCollection, body)
	case EventAnimeLibraryCollection:
		return dispatch(ctx, h.AnimeLibraryCollection, body)
	case EventAnimeLibraryStreamCollection:
		return dispatch(ctx, h.AnimeLibraryStreamCollection, body)
	case EventMissingEpisodes:
		return dispatch(ctx, h.MissingEpisodes, body)
	}
	return nil, Trace{}, errors.NotFoundf("unknown hook event %q", event)
}

func dispatch[T any](ctx context.Context, p *Pipeline[*T], body []byte) (jsontext.Value, Trace, error) {
	payload := new(T)
	if len(body) > 0 {
		if err := json.Unmarshal(body, payload); err != nil {
			return nil, Trace{}, errors.Validationf("invalid %s payload: %v", p.Event(), err)
		}
	}
	trace := p.Run(ctx, payload)

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, trace, fmt.Errorf("encode %s payload: %w", p.Event(), err)
	}
	return out, trace, nil
}
