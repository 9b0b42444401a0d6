package api

import (
	"context"
	"encoding/json/jsontext"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
)

func (s *Server) registerHookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "interceptHook",
		Method:      http.MethodPost,
		Path:        "/api/v1/hooks/{event}",
		Summary:     "Intercept a host event",
		Description: "Runs the event's interception steps over the payload and returns the rewritten payload",
		Tags:        []string{"Hooks"},
	}, s.handleHook)
}

// HookInput is a host event payload.
type HookInput struct {
	Event   string `path:"event" doc:"Host event name" enum:"anime-collection,raw-anime-collection,manga-collection,raw-manga-collection,cached-anime-collection,anime-library-collection,anime-library-stream-collection,missing-episodes"`
	RawBody []byte `contentType:"application/json"`
}

// HookResponse is the rewritten payload and what each step did.
type HookResponse struct {
	Payload any        `json:"payload" doc:"Rewritten payload; members the bridge does not rewrite are returned as sent"`
	Trace   hook.Trace `json:"trace" doc:"Per-step lifecycle"`
}

// HookOutput wraps HookResponse for Huma.
type HookOutput struct {
	Body HookResponse
}

func (s *Server) handleHook(ctx context.Context, input *HookInput) (*HookOutput, error) {
	if kind, ok := collectionKind(input.Event); ok && s.deps.Collections != nil && len(input.RawBody) > 0 {
		// Recorded before queuing so pending collection fetches wake up even while the loop is busy.
		if err := s.deps.Collections.Record(ctx, kind, input.RawBody); err != nil {
			return nil, err
		}
	}

	var (
		payload     jsontext.Value
		trace       hook.Trace
		dispatchErr error
	)
	err := s.deps.Loop.Do(ctx, func(ctx context.Context) {
		payload, trace, dispatchErr = s.deps.Hooks.Dispatch(ctx, input.Event, input.RawBody)
	})
	if err != nil {
		return nil, err
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}

	if failed := trace.Failed(); len(failed) > 0 {
		s.logger.Warn("hook steps failed", "event", input.Event, "trace", trace.ID, "failed", len(failed))
	}
	return &HookOutput{Body: HookResponse{Payload: payload, Trace: trace}}, nil
}

// collectionKind maps a hook event to the collection it carries.
func collectionKind(event string) (string, bool) {
	switch event {
	case hook.EventAnimeCollection, hook.EventRawAnimeCollection, hook.EventCachedAnimeCollection:
		return host.CollectionAnime, true
	case hook.EventMangaCollection, hook.EventRawMangaCollection:
		return host.CollectionManga, true
	}
	return "", false
}
