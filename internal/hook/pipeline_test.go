package hook

import (
	"context"
	"encoding/json/v2"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/domain"
)

func TestPipeline_RunsStepsInOrder(t *testing.T) {
	p := NewPipeline[*[]string]("test", nil)
	p.Register("a", func(_ context.Context, s *[]string) (Outcome, error) {
		*s = append(*s, "a")
		return Transformed, nil
	})
	p.Register("b", func(_ context.Context, s *[]string) (Outcome, error) {
		*s = append(*s, "b")
		return Skipped, nil
	})

	var got []string
	trace := p.Run(context.Background(), &got)

	assert.Equal(t, []string{"a", "b"}, got)
	require.Len(t, trace.Steps, 2)
	assert.Equal(t, []State{StatePending, StateTransformed, StateContinued}, trace.Steps[0].States)
	assert.Equal(t, []State{StatePending, StateSkipped, StateContinued}, trace.Steps[1].States)
	assert.True(t, trace.Continued)
	assert.True(t, trace.Transformed())
	assert.NotEmpty(t, trace.ID)
}

func TestPipeline_ErrorDoesNotStopLaterSteps(t *testing.T) {
	p := NewPipeline[*int]("test", nil)
	p.Register("fails", func(context.Context, *int) (Outcome, error) {
		return Skipped, errors.New("storage unavailable")
	})
	p.Register("increments", func(_ context.Context, n *int) (Outcome, error) {
		*n++
		return Transformed, nil
	})

	n := 0
	trace := p.Run(context.Background(), &n)

	assert.Equal(t, 1, n)
	assert.True(t, trace.Continued)
	failed := trace.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "fails", failed[0].Name)
	assert.Equal(t, "storage unavailable", failed[0].Error)
	assert.Equal(t, StateContinued, failed[0].States[len(failed[0].States)-1])
}

func TestPipeline_PanicIsRecovered(t *testing.T) {
	p := NewPipeline[*domain.MediaCollection]("test", nil)
	p.Register("nil deref", func(_ context.Context, c *domain.MediaCollection) (Outcome, error) {
		_ = c.MediaListCollection.Lists
		return Transformed, nil
	})
	p.Register("after", func(context.Context, *domain.MediaCollection) (Outcome, error) {
		return Skipped, nil
	})

	var trace Trace
	require.NotPanics(t, func() {
		trace = p.Run(context.Background(), &domain.MediaCollection{})
	})

	require.Len(t, trace.Steps, 2)
	assert.Equal(t, StateFailed, trace.Steps[0].Result())
	assert.Contains(t, trace.Steps[0].Error, "panic")
	assert.Equal(t, StateSkipped, trace.Steps[1].Result())
	assert.True(t, trace.Continued)
	assert.False(t, trace.Transformed())
}

func TestPipeline_EmptyStillContinues(t *testing.T) {
	p := NewPipeline[*int]("empty", nil)
	trace := p.Run(context.Background(), new(int))

	assert.True(t, trace.Continued)
	assert.Empty(t, trace.Steps)
	assert.Equal(t, "empty", trace.Event)
}

func TestPipeline_Unregister(t *testing.T) {
	p := NewPipeline[*int]("test", nil)
	inc := func(_ context.Context, n *int) (Outcome, error) {
		*n++
		return Transformed, nil
	}
	p.Register("keep", inc)
	p.Register("drop", inc)

	assert.True(t, p.Unregister("drop"))
	assert.False(t, p.Unregister("drop"))
	assert.Equal(t, 1, p.Len())

	n := 0
	p.Run(context.Background(), &n)
	assert.Equal(t, 1, n)
}

func TestHooks_Dispatch(t *testing.T) {
	h := NewHooks(nil)
	h.AnimeCollection.Register("rename", func(_ context.Context, c *domain.MediaCollection) (Outcome, error) {
		c.Entries(func(e *domain.MediaListEntry) bool {
			e.Media.BannerImage = "patched"
			return true
		})
		return Transformed, nil
	})

	body := []byte(`{"MediaListCollection":{"lists":[{"entries":[{"media":{"id":21,"bannerImage":"orig"}}]}]}}`)
	out, trace, err := h.Dispatch(context.Background(), EventAnimeCollection, body)
	require.NoError(t, err)
	assert.True(t, trace.Transformed())

	var c domain.MediaCollection
	require.NoError(t, json.Unmarshal(out, &c))
	assert.Equal(t, "patched", c.MediaListCollection.Lists[0].Entries[0].Media.BannerImage)
}

func TestHooks_DispatchKeepsHostMembers(t *testing.T) {
	h := NewHooks(nil)

	body := `{"MediaListCollection":{"lists":[{"name":"Watching","isCustomList":false,"entries":[` +
		`{"id":1,"progress":0,"notes":"n","media":{"id":7,"description":"d","genres":["Action"],"siteUrl":"u","bannerImage":"b"}}]}]}}`
	out, trace, err := h.Dispatch(context.Background(), EventAnimeCollection, []byte(body))
	require.NoError(t, err)
	assert.True(t, trace.Continued)
	assert.JSONEq(t, body, string(out))

	episodes := `{"episodes":[{"episodeNumber":0,"episodeTitle":"t","isDownloaded":false,` +
		`"episodeMetadata":{"image":"i","summary":"s","length":0},"baseAnime":{"id":3,"format":"TV"}}],"silencedEpisodes":[]}`
	out, _, err = h.Dispatch(context.Background(), EventMissingEpisodes, []byte(episodes))
	require.NoError(t, err)
	assert.JSONEq(t, episodes, string(out))
}

func TestHooks_DispatchErrors(t *testing.T) {
	h := NewHooks(nil)

	_, _, err := h.Dispatch(context.Background(), "on-unknown", nil)
	assert.Error(t, err)

	_, _, err = h.Dispatch(context.Background(), EventMissingEpisodes, []byte(`{"episodes":`))
	assert.Error(t, err)

	out, trace, err := h.Dispatch(context.Background(), EventMissingEpisodes, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
	assert.True(t, trace.Continued)
}

func TestHooks_Collections(t *testing.T) {
	h := NewHooks(nil)
	pipelines := h.Collections()
	require.Len(t, pipelines, 4)
	assert.Equal(t, EventAnimeCollection, pipelines[0].Event())
	assert.Equal(t, EventRawMangaCollection, pipelines[3].Event())
	assert.Len(t, Events, 8)
}
