package host

import (
	"context"
	"encoding/json/jsontext"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/sse"
	"github.com/listenupapp/mediatray/internal/store"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []any
}

func (e *recordingEmitter) Emit(event any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) All() []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]any(nil), e.events...)
}

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Start(ctx)
	t.Cleanup(func() {
		_ = l.Shutdown(context.Background())
		cancel()
	})
	return l
}

func TestLoop_SerializesJobs(t *testing.T) {
	l := startLoop(t)

	var mu sync.Mutex
	var order []int
	active := 0

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func(context.Context) {
				mu.Lock()
				active++
				assert.Equal(t, 1, active)
				order = append(order, i)
				active--
				mu.Unlock()
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, order, 20)
}

func TestLoop_NestedDoRunsInline(t *testing.T) {
	l := startLoop(t)

	ran := false
	err := l.Do(context.Background(), func(ctx context.Context) {
		require.NoError(t, l.Do(ctx, func(context.Context) { ran = true }))
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestLoop_PanicDoesNotKillLoop(t *testing.T) {
	l := startLoop(t)

	require.NoError(t, l.Do(context.Background(), func(context.Context) { panic("boom") }))

	ran := false
	require.NoError(t, l.Do(context.Background(), func(context.Context) { ran = true }))
	assert.True(t, ran)
}

func TestLoop_RejectsAfterShutdown(t *testing.T) {
	l := startLoop(t)
	require.NoError(t, l.Shutdown(context.Background()))

	err := l.Do(context.Background(), func(context.Context) {})
	assert.Error(t, err)
	assert.Error(t, l.Post(func(context.Context) {}))
}

func TestNavigator(t *testing.T) {
	emitter := &recordingEmitter{}
	nav := NewNavigator(emitter)

	var seen []string
	unregister := nav.OnNavigate(func(_ context.Context, n Navigation) {
		seen = append(seen, n.Pathname+"?"+n.Param("id"))
	})

	nav.Navigate(context.Background(), Navigation{Pathname: "/entry", SearchParams: map[string]string{"id": "21"}})
	nav.LoadCurrent(context.Background())
	unregister()
	nav.Navigate(context.Background(), Navigation{Pathname: "/"})

	assert.Equal(t, []string{"/entry?21", "/entry?21"}, seen)
	assert.Equal(t, "/", nav.Current().Pathname)

	nav.NavigateTo("/manga/entry", map[string]string{"id": "7"})
	events := emitter.All()
	require.Len(t, events, 1)
	evt := events[0].(sse.Event)
	assert.Equal(t, sse.EventScreenNavigate, evt.Type)
}

func TestEventBridge(t *testing.T) {
	emitter := &recordingEmitter{}
	b := NewEventBridge(emitter)

	b.Toast("custom-banner-images", ToastInfo, "Saving...")
	b.Badge("custom-banner-images", Badge{Number: 1, Intent: "info"})
	b.InvalidateQueries("a", "b")
	b.StyleSet("img-4", "filter", "blur(24px)")
	b.StyleRemoved("img-4", "filter")

	events := emitter.All()
	require.Len(t, events, 5)
	types := make([]sse.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.(sse.Event).Type)
	}
	assert.Equal(t, []sse.EventType{
		sse.EventTrayToast, sse.EventTrayBadge, sse.EventQueryInvalidate, sse.EventDOMStyle, sse.EventDOMStyle,
	}, types)
	assert.Equal(t, "custom-banner-images", events[0].(sse.Event).Plugin)
}

func newCache(t *testing.T) (*CollectionCache, *recordingEmitter) {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	emitter := &recordingEmitter{}
	return NewCollectionCache(s.Namespace("host:"), emitter, nil), emitter
}

const animePayload = `{"MediaListCollection":{"lists":[{"entries":[{"media":{"id":21,"type":"ANIME","title":{"userPreferred":"One Piece"}}}]}]}}`

func TestCollectionCache_ServesRecordedSnapshot(t *testing.T) {
	cache, emitter := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Record(ctx, CollectionAnime, jsontext.Value(animePayload)))

	col, err := cache.AnimeCollection(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "One Piece", col.MediaListCollection.Lists[0].Entries[0].Media.PreferredTitle())
	assert.Empty(t, emitter.All())
}

func TestCollectionCache_BypassWaitsForHost(t *testing.T) {
	cache, emitter := newCache(t)
	ctx := context.Background()

	go func() {
		for {
			if len(emitter.All()) > 0 {
				_ = cache.Record(ctx, CollectionAnime, jsontext.Value(animePayload))
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	col, err := cache.AnimeCollection(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, col)

	evt := emitter.All()[0].(sse.Event)
	assert.Equal(t, sse.EventCollectionFetch, evt.Type)
	assert.Equal(t, sse.CollectionEventData{Collection: CollectionAnime, BypassCache: true}, evt.Data)
}

func TestCollectionCache_TimeoutWithoutSnapshot(t *testing.T) {
	cache, _ := newCache(t)
	cache.SetFetchTimeout(20 * time.Millisecond)

	_, err := cache.MangaCollection(context.Background(), false)
	assert.Error(t, err)
}

func TestCollectionCache_RejectsInvalidPayload(t *testing.T) {
	cache, _ := newCache(t)
	err := cache.Record(context.Background(), CollectionManga, jsontext.Value(`{"broken"`))
	assert.Error(t, err)
}

func TestCollectionCache_Refresh(t *testing.T) {
	cache, emitter := newCache(t)
	require.NoError(t, cache.RefreshAnimeCollection(context.Background()))
	require.NoError(t, cache.RefreshMangaCollection(context.Background()))

	events := emitter.All()
	require.Len(t, events, 2)
	assert.Equal(t, sse.EventCollectionRefresh, events[0].(sse.Event).Type)
	assert.Equal(t, sse.CollectionEventData{Collection: CollectionManga}, events[1].(sse.Event).Data)
}
