package hidespoilers

import (
	"context"
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/host/hosttest"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/spoiler"
	"github.com/listenupapp/mediatray/internal/store"
)

type fixture struct {
	plugin      *Plugin
	env         plugins.Env
	page        *dom.Page
	nav         *host.Navigator
	collections *hosttest.Collections
	notifier    *hosttest.Notifier
}

func setup(t *testing.T) *fixture {
	t.Helper()

	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		page:        dom.NewPage(nil, nil),
		nav:         host.NewNavigator(&hosttest.Emitter{}),
		collections: &hosttest.Collections{},
		notifier:    hosttest.NewNotifier(),
	}
	f.env = plugins.Env{
		Hooks:       hook.NewHooks(nil),
		Screen:      f.nav,
		Document:    f.page,
		Collections: f.collections,
		Notifier:    f.notifier,
		Store:       s,
	}
	f.plugin = New(f.env)
	require.NoError(t, f.plugin.Start(context.Background()))
	t.Cleanup(f.plugin.Stop)
	return f
}

func (f *fixture) hide(t *testing.T, ds domain.DisplaySettings) {
	t.Helper()
	require.NoError(t, f.plugin.Settings().Save(context.Background(), ds))
}

func (f *fixture) style(id string) string {
	v, _ := f.page.Style(id, "filter")
	return v
}

var episodeCard = dom.Snapshot{
	ID:         "card-4",
	Attributes: map[string]string{"data-episode-card": "", spoiler.AttrEpisodeNumber: "4"},
	InnerHTML:  `<img id="card-4-img" data-episode-card-image><p id="card-4-title" data-episode-card-title>Four</p>`,
}

var listData = dom.Snapshot{
	ID:         "list-data",
	Attributes: map[string]string{spoiler.AttrListData: `{"progress":3}`},
}

func TestPlugin_CardsFollowSettings(t *testing.T) {
	f := setup(t)
	f.hide(t, domain.DisplaySettings{HideThumbnails: true})

	f.page.Batch([]dom.Snapshot{listData, episodeCard})
	assert.Equal(t, spoiler.BlurImage, f.style("card-4-img"))
	assert.Empty(t, f.style("card-4-title"))

	require.NoError(t, f.plugin.Tray().Open(context.Background()))
	require.NoError(t, f.plugin.Tray().SetField(spoiler.FieldSkipNextEpisode, true))
	require.NoError(t, f.plugin.Tray().Save(context.Background()))

	assert.Empty(t, f.style("card-4-img"), "settings save re-runs the passes")
	assert.Equal(t, "Settings saved", f.notifier.Toasts[0].Message)
}

func TestPlugin_NavigationRerunsPasses(t *testing.T) {
	f := setup(t)
	f.page.Batch([]dom.Snapshot{listData, episodeCard})
	require.Empty(t, f.style("card-4-img"))

	f.hide(t, domain.DisplaySettings{HideTitles: true})
	f.nav.Navigate(context.Background(), host.Navigation{Pathname: "/entry", SearchParams: map[string]string{"id": "1"}})

	assert.Equal(t, spoiler.BlurText, f.style("card-4-title"))
}

func TestPlugin_RootNavigationPrefetches(t *testing.T) {
	f := setup(t)
	f.hide(t, domain.DisplaySettings{HideThumbnails: true})

	f.nav.Navigate(context.Background(), host.Navigation{Pathname: "/"})
	f.plugin.prefetcher.Wait()

	_, _, bypass := f.collections.Counts()
	assert.Equal(t, 1, bypass)
}

func TestPlugin_MetadataUpdateRerunsCards(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.page.Batch([]dom.Snapshot{listData, episodeCard})
	f.hide(t, domain.DisplaySettings{HideThumbnails: true})
	require.Empty(t, f.style("card-4-img"))

	body, err := json.Marshal(hosttest.Collection(hosttest.Media(1, domain.MediaTypeAnime, "Show")))
	require.NoError(t, err)

	_, trace, err := f.env.Hooks.Dispatch(ctx, hook.EventCachedAnimeCollection, body)
	require.NoError(t, err)
	assert.Empty(t, trace.Failed())
	assert.Equal(t, "Show", f.plugin.Metadata().Get()["1"].Title)
	assert.Equal(t, spoiler.BlurImage, f.style("card-4-img"))
}

func TestPlugin_LibraryHookMasksContinueWatching(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.hide(t, domain.DisplaySettings{HideTitles: true})

	lib := domain.LibraryCollection{ContinueWatchingList: []*domain.Episode{{
		EpisodeTitle: "The Reveal",
		BaseAnime:    hosttest.Media(1, domain.MediaTypeAnime, "Show"),
	}}}
	body, err := json.Marshal(lib)
	require.NoError(t, err)

	out, trace, err := f.env.Hooks.Dispatch(ctx, hook.EventAnimeLibraryCollection, body)
	require.NoError(t, err)
	assert.True(t, trace.Transformed())
	var got domain.LibraryCollection
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "Show", got.ContinueWatchingList[0].EpisodeTitle)
}
