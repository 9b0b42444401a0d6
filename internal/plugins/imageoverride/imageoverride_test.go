package imageoverride_test

import (
	"context"
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/host/hosttest"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/plugins/bannerimages"
	"github.com/listenupapp/mediatray/internal/plugins/coverimages"
	"github.com/listenupapp/mediatray/internal/store"
)

func setupEnv(t *testing.T) (plugins.Env, *host.Navigator, *hosttest.Notifier) {
	t.Helper()

	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	nav := host.NewNavigator(&hosttest.Emitter{})
	notifier := hosttest.NewNotifier()
	return plugins.Env{
		Hooks:       hook.NewHooks(nil),
		Screen:      nav,
		Collections: &hosttest.Collections{},
		Notifier:    notifier,
		Store:       s,
	}, nav, notifier
}

func collectionJSON(t *testing.T) []byte {
	t.Helper()
	c := hosttest.Collection(
		hosttest.Media(21, domain.MediaTypeAnime, "One Piece"),
		hosttest.Media(30, domain.MediaTypeAnime, "Berserk"),
	)
	body, err := json.Marshal(c)
	require.NoError(t, err)
	return body
}

func decodeCollection(t *testing.T, raw []byte) *domain.MediaCollection {
	t.Helper()
	var c domain.MediaCollection
	require.NoError(t, json.Unmarshal(raw, &c))
	return &c
}

func TestPlugins_RewriteEveryCollectionEvent(t *testing.T) {
	ctx := context.Background()
	env, _, notifier := setupEnv(t)

	banner, err := bannerimages.New(env)
	require.NoError(t, err)
	cover, err := coverimages.New(env)
	require.NoError(t, err)
	for _, p := range []plugins.Plugin{banner, cover} {
		require.NoError(t, p.Start(ctx))
		t.Cleanup(p.Stop)
	}
	assert.Equal(t, host.Badge{}, notifier.Badges[plugins.BannerImagesID])

	require.NoError(t, banner.Adapter().Set(ctx, 21, "https://img/banner.jpg"))
	require.NoError(t, cover.Adapter().Set(ctx, 21, "https://img/cover.jpg"))

	for _, event := range []string{
		hook.EventAnimeCollection,
		hook.EventRawAnimeCollection,
		hook.EventMangaCollection,
		hook.EventRawMangaCollection,
	} {
		t.Run(event, func(t *testing.T) {
			out, trace, err := env.Hooks.Dispatch(ctx, event, collectionJSON(t))
			require.NoError(t, err)
			assert.True(t, trace.Transformed())
			require.Len(t, trace.Steps, 2)

			entries := decodeCollection(t, out).MediaListCollection.Lists[0].Entries
			assert.Equal(t, "https://img/banner.jpg", entries[0].Media.BannerImage)
			require.NotNil(t, entries[0].Media.CoverImage)
			assert.Equal(t, "https://img/cover.jpg", entries[0].Media.CoverImage.Large)
			assert.Empty(t, entries[1].Media.BannerImage)
			assert.Nil(t, entries[1].Media.CoverImage)
		})
	}
}

func TestPlugin_NoOverridesLeavesPayload(t *testing.T) {
	ctx := context.Background()
	env, _, _ := setupEnv(t)

	banner, err := bannerimages.New(env)
	require.NoError(t, err)
	require.NoError(t, banner.Start(ctx))
	t.Cleanup(banner.Stop)

	body := collectionJSON(t)
	out, trace, err := env.Hooks.Dispatch(ctx, hook.EventAnimeCollection, body)
	require.NoError(t, err)
	assert.False(t, trace.Transformed())
	assert.True(t, trace.Continued)
	assert.JSONEq(t, string(body), string(out))
}

func TestPlugin_TrayFollowsNavigation(t *testing.T) {
	ctx := context.Background()
	env, nav, notifier := setupEnv(t)

	banner, err := bannerimages.New(env)
	require.NoError(t, err)
	require.NoError(t, banner.Start(ctx))
	require.NoError(t, banner.Adapter().Set(ctx, 21, "https://img/banner.jpg"))

	nav.Navigate(ctx, host.Navigation{Pathname: "/entry", SearchParams: map[string]string{"id": "21"}})
	assert.Equal(t, 21, banner.Tray().State().CurrentEntityID)
	assert.Equal(t, 1, notifier.Badges[plugins.BannerImagesID].Number)

	banner.Stop()
	nav.Navigate(ctx, host.Navigation{Pathname: "/"})
	assert.Equal(t, 21, banner.Tray().State().CurrentEntityID, "stopped plugins ignore navigation")
}

func TestPlugin_StopRemovesSteps(t *testing.T) {
	ctx := context.Background()
	env, _, _ := setupEnv(t)

	banner, err := bannerimages.New(env)
	require.NoError(t, err)
	require.NoError(t, banner.Start(ctx))
	require.NoError(t, banner.Adapter().Set(ctx, 21, "https://img/banner.jpg"))

	for _, p := range env.Hooks.Collections() {
		assert.Equal(t, 1, p.Len(), p.Event())
	}

	banner.Stop()
	for _, p := range env.Hooks.Collections() {
		assert.Zero(t, p.Len(), p.Event())
	}

	_, trace, err := env.Hooks.Dispatch(ctx, hook.EventAnimeCollection, collectionJSON(t))
	require.NoError(t, err)
	assert.Empty(t, trace.Steps)
}
