package spoiler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/host"
	"github.com/listenupapp/mediatray/internal/host/hosttest"
	"github.com/listenupapp/mediatray/internal/reactive"
)

func TestBuildMetadata(t *testing.T) {
	first := hosttest.Media(1, domain.MediaTypeAnime, "First")
	first.BannerImage = "https://img/banner-1.jpg"
	dup := hosttest.Media(1, domain.MediaTypeAnime, "Duplicate")
	dup.BannerImage = "https://img/other.jpg"
	coverOnly := hosttest.Media(2, domain.MediaTypeAnime, "")
	coverOnly.CoverImage = &domain.MediaCoverImage{ExtraLarge: "https://img/cover-2.jpg"}

	c := hosttest.Collection(first, nil, dup, coverOnly)

	set := BuildMetadata(c)
	require.Len(t, set, 2)
	assert.Equal(t, domain.MediaMetadata{BannerImage: "https://img/banner-1.jpg", Title: "First"}, set["1"])
	assert.Equal(t, domain.MediaMetadata{BannerImage: "https://img/cover-2.jpg", Title: ""}, set["2"])

	assert.Empty(t, BuildMetadata(nil))
	assert.Empty(t, BuildMetadata(&domain.MediaCollection{}))
}

func TestMetadataStep_NotifiesWatchers(t *testing.T) {
	cell := reactive.NewCell(domain.MediaMetadataSet{})
	var seen []domain.MediaMetadataSet
	cell.Watch(func(s domain.MediaMetadataSet) { seen = append(seen, s) })

	p := hook.NewPipeline[*domain.MediaCollection]("anime-collection", nil)
	p.Register("metadata", MetadataStep(cell))

	c := hosttest.Collection(hosttest.Media(5, domain.MediaTypeAnime, "Five"))
	trace := p.Run(context.Background(), c)

	assert.False(t, trace.Transformed())
	require.Len(t, seen, 1)
	assert.Equal(t, "Five", seen[0]["5"].Title)
	assert.Equal(t, "Five", cell.Get()["5"].Title)
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: `{"progress":3}`, want: 3},
		{raw: `{"progress":3.0}`, want: 3},
		{raw: `{"status":"CURRENT"}`, want: 0},
		{raw: `{"progress":null}`, want: 0},
		{raw: ``, want: 0},
		{raw: `  `, want: 0},
		{raw: `{"progress":3.7}`, want: 3},
		{raw: `{"progress":"3"}`, want: 3},
		{raw: `{"progress":" 4 "}`, want: 4},
		{raw: `{"progress":""}`, want: 0},
		{raw: `{"progress":false}`, want: 0},
		{raw: `{"progress":true}`, want: 1},
		{raw: `{"progress":1,"progress":2}`, want: 2},
		{raw: `[]`, want: 0},
		{raw: `null`, want: 0},
		{raw: `{"progress":"three"}`, wantErr: true},
		{raw: `{"progress":{}}`, wantErr: true},
		{raw: `{"progress":1e300}`, wantErr: true},
		{raw: `{"progress":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseProgress(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEpisodeNumber(t *testing.T) {
	n, ok := ParseEpisodeNumber(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ParseEpisodeNumber("12.5")
	assert.False(t, ok)
	_, ok = ParseEpisodeNumber("")
	assert.False(t, ok)
}

func episode(title, image string) *domain.Episode {
	anime := hosttest.Media(1, domain.MediaTypeAnime, "Show")
	anime.BannerImage = "https://img/show.jpg"
	return &domain.Episode{
		EpisodeTitle:    title,
		EpisodeMetadata: &domain.EpisodeMetadata{Image: image},
		BaseAnime:       anime,
	}
}

func TestLibraryStep(t *testing.T) {
	ctx := context.Background()
	settings := &staticSettings{ds: domain.DisplaySettings{HideThumbnails: true, HideTitles: true}}
	step := LibraryStep(settings)

	lib := &domain.LibraryCollection{ContinueWatchingList: []*domain.Episode{episode("The Twist", "https://img/ep.jpg")}}
	out, err := step(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, hook.Transformed, out)
	assert.Equal(t, "Show", lib.ContinueWatchingList[0].EpisodeTitle)
	assert.Equal(t, "https://img/show.jpg", lib.ContinueWatchingList[0].EpisodeMetadata.Image)

	settings.ds.SkipNextEpisode = true
	lib = &domain.LibraryCollection{ContinueWatchingList: []*domain.Episode{episode("The Twist", "https://img/ep.jpg")}}
	out, err = step(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, hook.Skipped, out)
	assert.Equal(t, "The Twist", lib.ContinueWatchingList[0].EpisodeTitle)

	settings.ds = domain.DisplaySettings{HideDescriptions: true}
	out, err = step(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, hook.Skipped, out)
}

func TestStreamStep(t *testing.T) {
	settings := &staticSettings{ds: domain.DisplaySettings{HideTitles: true}}
	stream := &domain.StreamCollection{ContinueWatchingList: []*domain.Episode{episode("The Twist", "https://img/ep.jpg")}}

	out, err := StreamStep(settings)(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, hook.Transformed, out)
	assert.Equal(t, "Show", stream.ContinueWatchingList[0].EpisodeTitle)
	assert.Equal(t, "https://img/ep.jpg", stream.ContinueWatchingList[0].EpisodeMetadata.Image)
}

func TestMissingEpisodesStep(t *testing.T) {
	settings := &staticSettings{ds: domain.DisplaySettings{HideThumbnails: true, HideTitles: true}}
	missing := &domain.MissingEpisodes{Episodes: []*domain.Episode{
		episode("The Twist", "https://img/ep.jpg"),
		episode("No Thumb", ""),
	}}

	out, err := MissingEpisodesStep(settings)(context.Background(), missing)
	require.NoError(t, err)
	assert.Equal(t, hook.Transformed, out)
	assert.Equal(t, "https://img/show.jpg", missing.Episodes[0].EpisodeMetadata.Image)
	assert.Equal(t, "The Twist", missing.Episodes[0].EpisodeTitle)
	assert.Empty(t, missing.Episodes[1].EpisodeMetadata.Image)

	settings.ds.HideThumbnails = false
	out, err = MissingEpisodesStep(settings)(context.Background(), missing)
	require.NoError(t, err)
	assert.Equal(t, hook.Skipped, out)
}

func TestRootPrefetcher(t *testing.T) {
	ctx := context.Background()
	collections := &hosttest.Collections{}
	settings := &staticSettings{ds: domain.DisplaySettings{HideThumbnails: true}}
	p := NewRootPrefetcher(collections, settings, time.Hour, nil)

	assert.False(t, p.HandleNavigation(ctx, host.Navigation{Pathname: "/entry"}))
	assert.True(t, p.HandleNavigation(ctx, host.Navigation{Pathname: "/"}))
	assert.False(t, p.HandleNavigation(ctx, host.Navigation{Pathname: "/"}), "throttled")
	p.Wait()

	anime, manga, bypass := collections.Counts()
	assert.Equal(t, 1, anime)
	assert.Equal(t, 0, manga)
	assert.Equal(t, 1, bypass)
}

func TestRootPrefetcher_EveryRootNavigationWithoutInterval(t *testing.T) {
	ctx := context.Background()
	collections := &hosttest.Collections{}
	settings := &staticSettings{ds: domain.DisplaySettings{HideTitles: true}}
	p := NewRootPrefetcher(collections, settings, 0, nil)

	for range 3 {
		assert.True(t, p.HandleNavigation(ctx, host.Navigation{Pathname: "/"}))
	}
	p.Wait()

	anime, _, bypass := collections.Counts()
	assert.Equal(t, 3, anime)
	assert.Equal(t, 3, bypass)
}

func TestRootPrefetcher_OnlyWhenHiding(t *testing.T) {
	collections := &hosttest.Collections{}
	settings := &staticSettings{ds: domain.DisplaySettings{HideDescriptions: true, SkipNextEpisode: true}}
	p := NewRootPrefetcher(collections, settings, 0, nil)

	assert.False(t, p.HandleNavigation(context.Background(), host.Navigation{Pathname: "/"}))
	p.Wait()

	anime, _, _ := collections.Counts()
	assert.Zero(t, anime)
}

type countingRefresher struct{ n int }

func (r *countingRefresher) RefreshAll() { r.n++ }

func TestSettingsTray(t *testing.T) {
	ctx := context.Background()
	settings := &staticSettings{ds: domain.DisplaySettings{HideTitles: true}}
	refresher := &countingRefresher{}
	notifier := hosttest.NewNotifier()
	st := NewSettingsTray("hide-spoilers", settings, refresher, notifier, nil)

	require.NoError(t, st.Open(ctx))
	assert.True(t, st.Form().HideTitles)

	require.NoError(t, st.SetField(FieldHideThumbnails, true))
	require.NoError(t, st.SetField(FieldSkipNextEpisode, true))
	assert.Error(t, st.SetField("hideEverything", true))

	require.NoError(t, st.Save(ctx))
	assert.Equal(t, domain.DisplaySettings{HideThumbnails: true, HideTitles: true, SkipNextEpisode: true}, settings.ds)
	assert.Equal(t, 1, refresher.n)
	assert.Equal(t, [][]string{InvalidatedQueries}, notifier.Invalidated)
	require.Len(t, notifier.Toasts, 1)
	assert.Equal(t, host.ToastSuccess, notifier.Toasts[0].Level)
	assert.Equal(t, "Settings saved", notifier.Toasts[0].Message)
}

func TestSettingsTray_View(t *testing.T) {
	st := NewSettingsTray("hide-spoilers", &staticSettings{}, &countingRefresher{}, hosttest.NewNotifier(), nil)
	st.SetForm(domain.DisplaySettings{HideDescriptions: true})

	view := st.View()
	require.Len(t, view.Children, 4)
	assert.Equal(t, "Hide potential spoilers", view.Children[0].Text)
	switches := view.Children[1].Children
	require.Len(t, switches, 3)
	assert.Equal(t, false, switches[0].Value)
	assert.Equal(t, true, switches[2].Value)
	assert.Equal(t, "primary", view.Children[3].Intent)
}
