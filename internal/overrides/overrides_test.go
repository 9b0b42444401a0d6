package overrides

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/store"
)

func setupBucket(t *testing.T, namespace string) *store.Bucket {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s.Bucket(namespace)
}

func TestAdapter_SaveThenRemove(t *testing.T) {
	ctx := context.Background()
	a := New(setupBucket(t, "custom-banner-images"), KindBanner)

	require.NoError(t, a.Set(ctx, 21, "https://img/21.jpg"))
	url, ok, err := a.Get(ctx, 21)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://img/21.jpg", url)

	require.NoError(t, a.Set(ctx, 21, ""))
	_, ok, err = a.Get(ctx, 21)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := a.All(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, "21")
}

func TestAdapter_SortedIDsLexicographic(t *testing.T) {
	ctx := context.Background()
	a := New(setupBucket(t, "custom-cover-images"), KindCover)

	for _, id := range []int{30, 100, 21} {
		require.NoError(t, a.Set(ctx, id, "https://img/x.jpg"))
	}

	ids, err := a.SortedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "21", "30"}, ids)
}

func TestAdapter_KindsDoNotOverlap(t *testing.T) {
	ctx := context.Background()
	bucket := setupBucket(t, "shared")
	banner := New(bucket, KindBanner)
	cover := New(bucket, KindCover)

	require.NoError(t, banner.Set(ctx, 1, "https://img/banner.jpg"))

	all, err := cover.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdapter_AllIgnoresParams(t *testing.T) {
	ctx := context.Background()
	bucket := setupBucket(t, "custom-banner-images")
	a := New(bucket, KindBanner)

	require.NoError(t, NewSettings(bucket).Save(ctx, domain.DisplaySettings{HideTitles: true}))
	require.NoError(t, a.Set(ctx, 5, "https://img/5.jpg"))

	all, err := a.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OverrideMap{"5": "https://img/5.jpg"}, all)
}

func TestSettings_LoadDefaultsWhenAbsent(t *testing.T) {
	s := NewSettings(setupBucket(t, "hide-spoilers"))

	ds, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DisplaySettings{}, ds)
}

func TestSettings_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(setupBucket(t, "hide-spoilers"))

	want := domain.DisplaySettings{HideThumbnails: true, SkipNextEpisode: true}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("cover")
	require.NoError(t, err)
	assert.Equal(t, KindCover, k)
	assert.Equal(t, "coverImages.", k.Prefix())

	_, err = ParseKind("poster")
	assert.Error(t, err)
}
