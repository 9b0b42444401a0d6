package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideMap_SortedKeysIsLexicographic(t *testing.T) {
	m := OverrideMap{"30": "c", "100": "a", "21": "b"}
	assert.Equal(t, []string{"100", "21", "30"}, m.SortedKeys())
}

func TestOverrideMap_LookupTreatsEmptyAsAbsent(t *testing.T) {
	m := OverrideMap{"1": "https://img.example/1.png", "2": ""}

	v, ok := m.Lookup("1")
	assert.True(t, ok)
	assert.Equal(t, "https://img.example/1.png", v)

	_, ok = m.Lookup("2")
	assert.False(t, ok)
	_, ok = m.Lookup("3")
	assert.False(t, ok)
}

func TestBaseMedia_FallbackImage(t *testing.T) {
	tests := []struct {
		name  string
		media *BaseMedia
		want  string
	}{
		{"nil media", nil, ""},
		{"banner wins", &BaseMedia{BannerImage: "b", CoverImage: &MediaCoverImage{ExtraLarge: "c"}}, "b"},
		{"cover fallback", &BaseMedia{CoverImage: &MediaCoverImage{ExtraLarge: "c"}}, "c"},
		{"nothing", &BaseMedia{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.media.FallbackImage())
		})
	}
}

func TestMediaCollection_EntriesSkipsNilAndStops(t *testing.T) {
	var c MediaCollection
	require.NoError(t, json.Unmarshal([]byte(`{
		"MediaListCollection": {"lists": [
			{"entries": [{"media": {"id": 1}}, null, {"media": {"id": 2}}]},
			null,
			{"entries": [{"media": {"id": 3}}]}
		]}
	}`), &c))

	var seen []int
	c.Entries(func(e *MediaListEntry) bool {
		seen = append(seen, e.Media.ID)
		return true
	})
	assert.Equal(t, []int{1, 2, 3}, seen)

	seen = nil
	c.Entries(func(e *MediaListEntry) bool {
		seen = append(seen, e.Media.ID)
		return len(seen) < 2
	})
	assert.Equal(t, []int{1, 2}, seen)

	var empty *MediaCollection
	assert.False(t, empty.HasLists())
}

func TestDisplaySettings_HidesAnything(t *testing.T) {
	assert.False(t, DisplaySettings{SkipNextEpisode: true}.HidesAnything())
	assert.True(t, DisplaySettings{HideDescriptions: true}.HidesAnything())
}
