package domain

// DisplaySettings are the spoiler-hiding preferences.
// Stored as a single object; read fresh on every synchronization pass.
type DisplaySettings struct {
	HideThumbnails   bool `json:"hideThumbnails"`
	HideTitles       bool `json:"hideTitles"`
	HideDescriptions bool `json:"hideDescriptions"`
	SkipNextEpisode  bool `json:"skipNextEpisode"`
}

// HidesAnything reports whether any treatment is enabled.
func (s DisplaySettings) HidesAnything() bool {
	return s.HideThumbnails || s.HideTitles || s.HideDescriptions
}

// MediaMetadata is the projection of a fetched anime kept for episode fallbacks.
type MediaMetadata struct {
	BannerImage string `json:"bannerImage"`
	Title       string `json:"title"`
}

// MediaMetadataSet maps entity keys to their projection.
type MediaMetadataSet map[string]MediaMetadata
