package transform

import "github.com/listenupapp/mediatray/internal/domain"

// EpisodeMask selects which episode fields ApplyEpisodes replaces.
type EpisodeMask struct {
	Thumbnails bool
	Titles     bool
}

// Any reports whether the mask replaces anything.
func (m EpisodeMask) Any() bool {
	return m.Thumbnails || m.Titles
}

// ApplyEpisodes swaps episode thumbnails and titles for the parent anime's artwork and title.
// A thumbnail is only replaced when the episode has one. Returns the number of episodes changed.
func ApplyEpisodes(eps []*domain.Episode, mask EpisodeMask) int {
	if !mask.Any() {
		return 0
	}

	n := 0
	for _, ep := range eps {
		if ep == nil {
			continue
		}
		changed := false

		if mask.Thumbnails && ep.EpisodeMetadata != nil && ep.EpisodeMetadata.Image != "" {
			ep.EpisodeMetadata.Image = ep.BaseAnime.FallbackImage()
			changed = true
		}
		if mask.Titles {
			ep.EpisodeTitle = ep.BaseAnime.PreferredTitle()
			changed = true
		}

		if changed {
			n++
		}
	}
	return n
}
