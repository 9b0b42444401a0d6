package spoiler

import (
	"context"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/transform"
)

// continueWatchingMask is the mask for continue-watching lists. ok is false when
// skipNextEpisode is on or nothing would be replaced.
func continueWatchingMask(s domain.DisplaySettings) (transform.EpisodeMask, bool) {
	if s.SkipNextEpisode {
		return transform.EpisodeMask{}, false
	}
	mask := transform.EpisodeMask{Thumbnails: s.HideThumbnails, Titles: s.HideTitles}
	return mask, mask.Any()
}

func outcome(changed int) hook.Outcome {
	if changed > 0 {
		return hook.Transformed
	}
	return hook.Skipped
}

// LibraryStep masks the continue-watching list of the local library.
func LibraryStep(settings SettingsSource) hook.StepFunc[*domain.LibraryCollection] {
	return func(ctx context.Context, c *domain.LibraryCollection) (hook.Outcome, error) {
		s, err := settings.Load(ctx)
		if err != nil {
			return hook.Skipped, err
		}
		mask, ok := continueWatchingMask(s)
		if !ok || c == nil {
			return hook.Skipped, nil
		}
		return outcome(transform.ApplyEpisodes(c.ContinueWatchingList, mask)), nil
	}
}

// StreamStep masks the continue-watching list of the streaming library.
func StreamStep(settings SettingsSource) hook.StepFunc[*domain.StreamCollection] {
	return func(ctx context.Context, c *domain.StreamCollection) (hook.Outcome, error) {
		s, err := settings.Load(ctx)
		if err != nil {
			return hook.Skipped, err
		}
		mask, ok := continueWatchingMask(s)
		if !ok || c == nil {
			return hook.Skipped, nil
		}
		return outcome(transform.ApplyEpisodes(c.ContinueWatchingList, mask)), nil
	}
}

// MissingEpisodesStep swaps missing-episode thumbnails for the anime artwork.
func MissingEpisodesStep(settings SettingsSource) hook.StepFunc[*domain.MissingEpisodes] {
	return func(ctx context.Context, m *domain.MissingEpisodes) (hook.Outcome, error) {
		s, err := settings.Load(ctx)
		if err != nil {
			return hook.Skipped, err
		}
		if !s.HideThumbnails || m == nil {
			return hook.Skipped, nil
		}
		return outcome(transform.ApplyEpisodes(m.Episodes, transform.EpisodeMask{Thumbnails: true})), nil
	}
}
