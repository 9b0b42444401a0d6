// Package spoiler hides episode artwork, titles and descriptions the user has not reached yet.
package spoiler

import (
	"context"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/hook"
	"github.com/listenupapp/mediatray/internal/reactive"
)

// BuildMetadata projects a collection to per-anime fallback metadata.
// The first entry seen for an id wins; entries without media are skipped.
func BuildMetadata(c *domain.MediaCollection) domain.MediaMetadataSet {
	set := make(domain.MediaMetadataSet)
	c.Entries(func(entry *domain.MediaListEntry) bool {
		if entry.Media == nil {
			return true
		}
		key := entry.Media.Key()
		if _, seen := set[key]; seen {
			return true
		}
		set[key] = domain.MediaMetadata{
			BannerImage: entry.Media.FallbackImage(),
			Title:       entry.Media.PreferredTitle(),
		}
		return true
	})
	return set
}

// MetadataStep rebuilds the metadata cell from every fetched anime collection.
// The payload itself is never rewritten.
func MetadataStep(cell *reactive.Cell[domain.MediaMetadataSet]) hook.StepFunc[*domain.MediaCollection] {
	return func(_ context.Context, c *domain.MediaCollection) (hook.Outcome, error) {
		cell.Set(BuildMetadata(c))
		return hook.Skipped, nil
	}
}
