// Package transform rewrites collection payloads in place from stored overrides.
//
// Transforms are pure over their inputs: no storage access, no allocation beyond a missing
// cover struct, and applying the same overrides twice yields the same payload as applying them once.
package transform

import "github.com/listenupapp/mediatray/internal/domain"

// Field is the media field an override targets.
type Field int

const (
	// BannerImage replaces media.bannerImage.
	BannerImage Field = iota
	// CoverImage replaces every coverImage size (medium, large, extraLarge).
	CoverImage
)

func (f Field) String() string {
	switch f {
	case BannerImage:
		return "bannerImage"
	case CoverImage:
		return "coverImage"
	}
	return "unknown"
}

// Apply rewrites the targeted field of every entry whose media id has a non-empty override.
// It returns the number of entries rewritten. Empty overrides or a collection without
// lists leave the payload untouched.
func Apply(c *domain.MediaCollection, overrides domain.OverrideMap, field Field) int {
	if len(overrides) == 0 || !c.HasLists() {
		return 0
	}

	n := 0
	c.Entries(func(entry *domain.MediaListEntry) bool {
		if entry.Media == nil {
			return true
		}
		url, ok := overrides.Lookup(entry.Media.Key())
		if !ok {
			return true
		}
		setField(entry.Media, field, url)
		n++
		return true
	})
	return n
}

func setField(m *domain.BaseMedia, field Field, url string) {
	switch field {
	case BannerImage:
		m.BannerImage = url
	case CoverImage:
		if m.CoverImage == nil {
			m.CoverImage = &domain.MediaCoverImage{}
		}
		m.CoverImage.Medium = url
		m.CoverImage.Large = url
		m.CoverImage.ExtraLarge = url
	}
}
