package domain

import (
	"encoding/json/jsontext"
	"strconv"
)

// MediaType distinguishes anime from manga entries.
type MediaType string

const (
	// MediaTypeAnime marks an anime title.
	MediaTypeAnime MediaType = "ANIME"
	// MediaTypeManga marks a manga title.
	MediaTypeManga MediaType = "MANGA"
)

// MediaCollection is the collection payload the host fetches from the media-list source.
// It is used for both anime and manga collections.
//
// Payload types model only the members the extensions read or rewrite. Every other
// member is kept in Unknown and written back unchanged.
type MediaCollection struct {
	MediaListCollection *MediaListCollection `json:"MediaListCollection,omitzero"`
	Unknown             jsontext.Value       `json:",unknown"`
}

// MediaListCollection groups a user's list entries.
type MediaListCollection struct {
	Lists   []*MediaListGroup `json:"lists,omitzero"`
	Unknown jsontext.Value    `json:",unknown"`
}

// MediaListGroup is a single status list ("Watching", "Completed") or a custom list.
type MediaListGroup struct {
	Entries []*MediaListEntry `json:"entries,omitzero"`
	Unknown jsontext.Value    `json:",unknown"`
}

// MediaListEntry is a user's list entry for one media.
type MediaListEntry struct {
	Media   *BaseMedia     `json:"media,omitzero"`
	Unknown jsontext.Value `json:",unknown"`
}

// BaseMedia carries the media fields the extensions read or rewrite.
type BaseMedia struct {
	ID          int              `json:"id"`
	Type        MediaType        `json:"type,omitzero"`
	Title       *MediaTitle      `json:"title,omitzero"`
	BannerImage string           `json:"bannerImage,omitzero"`
	CoverImage  *MediaCoverImage `json:"coverImage,omitzero"`
	Unknown     jsontext.Value   `json:",unknown"`
}

// MediaTitle holds the localized titles of a media.
type MediaTitle struct {
	UserPreferred string         `json:"userPreferred,omitzero"`
	Romaji        string         `json:"romaji,omitzero"`
	English       string         `json:"english,omitzero"`
	Native        string         `json:"native,omitzero"`
	Unknown       jsontext.Value `json:",unknown"`
}

// MediaCoverImage holds the cover image variants of a media.
type MediaCoverImage struct {
	Medium     string         `json:"medium,omitzero"`
	Large      string         `json:"large,omitzero"`
	ExtraLarge string         `json:"extraLarge,omitzero"`
	Unknown    jsontext.Value `json:",unknown"`
}

// Key returns the media id in the string form used as a map key.
func (m *BaseMedia) Key() string {
	return EntityKey(m.ID)
}

// PreferredTitle returns the user-preferred title or an empty string.
func (m *BaseMedia) PreferredTitle() string {
	if m == nil || m.Title == nil {
		return ""
	}
	return m.Title.UserPreferred
}

// FallbackImage returns the banner image, falling back to the extra large cover.
func (m *BaseMedia) FallbackImage() string {
	if m == nil {
		return ""
	}
	if m.BannerImage != "" {
		return m.BannerImage
	}
	if m.CoverImage != nil {
		return m.CoverImage.ExtraLarge
	}
	return ""
}

// HasLists reports whether the collection carries at least one list.
func (c *MediaCollection) HasLists() bool {
	return c != nil && c.MediaListCollection != nil && len(c.MediaListCollection.Lists) > 0
}

// Entries walks every non-nil entry of every list in order.
// The walk stops early when fn returns false.
func (c *MediaCollection) Entries(fn func(entry *MediaListEntry) bool) {
	if !c.HasLists() {
		return
	}
	for _, list := range c.MediaListCollection.Lists {
		if list == nil {
			continue
		}
		for _, entry := range list.Entries {
			if entry == nil {
				continue
			}
			if !fn(entry) {
				return
			}
		}
	}
}

// EntityKey converts a numeric media id to its map key.
func EntityKey(id int) string {
	return strconv.Itoa(id)
}
