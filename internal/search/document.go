// Package search indexes overridden media for the tray's search box.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document is one overridden media.
// Titles are folded before indexing so that "Shingeki no Kyojin" and "Shingéki" match.
type Document struct {
	ID        string   // media id as a decimal string
	MediaType string   // ANIME or MANGA, empty when the media is unknown
	Title     string   // display title
	AltTitles []string // romaji, english and native titles
	ImageURL  string   // the override value
}

// ToMap converts the document to the field names used by the mapping.
func (d *Document) ToMap() map[string]any {
	alts := make([]string, 0, len(d.AltTitles))
	for _, t := range d.AltTitles {
		if t != "" {
			alts = append(alts, Fold(t))
		}
	}
	return map[string]any{
		"id":         d.ID,
		"type":       d.MediaType,
		"title":      Fold(d.Title),
		"alt_titles": alts,
		"raw_title":  d.Title,
		"image_url":  d.ImageURL,
	}
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Fold lowercases s and strips diacritics while keeping non-Latin scripts intact.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, stripMarks, norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
