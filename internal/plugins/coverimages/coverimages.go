// Package coverimages lets the user replace the cover image of any anime or manga.
package coverimages

import (
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/plugins/imageoverride"
	"github.com/listenupapp/mediatray/internal/transform"
	"github.com/listenupapp/mediatray/internal/tray"
)

// Options configure the custom-cover-images plugin. Every cover size is replaced.
var Options = imageoverride.Options{
	ID:    plugins.CoverImagesID,
	Kind:  overrides.KindCover,
	Field: transform.CoverImage,
	Labels: tray.Labels{
		Title:      "Custom Cover Images",
		Help:       "Open an anime or manga to edit the cover image",
		InputLabel: "Cover image URL",
	},
}

// New creates the plugin.
func New(env plugins.Env) (*imageoverride.Plugin, error) {
	return imageoverride.New(env, Options)
}
