// Package bannerimages lets the user replace the banner image of any anime or manga.
package bannerimages

import (
	"github.com/listenupapp/mediatray/internal/overrides"
	"github.com/listenupapp/mediatray/internal/plugins"
	"github.com/listenupapp/mediatray/internal/plugins/imageoverride"
	"github.com/listenupapp/mediatray/internal/transform"
	"github.com/listenupapp/mediatray/internal/tray"
)

// Options configure the custom-banner-images plugin.
var Options = imageoverride.Options{
	ID:    plugins.BannerImagesID,
	Kind:  overrides.KindBanner,
	Field: transform.BannerImage,
	Labels: tray.Labels{
		Title:      "Custom Banner Images",
		Help:       "Open an anime or manga to edit the banner image",
		InputLabel: "Banner image URL",
	},
}

// New creates the plugin.
func New(env plugins.Env) (*imageoverride.Plugin, error) {
	return imageoverride.New(env, Options)
}
