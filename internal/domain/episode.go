package domain

import "encoding/json/jsontext"

// Episode is an episode row rendered by the host (continue watching, missing episodes).
type Episode struct {
	EpisodeTitle    string           `json:"episodeTitle,omitzero"`
	EpisodeMetadata *EpisodeMetadata `json:"episodeMetadata,omitzero"`
	BaseAnime       *BaseMedia       `json:"baseAnime,omitzero"`
	Unknown         jsontext.Value   `json:",unknown"`
}

// EpisodeMetadata is the per-episode metadata shown on episode cards.
type EpisodeMetadata struct {
	Image   string         `json:"image,omitzero"`
	Unknown jsontext.Value `json:",unknown"`
}

// LibraryCollection is the host's local anime library view.
type LibraryCollection struct {
	ContinueWatchingList []*Episode     `json:"continueWatchingList,omitzero"`
	Unknown              jsontext.Value `json:",unknown"`
}

// StreamCollection is the host's streaming library view.
type StreamCollection struct {
	ContinueWatchingList []*Episode     `json:"continueWatchingList,omitzero"`
	Unknown              jsontext.Value `json:",unknown"`
}

// MissingEpisodes lists aired episodes missing from the local library.
type MissingEpisodes struct {
	Episodes []*Episode     `json:"episodes,omitzero"`
	Unknown  jsontext.Value `json:",unknown"`
}
