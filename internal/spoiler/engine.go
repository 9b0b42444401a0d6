package spoiler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/domain"
)

// Selectors and attributes the host renders on episode lists.
const (
	SelectorListData  = "[data-anime-entry-list-data]"
	SelectorCard      = "[data-episode-card]"
	SelectorCardTitle = "[data-episode-card-title]"
	SelectorGridItem  = "[data-episode-grid-item]"

	AttrListData      = "data-anime-entry-list-data"
	AttrEpisodeNumber = "data-episode-number"
)

// Style values applied to hidden sub-elements.
const (
	BlurImage = "blur(24px)"
	BlurText  = "blur(4px)"
)

// SettingsSource loads the current display settings. *overrides.Settings satisfies it.
type SettingsSource interface {
	Load(ctx context.Context) (domain.DisplaySettings, error)
}

type treatment struct {
	marker   string
	property string
	value    string
	enabled  func(domain.DisplaySettings) bool
}

func hideThumbnails(s domain.DisplaySettings) bool   { return s.HideThumbnails }
func hideTitles(s domain.DisplaySettings) bool       { return s.HideTitles }
func hideDescriptions(s domain.DisplaySettings) bool { return s.HideDescriptions }

// Family is one kind of episode element and the sub-elements it may hide.
type Family struct {
	Name     string
	Selector string
	// SkipNext reveals the episode right after the progress when skipNextEpisode is on.
	SkipNext   bool
	treatments []treatment
}

// Cards are the continue-watching episode cards.
var Cards = Family{
	Name:     "card",
	Selector: SelectorCard,
	SkipNext: true,
	treatments: []treatment{
		{marker: "data-episode-card-image", property: "filter", value: BlurImage, enabled: hideThumbnails},
		{marker: "data-episode-card-title", property: "filter", value: BlurText, enabled: hideTitles},
	},
}

// GridItems are the episode rows of an entry page. skipNextEpisode does not apply to them.
var GridItems = Family{
	Name:     "grid-item",
	Selector: SelectorGridItem,
	treatments: []treatment{
		{marker: "data-episode-grid-item-image", property: "filter", value: BlurImage, enabled: hideThumbnails},
		{marker: "data-episode-grid-item-episode-title", property: "filter", value: BlurText, enabled: hideTitles},
		{marker: "data-episode-grid-item-filename", property: "visibility", value: "hidden", enabled: hideTitles},
		{marker: "data-episode-grid-item-episode-description", property: "filter", value: BlurText, enabled: hideDescriptions},
	},
}

// PassStats summarizes one synchronization pass.
type PassStats struct {
	Family   string `json:"family"`
	Ran      bool   `json:"ran"`
	Elements int    `json:"elements"`
	Hidden   int    `json:"hidden"`
	Revealed int    `json:"revealed"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// Engine restyles episode elements according to the display settings and watch progress.
type Engine struct {
	doc      dom.Document
	settings SettingsSource
	logger   *slog.Logger

	mu   sync.Mutex
	ctx  context.Context
	subs map[string]*dom.Subscription
}

// NewEngine creates an engine over doc.
func NewEngine(doc dom.Document, settings SettingsSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		doc:      doc,
		settings: settings,
		logger:   logger.With("component", "spoiler"),
		subs:     make(map[string]*dom.Subscription),
	}
}

// SyncCards runs the card pass over elements.
func (e *Engine) SyncCards(ctx context.Context, elements []dom.Element) PassStats {
	return e.Sync(ctx, Cards, elements)
}

// SyncGridItems runs the grid item pass over elements.
func (e *Engine) SyncGridItems(ctx context.Context, elements []dom.Element) PassStats {
	return e.Sync(ctx, GridItems, elements)
}

// Sync hides or reveals the sub-elements of every element of fam.
// Without a list metadata element on the page the pass does nothing.
func (e *Engine) Sync(ctx context.Context, fam Family, elements []dom.Element) PassStats {
	stats := PassStats{Family: fam.Name}

	settings, err := e.settings.Load(ctx)
	if err != nil {
		e.logger.Warn("spoiler pass skipped", "family", fam.Name, "error", err)
		return stats
	}

	listData, ok := e.doc.QueryOne(SelectorListData)
	if !ok {
		return stats
	}
	stats.Ran = true

	raw, _ := listData.Attribute(AttrListData)
	threshold, err := ParseProgress(raw)
	revealAll := err != nil
	if revealAll {
		e.logger.Debug("unreadable list data, revealing episodes", "family", fam.Name, "error", err)
	}
	if fam.SkipNext && settings.SkipNextEpisode {
		threshold++
	}

	for _, el := range elements {
		stats.Elements++
		hidden, ok, err := e.syncElement(fam, el, settings, threshold, revealAll)
		switch {
		case err != nil:
			stats.Failed++
			e.logger.Error("error processing episode element", "family", fam.Name, "element", el.ID(), "error", err)
		case !ok:
			stats.Skipped++
		case hidden:
			stats.Hidden++
		default:
			stats.Revealed++
		}
	}
	return stats
}

// syncElement applies every treatment of fam to one element. ok is false when the element
// carries no usable episode number.
func (e *Engine) syncElement(fam Family, el dom.Element, settings domain.DisplaySettings, threshold int, revealAll bool) (hidden, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	raw, _ := el.Attribute(AttrEpisodeNumber)
	episode, ok := ParseEpisodeNumber(raw)
	if !ok {
		return false, false, nil
	}

	hidden = !revealAll && episode > threshold
	inner := el.InnerHTML()
	for _, t := range fam.treatments {
		e.applyTreatment(el.ID(), inner, t, hidden && t.enabled(settings))
	}
	return hidden, true, nil
}

// applyTreatment sets or clears one style on one sub-element. A missing sub-element is skipped.
func (e *Engine) applyTreatment(parent, inner string, t treatment, on bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("error processing sub-element", "element", parent, "marker", t.marker, "panic", r)
		}
	}()

	id, ok := dom.FindMarked(inner, t.marker)
	if !ok {
		return
	}
	sub, ok := e.doc.AsElement(id)
	if !ok {
		return
	}
	if on {
		sub.SetStyle(t.property, t.value)
	} else {
		sub.RemoveStyle(t.property)
	}
}

// Attach starts observing the page. Observer callbacks run with ctx.
func (e *Engine) Attach(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()

	withChildren := dom.ObserveOptions{WithInnerHTML: true, IdentifyChildren: true}

	e.track(SelectorCard, e.doc.Observe(SelectorCard, func(els []dom.Element) {
		e.SyncCards(e.context(), els)
	}, withChildren))
	e.track(SelectorGridItem, e.doc.Observe(SelectorGridItem, func(els []dom.Element) {
		e.SyncGridItems(e.context(), els)
	}, withChildren))
	e.track(SelectorCardTitle, e.doc.Observe(SelectorCardTitle, func([]dom.Element) {
		e.RefreshCards()
	}, dom.ObserveOptions{}))
	e.track(SelectorListData, e.doc.Observe(SelectorListData, func([]dom.Element) {
		e.RefreshAll()
	}, dom.ObserveOptions{}))

	e.doc.OnReady(e.RefreshAll)
}

// Detach stops every observer.
func (e *Engine) Detach() {
	e.mu.Lock()
	subs := e.subs
	e.subs = make(map[string]*dom.Subscription)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.Stop()
	}
}

// RefreshCards re-runs the card pass over every card on the page.
func (e *Engine) RefreshCards() {
	e.refresh(SelectorCard)
}

// RefreshGridItems re-runs the grid item pass over every grid item on the page.
func (e *Engine) RefreshGridItems() {
	e.refresh(SelectorGridItem)
}

// RefreshAll re-runs both passes.
func (e *Engine) RefreshAll() {
	e.RefreshCards()
	e.RefreshGridItems()
}

func (e *Engine) refresh(selector string) {
	e.mu.Lock()
	sub := e.subs[selector]
	e.mu.Unlock()

	if sub != nil {
		sub.Refresh()
	}
}

func (e *Engine) track(selector string, sub *dom.Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[selector] = sub
}

func (e *Engine) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}
