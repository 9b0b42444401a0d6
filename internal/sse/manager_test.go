package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()

	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	return m, cancel
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case evt := <-c.EventChan:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastToAll(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	a, err := m.Connect("")
	require.NoError(t, err)
	b, err := m.Connect("hide-spoilers")
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewStyleSetEvent("img-4", "filter", "blur(24px)"))

	for _, c := range []*Client{a, b} {
		evt := receive(t, c)
		assert.Equal(t, EventDOMStyle, evt.Type)
		data, ok := evt.Data.(StyleEventData)
		require.True(t, ok)
		assert.Equal(t, "img-4", data.ElementID)
	}
}

func TestManager_PluginFilter(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	banner, err := m.Connect("custom-banner-images")
	require.NoError(t, err)
	cover, err := m.Connect("custom-cover-images")
	require.NoError(t, err)

	m.Emit(NewToastEvent("custom-cover-images", "info", "Saving..."))
	m.Emit(NewNavigateEvent("/entry", map[string]string{"id": "21"}))

	evt := receive(t, cover)
	assert.Equal(t, EventTrayToast, evt.Type)

	// the banner client only sees the unscoped navigation
	evt = receive(t, banner)
	assert.Equal(t, EventScreenNavigate, evt.Type)
}

func TestManager_EmitIgnoresForeignTypes(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	assert.NotPanics(t, func() { m.Emit("not an event") })
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	c, err := m.Connect("")
	require.NoError(t, err)

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	select {
	case <-c.Done:
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
	assert.Equal(t, 0, m.ClientCount())

	assert.NotPanics(t, func() { m.Emit(NewHeartbeatEvent()) })
}

func TestManager_Disconnect(t *testing.T) {
	m, cancel := newTestManager(t)
	defer cancel()

	c, err := m.Connect("")
	require.NoError(t, err)
	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_ReplaysStateOnConnect(t *testing.T) {
	// Not started: nothing is broadcast, so the client only sees the replay.
	m := NewManager(slog.New(slog.DiscardHandler))

	m.Emit(NewObserveEvent("[data-episode-card]", true, true))
	m.Emit(NewBadgeEvent("custom-banner-images", 0, ""))
	m.Emit(NewBadgeEvent("custom-banner-images", 1, "info"))
	m.Emit(NewBadgeEvent("custom-cover-images", 1, "info"))
	m.Emit(NewToastEvent("custom-banner-images", "info", "Saving..."))
	require.Equal(t, 3, m.Retained(), "toasts are not retained and badges keep the latest value")

	banner, err := m.Connect("custom-banner-images")
	require.NoError(t, err)

	got := map[EventType]Event{}
	for range 2 {
		evt := receive(t, banner)
		got[evt.Type] = evt
	}

	observe, ok := got[EventDOMObserve].Data.(ObserveEventData)
	require.True(t, ok)
	assert.Equal(t, "[data-episode-card]", observe.Selector)

	badge, ok := got[EventTrayBadge].Data.(BadgeEventData)
	require.True(t, ok)
	assert.Equal(t, 1, badge.Number)
	assert.Equal(t, "custom-banner-images", got[EventTrayBadge].Plugin)

	select {
	case evt := <-banner.EventChan:
		t.Fatalf("unexpected replayed event %s", evt.Type)
	default:
	}
}
