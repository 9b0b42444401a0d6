package sse

import (
	"bufio"
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readFrame reads one blank-line terminated frame as field -> value.
func readFrame(t *testing.T, r *bufio.Reader) map[string]string {
	t.Helper()
	frame := map[string]string{}
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if len(frame) == 0 {
				continue
			}
			return frame
		}
		field, value, _ := strings.Cut(line, ": ")
		frame[field] = value
	}
}

func TestHandler_StreamsPluginFrames(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	m.Emit(NewBadgeEvent("custom-banner-images", 2, ""))
	m.Emit(NewBadgeEvent("custom-cover-images", 1, ""))
	require.Eventually(t, func() bool { return len(m.events) == 0 }, time.Second, 5*time.Millisecond)

	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL + "?plugin=custom-banner-images")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, map[string]string{"retry": "2000"}, readFrame(t, r))

	connected := readFrame(t, r)
	assert.Equal(t, "1", connected["id"])
	assert.Equal(t, string(EventBridgeConnected), connected["event"])
	var open struct {
		Data ConnectedEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(connected["data"]), &open))
	assert.Equal(t, "custom-banner-images", open.Data.Plugin)
	assert.NotEmpty(t, open.Data.ClientID)

	badge := readFrame(t, r)
	assert.Equal(t, "2", badge["id"])
	assert.Equal(t, string(EventTrayBadge), badge["event"])
	assert.Contains(t, badge["data"], `"plugin":"custom-banner-images"`)

	m.Emit(NewToastEvent("custom-cover-images", "info", "elsewhere"))
	m.Emit(NewToastEvent("custom-banner-images", "success", "saved"))
	for {
		frame := readFrame(t, r)
		assert.NotContains(t, frame["data"], "custom-cover-images")
		if frame["event"] == string(EventTrayToast) {
			assert.Contains(t, frame["data"], `"message":"saved"`)
			break
		}
	}
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(slog.New(slog.DiscardHandler)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, h.manager.ClientCount())
}
