package sse

import (
	"bytes"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	// reconnectDelay is sent as the stream's retry field.
	reconnectDelay = 2 * time.Second
	// streamWriteTimeout bounds a single frame write. The manager's heartbeats keep idle streams inside it.
	streamWriteTimeout = time.Minute
)

// Handler streams bridge events to the host at GET /api/v1/events.
//
// The query parameter plugin narrows plugin-scoped events (badges, toasts, tray updates)
// to one plugin. Every stream opens with a bridge.connected event followed by the
// retained state events, then live events in emission order. Frame ids count per
// connection; state is replayed on reconnect, so Last-Event-ID is not consulted.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		manager: manager,
		logger:  logger.With("component", "sse"),
	}
}

// ServeHTTP handles one host connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	plugin := r.URL.Query().Get("plugin")
	client, err := h.manager.Connect(plugin)
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID), slog.String("plugin", plugin))

	s, err := openStream(w)
	if err != nil {
		log.Error("streaming not supported", slog.String("error", err.Error()))
		return
	}
	if err := s.send(NewConnectedEvent(client.ID, plugin)); err != nil {
		log.Warn("failed to open stream", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case evt, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := s.send(evt); err != nil {
				log.Info("stream closed during send", slog.Uint64("frames", s.seq), slog.String("error", err.Error()))
				return
			}

		case <-client.Done:
			log.Info("stream closed by manager", slog.Uint64("frames", s.seq))
			return

		case <-r.Context().Done():
			log.Info("host disconnected", slog.Uint64("frames", s.seq))
			return
		}
	}
}

// stream writes text/event-stream frames for one connection.
type stream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	buf bytes.Buffer
	seq uint64
}

func openStream(w http.ResponseWriter) (*stream, error) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &stream{w: w, rc: http.NewResponseController(w)}
	fmt.Fprintf(&s.buf, "retry: %d\n\n", reconnectDelay.Milliseconds())
	return s, s.flush()
}

// send writes evt as one frame: id, event type and the JSON encoded event on a single data line.
func (s *stream) send(evt Event) error {
	s.seq++
	fmt.Fprintf(&s.buf, "id: %d\nevent: %s\ndata: ", s.seq, evt.Type)
	if err := json.MarshalWrite(&s.buf, evt); err != nil {
		s.buf.Reset()
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	s.buf.WriteString("\n\n")
	return s.flush()
}

func (s *stream) flush() error {
	if _, err := s.buf.WriteTo(s.w); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		return err
	}
	if err := s.rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
