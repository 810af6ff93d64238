package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/internal/store"
	"github.com/easelhq/easel/internal/workload"
)

// handleWatchEditorLoad streams capacity updates for one editor as
// server-sent events. Each recompute that touches the editor produces one
// event; the stream ends when the editor is deactivated or the client
// disconnects.
func (s *Server) handleWatchEditorLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	editor, err := s.store.GetEditor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "editor not found")
		return
	}
	if err != nil {
		s.logger.Error("get editor for watch", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get editor")
		return
	}

	// Set SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// A deactivated editor has no future updates; return an empty stream.
	if !editor.Active {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	// Safe even if the editor was deactivated between the check above and
	// this call — Subscribe on a closed topic returns a closed channel,
	// causing the loop below to exit immediately.
	ch, unsub := s.engine.Broker().Subscribe(id)
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case update, ok := <-ch:
			if !ok {
				// Editor deactivated; send explicit done event before closing.
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			if err := writeSSEUpdate(w, update); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}

// writeSSEUpdate writes a capacity update as an SSE data event.
func writeSSEUpdate(w http.ResponseWriter, u workload.CapacityUpdate) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
