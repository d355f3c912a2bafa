package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// streamInterval is the poll cadence for log growth and status
// heartbeats on a push channel.
const streamInterval = 500 * time.Millisecond

// handleStream serves Server-Sent Events for one run id. Every tick it
// emits the newly appended log bytes (when the file grew) and a status
// snapshot (always, so a client attached after completion still sees the
// outcome). The channel stays open until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var offset int64
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chunk, err := s.tailer.ReadFrom(id, offset)
			if err == nil && len(chunk) > 0 {
				offset += int64(len(chunk))
				writeSSE(w, "log", string(chunk))
			}
			writeSSE(w, "status", map[string]any{"current": s.sup.Status()})
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
