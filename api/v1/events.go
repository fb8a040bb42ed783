package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
	"github.com/verityio/wayverify/verification"
)

// StreamEvents bridges the tracker's event bus to an SSE stream. This is a
// raw handler rather than a wrapped one: it holds the connection open and
// writes incrementally, which the JSON response plumbing can't do.
func StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	bus := pipeline_verify.GetVerifier().Tracker.Bus()
	events := bus.On("*")
	defer bus.Off("*", events)

	logrus.Info("Event stream subscriber connected")
	for {
		select {
		case <-r.Context().Done():
			logrus.Info("Event stream subscriber disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if len(ev.Args) == 0 {
				continue
			}
			payload, isEvent := ev.Args[0].(verification.Event)
			if !isEvent {
				continue
			}
			b, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.OriginalTopic, b)
			flusher.Flush()
		}
	}
}
