package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

const streamHeartbeat = 25 * time.Second

// handleChatStream pushes an event's new chat messages as server-sent events.
// Messages already in the stored history when the stream opens are not repeated.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming is not supported"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before loading history so nothing inserted in between is lost
	messages := s.broker.Subscribe(ctx, eventID)

	timeline, err := services.LoadChat(ctx, s.store, s.logger, sessionFrom(ctx), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	s.logger.Debug("Chat stream opened", zap.Int64("event_id", eventID))
	defer s.logger.Debug("Chat stream closed", zap.Int64("event_id", eventID))

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !timeline.Receive(msg) {
				continue
			}
			payload, err := json.Marshal(toChatMessageView(msg))
			if err != nil {
				s.logger.Error("Failed to encode chat message", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: message\ndata: %s\n\n", msg.ID, payload)
			flusher.Flush()
		}
	}
}
