package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/pkg/domain"
)

// allMissions is the subscription key of clients that watch every mission.
const allMissions = ""

// StreamMessage is one Server-Sent Event.
type StreamMessage struct {
	Event string
	Data  string
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan StreamMessage]struct{} // MissionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan StreamMessage]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client for the events of missionID, or of every
// mission when missionID is empty. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(missionID string) (<-chan StreamMessage, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan StreamMessage, 10)
	if _, ok := sm.subscribers[missionID]; !ok {
		sm.subscribers[missionID] = make(map[chan StreamMessage]struct{})
	}
	sm.subscribers[missionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[missionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, missionID)
				}
			}
		})
	}
}

// Broadcast delivers msg to the subscribers of missionID and to the
// subscribers of every mission.
func (sm *StreamManager) Broadcast(missionID string, msg StreamMessage) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "mission_id", missionID, "event", msg.Event, "payload_size", len(msg.Data))

	for _, key := range []string{missionID, allMissions} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "mission_id", missionID)
			}
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}

// Hooks adapts the StreamManager to lifecycle hooks.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCreate: func(_ context.Context, e *domain.CreatedEvent) {
			sm.broadcastEvent(e.MissionID, string(e.Type), e)
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			sm.broadcastEvent(e.MissionID, string(e.Type), e)
		},
	}
}

func (sm *StreamManager) broadcastEvent(missionID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("SSE: Failed to marshal event", "mission_id", missionID, "error", err)
		return
	}
	sm.Broadcast(missionID, StreamMessage{Event: event, Data: string(data)})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	missionID := allMissions
	if params.MissionId != nil {
		missionID = *params.MissionId
		if _, err := s.Service.Get(r.Context(), missionID); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to mission events", "mission_id", missionID)
	ch, cancel := s.Streams.Subscribe(missionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "mission_id", missionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
