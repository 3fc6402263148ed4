package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans calculation diffs out to SSE subscribers per unit.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // unit ID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for unitID. Call the returned func to leave.
func (sm *StreamManager) Subscribe(unitID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[unitID]; !ok {
		sm.subscribers[unitID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[unitID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[unitID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, unitID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of unitID without blocking.
func (sm *StreamManager) Broadcast(unitID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[unitID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "unit", unitID)
		}
	}
}
