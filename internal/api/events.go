package api

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
)

// sseEvent is one Server-Sent-Events frame.
type sseEvent struct {
	name string
	data []byte
}

// broadcaster fans status-update/traffic-update/stream-*/dns-scan-* events
// out to every connected GET /v1/events client, the loopback-HTTP analog of
// the original Tauri emit() bus and the same "broadcast once, many readers"
// shape the Process Supervisor uses for its own output channel.
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan sseEvent]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan sseEvent]struct{})}
}

func (b *broadcaster) publish(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	evt := sseEvent{name: name, data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *broadcaster) subscribe() chan sseEvent {
	ch := make(chan sseEvent, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) unsubscribe(ch chan sseEvent) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

func (s *Server) handleEvents(c *gin.Context) {
	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	c.Stream(func(w io.Writer) bool {
		select {
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(evt.name, string(evt.data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
