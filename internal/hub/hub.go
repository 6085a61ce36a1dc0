// Package hub fans the mirror's current display text out to every connected
// viewer. All display mutations in the process go through this package.
package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event types pushed to viewers.
const (
	EventConnected    = "connected"
	EventTextUpdate   = "text_update"
	EventReset        = "reset"
	EventAudioTrigger = "audio_trigger"
	EventPing         = "ping"
)

// Event is one message on a viewer's queue.
type Event struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	PlayAudio bool   `json:"play_audio,omitempty"`
	Message   string `json:"message,omitempty"`
}

// viewerQueueSize bounds each viewer's pending events. A viewer that falls
// this far behind is treated as dead and dropped.
const viewerQueueSize = 16

// Viewer is one connected display client. It is owned by the hub; callers
// read Events until the channel closes and call Unsubscribe when done.
type Viewer struct {
	id     string
	events chan Event
}

// ID returns the viewer's connection identifier.
func (v *Viewer) ID() string { return v.id }

// Events returns the viewer's event queue. The channel is closed when the
// hub drops the viewer.
func (v *Viewer) Events() <-chan Event { return v.events }

// Hub holds the authoritative display text and the viewer registry.
type Hub struct {
	mu           sync.Mutex
	originalText string
	currentText  string
	viewers      map[string]*Viewer
}

// New creates a Hub whose reset default is originalText.
func New(originalText string) *Hub {
	return &Hub{
		originalText: originalText,
		currentText:  originalText,
		viewers:      make(map[string]*Viewer),
	}
}

// Subscribe registers a new viewer. The viewer immediately receives a
// connected event carrying the current text, so there is no gap between
// connecting and the first update.
func (h *Hub) Subscribe() *Viewer {
	v := &Viewer{
		id:     uuid.NewString(),
		events: make(chan Event, viewerQueueSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	v.events <- Event{Type: EventConnected, Text: h.currentText}
	h.viewers[v.id] = v
	return v
}

// Unsubscribe removes a viewer and closes its queue. Unknown viewers are a
// no-op, so disconnect paths may call it unconditionally.
func (h *Hub) Unsubscribe(v *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[v.id]; !ok {
		return
	}
	delete(h.viewers, v.id)
	close(v.events)
}

// SetText replaces the current text unconditionally (last write wins) and
// fans one text_update event out to every viewer.
func (h *Hub) SetText(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentText = text
	h.broadcastLocked(Event{Type: EventTextUpdate, Text: text})
}

// Reset restores the original text and fans out a reset event with the
// play_audio flag set, so viewers can tell a guest-cycle end from a plain
// text change.
func (h *Hub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentText = h.originalText
	h.broadcastLocked(Event{
		Type:      EventReset,
		Text:      h.originalText,
		PlayAudio: true,
		Message:   "Mirror reset to default",
	})
}

// PlayAudio fans out an audio trigger without changing the text.
func (h *Hub) PlayAudio(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(Event{Type: EventAudioTrigger, PlayAudio: true, Message: message})
}

// CurrentText returns the live display text.
func (h *Hub) CurrentText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentText
}

// OriginalText returns the reset default.
func (h *Hub) OriginalText() string {
	return h.originalText
}

// ViewerCount returns the number of registered viewers.
func (h *Hub) ViewerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// broadcastLocked enqueues ev on every viewer queue. Viewers whose queues
// are full are collected during the loop and dropped after it; the viewer
// set is never mutated mid-iteration. Callers must hold h.mu.
func (h *Hub) broadcastLocked(ev Event) {
	var dead []*Viewer
	for _, v := range h.viewers {
		select {
		case v.events <- ev:
		default:
			dead = append(dead, v)
		}
	}
	for _, v := range dead {
		log.Printf("hub: dropping stalled viewer %s", v.id)
		delete(h.viewers, v.id)
		close(v.events)
	}
}
