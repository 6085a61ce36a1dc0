package hub

import (
	"testing"
)

const defaultText = "Say Mirror Mirror to begin"

func drainConnected(t *testing.T, v *Viewer) Event {
	t.Helper()
	select {
	case ev := <-v.Events():
		if ev.Type != EventConnected {
			t.Fatalf("first event type = %q, want %q", ev.Type, EventConnected)
		}
		return ev
	default:
		t.Fatal("no connected event queued on subscribe")
	}
	return Event{}
}

func TestSubscribe_ImmediateConnectedEvent(t *testing.T) {
	h := New(defaultText)
	v := h.Subscribe()
	ev := drainConnected(t, v)
	if ev.Text != defaultText {
		t.Errorf("connected text = %q, want %q", ev.Text, defaultText)
	}
}

func TestSetText_FanOutToAllViewers(t *testing.T) {
	h := New(defaultText)
	viewers := make([]*Viewer, 5)
	for i := range viewers {
		viewers[i] = h.Subscribe()
		drainConnected(t, viewers[i])
	}

	h.SetText("Welcome Sam!")

	for i, v := range viewers {
		select {
		case ev := <-v.Events():
			if ev.Type != EventTextUpdate || ev.Text != "Welcome Sam!" {
				t.Errorf("viewer %d: event = %+v, want text_update Welcome Sam!", i, ev)
			}
		default:
			t.Errorf("viewer %d: no event received", i)
		}
		// Exactly one event per viewer.
		select {
		case ev := <-v.Events():
			t.Errorf("viewer %d: unexpected extra event %+v", i, ev)
		default:
		}
	}
}

func TestSetText_LateJoinerSeesCurrentValue(t *testing.T) {
	h := New(defaultText)
	h.SetText("X")

	v := h.Subscribe()
	ev := drainConnected(t, v)
	if ev.Text != "X" {
		t.Errorf("late joiner connected text = %q, want X", ev.Text)
	}
}

func TestReset_RoundTrip(t *testing.T) {
	h := New(defaultText)
	v := h.Subscribe()
	drainConnected(t, v)

	h.SetText("one")
	h.SetText("two")
	h.SetText("three")
	h.Reset()

	if h.CurrentText() != defaultText {
		t.Errorf("current = %q, want original %q", h.CurrentText(), defaultText)
	}

	var last Event
	for {
		select {
		case ev := <-v.Events():
			last = ev
			continue
		default:
		}
		break
	}
	if last.Type != EventReset {
		t.Fatalf("last event type = %q, want %q", last.Type, EventReset)
	}
	if !last.PlayAudio {
		t.Error("reset event should carry the play_audio flag")
	}
	if last.Text != defaultText {
		t.Errorf("reset event text = %q, want %q", last.Text, defaultText)
	}
}

func TestBroadcast_DropsStalledViewers(t *testing.T) {
	h := New(defaultText)
	stalled := h.Subscribe()
	healthy := h.Subscribe()
	drainConnected(t, healthy)

	// Fill the stalled viewer's queue (its connected event occupies a slot).
	for i := 0; i < viewerQueueSize; i++ {
		h.SetText("filler")
		// Keep the healthy viewer drained.
		for {
			select {
			case <-healthy.Events():
				continue
			default:
			}
			break
		}
	}

	// The next broadcast finds the stalled queue full and drops it.
	h.SetText("overflow")

	if h.ViewerCount() != 1 {
		t.Errorf("viewer count = %d, want 1 after dropping stalled viewer", h.ViewerCount())
	}
	// Queue is closed once dropped.
	open := true
	for open {
		select {
		case _, ok := <-stalled.Events():
			open = ok
		default:
			t.Fatal("stalled viewer channel not closed")
		}
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	h := New(defaultText)
	v := h.Subscribe()
	h.Unsubscribe(v)
	h.Unsubscribe(v)
	if h.ViewerCount() != 0 {
		t.Errorf("viewer count = %d, want 0", h.ViewerCount())
	}
}

func TestPlayAudio_NoTextChange(t *testing.T) {
	h := New(defaultText)
	v := h.Subscribe()
	drainConnected(t, v)

	h.PlayAudio("test chime")

	select {
	case ev := <-v.Events():
		if ev.Type != EventAudioTrigger || !ev.PlayAudio {
			t.Errorf("event = %+v, want audio_trigger with play_audio", ev)
		}
	default:
		t.Fatal("no audio event received")
	}
	if h.CurrentText() != defaultText {
		t.Errorf("text changed by audio trigger: %q", h.CurrentText())
	}
}
