package window

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestHandleEvents(t *testing.T) {
	tests := []struct {
		name    string
		event   sdl.Event
		closed  bool
		resized bool
	}{
		{"quit", &sdl.QuitEvent{}, true, false},
		{"window close", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE}, true, false},
		{"resized", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED}, false, true},
		{"size changed", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED}, false, true},
		{"restored", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED}, false, true},
		{"moved", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_MOVED}, false, false},
		{"key", &sdl.KeyboardEvent{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Window{}
			w.handle(tt.event)

			if w.ShouldClose() != tt.closed {
				t.Errorf("expected ShouldClose %v, got %v", tt.closed, w.ShouldClose())
			}
			if w.WasResized() != tt.resized {
				t.Errorf("expected WasResized %v, got %v", tt.resized, w.WasResized())
			}
		})
	}
}

func TestResetResizedFlag(t *testing.T) {
	w := &Window{}
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED})
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED})

	w.ResetResizedFlag()
	if w.WasResized() {
		t.Fatalf("flag still set after reset")
	}
}
