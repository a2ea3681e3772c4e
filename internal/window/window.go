// Package window owns the SDL2 window the renderer presents to.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/core1_0"
)

type Window struct {
	window *sdl.Window

	shouldClose bool
	resized     bool
}

// New initializes SDL video and opens a resizable Vulkan window.
func New(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "failed to initialize sdl")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "failed to create window")
	}

	return &Window{window: window}, nil
}

// SDL exposes the underlying window for surface creation.
func (w *Window) SDL() *sdl.Window {
	return w.window
}

func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// Extent returns the drawable size in pixels. A minimized window reports
// (0, 0) even when SDL still remembers its old size.
func (w *Window) Extent() core1_0.Extent2D {
	if w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return core1_0.Extent2D{}
	}

	width, height := w.window.VulkanGetDrawableSize()
	return core1_0.Extent2D{Width: int(width), Height: int(height)}
}

func (w *Window) WasResized() bool {
	return w.resized
}

func (w *Window) ResetResizedFlag() {
	w.resized = false
}

// PollEvents handles every pending event without blocking.
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// WaitEvents blocks for one event, then drains the rest.
func (w *Window) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *Window) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.shouldClose = true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			w.shouldClose = true
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESTORED:
			w.resized = true
		}
	}
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
