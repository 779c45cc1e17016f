// Package window is the SDL2 window the demo presents to. It turns SDL
// events into the few flags the renderer polls: close requested, minimized,
// resized since last checked.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/quad/config"
)

// Window must only be used from the thread that created it
type Window struct {
	window *sdl.Window
	log    logrus.FieldLogger

	closed    bool
	minimized bool
	resized   bool
}

func New(cfg config.WindowConfiguration, log logrus.FieldLogger) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "window: could not initialize SDL")
	}

	var flags uint32 = sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN
	if cfg.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "window: could not create window")
	}

	return &Window{window: window, log: log}, nil
}

func (w *Window) Handle() *sdl.Window {
	return w.window
}

// InstanceExtensions lists the instance extensions SDL needs to create a
// surface for this window
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high-DPI displays. It is 0x0 while minimized.
func (w *Window) FramebufferSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

// PollEvents handles all pending events without blocking
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// WaitEvents blocks until at least one event arrives, then drains the queue
func (w *Window) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.closed
}

func (w *Window) Minimized() bool {
	return w.minimized
}

// TakeResized reports whether the window changed size since the last call
func (w *Window) TakeResized() bool {
	resized := w.resized
	w.resized = false
	return resized
}

func (w *Window) Destroy() {
	if w.window != nil {
		if err := w.window.Destroy(); err != nil {
			w.log.WithError(err).Warn("could not destroy window")
		}
		w.window = nil
	}
	sdl.Quit()
}

func (w *Window) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.closed = true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			w.closed = true
		case sdl.WINDOWEVENT_MINIMIZED:
			w.minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			w.minimized = false
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w.resized = true
			w.log.WithFields(logrus.Fields{
				"width":  e.Data1,
				"height": e.Data2,
			}).Debug("window resized")
		}
	}
}
