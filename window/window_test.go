package window

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/veandco/go-sdl2/sdl"
)

func newTestWindow() *Window {
	logger, _ := test.NewNullLogger()
	return &Window{log: logger}
}

func TestQuitClosesWindow(t *testing.T) {
	w := newTestWindow()
	w.handle(&sdl.QuitEvent{})
	if !w.ShouldClose() {
		t.Error("quit event should close the window")
	}

	w = newTestWindow()
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE})
	if !w.ShouldClose() {
		t.Error("window close event should close the window")
	}
}

func TestMinimizeAndRestore(t *testing.T) {
	w := newTestWindow()

	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED})
	if !w.Minimized() {
		t.Fatal("window should be minimized")
	}

	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED})
	if w.Minimized() {
		t.Error("window should be restored")
	}
}

func TestResizeFlag(t *testing.T) {
	w := newTestWindow()

	if w.TakeResized() {
		t.Fatal("new window should not report a resize")
	}

	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 1024, Data2: 768})
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 1024, Data2: 768})

	if !w.TakeResized() {
		t.Error("expected a resize")
	}
	if w.TakeResized() {
		t.Error("resize flag should be cleared once taken")
	}
}

func TestIgnoresOtherEvents(t *testing.T) {
	w := newTestWindow()
	w.handle(&sdl.KeyboardEvent{})
	w.handle(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_FOCUS_GAINED})

	if w.ShouldClose() || w.Minimized() || w.TakeResized() {
		t.Error("unrelated events should not change the window state")
	}
}
