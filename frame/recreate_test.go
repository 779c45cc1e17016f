package frame_test

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/device"
	"github.com/vkngwrapper/quad/frame"
	"github.com/vkngwrapper/quad/swapchain"
)

// surfaceDevice backs a real swapchain.Manager and fails the test whenever a
// swap-chain object is destroyed while the GPU may still be using it
type surfaceDevice struct {
	gpu          *fakeGPU
	capabilities khr_surface.SurfaceCapabilities

	liveSwapchains   int
	liveViews        int
	liveFramebuffers int
}

func (d *surfaceDevice) SwapchainSupport() (device.SwapchainSupport, error) {
	capabilities := d.capabilities
	return device.SwapchainSupport{
		Capabilities: &capabilities,
		Formats:      []khr_surface.SurfaceFormat{{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
	}, nil
}

func (d *surfaceDevice) QueueFamilies() (device.QueueFamilyIndices, error) {
	graphics, present := 0, 0
	return device.QueueFamilyIndices{GraphicsFamily: &graphics, PresentFamily: &present}, nil
}

func (d *surfaceDevice) CreateSwapchain(settings swapchain.Settings) (khr_swapchain.Swapchain, []core1_0.Image, error) {
	d.liveSwapchains++
	return khr_swapchain.Swapchain{}, make([]core1_0.Image, settings.ImageCount), nil
}

func (d *surfaceDevice) CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error) {
	d.liveViews++
	return core1_0.ImageView{}, nil
}

func (d *surfaceDevice) CreateFramebuffer(view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error) {
	d.liveFramebuffers++
	return core1_0.Framebuffer{}, nil
}

func (d *surfaceDevice) destroyed(kind string) {
	if outstanding := d.gpu.outstanding(); outstanding > 0 {
		d.gpu.violate("%s destroyed with %d frames in flight", kind, outstanding)
	}
}

func (d *surfaceDevice) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	d.destroyed("framebuffer")
	d.liveFramebuffers--
}

func (d *surfaceDevice) DestroyImageView(view core1_0.ImageView) {
	d.destroyed("image view")
	d.liveViews--
}

func (d *surfaceDevice) DestroySwapchain(sc khr_swapchain.Swapchain) {
	d.destroyed("swap-chain")
	d.liveSwapchains--
}

// framebufferRecorder checks every recorded image index against the
// swap-chain that is current at record time
type framebufferRecorder struct {
	gpu     *fakeGPU
	manager *swapchain.Manager
	extents []core1_0.Extent2D
}

func (r *framebufferRecorder) Record(slot *frame.Slot, imageIndex int) error {
	state := r.manager.State()
	if state == nil {
		r.gpu.violate("recording without a swap-chain")
		return nil
	}
	if imageIndex < 0 || imageIndex >= len(state.Framebuffers) {
		r.gpu.violate("image %d recorded against %d framebuffers", imageIndex, len(state.Framebuffers))
	}
	r.extents = append(r.extents, state.Extent())
	return nil
}

func (r *framebufferRecorder) Update(slot *frame.Slot) error {
	return nil
}

func TestResizeRebuildsSwapchainBetweenFrames(t *testing.T) {
	logger, _ := test.NewNullLogger()

	gpu := newFakeGPU(2)
	window := &fakeWindow{sizes: [][2]int{{800, 600}}}
	surface := &surfaceDevice{
		gpu: gpu,
		capabilities: khr_surface.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  2,
			CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
			MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
		},
	}

	manager := swapchain.NewManager(surface, window, logger)
	if _, err := manager.Build(); err != nil {
		t.Fatal(err)
	}
	gpu.imageCount = func() int { return manager.State().ImageCount() }

	recorder := &framebufferRecorder{gpu: gpu, manager: manager}
	slots := []*frame.Slot{{Index: 0}, {Index: 1}}
	pacer, err := frame.NewPacer(slots, gpu, recorder, recorder, manager, window, logger)
	if err != nil {
		t.Fatal(err)
	}

	draw := func(frames int) {
		for i := 0; i < frames; i++ {
			if err := pacer.DrawFrame(); err != nil {
				t.Fatal(err)
			}
		}
	}

	draw(3)
	firstGeneration := manager.State().Generation

	// the surface grows and offers a third image; the window goes through a
	// minimized phase first
	surface.capabilities.MinImageCount = 3
	surface.capabilities.MaxImageCount = 3
	window.sizes = [][2]int{{0, 0}, {1280, 720}}
	window.resized = true

	draw(1)
	if window.waits != 1 {
		t.Errorf("expected one event wait while minimized, got %d", window.waits)
	}

	state := manager.State()
	if state.Generation == firstGeneration {
		t.Fatal("expected a new swap-chain generation after the resize")
	}
	if state.ImageCount() != 3 || len(state.Framebuffers) != 3 {
		t.Errorf("expected 3 images and framebuffers, got %d and %d", state.ImageCount(), len(state.Framebuffers))
	}

	draw(6)

	last := recorder.extents[len(recorder.extents)-1]
	if last.Width != 1280 || last.Height != 720 {
		t.Errorf("expected frames at 1280x720 after the resize, got %dx%d", last.Width, last.Height)
	}
	if surface.liveSwapchains != 1 || surface.liveViews != 3 || surface.liveFramebuffers != 3 {
		t.Errorf("old swap-chain objects leaked: %d swap-chains, %d views, %d framebuffers", surface.liveSwapchains, surface.liveViews, surface.liveFramebuffers)
	}
	if gpu.maxPending > 2 {
		t.Errorf("%d frames in flight with 2 slots", gpu.maxPending)
	}
	if len(gpu.violations) > 0 {
		t.Errorf("violations: %v", gpu.violations)
	}
}
