package swapchain_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/device"
	"github.com/vkngwrapper/quad/swapchain"
)

type fakeDevice struct {
	capabilities khr_surface.SurfaceCapabilities
	indices      device.QueueFamilyIndices

	failViewAfter int
	viewsCreated  int

	supportQueries   int
	liveSwapchains   int
	liveViews        int
	liveFramebuffers int
	lastSettings     swapchain.Settings
	violations       []string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		capabilities: khr_surface.SurfaceCapabilities{
			MinImageCount:  2,
			CurrentExtent:  undefined,
			MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
		},
		indices:       device.QueueFamilyIndices{GraphicsFamily: family(0), PresentFamily: family(1)},
		failViewAfter: -1,
	}
}

func (d *fakeDevice) SwapchainSupport() (device.SwapchainSupport, error) {
	d.supportQueries++
	capabilities := d.capabilities
	return device.SwapchainSupport{
		Capabilities: &capabilities,
		Formats:      []khr_surface.SurfaceFormat{{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
	}, nil
}

func (d *fakeDevice) QueueFamilies() (device.QueueFamilyIndices, error) {
	return d.indices, nil
}

func (d *fakeDevice) CreateSwapchain(settings swapchain.Settings) (khr_swapchain.Swapchain, []core1_0.Image, error) {
	if d.liveSwapchains > 0 {
		d.violations = append(d.violations, "swap-chain created while another is alive")
	}
	d.liveSwapchains++
	d.lastSettings = settings
	return khr_swapchain.Swapchain{}, make([]core1_0.Image, settings.ImageCount), nil
}

func (d *fakeDevice) CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error) {
	if d.failViewAfter >= 0 && d.viewsCreated >= d.failViewAfter {
		return core1_0.ImageView{}, errors.New("out of device memory")
	}
	d.viewsCreated++
	d.liveViews++
	return core1_0.ImageView{}, nil
}

func (d *fakeDevice) CreateFramebuffer(view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error) {
	if d.liveFramebuffers >= d.liveViews {
		d.violations = append(d.violations, "framebuffer created without a live view")
	}
	d.liveFramebuffers++
	return core1_0.Framebuffer{}, nil
}

func (d *fakeDevice) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	d.liveFramebuffers--
}

func (d *fakeDevice) DestroyImageView(view core1_0.ImageView) {
	if d.liveFramebuffers > 0 {
		d.violations = append(d.violations, "image view destroyed while framebuffers reference it")
	}
	d.liveViews--
}

func (d *fakeDevice) DestroySwapchain(sc khr_swapchain.Swapchain) {
	if d.liveViews > 0 {
		d.violations = append(d.violations, "swap-chain destroyed while image views are alive")
	}
	d.liveSwapchains--
}

type fakeWindow struct {
	width, height int
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func newManager(d *fakeDevice, w *fakeWindow) *swapchain.Manager {
	logger, _ := test.NewNullLogger()
	return swapchain.NewManager(d, w, logger)
}

func TestBuild(t *testing.T) {
	d := newFakeDevice()
	m := newManager(d, &fakeWindow{width: 800, height: 600})

	state, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}

	if state.ImageCount() != 3 || len(state.ImageViews) != 3 || len(state.Framebuffers) != 3 {
		t.Errorf("expected 3 images, views and framebuffers, got %d, %d, %d", state.ImageCount(), len(state.ImageViews), len(state.Framebuffers))
	}
	if state.Extent().Width != 800 || state.Extent().Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", state.Extent().Width, state.Extent().Height)
	}
	if d.lastSettings.SharingMode != core1_0.SharingModeConcurrent || len(d.lastSettings.QueueFamilyIndices) != 2 {
		t.Errorf("split queue families need concurrent sharing, got %v %v", d.lastSettings.SharingMode, d.lastSettings.QueueFamilyIndices)
	}
	if m.State() != state {
		t.Error("manager does not expose the built state")
	}

	if _, err := m.Build(); err == nil {
		t.Error("a second build without teardown should fail")
	}
}

func TestTeardownOrder(t *testing.T) {
	d := newFakeDevice()
	m := newManager(d, &fakeWindow{width: 800, height: 600})

	if _, err := m.Build(); err != nil {
		t.Fatal(err)
	}
	m.Teardown()
	m.Teardown()

	if len(d.violations) > 0 {
		t.Errorf("destruction order violated: %v", d.violations)
	}
	if d.liveSwapchains != 0 || d.liveViews != 0 || d.liveFramebuffers != 0 {
		t.Errorf("leaked %d swap-chains, %d views, %d framebuffers", d.liveSwapchains, d.liveViews, d.liveFramebuffers)
	}
	if m.State() != nil {
		t.Error("state should be cleared after teardown")
	}
}

func TestRecreateFollowsSurface(t *testing.T) {
	d := newFakeDevice()
	w := &fakeWindow{width: 800, height: 600}
	m := newManager(d, w)

	first, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}

	d.capabilities.MinImageCount = 3
	d.capabilities.MaxImageCount = 3
	w.width, w.height = 1280, 720

	if err := m.Recreate(); err != nil {
		t.Fatal(err)
	}
	second := m.State()

	if d.supportQueries != 2 {
		t.Errorf("each build must query the surface, got %d queries", d.supportQueries)
	}
	if second.Generation == first.Generation {
		t.Error("recreation should produce a new generation")
	}
	if second.ImageCount() != 3 || len(second.ImageViews) != 3 || len(second.Framebuffers) != 3 {
		t.Errorf("expected 3 of everything, got %d, %d, %d", second.ImageCount(), len(second.ImageViews), len(second.Framebuffers))
	}
	if second.Extent().Width != 1280 || second.Extent().Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", second.Extent().Width, second.Extent().Height)
	}
	if d.liveViews != 3 || d.liveFramebuffers != 3 || d.liveSwapchains != 1 {
		t.Errorf("old resources leaked: %d views, %d framebuffers, %d swap-chains", d.liveViews, d.liveFramebuffers, d.liveSwapchains)
	}
	if len(d.violations) > 0 {
		t.Errorf("violations: %v", d.violations)
	}
}

func TestBuildFailureReleasesPartialState(t *testing.T) {
	d := newFakeDevice()
	d.failViewAfter = 1
	m := newManager(d, &fakeWindow{width: 800, height: 600})

	if _, err := m.Build(); err == nil {
		t.Fatal("expected the build to fail")
	}
	if d.liveSwapchains != 0 || d.liveViews != 0 || d.liveFramebuffers != 0 {
		t.Errorf("partial build leaked %d swap-chains, %d views, %d framebuffers", d.liveSwapchains, d.liveViews, d.liveFramebuffers)
	}
	if m.State() != nil {
		t.Error("a failed build must not leave a state behind")
	}
}
