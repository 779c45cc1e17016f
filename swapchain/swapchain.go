// Package swapchain owns the presentable images of a surface together with
// their views and framebuffers, and builds or tears them down as one unit.
package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/device"
)

// Device creates and destroys the objects that make up a swap-chain
type Device interface {
	// SwapchainSupport must query the surface, not a cache
	SwapchainSupport() (device.SwapchainSupport, error)
	QueueFamilies() (device.QueueFamilyIndices, error)

	CreateSwapchain(settings Settings) (khr_swapchain.Swapchain, []core1_0.Image, error)
	CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error)
	CreateFramebuffer(view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error)

	DestroyFramebuffer(framebuffer core1_0.Framebuffer)
	DestroyImageView(view core1_0.ImageView)
	DestroySwapchain(swapchain khr_swapchain.Swapchain)
}

type Window interface {
	FramebufferSize() (int, int)
}

// State is one built swap-chain. There is exactly one view and one
// framebuffer per image.
type State struct {
	Generation uuid.UUID
	Settings   Settings

	Swapchain    khr_swapchain.Swapchain
	Images       []core1_0.Image
	ImageViews   []core1_0.ImageView
	Framebuffers []core1_0.Framebuffer
}

func (s *State) ImageCount() int {
	return len(s.Images)
}

func (s *State) Extent() core1_0.Extent2D {
	return s.Settings.Extent
}

func (s *State) Format() core1_0.Format {
	return s.Settings.Format.Format
}

type Manager struct {
	device Device
	window Window
	log    logrus.FieldLogger

	state *State
}

func NewManager(device Device, window Window, log logrus.FieldLogger) *Manager {
	return &Manager{device: device, window: window, log: log}
}

// State is nil before the first Build and after Teardown
func (m *Manager) State() *State {
	return m.state
}

// Build creates the swap-chain, its image views and framebuffers from fresh
// surface state. On failure everything created so far is destroyed again.
func (m *Manager) Build() (*State, error) {
	if m.state != nil {
		return nil, errors.New("swapchain: build called while a swap-chain is alive")
	}

	support, err := m.device.SwapchainSupport()
	if err != nil {
		return nil, errors.Wrap(err, "swapchain: could not query surface support")
	}
	if support.Capabilities == nil || len(support.Formats) == 0 {
		return nil, errors.New("swapchain: surface reports no capabilities or formats")
	}

	indices, err := m.device.QueueFamilies()
	if err != nil {
		return nil, errors.Wrap(err, "swapchain: could not get queue families")
	}
	if !indices.IsComplete() {
		return nil, errors.New("swapchain: queue families are incomplete")
	}

	width, height := m.window.FramebufferSize()
	state := &State{
		Generation: uuid.New(),
		Settings:   Plan(support, indices, width, height),
	}

	state.Swapchain, state.Images, err = m.device.CreateSwapchain(state.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "swapchain: could not create swap-chain")
	}

	for _, image := range state.Images {
		view, err := m.device.CreateImageView(image, state.Format())
		if err != nil {
			m.destroy(state)
			return nil, errors.Wrap(err, "swapchain: could not create image view")
		}
		state.ImageViews = append(state.ImageViews, view)
	}

	for _, view := range state.ImageViews {
		framebuffer, err := m.device.CreateFramebuffer(view, state.Extent())
		if err != nil {
			m.destroy(state)
			return nil, errors.Wrap(err, "swapchain: could not create framebuffer")
		}
		state.Framebuffers = append(state.Framebuffers, framebuffer)
	}

	m.state = state
	m.log.WithFields(logrus.Fields{
		"generation":  state.Generation.String(),
		"width":       state.Extent().Width,
		"height":      state.Extent().Height,
		"format":      state.Format(),
		"presentMode": state.Settings.PresentMode,
		"images":      state.ImageCount(),
	}).Info("built swap-chain")

	return state, nil
}

// Teardown destroys framebuffers, then image views, then the swap-chain
func (m *Manager) Teardown() {
	if m.state == nil {
		return
	}

	m.destroy(m.state)
	m.log.WithField("generation", m.state.Generation.String()).Debug("destroyed swap-chain")
	m.state = nil
}

// Recreate is Teardown followed by Build. The caller must make sure the GPU
// no longer uses the old images.
func (m *Manager) Recreate() error {
	m.Teardown()
	_, err := m.Build()
	return err
}

func (m *Manager) destroy(state *State) {
	for _, framebuffer := range state.Framebuffers {
		m.device.DestroyFramebuffer(framebuffer)
	}
	state.Framebuffers = nil

	for _, view := range state.ImageViews {
		m.device.DestroyImageView(view)
	}
	state.ImageViews = nil

	m.device.DestroySwapchain(state.Swapchain)
	state.Swapchain = khr_swapchain.Swapchain{}
	state.Images = nil
}
