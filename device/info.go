// Package device picks the physical device used for rendering and caches
// what it can do for a given presentation surface.
package device

import (
	"sync"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Unique returns the distinct family indices, graphics first. It must only be
// called on complete indices.
func (i QueueFamilyIndices) Unique() []int {
	families := []int{*i.GraphicsFamily}
	if *i.PresentFamily != *i.GraphicsFamily {
		families = append(families, *i.PresentFamily)
	}
	return families
}

type SwapchainSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Querier answers capability questions about a single physical device
type Querier interface {
	Properties() (*core1_0.PhysicalDeviceProperties, error)
	Features() *core1_0.PhysicalDeviceFeatures
	QueueFamilies() []*core1_0.QueueFamilyProperties
	SurfaceSupport(surface khr_surface.Surface, queueFamily int) (bool, error)
	Extensions() (map[string]*core1_0.ExtensionProperties, error)
	SwapchainSupport(surface khr_surface.Surface) (SwapchainSupport, error)
}

type surfaceProperties struct {
	queueFamilies    *QueueFamilyIndices
	swapchainSupport *SwapchainSupport
}

// PhysicalDeviceInfo wraps a device handle and caches its per-surface queue
// families and swap-chain support. Entries are only replaced on a cache miss
// or when the caller asks for a refresh.
type PhysicalDeviceInfo struct {
	Device core1_0.PhysicalDevice
	query  Querier

	lock     sync.RWMutex
	surfaces map[khr_surface.Surface]*surfaceProperties
}

func NewPhysicalDeviceInfo(device core1_0.PhysicalDevice, query Querier) *PhysicalDeviceInfo {
	return &PhysicalDeviceInfo{
		Device:   device,
		query:    query,
		surfaces: make(map[khr_surface.Surface]*surfaceProperties),
	}
}

func (i *PhysicalDeviceInfo) Properties() (*core1_0.PhysicalDeviceProperties, error) {
	return i.query.Properties()
}

func (i *PhysicalDeviceInfo) Features() *core1_0.PhysicalDeviceFeatures {
	return i.query.Features()
}

func (i *PhysicalDeviceInfo) Extensions() (map[string]*core1_0.ExtensionProperties, error) {
	return i.query.Extensions()
}

// QueueFamilyIndices finds a graphics family and a family able to present to
// surface. The two may differ.
func (i *PhysicalDeviceInfo) QueueFamilyIndices(surface khr_surface.Surface, refresh bool) (QueueFamilyIndices, error) {
	if !refresh {
		i.lock.RLock()
		props, ok := i.surfaces[surface]
		i.lock.RUnlock()
		if ok && props.queueFamilies != nil {
			return *props.queueFamilies, nil
		}
	}

	indices := QueueFamilyIndices{}
	for queueFamilyIdx, queueFamily := range i.query.QueueFamilies() {
		if (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		supported, err := i.query.SurfaceSupport(surface, queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	i.lock.Lock()
	defer i.lock.Unlock()
	i.entry(surface).queueFamilies = &indices
	return indices, nil
}

// SwapchainSupport returns the surface capabilities, formats and present modes.
// Pass refresh after a resize; the capabilities change with the window.
func (i *PhysicalDeviceInfo) SwapchainSupport(surface khr_surface.Surface, refresh bool) (SwapchainSupport, error) {
	if !refresh {
		i.lock.RLock()
		props, ok := i.surfaces[surface]
		i.lock.RUnlock()
		if ok && props.swapchainSupport != nil {
			return *props.swapchainSupport, nil
		}
	}

	support, err := i.query.SwapchainSupport(surface)
	if err != nil {
		return support, err
	}

	i.lock.Lock()
	defer i.lock.Unlock()
	i.entry(surface).swapchainSupport = &support
	return support, nil
}

func (i *PhysicalDeviceInfo) entry(surface khr_surface.Surface) *surfaceProperties {
	props, ok := i.surfaces[surface]
	if !ok {
		props = &surfaceProperties{}
		i.surfaces[surface] = props
	}
	return props
}
