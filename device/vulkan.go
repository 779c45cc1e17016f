package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type vulkanQuerier struct {
	instance core1_0.CoreInstanceDriver
	surfaces khr_surface.ExtensionDriver
	device   core1_0.PhysicalDevice
}

// NewVulkanQuerier answers queries through the live instance driver
func NewVulkanQuerier(instance core1_0.CoreInstanceDriver, surfaces khr_surface.ExtensionDriver, device core1_0.PhysicalDevice) Querier {
	return &vulkanQuerier{instance: instance, surfaces: surfaces, device: device}
}

// Enumerate wraps every physical device the instance reports
func Enumerate(instance core1_0.CoreInstanceDriver, surfaces khr_surface.ExtensionDriver) ([]*PhysicalDeviceInfo, error) {
	physicalDevices, _, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "could not enumerate physical devices")
	}

	infos := make([]*PhysicalDeviceInfo, 0, len(physicalDevices))
	for _, physicalDevice := range physicalDevices {
		infos = append(infos, NewPhysicalDeviceInfo(physicalDevice, NewVulkanQuerier(instance, surfaces, physicalDevice)))
	}
	return infos, nil
}

func (q *vulkanQuerier) Properties() (*core1_0.PhysicalDeviceProperties, error) {
	return q.instance.GetPhysicalDeviceProperties(q.device)
}

func (q *vulkanQuerier) Features() *core1_0.PhysicalDeviceFeatures {
	return q.instance.GetPhysicalDeviceFeatures(q.device)
}

func (q *vulkanQuerier) QueueFamilies() []*core1_0.QueueFamilyProperties {
	return q.instance.GetPhysicalDeviceQueueFamilyProperties(q.device)
}

func (q *vulkanQuerier) SurfaceSupport(surface khr_surface.Surface, queueFamily int) (bool, error) {
	supported, _, err := q.surfaces.GetPhysicalDeviceSurfaceSupport(surface, q.device, queueFamily)
	return supported, err
}

func (q *vulkanQuerier) Extensions() (map[string]*core1_0.ExtensionProperties, error) {
	extensions, _, err := q.instance.EnumerateDeviceExtensionProperties(q.device)
	return extensions, err
}

func (q *vulkanQuerier) SwapchainSupport(surface khr_surface.Surface) (SwapchainSupport, error) {
	var details SwapchainSupport
	var err error

	details.Capabilities, _, err = q.surfaces.GetPhysicalDeviceSurfaceCapabilities(surface, q.device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = q.surfaces.GetPhysicalDeviceSurfaceFormats(surface, q.device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = q.surfaces.GetPhysicalDeviceSurfacePresentModes(surface, q.device)
	return details, err
}
