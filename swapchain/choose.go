package swapchain

import (
	"math"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/quad/device"
)

// presentModePriority is tried in order. FIFO is always available.
var presentModePriority = []khr_surface.PresentMode{
	khr_surface.PresentModeImmediate,
	khr_surface.PresentModeMailbox,
	khr_surface.PresentModeFIFO,
}

// Settings is everything needed to create a swap-chain, derived from the
// surface state at one point in time
type Settings struct {
	Format      khr_surface.SurfaceFormat
	PresentMode khr_surface.PresentMode
	Extent      core1_0.Extent2D
	ImageCount  int

	SharingMode        core1_0.SharingMode
	QueueFamilyIndices []int

	PreTransform khr_surface.SurfaceTransformFlags
}

// Plan chooses the swap-chain settings for the given surface support and
// window framebuffer size
func Plan(support device.SwapchainSupport, indices device.QueueFamilyIndices, width, height int) Settings {
	sharingMode, families := ChooseSharingMode(indices)

	return Settings{
		Format:             ChooseSurfaceFormat(support.Formats),
		PresentMode:        ChoosePresentMode(support.PresentModes),
		Extent:             ChooseExtent(support.Capabilities, width, height),
		ImageCount:         ChooseImageCount(support.Capabilities),
		SharingMode:        sharingMode,
		QueueFamilyIndices: families,
		PreTransform:       support.Capabilities.CurrentTransform,
	}
}

// ChooseSurfaceFormat prefers BGRA8 sRGB with a non-linear sRGB color space
// and otherwise takes the first format offered
func ChooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	if len(availableFormats) == 0 {
		return khr_surface.SurfaceFormat{}
	}
	return availableFormats[0]
}

func ChoosePresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, preferred := range presentModePriority {
		for _, presentMode := range availablePresentModes {
			if presentMode == preferred {
				return presentMode
			}
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseExtent uses the surface's current extent when it is defined and the
// window framebuffer size, clamped to the supported range, when it is not
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if !undefinedExtent(capabilities.CurrentExtent) {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum. A maximum of 0
// means there is no limit.
func ChooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// ChooseSharingMode shares images concurrently between the graphics and
// present families when they differ
func ChooseSharingMode(indices device.QueueFamilyIndices) (core1_0.SharingMode, []int) {
	if *indices.GraphicsFamily != *indices.PresentFamily {
		return core1_0.SharingModeConcurrent, []int{*indices.GraphicsFamily, *indices.PresentFamily}
	}
	return core1_0.SharingModeExclusive, nil
}

// The surface reports 0xFFFFFFFF for both dimensions when the window decides
// the size
func undefinedExtent(extent core1_0.Extent2D) bool {
	return extent.Width == -1 || int64(extent.Width) == math.MaxUint32
}

func clamp(value, min, max int) int {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}
