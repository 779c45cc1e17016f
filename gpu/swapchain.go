package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/device"
	"github.com/vkngwrapper/quad/swapchain"
)

// SwapchainSupport always asks the surface, since it runs after resizes
func (c *Context) SwapchainSupport() (device.SwapchainSupport, error) {
	return c.physicalDevice.SwapchainSupport(c.surface, true)
}

func (c *Context) QueueFamilies() (device.QueueFamilyIndices, error) {
	return c.logical.Indices, nil
}

func (c *Context) CreateSwapchain(settings swapchain.Settings) (khr_swapchain.Swapchain, []core1_0.Image, error) {
	// the render pass outlives the swap-chain and was built for one format
	if settings.Format.Format != c.colorFormat {
		return khr_swapchain.Swapchain{}, nil, errors.Newf("surface format changed from %v to %v", c.colorFormat, settings.Format.Format)
	}

	sc, _, err := c.swapchains.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: c.surface,

		MinImageCount:    settings.ImageCount,
		ImageFormat:      settings.Format.Format,
		ImageColorSpace:  settings.Format.ColorSpace,
		ImageExtent:      settings.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   settings.SharingMode,
		QueueFamilyIndices: settings.QueueFamilyIndices,

		PreTransform:   settings.PreTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    settings.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return khr_swapchain.Swapchain{}, nil, err
	}

	images, _, err := c.swapchains.GetSwapchainImages(sc)
	if err != nil {
		c.swapchains.DestroySwapchain(sc, nil)
		return khr_swapchain.Swapchain{}, nil, err
	}

	return sc, images, nil
}

func (c *Context) CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error) {
	imageView, _, err := c.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleIdentity,
			G: core1_0.ComponentSwizzleIdentity,
			B: core1_0.ComponentSwizzleIdentity,
			A: core1_0.ComponentSwizzleIdentity,
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func (c *Context) CreateFramebuffer(view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error) {
	framebuffer, _, err := c.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  c.renderPass,
		Layers:      1,
		Attachments: []core1_0.ImageView{view},
		Width:       extent.Width,
		Height:      extent.Height,
	})
	return framebuffer, err
}

func (c *Context) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	c.driver.DestroyFramebuffer(framebuffer, nil)
}

func (c *Context) DestroyImageView(view core1_0.ImageView) {
	c.driver.DestroyImageView(view, nil)
}

func (c *Context) DestroySwapchain(sc khr_swapchain.Swapchain) {
	if sc.Initialized() {
		c.swapchains.DestroySwapchain(sc, nil)
	}
}
