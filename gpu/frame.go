package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/frame"
)

var errNoSwapchain = errors.New("gpu: no swap-chain")

func (c *Context) WaitForFence(slot *frame.Slot) error {
	_, err := c.driver.WaitForFences(true, common.NoTimeout, slot.InFlight)
	return err
}

func (c *Context) ResetFence(slot *frame.Slot) error {
	_, err := c.driver.ResetFences(slot.InFlight)
	return err
}

func (c *Context) AcquireNextImage(slot *frame.Slot) (int, frame.Status, error) {
	state := c.Swapchain.State()
	if state == nil {
		return 0, frame.StatusOK, errNoSwapchain
	}

	imageIndex, res, err := c.swapchains.AcquireNextImage(state.Swapchain, common.NoTimeout, &slot.ImageAvailable, nil)
	status, err := statusFromResult(res, err)
	return imageIndex, status, err
}

// Submit starts the color output stage only once the image is available;
// vertex work may run before that
func (c *Context) Submit(slot *frame.Slot, imageIndex int) error {
	_, err := c.driver.QueueSubmit(c.logical.GraphicsQueue, &slot.InFlight,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{slot.ImageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{slot.CommandBuffer},
			SignalSemaphores: []core1_0.Semaphore{slot.RenderFinished},
		},
	)
	return err
}

func (c *Context) Present(slot *frame.Slot, imageIndex int) (frame.Status, error) {
	state := c.Swapchain.State()
	if state == nil {
		return frame.StatusOK, errNoSwapchain
	}

	res, err := c.swapchains.QueuePresent(c.logical.PresentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{slot.RenderFinished},
		Swapchains:     []khr_swapchain.Swapchain{state.Swapchain},
		ImageIndices:   []int{imageIndex},
	})
	return statusFromResult(res, err)
}

func (c *Context) WaitIdle() error {
	_, err := c.driver.DeviceWaitIdle()
	return err
}

// statusFromResult turns the two results that call for a new swap-chain into
// a status. Everything else that failed is an error.
func statusFromResult(res common.VkResult, err error) (frame.Status, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return frame.StatusSuboptimal, nil
	}
	return frame.StatusOK, err
}
