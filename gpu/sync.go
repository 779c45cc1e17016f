package gpu

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/quad/frame"
)

// createCommandPool allows each command buffer to be reset on its own, since
// every frame slot re-records its buffer
func (c *Context) createCommandPool() error {
	pool, _, err := c.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: *c.logical.Indices.GraphicsFamily,
	})
	if err != nil {
		return err
	}

	c.commandPool = pool
	return nil
}

// createFrameSlots creates the per-slot command buffer, semaphores and a
// fence that starts signaled so the first wait on each slot returns at once
func (c *Context) createFrameSlots() error {
	buffers, _, err := c.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: c.cfg.MaxFramesInFlight,
	})
	if err != nil {
		return err
	}

	for i := 0; i < c.cfg.MaxFramesInFlight; i++ {
		slot := &frame.Slot{Index: i, CommandBuffer: buffers[i]}
		c.slots = append(c.slots, slot)

		slot.ImageAvailable, _, err = c.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}

		slot.RenderFinished, _, err = c.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}

		slot.InFlight, _, err = c.driver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// destroyFrameSlots leaves the command buffers to the command pool
func (c *Context) destroyFrameSlots() {
	for _, slot := range c.slots {
		if slot.InFlight.Initialized() {
			c.driver.DestroyFence(slot.InFlight, nil)
		}
		if slot.RenderFinished.Initialized() {
			c.driver.DestroySemaphore(slot.RenderFinished, nil)
		}
		if slot.ImageAvailable.Initialized() {
			c.driver.DestroySemaphore(slot.ImageAvailable, nil)
		}
	}
	c.slots = nil
}
