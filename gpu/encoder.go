package gpu

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Context records commands straight through the device driver

func (c *Context) ResetCommandBuffer(commandBuffer core1_0.CommandBuffer) error {
	_, err := c.driver.ResetCommandBuffer(commandBuffer, 0)
	return err
}

func (c *Context) BeginCommandBuffer(commandBuffer core1_0.CommandBuffer) error {
	_, err := c.driver.BeginCommandBuffer(commandBuffer, core1_0.CommandBufferBeginInfo{})
	return err
}

func (c *Context) EndCommandBuffer(commandBuffer core1_0.CommandBuffer) error {
	_, err := c.driver.EndCommandBuffer(commandBuffer)
	return err
}

func (c *Context) CmdBeginRenderPass(commandBuffer core1_0.CommandBuffer, renderPass core1_0.RenderPass, framebuffer core1_0.Framebuffer, extent core1_0.Extent2D, clearColor [4]float32) error {
	return c.driver.CmdBeginRenderPass(commandBuffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  renderPass,
			Framebuffer: framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat(clearColor),
			},
		})
}

func (c *Context) CmdEndRenderPass(commandBuffer core1_0.CommandBuffer) {
	c.driver.CmdEndRenderPass(commandBuffer)
}

func (c *Context) CmdBindPipeline(commandBuffer core1_0.CommandBuffer, pipeline core1_0.Pipeline) {
	c.driver.CmdBindPipeline(commandBuffer, core1_0.PipelineBindPointGraphics, pipeline)
}

func (c *Context) CmdSetViewport(commandBuffer core1_0.CommandBuffer, viewport core1_0.Viewport) {
	c.driver.CmdSetViewport(commandBuffer, viewport)
}

func (c *Context) CmdSetScissor(commandBuffer core1_0.CommandBuffer, scissor core1_0.Rect2D) {
	c.driver.CmdSetScissor(commandBuffer, scissor)
}

func (c *Context) CmdBindVertexBuffer(commandBuffer core1_0.CommandBuffer, buffer core1_0.Buffer) {
	c.driver.CmdBindVertexBuffers(commandBuffer, 0, []core1_0.Buffer{buffer}, []int{0})
}

func (c *Context) CmdBindIndexBuffer(commandBuffer core1_0.CommandBuffer, buffer core1_0.Buffer) {
	c.driver.CmdBindIndexBuffer(commandBuffer, buffer, 0, core1_0.IndexTypeUInt16)
}

func (c *Context) CmdBindDescriptorSet(commandBuffer core1_0.CommandBuffer, layout core1_0.PipelineLayout, set core1_0.DescriptorSet) {
	c.driver.CmdBindDescriptorSets(commandBuffer, core1_0.PipelineBindPointGraphics, layout, 0, []core1_0.DescriptorSet{set}, nil)
}

func (c *Context) CmdDrawIndexed(commandBuffer core1_0.CommandBuffer, indexCount int) {
	c.driver.CmdDrawIndexed(commandBuffer, indexCount, 1, 0, 0, 0)
}
