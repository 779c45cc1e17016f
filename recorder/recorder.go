// Package recorder fills a frame's command buffer with the fixed draw sequence
// for the mesh: one render pass, one pipeline, one indexed draw.
package recorder

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/quad/frame"
	"github.com/vkngwrapper/quad/swapchain"
)

// Encoder writes commands into a command buffer
type Encoder interface {
	ResetCommandBuffer(commandBuffer core1_0.CommandBuffer) error
	BeginCommandBuffer(commandBuffer core1_0.CommandBuffer) error
	EndCommandBuffer(commandBuffer core1_0.CommandBuffer) error

	// CmdBeginRenderPass clears the single color attachment to clearColor
	CmdBeginRenderPass(commandBuffer core1_0.CommandBuffer, renderPass core1_0.RenderPass, framebuffer core1_0.Framebuffer, extent core1_0.Extent2D, clearColor [4]float32) error
	CmdEndRenderPass(commandBuffer core1_0.CommandBuffer)

	CmdBindPipeline(commandBuffer core1_0.CommandBuffer, pipeline core1_0.Pipeline)
	CmdSetViewport(commandBuffer core1_0.CommandBuffer, viewport core1_0.Viewport)
	CmdSetScissor(commandBuffer core1_0.CommandBuffer, scissor core1_0.Rect2D)
	// CmdBindVertexBuffer binds binding 0 at offset 0
	CmdBindVertexBuffer(commandBuffer core1_0.CommandBuffer, buffer core1_0.Buffer)
	// CmdBindIndexBuffer binds 16-bit indices at offset 0
	CmdBindIndexBuffer(commandBuffer core1_0.CommandBuffer, buffer core1_0.Buffer)
	CmdBindDescriptorSet(commandBuffer core1_0.CommandBuffer, layout core1_0.PipelineLayout, set core1_0.DescriptorSet)
	CmdDrawIndexed(commandBuffer core1_0.CommandBuffer, indexCount int)
}

// Target is the swap-chain the recorder draws into
type Target interface {
	// State returns the current swap-chain, nil while none is built
	State() *swapchain.State
}

// Resources are the objects that survive swap-chain recreation
type Resources struct {
	RenderPass     core1_0.RenderPass
	Pipeline       core1_0.Pipeline
	PipelineLayout core1_0.PipelineLayout

	VertexBuffer core1_0.Buffer
	IndexBuffer  core1_0.Buffer
	IndexCount   int

	// DescriptorSets holds one set per frame slot
	DescriptorSets []core1_0.DescriptorSet

	ClearColor [4]float32
}

type Recorder struct {
	encoder   Encoder
	target    Target
	resources Resources
}

func New(encoder Encoder, target Target, resources Resources) *Recorder {
	return &Recorder{
		encoder:   encoder,
		target:    target,
		resources: resources,
	}
}

// Record resets the slot's command buffer and records one frame into the
// framebuffer of imageIndex. Viewport and scissor always cover the current
// swap-chain extent.
func (r *Recorder) Record(slot *frame.Slot, imageIndex int) error {
	state := r.target.State()
	if state == nil {
		return errors.New("recorder: no swap-chain to record into")
	}
	if imageIndex < 0 || imageIndex >= len(state.Framebuffers) {
		return errors.Newf("recorder: image index %d out of range for %d framebuffers", imageIndex, len(state.Framebuffers))
	}
	if slot.Index < 0 || slot.Index >= len(r.resources.DescriptorSets) {
		return errors.Newf("recorder: no descriptor set for frame slot %d", slot.Index)
	}

	buffer := slot.CommandBuffer
	extent := state.Extent()

	if err := r.encoder.ResetCommandBuffer(buffer); err != nil {
		return errors.Wrap(err, "recorder: reset command buffer")
	}
	if err := r.encoder.BeginCommandBuffer(buffer); err != nil {
		return errors.Wrap(err, "recorder: begin command buffer")
	}

	err := r.encoder.CmdBeginRenderPass(buffer, r.resources.RenderPass, state.Framebuffers[imageIndex], extent, r.resources.ClearColor)
	if err != nil {
		return errors.Wrap(err, "recorder: begin render pass")
	}

	r.encoder.CmdBindPipeline(buffer, r.resources.Pipeline)
	r.encoder.CmdSetViewport(buffer, Viewport(extent))
	r.encoder.CmdSetScissor(buffer, Scissor(extent))
	r.encoder.CmdBindVertexBuffer(buffer, r.resources.VertexBuffer)
	r.encoder.CmdBindIndexBuffer(buffer, r.resources.IndexBuffer)
	r.encoder.CmdBindDescriptorSet(buffer, r.resources.PipelineLayout, r.resources.DescriptorSets[slot.Index])
	r.encoder.CmdDrawIndexed(buffer, r.resources.IndexCount)
	r.encoder.CmdEndRenderPass(buffer)

	if err := r.encoder.EndCommandBuffer(buffer); err != nil {
		return errors.Wrap(err, "recorder: end command buffer")
	}
	return nil
}

func Viewport(extent core1_0.Extent2D) core1_0.Viewport {
	return core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func Scissor(extent core1_0.Extent2D) core1_0.Rect2D {
	return core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
}
