package gpu

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/quad/frame"
	"github.com/vkngwrapper/quad/uniform"
)

// UniformBuffers holds one persistently mapped uniform buffer per frame slot.
// A slot's buffer is only written after the slot's fence was waited on.
type UniformBuffers struct {
	context *Context
	clock   *uniform.Clock

	buffers []*Buffer
	mapped  [][]byte
}

func (c *Context) createUniformBuffers() error {
	c.uniforms = &UniformBuffers{context: c, clock: uniform.NewClock()}

	for i := 0; i < c.cfg.MaxFramesInFlight; i++ {
		buffer, err := c.createBuffer(uniform.Size, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			return err
		}
		c.uniforms.buffers = append(c.uniforms.buffers, buffer)

		memoryPtr, _, err := c.driver.MapMemory(buffer.Memory, 0, uniform.Size, 0)
		if err != nil {
			return errors.Wrapf(err, "mapping uniform buffer %d", i)
		}
		c.uniforms.mapped = append(c.uniforms.mapped, unsafe.Slice((*byte)(memoryPtr), uniform.Size))
	}

	return nil
}

// Update writes the transforms for the current time and swap-chain extent
// into the slot's uniform buffer
func (u *UniformBuffers) Update(slot *frame.Slot) error {
	if slot.Index < 0 || slot.Index >= len(u.mapped) {
		return errors.Newf("no uniform buffer for frame slot %d", slot.Index)
	}

	state := u.context.Swapchain.State()
	if state == nil {
		return errNoSwapchain
	}
	extent := state.Extent()

	data, err := uniform.Compute(u.clock.Elapsed(), extent.Width, extent.Height).Bytes()
	if err != nil {
		return err
	}
	copy(u.mapped[slot.Index], data)
	return nil
}

func (u *UniformBuffers) destroy() {
	for i, buffer := range u.buffers {
		if i < len(u.mapped) {
			u.context.driver.UnmapMemory(buffer.Memory)
		}
		u.context.destroyBuffer(buffer)
	}
	u.buffers = nil
	u.mapped = nil
}
