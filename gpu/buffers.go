package gpu

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/quad/mesh"
)

var ErrNoMemoryType = errors.New("failed to find any suitable memory type")

// Buffer is a buffer bound to its own allocation
type Buffer struct {
	Buffer core1_0.Buffer
	Memory core1_0.DeviceMemory
	Size   int
}

// FindMemoryType returns the first memory type allowed by typeFilter that has
// all of the requested property flags
func FindMemoryType(memoryTypes []core1_0.MemoryType, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Wrapf(ErrNoMemoryType, "filter %b, properties %v", typeFilter, properties)
}

func (c *Context) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	buffer, _, err := c.driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}
	result := &Buffer{Buffer: buffer, Size: size}

	memRequirements := c.driver.GetBufferMemoryRequirements(buffer)
	memProperties := c.instance.GetPhysicalDeviceMemoryProperties(c.physicalDevice.Device)
	memoryTypeIndex, err := FindMemoryType(memProperties.MemoryTypes, memRequirements.MemoryTypeBits, properties)
	if err != nil {
		c.destroyBuffer(result)
		return nil, err
	}

	result.Memory, _, err = c.driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		c.destroyBuffer(result)
		return nil, err
	}

	_, err = c.driver.BindBufferMemory(buffer, result.Memory, 0)
	if err != nil {
		c.destroyBuffer(result)
		return nil, err
	}
	return result, nil
}

func (c *Context) destroyBuffer(buffer *Buffer) {
	if buffer == nil {
		return
	}
	if buffer.Buffer.Initialized() {
		c.driver.DestroyBuffer(buffer.Buffer, nil)
	}
	if buffer.Memory.Initialized() {
		c.driver.FreeMemory(buffer.Memory, nil)
	}
}

// writeData copies fixed-size data into host-visible memory
func (c *Context) writeData(memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)

	memoryPtr, _, err := c.driver.MapMemory(memory, offset, bufferSize, 0)
	if err != nil {
		return err
	}
	defer c.driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}

// createDeviceLocalBuffer uploads data through a staging buffer and waits for
// the copy to finish
func (c *Context) createDeviceLocalBuffer(data any, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := binary.Size(data)
	if bufferSize <= 0 {
		return nil, errors.New("buffer data has no fixed size")
	}

	staging, err := c.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	defer c.destroyBuffer(staging)

	if err := c.writeData(staging.Memory, 0, data); err != nil {
		return nil, err
	}

	buffer, err := c.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	if err := c.copyBuffer(staging.Buffer, buffer.Buffer, bufferSize); err != nil {
		c.destroyBuffer(buffer)
		return nil, err
	}
	return buffer, nil
}

func (c *Context) createVertexBuffer(m *mesh.Mesh) error {
	var err error
	c.vertexBuffer, err = c.createDeviceLocalBuffer(m.Vertices, core1_0.BufferUsageVertexBuffer)
	return err
}

func (c *Context) createIndexBuffer(m *mesh.Mesh) error {
	var err error
	c.indexBuffer, err = c.createDeviceLocalBuffer(m.Indices, core1_0.BufferUsageIndexBuffer)
	if err != nil {
		return err
	}
	c.indexCount = len(m.Indices)
	return nil
}

func (c *Context) beginSingleTimeCommands() (core1_0.CommandBuffer, error) {
	buffers, _, err := c.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, err
	}

	buffer := buffers[0]
	_, err = c.driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		c.driver.FreeCommandBuffers(buffer)
		return core1_0.CommandBuffer{}, err
	}
	return buffer, nil
}

func (c *Context) endSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	defer c.driver.FreeCommandBuffers(buffer)

	_, err := c.driver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = c.driver.QueueSubmit(c.logical.GraphicsQueue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return err
	}

	_, err = c.driver.QueueWaitIdle(c.logical.GraphicsQueue)
	return err
}

func (c *Context) copyBuffer(srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, size int) error {
	buffer, err := c.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = c.driver.CmdCopyBuffer(buffer, srcBuffer, dstBuffer,
		core1_0.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	)
	if err != nil {
		c.driver.FreeCommandBuffers(buffer)
		return err
	}

	return c.endSingleTimeCommands(buffer)
}
