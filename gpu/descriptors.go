package gpu

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/quad/uniform"
)

func (c *Context) createDescriptorPool() error {
	var err error
	c.descriptorPool, _, err = c.driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: c.cfg.MaxFramesInFlight,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: c.cfg.MaxFramesInFlight,
			},
		},
	})
	return err
}

// createDescriptorSets points each slot's set at that slot's uniform buffer.
// The sets are never reallocated.
func (c *Context) createDescriptorSets() error {
	var allocLayouts []core1_0.DescriptorSetLayout
	for i := 0; i < c.cfg.MaxFramesInFlight; i++ {
		allocLayouts = append(allocLayouts, c.descriptorSetLayout)
	}

	var err error
	c.descriptorSets, _, err = c.driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: c.descriptorPool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		return err
	}

	var writes []core1_0.WriteDescriptorSet
	for i, set := range c.descriptorSets {
		writes = append(writes, core1_0.WriteDescriptorSet{
			DstSet:          set,
			DstBinding:      0,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeUniformBuffer,

			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: c.uniforms.buffers[i].Buffer,
					Offset: 0,
					Range:  uniform.Size,
				},
			},
		})
	}

	return c.driver.UpdateDescriptorSets(writes, nil)
}
