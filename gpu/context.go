// Package gpu owns every Vulkan object of the demo. Context creates them in
// dependency order, implements the device interfaces the swapchain, frame and
// recorder packages consume, and destroys everything in reverse order.
package gpu

import (
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
	"github.com/vkngwrapper/quad/config"
	"github.com/vkngwrapper/quad/debug"
	"github.com/vkngwrapper/quad/device"
	"github.com/vkngwrapper/quad/frame"
	"github.com/vkngwrapper/quad/mesh"
	"github.com/vkngwrapper/quad/probe"
	"github.com/vkngwrapper/quad/recorder"
	"github.com/vkngwrapper/quad/swapchain"
)

// Window is what the context needs from the presentation window
type Window interface {
	Handle() *sdl.Window
	InstanceExtensions() []string
	FramebufferSize() (int, int)
}

// Shaders holds SPIR-V words for both pipeline stages
type Shaders struct {
	Vertex   []uint32
	Fragment []uint32
}

type Context struct {
	log    logrus.FieldLogger
	cfg    config.RendererConfiguration
	window Window

	globalDriver core1_0.GlobalDriver
	instance     core1_0.CoreInstanceDriver
	messenger    *debug.Messenger

	surfaces khr_surface.ExtensionDriver
	surface  khr_surface.Surface

	physicalDevice *device.PhysicalDeviceInfo
	logical        *device.Logical
	driver         core1_0.CoreDeviceDriver
	swapchains     khr_swapchain.ExtensionDriver

	// Swapchain is rebuilt by the frame pacer; everything else below lives
	// until Destroy
	Swapchain *swapchain.Manager

	colorFormat         core1_0.Format
	renderPass          core1_0.RenderPass
	descriptorSetLayout core1_0.DescriptorSetLayout
	pipelineLayout      core1_0.PipelineLayout
	pipeline            core1_0.Pipeline

	commandPool core1_0.CommandPool

	vertexBuffer *Buffer
	indexBuffer  *Buffer
	indexCount   int
	uniforms     *UniformBuffers

	descriptorPool core1_0.DescriptorPool
	descriptorSets []core1_0.DescriptorSet

	slots []*frame.Slot

	releases releaseStack
}

// New creates every GPU object needed to draw m. On error everything created
// so far has already been destroyed.
func New(cfg config.RendererConfiguration, window Window, shaders Shaders, m *mesh.Mesh, log logrus.FieldLogger) (*Context, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	c := &Context{
		log:    log,
		cfg:    cfg,
		window: window,
	}
	c.Swapchain = swapchain.NewManager(c, window, log)

	steps := []step{
		{"create instance", c.createInstance, c.destroyInstance},
		{"create debug messenger", c.setupDebugMessenger, c.destroyDebugMessenger},
		{"create surface", c.createSurface, c.destroySurface},
		{"pick physical device", c.pickPhysicalDevice, nil},
		{"create logical device", c.createLogicalDevice, c.destroyLogicalDevice},
		{"create render pass", c.createRenderPass, c.destroyRenderPass},
		{"create swap-chain", c.createSwapchain, c.Swapchain.Teardown},
		{"create descriptor set layout", c.createDescriptorSetLayout, c.destroyDescriptorSetLayout},
		{"create graphics pipeline", func() error { return c.createGraphicsPipeline(shaders) }, c.destroyGraphicsPipeline},
		{"create command pool", c.createCommandPool, c.destroyCommandPool},
		{"create vertex buffer", func() error { return c.createVertexBuffer(m) }, func() {
			c.destroyBuffer(c.vertexBuffer)
			c.vertexBuffer = nil
		}},
		{"create index buffer", func() error { return c.createIndexBuffer(m) }, func() {
			c.destroyBuffer(c.indexBuffer)
			c.indexBuffer = nil
		}},
		{"create uniform buffers", c.createUniformBuffers, c.destroyUniformBuffers},
		{"create descriptor pool", c.createDescriptorPool, c.destroyDescriptorPool},
		// sets go back with the pool
		{"create descriptor sets", c.createDescriptorSets, nil},
		{"create frame slots", c.createFrameSlots, c.destroyFrameSlots},
	}

	if err := c.releases.build(steps); err != nil {
		c.Destroy()
		return nil, err
	}

	return c, nil
}

// Slots are the in-flight frame slots, one per configured frame in flight
func (c *Context) Slots() []*frame.Slot {
	return c.slots
}

func (c *Context) Uniforms() *UniformBuffers {
	return c.uniforms
}

// Resources lists the objects the recorder binds every frame
func (c *Context) Resources() recorder.Resources {
	return recorder.Resources{
		RenderPass:     c.renderPass,
		Pipeline:       c.pipeline,
		PipelineLayout: c.pipelineLayout,
		VertexBuffer:   c.vertexBuffer.Buffer,
		IndexBuffer:    c.indexBuffer.Buffer,
		IndexCount:     c.indexCount,
		DescriptorSets: c.descriptorSets,
		ClearColor:     c.cfg.ClearColor,
	}
}

// Destroy waits for the GPU to go idle and releases everything in reverse
// creation order. It is safe to call on a partially built context.
func (c *Context) Destroy() {
	if c.driver != nil {
		if _, err := c.driver.DeviceWaitIdle(); err != nil {
			c.log.WithError(err).Warn("could not wait for device idle")
		}
	}

	c.releases.unwind()
}

func (c *Context) destroyInstance() {
	if c.instance != nil {
		c.instance.DestroyInstance(nil)
		c.instance = nil
	}
}

func (c *Context) destroyDebugMessenger() {
	if !c.messenger.Loaded() {
		return
	}
	if err := c.messenger.Destroy(); err != nil {
		c.log.WithError(err).Warn("could not destroy debug messenger")
	}
}

func (c *Context) destroySurface() {
	if c.surface.Initialized() {
		c.surfaces.DestroySurface(c.surface, nil)
		c.surface = khr_surface.Surface{}
	}
}

func (c *Context) destroyLogicalDevice() {
	if c.driver != nil {
		c.driver.DestroyDevice(nil)
		c.driver = nil
	}
}

func (c *Context) destroyRenderPass() {
	if c.renderPass.Initialized() {
		c.driver.DestroyRenderPass(c.renderPass, nil)
		c.renderPass = core1_0.RenderPass{}
	}
}

func (c *Context) destroyDescriptorSetLayout() {
	if c.descriptorSetLayout.Initialized() {
		c.driver.DestroyDescriptorSetLayout(c.descriptorSetLayout, nil)
		c.descriptorSetLayout = core1_0.DescriptorSetLayout{}
	}
}

func (c *Context) destroyGraphicsPipeline() {
	if c.pipeline.Initialized() {
		c.driver.DestroyPipeline(c.pipeline, nil)
		c.pipeline = core1_0.Pipeline{}
	}
	if c.pipelineLayout.Initialized() {
		c.driver.DestroyPipelineLayout(c.pipelineLayout, nil)
		c.pipelineLayout = core1_0.PipelineLayout{}
	}
}

func (c *Context) destroyCommandPool() {
	if c.commandPool.Initialized() {
		c.driver.DestroyCommandPool(c.commandPool, nil)
		c.commandPool = core1_0.CommandPool{}
	}
}

func (c *Context) destroyUniformBuffers() {
	if c.uniforms != nil {
		c.uniforms.destroy()
		c.uniforms = nil
	}
}

func (c *Context) destroyDescriptorPool() {
	if c.descriptorPool.Initialized() {
		c.driver.DestroyDescriptorPool(c.descriptorPool, nil)
		c.descriptorPool = core1_0.DescriptorPool{}
	}
	c.descriptorSets = nil
}

func (c *Context) createInstance() error {
	var err error
	c.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	available, err := probe.QueryInstance(c.globalDriver)
	if err != nil {
		return err
	}

	windowExtensions := c.window.InstanceExtensions()
	if err := available.RequireExtensions(windowExtensions...); err != nil {
		return err
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       "Quad",
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            "No Engine",
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: available.InstanceExtensions(windowExtensions, c.cfg.EnableValidation),
	}

	if available.HasExtension(khr_portability_enumeration.ExtensionName) {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if c.cfg.EnableValidation {
		if err := available.RequireLayers(probe.ValidationLayers...); err != nil {
			return err
		}
		instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, probe.ValidationLayers...)

		c.messenger = debug.NewMessenger(c.log)
		instanceOptions.Next = c.messenger.CreateInfo()
	}

	c.instance, _, err = c.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"extensions": instanceOptions.EnabledExtensionNames,
		"layers":     instanceOptions.EnabledLayerNames,
	}).Debug("created instance")
	return nil
}

func (c *Context) setupDebugMessenger() error {
	if c.messenger == nil {
		return nil
	}

	c.messenger.Load(c.instance)
	return c.messenger.Create()
}

func (c *Context) createSurface() error {
	c.surfaces = khr_surface.CreateExtensionDriverFromCoreDriver(c.instance)
	surface, err := vkng_sdl2.CreateSurface(c.instance.Instance(), c.surfaces, c.window.Handle())
	if err != nil {
		return err
	}

	c.surface = surface
	return nil
}

func (c *Context) pickPhysicalDevice() error {
	candidates, err := device.Enumerate(c.instance, c.surfaces)
	if err != nil {
		return err
	}

	c.physicalDevice, err = device.Select(candidates, c.surface, device.DefaultRequirements(), c.log)
	if err != nil {
		return err
	}

	properties, err := c.physicalDevice.Properties()
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"name": properties.DriverName,
		"type": properties.DriverType,
	}).Info("selected physical device")
	return nil
}

func (c *Context) createLogicalDevice() error {
	var err error
	c.logical, err = device.CreateLogical(c.instance, c.physicalDevice, c.surface, device.DefaultRequirements(), c.log)
	if err != nil {
		return err
	}

	c.driver = c.logical.Driver
	c.swapchains = khr_swapchain.CreateExtensionDriverFromCoreDriver(c.driver)
	return nil
}

func (c *Context) createSwapchain() error {
	_, err := c.Swapchain.Build()
	return err
}
