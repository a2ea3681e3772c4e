// Package vulkan implements the renderer's device, swap chain, pipeline and
// model on top of vkngwrapper.
package vulkan

import (
	"io"
	"log"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	vkng_surface_sdl2 "github.com/vkngwrapper/integrations/sdl2"
	"github.com/vkngwrapper/push-constants/internal/engine"
	"github.com/vkngwrapper/push-constants/internal/geometry"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
var deviceExtensions = []string{khr_swapchain.ExtensionName}

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

type SwapChainSupportDetails struct {
	Capabilities *khr_surface.Capabilities
	Formats      []khr_surface.Format
	PresentModes []khr_surface.PresentMode
}

type DeviceOptions struct {
	ApplicationName string
	// Validation enables the Khronos validation layer and routes its
	// messages to Logger.
	Validation bool
	Logger     *log.Logger
}

// Device owns the instance, surface, logical device, its queues and the
// command pool every command buffer is allocated from.
type Device struct {
	window *sdl.Window
	opts   DeviceOptions
	logger *log.Logger
	loader core.Loader

	instance       core1_0.Instance
	debugMessenger ext_debug_utils.Messenger
	surface        khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device
	queueFamilies  QueueFamilyIndices

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension khr_swapchain.Extension
	commandPool        core1_0.CommandPool
}

func NewDevice(window *sdl.Window, opts DeviceOptions) (*Device, error) {
	d := &Device{
		window: window,
		opts:   opts,
		logger: opts.Logger,
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}

	var err error
	d.loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create vulkan loader")
	}

	steps := []func() error{
		d.createInstance,
		d.setupDebugMessenger,
		d.createSurface,
		d.pickPhysicalDevice,
		d.createLogicalDevice,
		d.createCommandPool,
	}
	for _, step := range steps {
		err = step()
		if err != nil {
			d.Destroy()
			return nil, err
		}
	}

	return d, nil
}

func (d *Device) Destroy() {
	if d.commandPool != nil {
		d.commandPool.Destroy(nil)
		d.commandPool = nil
	}

	if d.device != nil {
		d.device.Destroy(nil)
		d.device = nil
	}

	if d.debugMessenger != nil {
		d.debugMessenger.Destroy(nil)
		d.debugMessenger = nil
	}

	if d.surface != nil {
		d.surface.Destroy(nil)
		d.surface = nil
	}

	if d.instance != nil {
		d.instance.Destroy(nil)
		d.instance = nil
	}
}

func (d *Device) WaitIdle() error {
	_, err := d.device.WaitIdle()
	return err
}

func (d *Device) CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	layout, _, err := d.device.CreatePipelineLayout(nil, info)
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (d *Device) AllocateCommandBuffers(count int) ([]engine.CommandBuffer, error) {
	buffers, _, err := d.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, err
	}

	wrapped := make([]engine.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		wrapped = append(wrapped, &CommandBuffer{buffer: buffer})
	}
	return wrapped, nil
}

func (d *Device) FreeCommandBuffers(buffers []engine.CommandBuffer) {
	handles := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		handles = append(handles, buffer.Handle())
	}
	d.device.FreeCommandBuffers(handles)
}

func (d *Device) CreateSwapChain(extent core1_0.Extent2D, previous engine.SwapChain) (engine.SwapChain, error) {
	var old *SwapChain
	if previous != nil {
		var ok bool
		old, ok = previous.(*SwapChain)
		if !ok {
			return nil, errors.AssertionFailedf("cannot chain a swap chain from %T", previous)
		}
	}

	swapChain, err := NewSwapChain(d, extent, old)
	if err != nil {
		return nil, err
	}
	return swapChain, nil
}

func (d *Device) CreatePipeline(config engine.PipelineConfig) (engine.Pipeline, error) {
	pipelineConfig := DefaultPipelineConfigInfo()
	pipelineConfig.RenderPass = config.RenderPass
	pipelineConfig.PipelineLayout = config.Layout
	pipelineConfig.Subpass = config.Subpass

	pipeline, err := NewPipeline(d.device, config.VertexShader, config.FragmentShader, pipelineConfig)
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (d *Device) CreateModel(vertices []geometry.Vertex) (engine.Model, error) {
	model, err := NewModel(d, vertices)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func (d *Device) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    d.opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	// Add extensions
	sdlExtensions := d.window.VulkanGetInstanceExtensions()
	extensions, _, err := d.loader.AvailableExtensions()
	if err != nil {
		return err
	}

	for _, ext := range sdlExtensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("createinstance: cannot initialize sdl: missing extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if d.opts.Validation {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	// Add layers
	if d.opts.Validation {
		layers, _, err := d.loader.AvailableLayers()
		if err != nil {
			return err
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Newf("createInstance: cannot add validation- layer %s not available- install LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Add debug messenger
		instanceOptions.Next = d.debugMessengerOptions()
	}

	d.instance, _, err = d.loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "failed to create instance")
	}

	return nil
}

func (d *Device) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    d.logDebug,
	}
}

func (d *Device) setupDebugMessenger() error {
	if !d.opts.Validation {
		return nil
	}

	var err error
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(d.instance)
	d.debugMessenger, _, err = debugLoader.CreateDebugUtilsMessenger(d.instance, nil, d.debugMessengerOptions())
	if err != nil {
		return errors.Wrap(err, "failed to set up debug messenger")
	}

	return nil
}

func (d *Device) createSurface() error {
	surfaceLoader := vkng_surface_sdl2.CreateExtensionFromInstance(d.instance)

	surface, _, err := surfaceLoader.CreateSurface(d.instance, d.window)
	if err != nil {
		return errors.Wrap(err, "failed to create window surface")
	}

	d.surface = surface
	return nil
}

func (d *Device) pickPhysicalDevice() error {
	physicalDevices, _, err := d.instance.EnumeratePhysicalDevices()
	if err != nil {
		return err
	}
	if len(physicalDevices) == 0 {
		return errors.New("failed to find GPUs with Vulkan support")
	}
	d.logger.Printf("device count: %d", len(physicalDevices))

	for i, device := range physicalDevices {
		if d.isDeviceSuitable(device) {
			d.physicalDevice = device
			d.logger.Printf("picked physical device %d", i)
			break
		}
	}

	if d.physicalDevice == nil {
		return errors.Newf("failed to find a suitable GPU!")
	}

	return nil
}

func (d *Device) createLogicalDevice() error {
	indices, err := d.findQueueFamilies(d.physicalDevice)
	if err != nil {
		return err
	}
	d.queueFamilies = indices

	uniqueQueueFamilies := []int{*indices.GraphicsFamily}
	if uniqueQueueFamilies[0] != *indices.PresentFamily {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *indices.PresentFamily)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, deviceExtensions...)

	// Vulkan portability, needed on MoltenVK
	extensions, _, err := d.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return err
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	d.device, _, err = d.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create logical device")
	}

	d.graphicsQueue = d.device.GetQueue(*indices.GraphicsFamily, 0)
	d.presentQueue = d.device.GetQueue(*indices.PresentFamily, 0)
	d.swapchainExtension = khr_swapchain.CreateExtensionFromDevice(d.device)
	return nil
}

func (d *Device) createCommandPool() error {
	pool, _, err := d.device.CreateCommandPool(nil, commandPoolCreateInfo(d.queueFamilies))
	if err != nil {
		return errors.Wrap(err, "failed to create command pool")
	}
	d.commandPool = pool

	return nil
}

// Command buffers are short lived and re-recorded every frame.
func commandPoolCreateInfo(indices QueueFamilyIndices) core1_0.CommandPoolCreateInfo {
	return core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateTransient | core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: indices.GraphicsFamily,
	}
}

func (d *Device) querySwapChainSupport(device core1_0.PhysicalDevice) (SwapChainSupportDetails, error) {
	var details SwapChainSupportDetails
	var err error

	details.Capabilities, _, err = d.surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = d.surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = d.surface.PhysicalDeviceSurfacePresentModes(device)
	return details, err
}

func (d *Device) isDeviceSuitable(device core1_0.PhysicalDevice) bool {
	indices, err := d.findQueueFamilies(device)
	if err != nil {
		return false
	}

	extensionsSupported := d.checkDeviceExtensionSupport(device)

	var swapChainAdequate bool
	if extensionsSupported {
		swapChainSupport, err := d.querySwapChainSupport(device)
		if err != nil {
			return false
		}

		swapChainAdequate = len(swapChainSupport.Formats) > 0 && len(swapChainSupport.PresentModes) > 0
	}

	return indices.IsComplete() && extensionsSupported && swapChainAdequate
}

func (d *Device) checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return false
	}

	for _, extension := range deviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

func (d *Device) findQueueFamilies(device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}
	queueFamilies := device.QueueFamilyProperties()

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		supported, _, err := d.surface.PhysicalDeviceSurfaceSupport(device, queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func (d *Device) findSupportedFormat(formats []core1_0.Format, tiling core1_0.ImageTiling, features core1_0.FormatFeatureFlags) (core1_0.Format, error) {
	for _, format := range formats {
		props := d.physicalDevice.FormatProperties(format)

		if tiling == core1_0.ImageTilingLinear && (props.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == core1_0.ImageTilingOptimal && (props.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}

	return 0, errors.Newf("failed to find supported format for tiling %s, featureset %s", tiling, features)
}

func (d *Device) findDepthFormat() (core1_0.Format, error) {
	return d.findSupportedFormat([]core1_0.Format{core1_0.FormatD32SignedFloat, core1_0.FormatD32SignedFloatS8UnsignedInt, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt},
		core1_0.ImageTilingOptimal,
		core1_0.FormatFeatureDepthStencilAttachment)
}

func (d *Device) logDebug(msgType ext_debug_utils.MessageTypes, severity ext_debug_utils.MessageSeverities, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	d.logger.Printf("[%s %s] - %s", severity, msgType, data.Message)
	return false
}
