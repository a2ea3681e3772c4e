package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	"github.com/vkngwrapper/push-constants/internal/engine"
)

// MaxFramesInFlight is how many frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// SwapChain owns the presentable images and everything sized to them: image
// views, depth buffers, framebuffers and the render pass, plus the
// per-frame synchronization objects.
type SwapChain struct {
	device *Device

	swapchain   khr_swapchain.Swapchain
	imageFormat core1_0.Format
	depthFormat core1_0.Format
	extent      core1_0.Extent2D

	images     []core1_0.Image
	imageViews []core1_0.ImageView

	depthImages        []core1_0.Image
	depthImageMemories []core1_0.DeviceMemory
	depthImageViews    []core1_0.ImageView

	renderPass   core1_0.RenderPass
	framebuffers []core1_0.Framebuffer

	imageAvailable []core1_0.Semaphore
	renderFinished []core1_0.Semaphore
	inFlight       []core1_0.Fence
	imagesInFlight []core1_0.Fence
	currentFrame   int
}

// NewSwapChain builds a swap chain for windowExtent. When previous is not nil
// its swapchain is retired in favor of the new one and its render pass is
// taken over if the formats still match; previous must still be destroyed.
func NewSwapChain(device *Device, windowExtent core1_0.Extent2D, previous *SwapChain) (*SwapChain, error) {
	s := &SwapChain{device: device}

	err := s.createSwapchain(windowExtent, previous)
	if err == nil {
		err = s.createImageViews()
	}
	if err == nil {
		err = s.createRenderPass(previous)
	}
	if err == nil {
		err = s.createDepthResources()
	}
	if err == nil {
		err = s.createFramebuffers()
	}
	if err == nil {
		err = s.createSyncObjects()
	}
	if err != nil {
		s.Destroy()
		return nil, err
	}

	return s, nil
}

func (s *SwapChain) ImageCount() int                    { return len(s.images) }
func (s *SwapChain) Extent() core1_0.Extent2D           { return s.extent }
func (s *SwapChain) RenderPass() core1_0.RenderPass     { return s.renderPass }
func (s *SwapChain) ImageFormat() core1_0.Format        { return s.imageFormat }
func (s *SwapChain) DepthFormat() core1_0.Format        { return s.depthFormat }
func (s *SwapChain) Swapchain() khr_swapchain.Swapchain { return s.swapchain }

func (s *SwapChain) Framebuffer(imageIndex int) core1_0.Framebuffer {
	return s.framebuffers[imageIndex]
}

func (s *SwapChain) AcquireNextImage() (int, engine.Status, error) {
	_, err := s.device.device.WaitForFences(true, common.NoTimeout, []core1_0.Fence{s.inFlight[s.currentFrame]})
	if err != nil {
		return 0, engine.StatusSuccess, err
	}

	imageIndex, res, err := s.swapchain.AcquireNextImage(common.NoTimeout, s.imageAvailable[s.currentFrame], nil)
	status, err := presentStatus(res, err)
	if err != nil || status == engine.StatusOutOfDate {
		return imageIndex, status, err
	}

	err = claimImage(s.imagesInFlight, imageIndex, s.inFlight[s.currentFrame])
	return imageIndex, status, err
}

// claimImage waits out the frame still rendering to imageIndex, if any, and
// hands the image to frameFence. The caller records into the image's command
// buffer only after this returns.
func claimImage(imagesInFlight []core1_0.Fence, imageIndex int, frameFence core1_0.Fence) error {
	if imagesInFlight[imageIndex] != nil {
		_, err := imagesInFlight[imageIndex].Wait(common.NoTimeout)
		if err != nil {
			return errors.Wrapf(err, "failed to wait for image %d", imageIndex)
		}
	}
	imagesInFlight[imageIndex] = frameFence
	return nil
}

func (s *SwapChain) SubmitCommandBuffers(buffer engine.CommandBuffer, imageIndex int) (engine.Status, error) {
	fences := []core1_0.Fence{s.inFlight[s.currentFrame]}
	_, err := s.device.device.ResetFences(fences)
	if err != nil {
		return engine.StatusSuccess, err
	}

	_, err = s.device.graphicsQueue.Submit(s.inFlight[s.currentFrame], []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{s.imageAvailable[s.currentFrame]},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{buffer.Handle()},
			SignalSemaphores: []core1_0.Semaphore{s.renderFinished[s.currentFrame]},
		},
	})
	if err != nil {
		return engine.StatusSuccess, errors.Wrap(err, "failed to submit draw command buffer")
	}

	res, err := s.device.swapchainExtension.QueuePresent(s.device.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{s.renderFinished[s.currentFrame]},
		Swapchains:     []khr_swapchain.Swapchain{s.swapchain},
		ImageIndices:   []int{imageIndex},
	})

	s.currentFrame = (s.currentFrame + 1) % MaxFramesInFlight
	return presentStatus(res, err)
}

// presentStatus folds the two swap chain results that call for a rebuild
// into a Status. Anything else that failed stays an error.
func presentStatus(res common.VkResult, err error) (engine.Status, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return engine.StatusOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return engine.StatusSuboptimal, nil
	}

	if err != nil {
		return engine.StatusSuccess, err
	}
	return engine.StatusSuccess, nil
}

func (s *SwapChain) Destroy() {
	for _, fence := range s.inFlight {
		fence.Destroy(nil)
	}
	s.inFlight = nil
	s.imagesInFlight = nil

	for _, semaphore := range s.renderFinished {
		semaphore.Destroy(nil)
	}
	s.renderFinished = nil

	for _, semaphore := range s.imageAvailable {
		semaphore.Destroy(nil)
	}
	s.imageAvailable = nil

	for _, framebuffer := range s.framebuffers {
		framebuffer.Destroy(nil)
	}
	s.framebuffers = nil

	for _, imageView := range s.depthImageViews {
		imageView.Destroy(nil)
	}
	s.depthImageViews = nil

	for _, image := range s.depthImages {
		image.Destroy(nil)
	}
	s.depthImages = nil

	for _, memory := range s.depthImageMemories {
		memory.Free(nil)
	}
	s.depthImageMemories = nil

	if s.renderPass != nil {
		s.renderPass.Destroy(nil)
		s.renderPass = nil
	}

	for _, imageView := range s.imageViews {
		imageView.Destroy(nil)
	}
	s.imageViews = nil

	if s.swapchain != nil {
		s.swapchain.Destroy(nil)
		s.swapchain = nil
	}
}

func (s *SwapChain) createSwapchain(windowExtent core1_0.Extent2D, previous *SwapChain) error {
	d := s.device

	swapchainSupport, err := d.querySwapChainSupport(d.physicalDevice)
	if err != nil {
		return err
	}

	surfaceFormat := chooseSwapSurfaceFormat(swapchainSupport.Formats)
	presentMode := chooseSwapPresentMode(swapchainSupport.PresentModes)
	extent := chooseSwapExtent(swapchainSupport.Capabilities, windowExtent)
	imageCount := chooseImageCount(swapchainSupport.Capabilities)

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	indices := d.queueFamilies
	if *indices.GraphicsFamily != *indices.PresentFamily {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *indices.GraphicsFamily, *indices.PresentFamily)
	}

	var oldSwapchain khr_swapchain.Swapchain
	if previous != nil {
		oldSwapchain = previous.swapchain
	}

	swapchain, _, err := d.swapchainExtension.CreateSwapchain(d.device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.surface,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
		OldSwapchain:   oldSwapchain,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create swap chain")
	}
	s.swapchain = swapchain
	s.extent = extent
	s.imageFormat = surfaceFormat.Format

	return nil
}

func (s *SwapChain) createImageViews() error {
	images, _, err := s.swapchain.SwapchainImages()
	if err != nil {
		return err
	}
	s.images = images

	for _, image := range images {
		view, err := s.device.createImageView(image, s.imageFormat, core1_0.ImageAspectColor)
		if err != nil {
			return errors.Wrap(err, "failed to create image view")
		}

		s.imageViews = append(s.imageViews, view)
	}

	return nil
}

func (s *SwapChain) createRenderPass(previous *SwapChain) error {
	depthFormat, err := s.device.findDepthFormat()
	if err != nil {
		return err
	}
	s.depthFormat = depthFormat

	if previous != nil && previous.renderPass != nil &&
		previous.imageFormat == s.imageFormat && previous.depthFormat == s.depthFormat {
		s.renderPass = previous.renderPass
		previous.renderPass = nil
		return nil
	}

	renderPass, _, err := s.device.device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         s.imageFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
			{
				Format:         s.depthFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 1,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create render pass")
	}
	s.renderPass = renderPass

	return nil
}

// One depth buffer per image, so frames in flight never share one.
func (s *SwapChain) createDepthResources() error {
	for range s.images {
		image, memory, err := s.device.createImage(s.extent.Width,
			s.extent.Height,
			s.depthFormat,
			core1_0.ImageTilingOptimal,
			core1_0.ImageUsageDepthStencilAttachment,
			core1_0.MemoryPropertyDeviceLocal)
		if image != nil {
			s.depthImages = append(s.depthImages, image)
		}
		if memory != nil {
			s.depthImageMemories = append(s.depthImageMemories, memory)
		}
		if err != nil {
			return errors.Wrap(err, "failed to create depth image")
		}

		view, err := s.device.createImageView(image, s.depthFormat, core1_0.ImageAspectDepth)
		if err != nil {
			return errors.Wrap(err, "failed to create depth image view")
		}
		s.depthImageViews = append(s.depthImageViews, view)
	}

	return nil
}

func (s *SwapChain) createFramebuffers() error {
	for i, imageView := range s.imageViews {
		framebuffer, _, err := s.device.device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: s.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
				s.depthImageViews[i],
			},
			Width:  s.extent.Width,
			Height: s.extent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create framebuffer")
		}

		s.framebuffers = append(s.framebuffers, framebuffer)
	}

	return nil
}

func (s *SwapChain) createSyncObjects() error {
	for i := 0; i < MaxFramesInFlight; i++ {
		semaphore, _, err := s.device.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "failed to create synchronization objects for a frame")
		}
		s.imageAvailable = append(s.imageAvailable, semaphore)

		semaphore, _, err = s.device.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "failed to create synchronization objects for a frame")
		}
		s.renderFinished = append(s.renderFinished, semaphore)

		fence, _, err := s.device.device.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create synchronization objects for a frame")
		}
		s.inFlight = append(s.inFlight, fence)
	}

	s.imagesInFlight = make([]core1_0.Fence, len(s.images))
	return nil
}

func chooseSwapSurfaceFormat(availableFormats []khr_surface.Format) khr_surface.Format {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func chooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// chooseSwapExtent uses the surface's own extent unless the surface leaves
// it to the application, in which case the window extent is clamped to
// what the surface allows. The surface signals that with a width of
// 0xFFFFFFFF.
func chooseSwapExtent(capabilities *khr_surface.Capabilities, windowExtent core1_0.Extent2D) core1_0.Extent2D {
	if uint32(capabilities.CurrentExtent.Width) != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	width := windowExtent.Width
	height := windowExtent.Height

	if width < capabilities.MinImageExtent.Width {
		width = capabilities.MinImageExtent.Width
	}
	if width > capabilities.MaxImageExtent.Width {
		width = capabilities.MaxImageExtent.Width
	}
	if height < capabilities.MinImageExtent.Height {
		height = capabilities.MinImageExtent.Height
	}
	if height > capabilities.MaxImageExtent.Height {
		height = capabilities.MaxImageExtent.Height
	}

	return core1_0.Extent2D{Width: width, Height: height}
}

// A MaxImageCount of zero means there is no maximum.
func chooseImageCount(capabilities *khr_surface.Capabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
