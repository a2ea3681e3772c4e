package engine

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/push-constants/internal/geometry"
)

// Status is the outcome of acquiring or presenting a swap chain image.
// Failures other than these are reported as errors.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSuboptimal means the image was presented but the swap chain no
	// longer matches the surface exactly.
	StatusSuboptimal
	// StatusOutOfDate means the swap chain can no longer be used.
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	}
	return "unknown"
}

// Window is the surface the app renders into and takes events from.
type Window interface {
	ShouldClose() bool
	// Extent is the drawable size in pixels, (0, 0) while minimized.
	Extent() core1_0.Extent2D
	WasResized() bool
	ResetResizedFlag()
	PollEvents()
	// WaitEvents blocks until at least one event has been handled.
	WaitEvents()
}

// CommandBuffer is the recording surface the app draws through.
type CommandBuffer interface {
	Begin() error
	End() error
	BeginRenderPass(info core1_0.RenderPassBeginInfo) error
	EndRenderPass()
	SetViewport(viewport core1_0.Viewport)
	SetScissor(scissor core1_0.Rect2D)
	BindPipeline(pipeline core1_0.Pipeline)
	BindVertexBuffers(buffers []core1_0.Buffer, offsets []int)
	PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance int)
	Handle() core1_0.CommandBuffer
}

// SwapChain owns the presentable images and their per-frame synchronization.
type SwapChain interface {
	ImageCount() int
	Extent() core1_0.Extent2D
	RenderPass() core1_0.RenderPass
	Framebuffer(imageIndex int) core1_0.Framebuffer
	// AcquireNextImage blocks until the next image can be rendered to, which
	// includes waiting for an earlier frame that still renders to it.
	AcquireNextImage() (int, Status, error)
	// SubmitCommandBuffers submits buffer for imageIndex and presents it.
	SubmitCommandBuffers(buffer CommandBuffer, imageIndex int) (Status, error)
	Destroy()
}

// Pipeline is a graphics pipeline bound before drawing.
type Pipeline interface {
	Bind(buffer CommandBuffer)
	Destroy()
}

// Model is a vertex buffer that can be bound and drawn.
type Model interface {
	Bind(buffer CommandBuffer)
	Draw(buffer CommandBuffer)
	VertexCount() int
	Destroy()
}

// PipelineConfig is what the app decides about a pipeline; fixed-function
// state is left to the device.
type PipelineConfig struct {
	VertexShader   string
	FragmentShader string
	RenderPass     core1_0.RenderPass
	Layout         core1_0.PipelineLayout
	Subpass        int
}

// Device creates and owns the GPU resources the app renders with.
type Device interface {
	WaitIdle() error
	CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error)
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(buffers []CommandBuffer)
	// CreateSwapChain builds a swap chain for extent. previous, when not nil,
	// is handed to the driver so it can reuse its resources; the caller
	// still destroys it.
	CreateSwapChain(extent core1_0.Extent2D, previous SwapChain) (SwapChain, error)
	CreatePipeline(config PipelineConfig) (Pipeline, error)
	CreateModel(vertices []geometry.Vertex) (Model, error)
}
