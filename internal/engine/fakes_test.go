package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/push-constants/internal/geometry"
)

// events is a shared, ordered log of collaborator calls.
type events struct {
	log []string
}

func (e *events) add(format string, args ...interface{}) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) count(event string) int {
	n := 0
	for _, ev := range e.log {
		if ev == event {
			n++
		}
	}
	return n
}

type fakeWindow struct {
	events *events

	extents     []core1_0.Extent2D // consumed one per Extent call, the last one sticks
	resized     bool
	closeAfter  int // ShouldClose reports true after this many calls; <0 never
	closeCalls  int
	pollCalls   int
	waitCalls   int
	closeOnWait bool
}

func newFakeWindow(ev *events, width, height int) *fakeWindow {
	return &fakeWindow{
		events:     ev,
		extents:    []core1_0.Extent2D{{Width: width, Height: height}},
		closeAfter: -1,
	}
}

func (w *fakeWindow) ShouldClose() bool {
	w.closeCalls++
	if w.closeOnWait && w.waitCalls > 0 {
		return true
	}
	return w.closeAfter >= 0 && w.closeCalls > w.closeAfter
}

func (w *fakeWindow) Extent() core1_0.Extent2D {
	extent := w.extents[0]
	if len(w.extents) > 1 {
		w.extents = w.extents[1:]
	}
	return extent
}

func (w *fakeWindow) WasResized() bool  { return w.resized }
func (w *fakeWindow) ResetResizedFlag() { w.resized = false }
func (w *fakeWindow) PollEvents()       { w.pollCalls++ }

func (w *fakeWindow) WaitEvents() {
	w.waitCalls++
	w.events.add("wait events")
}

type drawCall struct {
	vertexCount int
	push        PushConstantData
}

type fakeCommandBuffer struct {
	id int

	began, ended       int
	renderPasses       []core1_0.RenderPassBeginInfo
	endedRenderPasses  int
	viewports          []core1_0.Viewport
	scissors           []core1_0.Rect2D
	pipelinesBound     int
	vertexBuffersBound int
	pushStages         []core1_0.ShaderStageFlags
	lastPush           PushConstantData
	pushSizes          []int
	draws              []drawCall

	beginErr, endErr error
	renderPassErr    error
}

func (b *fakeCommandBuffer) Begin() error {
	if b.beginErr != nil {
		return b.beginErr
	}
	// Beginning resets a recording.
	*b = fakeCommandBuffer{id: b.id, began: b.began + 1, endErr: b.endErr, renderPassErr: b.renderPassErr}
	return nil
}

func (b *fakeCommandBuffer) End() error {
	if b.endErr != nil {
		return b.endErr
	}
	b.ended++
	return nil
}

func (b *fakeCommandBuffer) BeginRenderPass(info core1_0.RenderPassBeginInfo) error {
	if b.renderPassErr != nil {
		return b.renderPassErr
	}
	b.renderPasses = append(b.renderPasses, info)
	return nil
}

func (b *fakeCommandBuffer) EndRenderPass()                        { b.endedRenderPasses++ }
func (b *fakeCommandBuffer) SetViewport(viewport core1_0.Viewport) { b.viewports = append(b.viewports, viewport) }
func (b *fakeCommandBuffer) SetScissor(scissor core1_0.Rect2D)     { b.scissors = append(b.scissors, scissor) }
func (b *fakeCommandBuffer) BindPipeline(core1_0.Pipeline)         { b.pipelinesBound++ }

func (b *fakeCommandBuffer) BindVertexBuffers(buffers []core1_0.Buffer, offsets []int) {
	b.vertexBuffersBound++
}

func (b *fakeCommandBuffer) PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte) {
	var push PushConstantData
	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &push)
	if err != nil {
		panic(err)
	}
	b.lastPush = push
	b.pushStages = append(b.pushStages, stages)
	b.pushSizes = append(b.pushSizes, len(data))
}

func (b *fakeCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	b.draws = append(b.draws, drawCall{vertexCount: vertexCount, push: b.lastPush})
}

func (b *fakeCommandBuffer) Handle() core1_0.CommandBuffer { return nil }

type result struct {
	imageIndex int
	status     Status
	err        error
}

type fakeSwapChain struct {
	events *events
	id     int

	imageCount int
	extent     core1_0.Extent2D
	previous   SwapChain
	destroyed  bool

	acquires  []result // consumed one per call, success when empty
	submits   []result
	submitted []int
}

func (s *fakeSwapChain) ImageCount() int                     { return s.imageCount }
func (s *fakeSwapChain) Extent() core1_0.Extent2D            { return s.extent }
func (s *fakeSwapChain) RenderPass() core1_0.RenderPass      { return nil }
func (s *fakeSwapChain) Framebuffer(int) core1_0.Framebuffer { return nil }

func (s *fakeSwapChain) AcquireNextImage() (int, Status, error) {
	s.events.add("acquire %d", s.id)
	if len(s.acquires) == 0 {
		return 0, StatusSuccess, nil
	}
	r := s.acquires[0]
	s.acquires = s.acquires[1:]
	return r.imageIndex, r.status, r.err
}

func (s *fakeSwapChain) SubmitCommandBuffers(buffer CommandBuffer, imageIndex int) (Status, error) {
	s.events.add("submit %d", s.id)
	s.submitted = append(s.submitted, imageIndex)
	if len(s.submits) == 0 {
		return StatusSuccess, nil
	}
	r := s.submits[0]
	s.submits = s.submits[1:]
	return r.status, r.err
}

func (s *fakeSwapChain) Destroy() {
	s.events.add("destroy swap chain %d", s.id)
	s.destroyed = true
}

type fakePipeline struct {
	events    *events
	id        int
	destroyed bool
}

func (p *fakePipeline) Bind(buffer CommandBuffer) { buffer.BindPipeline(nil) }

func (p *fakePipeline) Destroy() {
	p.events.add("destroy pipeline %d", p.id)
	p.destroyed = true
}

type fakeModel struct {
	events    *events
	vertices  []geometry.Vertex
	destroyed bool
}

func (m *fakeModel) Bind(buffer CommandBuffer) { buffer.BindVertexBuffers(nil, []int{0}) }
func (m *fakeModel) Draw(buffer CommandBuffer) { buffer.Draw(len(m.vertices), 1, 0, 0) }
func (m *fakeModel) VertexCount() int          { return len(m.vertices) }

func (m *fakeModel) Destroy() {
	m.events.add("destroy model")
	m.destroyed = true
}

type fakeDevice struct {
	events *events

	imageCounts []int // image count per swap chain creation, the last one sticks
	swapChains  []*fakeSwapChain
	pipelines   []*fakePipeline
	model       *fakeModel
	buffers     []*fakeCommandBuffer
	freed       int
	layoutInfo  core1_0.PipelineLayoutCreateInfo

	pipelineConfigs []PipelineConfig
	waitIdleErr     error
	layoutErr       error
	allocErr        error
	swapChainErr    error
	pipelineErr     error
	modelErr        error
}

func newFakeDevice(ev *events) *fakeDevice {
	return &fakeDevice{events: ev, imageCounts: []int{3}}
}

func (d *fakeDevice) WaitIdle() error {
	d.events.add("wait idle")
	return d.waitIdleErr
}

func (d *fakeDevice) CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	d.events.add("create layout")
	d.layoutInfo = info
	return nil, d.layoutErr
}

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	d.events.add("allocate %d", count)
	if d.allocErr != nil {
		return nil, d.allocErr
	}
	var buffers []CommandBuffer
	for i := 0; i < count; i++ {
		buffer := &fakeCommandBuffer{id: len(d.buffers)}
		d.buffers = append(d.buffers, buffer)
		buffers = append(buffers, buffer)
	}
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers []CommandBuffer) {
	d.events.add("free %d", len(buffers))
	d.freed += len(buffers)
}

func (d *fakeDevice) CreateSwapChain(extent core1_0.Extent2D, previous SwapChain) (SwapChain, error) {
	if d.swapChainErr != nil {
		return nil, d.swapChainErr
	}
	imageCount := d.imageCounts[0]
	if len(d.imageCounts) > 1 {
		d.imageCounts = d.imageCounts[1:]
	}

	swapChain := &fakeSwapChain{
		events:     d.events,
		id:         len(d.swapChains),
		imageCount: imageCount,
		extent:     extent,
		previous:   previous,
	}
	d.swapChains = append(d.swapChains, swapChain)
	d.events.add("create swap chain %d %dx%d", swapChain.id, extent.Width, extent.Height)
	return swapChain, nil
}

func (d *fakeDevice) CreatePipeline(config PipelineConfig) (Pipeline, error) {
	if d.pipelineErr != nil {
		return nil, d.pipelineErr
	}
	pipeline := &fakePipeline{events: d.events, id: len(d.pipelines)}
	d.pipelines = append(d.pipelines, pipeline)
	d.pipelineConfigs = append(d.pipelineConfigs, config)
	d.events.add("create pipeline %d", pipeline.id)
	return pipeline, nil
}

func (d *fakeDevice) CreateModel(vertices []geometry.Vertex) (Model, error) {
	d.events.add("create model %d", len(vertices))
	if d.modelErr != nil {
		return nil, d.modelErr
	}
	d.model = &fakeModel{events: d.events, vertices: vertices}
	return d.model, nil
}

func (d *fakeDevice) currentSwapChain() *fakeSwapChain {
	return d.swapChains[len(d.swapChains)-1]
}

var errDriver = errors.New("VK_ERROR_DEVICE_LOST")
