package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

var (
	clearColor = core1_0.ClearValueFloat{0.1, 0.1, 0.1, 1.0}
	clearDepth = core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0}
)

// DrawFrame renders and presents one frame. A frame whose image cannot be
// acquired because the swap chain is out of date is dropped.
func (app *App) DrawFrame() error {
	imageIndex, status, err := app.swapChain.AcquireNextImage()
	if err != nil {
		return errors.Wrap(err, "failed to acquire swap chain image")
	}

	if status == StatusOutOfDate {
		app.state = SwapChainStale
		return app.recreateSwapChain()
	}

	if imageIndex < 0 || imageIndex >= len(app.commandBuffers) {
		return errors.AssertionFailedf("acquired image %d but only %d command buffers", imageIndex, len(app.commandBuffers))
	}

	err = app.recordCommandBuffer(imageIndex)
	if err != nil {
		return err
	}

	status, err = app.swapChain.SubmitCommandBuffers(app.commandBuffers[imageIndex], imageIndex)
	if err != nil {
		return errors.Wrap(err, "failed to present swap chain image")
	}
	app.frameSubmitted()

	if status == StatusOutOfDate || status == StatusSuboptimal || app.window.WasResized() {
		app.window.ResetResizedFlag()
		app.state = SwapChainStale
		return app.recreateSwapChain()
	}

	return nil
}

func (app *App) recordCommandBuffer(imageIndex int) error {
	buffer := app.commandBuffers[imageIndex]
	extent := app.swapChain.Extent()

	err := buffer.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin recording command buffer")
	}

	err = buffer.BeginRenderPass(core1_0.RenderPassBeginInfo{
		RenderPass:  app.swapChain.RenderPass(),
		Framebuffer: app.swapChain.Framebuffer(imageIndex),
		RenderArea: core1_0.Rect2D{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValues: []core1_0.ClearValue{
			clearColor,
			clearDepth,
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to begin render pass")
	}

	buffer.SetViewport(core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	buffer.SetScissor(core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: extent,
	})

	app.pipeline.Bind(buffer)
	app.model.Bind(buffer)

	for j := 0; j < copiesPerFrame; j++ {
		push, err := copyPushConstants(j).Bytes()
		if err != nil {
			return errors.Wrap(err, "failed to encode push constants")
		}

		buffer.PushConstants(app.pipelineLayout, pushConstantStages, 0, push)
		app.model.Draw(buffer)
	}

	buffer.EndRenderPass()

	err = buffer.End()
	if err != nil {
		return errors.Wrap(err, "failed to record command buffer")
	}
	return nil
}

func (app *App) frameSubmitted() {
	app.frames++

	report, ok := app.stats.frame(app.clock())
	if ok {
		app.logger.Printf("%d frames in %s: %.1f fps, %s per frame", report.Frames, report.Elapsed, report.FPS, report.MeanFrameTime)
	}
}
