// Package engine drives the frame loop: it owns the pipeline layout, the
// current swap chain and pipeline, the model and one command buffer per
// swap chain image, and rebuilds the swap chain when the surface changes.
package engine

import (
	"io"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/push-constants/internal/geometry"
)

// ErrWindowClosed is returned when the window closes while the app is
// waiting for it to become visible again.
var ErrWindowClosed = errors.New("window closed")

// Options configures an App.
type Options struct {
	Vertices []geometry.Vertex
	// VertexShader and FragmentShader are SPIR-V paths. Empty means the
	// built-in shader.
	VertexShader   string
	FragmentShader string

	// StatsInterval is how often frame statistics are logged. Zero disables them.
	StatsInterval time.Duration

	Logger *log.Logger
	// Clock returns a monotonic timestamp. Defaults to hrtime.Now.
	Clock func() time.Duration
}

// App renders the model with push constants until the window closes.
type App struct {
	window Window
	device Device
	opts   Options
	logger *log.Logger
	clock  func() time.Duration

	model          Model
	pipelineLayout core1_0.PipelineLayout
	swapChain      SwapChain
	pipeline       Pipeline
	commandBuffers []CommandBuffer

	state       SwapChainState
	recreations int
	frames      int
	stats       *frameStats
}

// New initializes everything needed to draw, in dependency order: model,
// pipeline layout, swap chain and pipeline, then command buffers.
func New(window Window, device Device, opts Options) (*App, error) {
	app := &App{
		window: window,
		device: device,
		opts:   opts,
		logger: opts.Logger,
		clock:  opts.Clock,
		stats:  newFrameStats(opts.StatsInterval),
	}
	if app.logger == nil {
		app.logger = log.New(io.Discard, "", 0)
	}
	if app.clock == nil {
		app.clock = hrtime.Now
	}

	err := app.loadModel()
	if err == nil {
		err = app.createPipelineLayout()
	}
	if err == nil {
		err = app.recreateSwapChain()
	}
	if err == nil {
		err = app.createCommandBuffers()
	}
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Run draws frames until the window is closed, then waits for the device
// to finish the frames still in flight.
func (app *App) Run() error {
	for !app.window.ShouldClose() {
		app.window.PollEvents()

		err := app.DrawFrame()
		if errors.Is(err, ErrWindowClosed) {
			break
		}
		if err != nil {
			return err
		}
	}

	err := app.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for device idle")
	}
	return nil
}

// Close releases everything New created, newest first. The device must be
// idle.
func (app *App) Close() {
	app.freeCommandBuffers()

	if app.pipeline != nil {
		app.pipeline.Destroy()
		app.pipeline = nil
	}

	if app.swapChain != nil {
		app.swapChain.Destroy()
		app.swapChain = nil
	}
	app.state = NoSwapChain

	if app.pipelineLayout != nil {
		app.pipelineLayout.Destroy(nil)
		app.pipelineLayout = nil
	}

	if app.model != nil {
		app.model.Destroy()
		app.model = nil
	}
}

func (app *App) State() SwapChainState { return app.state }

// Recreations counts swap chain rebuilds after the first construction.
func (app *App) Recreations() int { return app.recreations }

// Frames counts submitted frames.
func (app *App) Frames() int { return app.frames }

func (app *App) loadModel() error {
	if len(app.opts.Vertices) < 3 {
		return errors.Newf("model needs at least 3 vertices, got %d", len(app.opts.Vertices))
	}

	model, err := app.device.CreateModel(app.opts.Vertices)
	if err != nil {
		return errors.Wrap(err, "failed to create model")
	}
	app.model = model
	return nil
}

func (app *App) createPipelineLayout() error {
	layout, err := app.device.CreatePipelineLayout(pipelineLayoutInfo())
	if err != nil {
		return errors.Wrap(err, "failed to create pipeline layout")
	}
	app.pipelineLayout = layout
	return nil
}

func (app *App) createPipeline() error {
	if app.swapChain == nil {
		return errors.AssertionFailedf("cannot create pipeline before swap chain")
	}

	if app.pipeline != nil {
		app.pipeline.Destroy()
		app.pipeline = nil
	}

	pipeline, err := app.device.CreatePipeline(PipelineConfig{
		VertexShader:   app.opts.VertexShader,
		FragmentShader: app.opts.FragmentShader,
		RenderPass:     app.swapChain.RenderPass(),
		Layout:         app.pipelineLayout,
		Subpass:        0,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create pipeline")
	}
	app.pipeline = pipeline
	return nil
}

func (app *App) createCommandBuffers() error {
	buffers, err := app.device.AllocateCommandBuffers(app.swapChain.ImageCount())
	if err != nil {
		return errors.Wrap(err, "failed to allocate command buffers")
	}
	app.commandBuffers = buffers
	return nil
}

func (app *App) freeCommandBuffers() {
	if len(app.commandBuffers) == 0 {
		return
	}
	app.device.FreeCommandBuffers(app.commandBuffers)
	app.commandBuffers = nil
}
