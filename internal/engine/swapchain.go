package engine

import (
	"github.com/cockroachdb/errors"
)

// SwapChainState tracks whether the app holds a usable swap chain.
type SwapChainState int

const (
	NoSwapChain SwapChainState = iota
	SwapChainValid
	// SwapChainStale means the surface changed and the next step is a rebuild.
	SwapChainStale
)

func (s SwapChainState) String() string {
	switch s {
	case NoSwapChain:
		return "none"
	case SwapChainValid:
		return "valid"
	case SwapChainStale:
		return "stale"
	}
	return "unknown"
}

// recreateSwapChain builds a swap chain for the current window size, chained
// from the previous one if there is one, and rebuilds everything that
// depends on it.
func (app *App) recreateSwapChain() error {
	extent := app.window.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		if app.window.ShouldClose() {
			return ErrWindowClosed
		}
		app.window.WaitEvents()
		extent = app.window.Extent()
	}

	err := app.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for device idle")
	}

	old := app.swapChain
	swapChain, err := app.device.CreateSwapChain(extent, old)
	if err != nil {
		return errors.Wrap(err, "failed to create swap chain")
	}
	app.swapChain = swapChain
	if old != nil {
		old.Destroy()
	}

	if swapChain.ImageCount() < 1 {
		return errors.AssertionFailedf("swap chain has no images")
	}

	if old != nil {
		app.recreations++
		app.logger.Printf("swap chain recreated: %dx%d, %d images", extent.Width, extent.Height, swapChain.ImageCount())

		if swapChain.ImageCount() != len(app.commandBuffers) {
			app.logger.Printf("image count changed from %d to %d, reallocating command buffers", len(app.commandBuffers), swapChain.ImageCount())
			app.freeCommandBuffers()
			err = app.createCommandBuffers()
			if err != nil {
				return err
			}
		}
	} else {
		app.logger.Printf("swap chain created: %dx%d, %d images", extent.Width, extent.Height, swapChain.ImageCount())
	}

	// The render pass may be a new object even when it is compatible with
	// the old one, so the pipeline is always rebuilt.
	err = app.createPipeline()
	if err != nil {
		return err
	}

	app.state = SwapChainValid
	return nil
}
