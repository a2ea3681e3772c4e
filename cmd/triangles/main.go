package main

import (
	"log"
	"os"
	"runtime"

	"github.com/vkngwrapper/push-constants/internal/config"
	"github.com/vkngwrapper/push-constants/internal/engine"
	"github.com/vkngwrapper/push-constants/internal/geometry"
	"github.com/vkngwrapper/push-constants/internal/vulkan"
	"github.com/vkngwrapper/push-constants/internal/window"
)

func init() {
	// SDL and the Vulkan surface belong to the main thread.
	runtime.LockOSThread()
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	win, err := window.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	defer win.Destroy()

	device, err := vulkan.NewDevice(win.SDL(), vulkan.DeviceOptions{
		ApplicationName: cfg.Window.Title,
		Validation:      cfg.Validation,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer device.Destroy()

	app, err := engine.New(win, device, engine.Options{
		Vertices:       vertices(cfg.Model),
		VertexShader:   cfg.Shaders.Vertex,
		FragmentShader: cfg.Shaders.Fragment,
		StatsInterval:  cfg.Stats.Interval,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	err = app.Run()
	if err != nil {
		// Run only idles the device on a clean exit.
		waitIdle(device, logger)
	}
	app.Close()
	return err
}

type idler interface {
	WaitIdle() error
}

func waitIdle(device idler, logger *log.Logger) {
	err := device.WaitIdle()
	if err != nil {
		logger.Printf("failed to wait for device idle: %+v", err)
	}
}

func vertices(model config.Model) []geometry.Vertex {
	if model.Kind == config.ModelSierpinski {
		return geometry.SierpinskiModel(model.Depth)
	}
	return geometry.Triangle()
}
