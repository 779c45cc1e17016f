// Command quad draws a spinning colored quad, or an OBJ mesh, in a window
// and keeps presenting across resizes and minimizes.
package main

//go:generate glslc ../../shaders/shader.vert -o ../../shaders/vert.spv
//go:generate glslc ../../shaders/shader.frag -o ../../shaders/frag.spv

import (
	"path/filepath"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vkngwrapper/quad/config"
	"github.com/vkngwrapper/quad/frame"
	"github.com/vkngwrapper/quad/gpu"
	"github.com/vkngwrapper/quad/mesh"
	"github.com/vkngwrapper/quad/recorder"
	"github.com/vkngwrapper/quad/shader"
	"github.com/vkngwrapper/quad/window"
)

func init() {
	runtime.LockOSThread()
}

type application struct {
	cfg    config.Config
	logger *log.Logger

	shaders gpu.Shaders
	mesh    *mesh.Mesh

	window  *window.Window
	context *gpu.Context
	pacer   *frame.Pacer
}

func (app *application) Run() error {
	err := app.loadAssets()
	if err != nil {
		return err
	}

	app.window, err = window.New(app.cfg.Window, app.logger)
	if err != nil {
		return err
	}
	defer app.window.Destroy()

	app.context, err = gpu.New(app.cfg.Renderer, app.window, app.shaders, app.mesh, app.logger)
	if err != nil {
		return err
	}
	defer app.context.Destroy()

	draw := recorder.New(app.context, app.context.Swapchain, app.context.Resources())
	app.pacer, err = frame.NewPacer(
		app.context.Slots(),
		app.context,
		draw,
		app.context.Uniforms(),
		app.context.Swapchain,
		app.window,
		app.logger,
	)
	if err != nil {
		return err
	}

	return app.mainLoop()
}

// loadAssets reads both shaders and the mesh concurrently. Nothing here needs
// the GPU, so a bad asset fails before a window opens.
func (app *application) loadAssets() error {
	var group errgroup.Group
	renderer := app.cfg.Renderer

	group.Go(func() error {
		var err error
		app.shaders.Vertex, err = shader.Load(filepath.Join(renderer.ShaderDirectory, renderer.VertexShader))
		return err
	})
	group.Go(func() error {
		var err error
		app.shaders.Fragment, err = shader.Load(filepath.Join(renderer.ShaderDirectory, renderer.FragmentShader))
		return err
	})
	group.Go(func() error {
		var err error
		app.mesh, err = mesh.Load(renderer.MeshPath)
		return err
	})

	if err := group.Wait(); err != nil {
		return err
	}

	app.logger.WithFields(log.Fields{
		"vertices": len(app.mesh.Vertices),
		"indices":  len(app.mesh.Indices),
	}).Debug("loaded assets")
	return nil
}

func (app *application) mainLoop() error {
	for {
		app.window.PollEvents()
		if app.window.ShouldClose() {
			break
		}

		if app.window.Minimized() {
			app.window.WaitEvents()
			continue
		}

		if err := app.pacer.DrawFrame(); err != nil {
			return err
		}
	}

	return app.context.WaitIdle()
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	logger := log.New()
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	logger.SetLevel(level)

	app := &application{cfg: cfg, logger: logger}
	if err := app.Run(); err != nil {
		logger.Fatalf("%+v\n", err)
	}
}
