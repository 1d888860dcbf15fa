package main

import (
	"context"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/xlab/closer"
	"gopkg.in/natefinch/lumberjack.v2"

	com "hexil/common"
	"hexil/config"
	"hexil/lifecycle"
	"hexil/model"
	"hexil/renderer"
	"hexil/window"
)

// commandQueueSize bounds how far the window thread can run ahead of the renderer.
const commandQueueSize = 64

func init() {
	// SDL events have to be pumped from the thread that initialized SDL
	runtime.LockOSThread()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

// setupLogging tees the log into a size rotated file. The returned closer flushes it.
func setupLogging(cfg config.Config) io.Closer {
	if cfg.LogFile == "" {
		return io.NopCloser(nil)
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: cfg.LogMaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating
}

func main() {
	cfg, err := config.FromOS()
	if err != nil {
		log.Printf("ERROR Invalid configuration: %v", err)
		os.Exit(2)
	}
	logFile := setupLogging(cfg)
	defer closer.Close()

	log.Printf("Starting %s %s", com.APPLICATION_NAME, com.AppVersion())
	log.Printf("Using GoLang: [%s], SDL [%s], Vulkan headers [%s]", runtime.Version(), com.SDLVersion(), com.VulkanVersion())

	canvas, err := model.NewCanvas(cfg.CanvasSize(), cfg.Grid)
	if err != nil {
		closer.Fatalln("Invalid canvas:", err)
	}
	buffers := lifecycle.NewCanvasBuffers(canvas)
	atlas := model.NewMeshAtlas()

	win, err := com.NewWindow(cfg.Title, cfg.WindowWidth, cfg.WindowHeight, cfg.Validation)
	if err != nil {
		closer.Fatalln("Failed to create window:", err)
	}

	commands := make(chan lifecycle.RenderCommand, commandQueueSize)
	dead := make(chan struct{})
	ready := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer close(dead)
		runtime.LockOSThread()
		if err := render(ctx, cfg, win, buffers, atlas, commands, ready); err != nil {
			log.Printf("ERROR Renderer stopped: %+v", err)
		}
	}()

	closer.Bind(func() {
		cancel()
		<-dead
		win.Destroy()
		log.Printf("%s shut down", com.APPLICATION_NAME)
		logFile.Close()
	})

	translator := &window.Translator{
		DrawableSize: win.DrawableSize,
		Editor:       window.NewEditor(buffers),
	}
	window.Run(translator, window.NewSender(commands, dead), ready, win.Show)
}

// render owns the render core for its whole life. It returns once the frame loop stopped and the core is gone.
func render(ctx context.Context, cfg config.Config, win *com.Window, buffers *lifecycle.CanvasBuffers,
	atlas *model.MeshAtlas, commands <-chan lifecycle.RenderCommand, ready chan<- struct{}) error {
	core, sel, err := renderer.NewCore(win, renderer.Options{
		VertexShader:   cfg.VertexShader,
		FragmentShader: cfg.FragmentShader,
		Validation:     cfg.Validation,
		Atlas:          atlas,
	})
	if err != nil {
		return err
	}
	defer core.Destroy()

	if cfg.VSync && sel.MailboxSupported {
		log.Printf("VSync requested, presenting in FIFO mode")
		sel.MailboxSupported = false
	}
	loop := lifecycle.NewFrameLoop(core, sel, buffers, lifecycle.Options{
		Atlas:        atlas,
		OnFirstFrame: func() { close(ready) },
	})
	return loop.Run(ctx, commands)
}
