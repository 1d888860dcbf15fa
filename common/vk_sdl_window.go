package common

import (
	"fmt"
	"log"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"hexil/lifecycle"
)

const APPLICATION_NAME = "Hexil"
const APP_MAJOR, APP_MINOR, APP_PATCH = 0, 1, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

func SDLVersion() string {
	return fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH)
}

func AppVersion() string {
	return fmt.Sprintf("v%d.%d.%d", APP_MAJOR, APP_MINOR, APP_PATCH)
}

func VulkanVersion() string {
	return fmt.Sprintf("v%d.%d.%d", VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH)
}

// Window encapsulates the SDL window together with the vulkan instance and the surface created for it. The window
// is created hidden, whoever owns the renderer shows it once there is something to present.
type Window struct {
	Win  *sdl.Window
	Inst vk.Instance
	Surf vk.Surface

	Validation bool
}

// NewWindow initializes SDL, loads vulkan through SDL and creates the instance with the surface extensions SDL
// needs on this platform. On tear down, we need to destroy the: vk.surface, vk.instance and sdl.window.
func NewWindow(title string, w int32, h int32, validation bool) (*Window, error) {
	window := &Window{Validation: validation}
	if err := window.initSDLWindow(title, w, h); err != nil {
		return nil, err
	}
	if err := window.initVulkan(); err != nil {
		window.destroySDL()
		return nil, err
	}
	if err := window.createVulkanInstance(); err != nil {
		window.destroySDL()
		return nil, err
	}
	if err := window.createSdlVkSurface(); err != nil {
		vk.DestroyInstance(window.Inst, nil)
		window.destroySDL()
		return nil, err
	}
	log.Printf("Generated SDL/Vulkan window - SDL: %s Vulkan Spec: %s", SDLVersion(), VulkanVersion())
	return window, nil
}

// Destroy tears down the surface, the instance and the window, in that order.
func (w *Window) Destroy() {
	vk.DestroySurface(w.Inst, w.Surf, nil)
	vk.DestroyInstance(w.Inst, nil)
	w.destroySDL()
}

func (w *Window) destroySDL() {
	if err := w.Win.Destroy(); err != nil {
		log.Printf("WARN Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}

func (w *Window) Show() {
	w.Win.Show()
}

// DrawableSize is the size of the window in physical pixels, which is what the surface reports.
func (w *Window) DrawableSize() (uint32, uint32) {
	width, height := w.Win.VulkanGetDrawableSize()
	if width < 0 || height < 0 {
		return 0, 0
	}
	return uint32(width), uint32(height)
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return lifecycle.Wrap(lifecycle.KindLoader, "sdl.Init", err)
	}
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_HIDDEN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN|sdl.WINDOW_ALLOW_HIGHDPI,
	)
	if err != nil {
		sdl.Quit()
		return lifecycle.Wrap(lifecycle.KindLoader, "sdl.CreateWindow", err)
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
	return nil
}

func (w *Window) initVulkan() error {
	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		return lifecycle.Wrap(lifecycle.KindLoader, "vk.Init", err)
	}
	return nil
}

func (w *Window) createVulkanInstance() error {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return lifecycle.Wrap(lifecycle.KindInstance, "CreateInstance", err)
	}

	var layers []string
	if w.Validation {
		log.Printf("Validation enabled, checking layer support")
		if err := checkValidationLayerSupport(VALIDATION_LAYERS); err != nil {
			// Validation is a development aid, running without it is fine.
			log.Printf("WARN %v, continuing without validation", err)
			w.Validation = false
		} else {
			layers = VALIDATION_LAYERS
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     TerminatedStrs(layers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindInstance, "CreateInstance", err)
	}
	w.Inst = ins
	return nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supported, err := ReadInstanceExtensionProperties()
	if err != nil {
		return err
	}
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d):\n%s", len(supported), TableStringExtensionProps(supported))

	if missing := Missing(requiredInstanceExt, ExtensionNames(supported)); len(missing) > 0 {
		return errors.Errorf("required instance extensions %v are not supported", missing)
	}
	log.Println("Success - All required instance extensions are supported")
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supported, err := ReadInstanceLayerProperties()
	if err != nil {
		return err
	}
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d):\n%s", len(supported), TableStringLayerProps(supported))

	supportedLayerNames := make([]string, len(supported))
	for i := range supported {
		supportedLayerNames[i] = vk.ToString(supported[i].LayerName[:])
	}
	if !AllOfAinB(requiredLayers, supportedLayerNames) {
		return errors.Errorf("validation layers %v are not supported", Missing(requiredLayers, supportedLayerNames))
	}
	log.Println("Success - All desired validation layers are supported")
	return nil
}

func (w *Window) createSdlVkSurface() error {
	surf, err := SdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindSurface, "VulkanCreateSurface", err)
	}
	w.Surf = surf
	return nil
}
