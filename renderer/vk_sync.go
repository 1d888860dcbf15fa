package renderer

import (
	"math"

	vk "github.com/goki/vulkan"

	com "hexil/common"
	"hexil/lifecycle"
)

// frameSync holds the per frame in flight objects. current advances once per presented (or failed to present)
// frame, acquired remembers the frame slot the last acquired image belongs to.
type frameSync struct {
	imageAvailable []vk.Semaphore
	inFlight       []vk.Fence
	current        int
	acquired       int
}

func (f *frameSync) create(dev *com.Device) error {
	f.imageAvailable = make([]vk.Semaphore, 0, MAX_FRAMES_IN_FLIGHT)
	f.inFlight = make([]vk.Fence, 0, MAX_FRAMES_IN_FLIGHT)
	for i := 0; i < MAX_FRAMES_IN_FLIGHT; i++ {
		sem, err := com.VKSCreateSemaphore(dev.D)
		if err != nil {
			return lifecycle.Wrap(lifecycle.KindExecution, "CreateSemaphore", err)
		}
		f.imageAvailable = append(f.imageAvailable, sem)
		fen, err := com.VKSCreateFence(dev.D, true)
		if err != nil {
			return lifecycle.Wrap(lifecycle.KindExecution, "CreateFence", err)
		}
		f.inFlight = append(f.inFlight, fen)
	}
	return nil
}

func (f *frameSync) advance() {
	f.current = (f.current + 1) % MAX_FRAMES_IN_FLIGHT
}

// waitAll blocks until no frame is in flight anymore. Recording into or copying over anything a frame reads has to
// wait for this.
func (f *frameSync) waitAll(dev *com.Device) error {
	if len(f.inFlight) == 0 {
		return nil
	}
	err := vk.Error(vk.WaitForFences(dev.D, uint32(len(f.inFlight)), f.inFlight, vk.True, math.MaxUint64))
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, "WaitForFences", err)
	}
	return nil
}

func (f *frameSync) destroy(dev *com.Device) {
	for _, s := range f.imageAvailable {
		vk.DestroySemaphore(dev.D, s, nil)
	}
	for _, fen := range f.inFlight {
		vk.DestroyFence(dev.D, fen, nil)
	}
	f.imageAvailable = nil
	f.inFlight = nil
}

func waitFence(dev *com.Device, fence vk.Fence, op string) error {
	err := vk.Error(vk.WaitForFences(dev.D, 1, []vk.Fence{fence}, vk.True, math.MaxUint64))
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindExecution, op, err)
	}
	return nil
}
