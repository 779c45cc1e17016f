package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Device is the GPU side of the frame protocol
type Device interface {
	// WaitForFence blocks without timeout until the slot's fence is signaled
	WaitForFence(slot *Slot) error
	ResetFence(slot *Slot) error
	// AcquireNextImage signals slot.ImageAvailable once the image is ready
	AcquireNextImage(slot *Slot) (int, Status, error)
	// Submit waits on slot.ImageAvailable at color attachment output, signals
	// slot.RenderFinished and the slot's fence
	Submit(slot *Slot, imageIndex int) error
	// Present waits on slot.RenderFinished
	Present(slot *Slot, imageIndex int) (Status, error)
	WaitIdle() error
}

type Recorder interface {
	Record(slot *Slot, imageIndex int) error
}

type Uniforms interface {
	Update(slot *Slot) error
}

type Swapchain interface {
	Recreate() error
}

type Window interface {
	FramebufferSize() (int, int)
	WaitEvents()
	ShouldClose() bool
	// TakeResized reports whether the window was resized since the last
	// call and clears the flag
	TakeResized() bool
}

type Pacer struct {
	device    Device
	recorder  Recorder
	uniforms  Uniforms
	swapchain Swapchain
	window    Window
	log       logrus.FieldLogger

	slots   []*Slot
	current int
}

func NewPacer(slots []*Slot, device Device, recorder Recorder, uniforms Uniforms, swapchain Swapchain, window Window, log logrus.FieldLogger) (*Pacer, error) {
	if len(slots) == 0 {
		return nil, errors.New("frame: at least one frame slot is required")
	}
	for i, slot := range slots {
		if slot.Index != i {
			return nil, errors.Newf("frame: slot %d has index %d", i, slot.Index)
		}
	}

	return &Pacer{
		device:    device,
		recorder:  recorder,
		uniforms:  uniforms,
		swapchain: swapchain,
		window:    window,
		log:       log,
		slots:     slots,
	}, nil
}

func (p *Pacer) Current() *Slot {
	return p.slots[p.current]
}

func (p *Pacer) Slots() []*Slot {
	return p.slots
}

// DrawFrame runs one iteration of the frame protocol. An out-of-date surface
// at acquire abandons the frame before any GPU work is queued; the next call
// starts over on the rebuilt swap-chain.
func (p *Pacer) DrawFrame() error {
	slot := p.slots[p.current]

	if err := p.device.WaitForFence(slot); err != nil {
		return errors.Wrapf(err, "frame: waiting for slot %d", slot.Index)
	}
	slot.retire()
	slot.state = SlotAcquiring

	imageIndex, acquired, err := p.device.AcquireNextImage(slot)
	if err != nil {
		slot.retire()
		return errors.Wrap(err, "frame: could not acquire swap-chain image")
	}
	if acquired == StatusOutOfDate {
		slot.retire()
		return p.Recreate(acquired.String())
	}

	// Only reset once work is certain to be submitted, otherwise the next
	// wait on this slot would never return.
	if err := p.device.ResetFence(slot); err != nil {
		return errors.Wrapf(err, "frame: resetting slot %d", slot.Index)
	}
	slot.state = SlotRecording

	if err := p.recorder.Record(slot, imageIndex); err != nil {
		return errors.Wrap(err, "frame: could not record command buffer")
	}
	if err := p.uniforms.Update(slot); err != nil {
		return errors.Wrap(err, "frame: could not update uniforms")
	}

	if err := p.device.Submit(slot, imageIndex); err != nil {
		return errors.Wrap(err, "frame: could not submit draw command buffer")
	}
	slot.state = SlotSubmitted

	presented, err := p.device.Present(slot, imageIndex)
	if err != nil {
		return errors.Wrap(err, "frame: could not present")
	}

	p.current = (p.current + 1) % len(p.slots)

	resized := p.window.TakeResized()
	switch {
	case presented != StatusOK:
		return p.Recreate(presented.String())
	case acquired == StatusSuboptimal:
		return p.Recreate(acquired.String())
	case resized:
		return p.Recreate("resized")
	}
	return nil
}

// Recreate rebuilds the swap-chain. It waits out a minimized window, then
// drains the GPU so nothing in flight still references the old images.
func (p *Pacer) Recreate(reason string) error {
	p.log.WithField("reason", reason).Info("recreating swap-chain")

	for {
		if p.window.ShouldClose() {
			return nil
		}
		width, height := p.window.FramebufferSize()
		if width > 0 && height > 0 {
			break
		}
		p.window.WaitEvents()
	}

	if err := p.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "frame: waiting for device idle")
	}

	p.window.TakeResized()
	return p.swapchain.Recreate()
}
