// Package frame paces rendering: it rotates through a fixed set of
// in-flight frame slots, keeps the CPU from running more than that many
// frames ahead of the GPU, and rebuilds the swap-chain when the surface
// stops matching it.
package frame

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Status is what acquire and present report about the surface
type Status int

const (
	StatusOK Status = iota
	// StatusSuboptimal still presents, but the swap-chain should be rebuilt
	StatusSuboptimal
	// StatusOutOfDate means the swap-chain can no longer be used
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	default:
		return "unknown"
	}
}

type SlotState int

const (
	SlotIdle SlotState = iota
	SlotAcquiring
	SlotRecording
	SlotSubmitted
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotAcquiring:
		return "acquiring"
	case SlotRecording:
		return "recording"
	case SlotSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Slot is the per-frame set of objects. Its fence must be signaled before
// the command buffer or uniform buffer of the slot is touched again.
type Slot struct {
	Index int

	CommandBuffer  core1_0.CommandBuffer
	ImageAvailable core1_0.Semaphore
	RenderFinished core1_0.Semaphore
	InFlight       core1_0.Fence

	state SlotState
}

func (s *Slot) State() SlotState {
	return s.state
}

// retire returns the slot to idle once its fence has signaled or its frame
// was abandoned before submission
func (s *Slot) retire() {
	s.state = SlotIdle
}
