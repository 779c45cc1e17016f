package gpu

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/frame"
)

func TestStatusFromResult(t *testing.T) {
	deviceLost := errors.New("device lost")

	tests := []struct {
		name   string
		res    common.VkResult
		err    error
		status frame.Status
		fails  bool
	}{
		{"success", core1_0.VKSuccess, nil, frame.StatusOK, false},
		{"suboptimal", khr_swapchain.VKSuboptimal, nil, frame.StatusSuboptimal, false},
		{"out of date", khr_swapchain.VKErrorOutOfDate, errors.New("out of date"), frame.StatusOutOfDate, false},
		{"device lost", core1_0.VKErrorDeviceLost, deviceLost, frame.StatusOK, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, err := statusFromResult(test.res, test.err)
			if status != test.status {
				t.Errorf("expected %v, got %v", test.status, status)
			}
			if test.fails != (err != nil) {
				t.Errorf("unexpected error state: %v", err)
			}
		})
	}
}
