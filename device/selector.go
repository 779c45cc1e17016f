package device

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/quad/probe"
)

var ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")

// Requirements lists what a device must offer to be considered at all
type Requirements struct {
	Extensions []string
	Features   func(features *core1_0.PhysicalDeviceFeatures) bool
}

func DefaultRequirements() Requirements {
	return Requirements{
		Extensions: []string{khr_swapchain.ExtensionName},
		Features: func(features *core1_0.PhysicalDeviceFeatures) bool {
			return features.GeometryShader
		},
	}
}

// Suitable reports whether device can render to and present on surface
func (r Requirements) Suitable(device *PhysicalDeviceInfo, surface khr_surface.Surface) (bool, error) {
	if r.Features != nil {
		features := device.Features()
		if features == nil || !r.Features(features) {
			return false, nil
		}
	}

	indices, err := device.QueueFamilyIndices(surface, false)
	if err != nil {
		return false, err
	}
	if !indices.IsComplete() {
		return false, nil
	}

	extensions, err := device.Extensions()
	if err != nil {
		return false, err
	}
	if len(probe.Missing(r.Extensions, extensions)) > 0 {
		return false, nil
	}

	support, err := device.SwapchainSupport(surface, false)
	if err != nil {
		return false, err
	}
	return len(support.Formats) > 0 && len(support.PresentModes) > 0, nil
}

// Score is 0 for unusable devices, 1 for usable ones and 2 for usable
// discrete GPUs
func (r Requirements) Score(device *PhysicalDeviceInfo, surface khr_surface.Surface) (int, error) {
	suitable, err := r.Suitable(device, surface)
	if err != nil || !suitable {
		return 0, err
	}

	properties, err := device.Properties()
	if err != nil {
		return 0, err
	}

	score := 1
	if properties.DriverType == core1_0.PhysicalDeviceTypeDiscreteGPU {
		score++
	}
	return score, nil
}

// Select returns the highest scoring candidate. Ties go to the device
// enumerated first and a device scoring 0 never wins. When nothing wins, the
// errors of devices that could not be rated ride along on ErrNoSuitableDevice.
func Select(candidates []*PhysicalDeviceInfo, surface khr_surface.Surface, requirements Requirements, log logrus.FieldLogger) (*PhysicalDeviceInfo, error) {
	bestScore := 0
	var bestDevice *PhysicalDeviceInfo
	var ratingErr error
	unrated := 0

	for index, candidate := range candidates {
		score, err := requirements.Score(candidate, surface)
		if err != nil {
			log.WithError(err).WithField("device", index).Warn("could not rate physical device")
			ratingErr = errors.CombineErrors(ratingErr, errors.Wrapf(err, "device %d", index))
			unrated++
			continue
		}
		log.WithFields(logrus.Fields{"device": index, "score": score}).Debug("rated physical device")

		if score > bestScore {
			bestScore = score
			bestDevice = candidate
		}
	}

	if bestDevice == nil {
		err := errors.Wrapf(ErrNoSuitableDevice, "%d candidates, %d could not be rated", len(candidates), unrated)
		if ratingErr != nil {
			err = errors.WithSecondaryError(err, ratingErr)
		}
		return nil, err
	}
	return bestDevice, nil
}
