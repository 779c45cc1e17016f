package device

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Logical is a created device together with the queues the renderer uses
type Logical struct {
	Driver        core1_0.CoreDeviceDriver
	Indices       QueueFamilyIndices
	GraphicsQueue core1_0.Queue
	PresentQueue  core1_0.Queue
}

// QueueCreateInfos requests one queue with priority 1.0 per unique family
func QueueCreateInfos(indices QueueFamilyIndices) []core1_0.DeviceQueueCreateInfo {
	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range indices.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}
	return queueFamilyOptions
}

// ExtensionNames is the required list plus the portability subset when the
// device exposes it. A device exposing the subset must have it enabled.
func ExtensionNames(required []string, available map[string]*core1_0.ExtensionProperties) []string {
	extensionNames := append([]string(nil), required...)
	if _, supported := available[khr_portability_subset.ExtensionName]; supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}
	return extensionNames
}

// CreateLogical creates the logical device for the selected physical device
// and fetches its graphics and present queues
func CreateLogical(instance core1_0.CoreInstanceDriver, info *PhysicalDeviceInfo, surface khr_surface.Surface, requirements Requirements, log logrus.FieldLogger) (*Logical, error) {
	indices, err := info.QueueFamilyIndices(surface, false)
	if err != nil {
		return nil, err
	}
	if !indices.IsComplete() {
		return nil, errors.New("device: selected device has no graphics or present queue")
	}

	available, err := info.Extensions()
	if err != nil {
		return nil, errors.Wrap(err, "device: could not enumerate device extensions")
	}
	extensionNames := ExtensionNames(requirements.Extensions, available)

	driver, _, err := instance.CreateDevice(info.Device, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      QueueCreateInfos(indices),
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, errors.Wrap(err, "device: could not create logical device")
	}

	log.WithFields(logrus.Fields{
		"graphicsFamily": *indices.GraphicsFamily,
		"presentFamily":  *indices.PresentFamily,
		"extensions":     extensionNames,
	}).Debug("created logical device")

	return &Logical{
		Driver:        driver,
		Indices:       indices,
		GraphicsQueue: driver.GetQueue(*indices.GraphicsFamily, 0),
		PresentQueue:  driver.GetQueue(*indices.PresentFamily, 0),
	}, nil
}
