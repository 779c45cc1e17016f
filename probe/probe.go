// Package probe answers read-only capability questions about the Vulkan
// installation: which instance extensions and layers are present, and which
// required names are missing.
package probe

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

var (
	ErrMissingExtension = errors.New("missing extension")
	ErrMissingLayer     = errors.New("missing layer")
)

// ValidationLayers are requested when validation is enabled
var ValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// Instance is a snapshot of what the loader reports
type Instance struct {
	extensions map[string]struct{}
	layers     map[string]struct{}
}

// QueryInstance asks the global driver for its extensions and layers
func QueryInstance(driver core1_0.GlobalDriver) (*Instance, error) {
	extensions, _, err := driver.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "probe: could not enumerate instance extensions")
	}

	layers, _, err := driver.AvailableLayers()
	if err != nil {
		return nil, errors.Wrap(err, "probe: could not enumerate instance layers")
	}

	return &Instance{
		extensions: nameSet(extensions),
		layers:     nameSet(layers),
	}, nil
}

// NewInstance builds a snapshot from plain name lists
func NewInstance(extensions, layers []string) *Instance {
	i := &Instance{
		extensions: make(map[string]struct{}, len(extensions)),
		layers:     make(map[string]struct{}, len(layers)),
	}
	for _, ext := range extensions {
		i.extensions[ext] = struct{}{}
	}
	for _, layer := range layers {
		i.layers[layer] = struct{}{}
	}
	return i
}

func (i *Instance) HasExtension(name string) bool {
	_, ok := i.extensions[name]
	return ok
}

// RequireExtensions fails with ErrMissingExtension naming every absent extension
func (i *Instance) RequireExtensions(names ...string) error {
	if missing := Missing(names, i.extensions); len(missing) > 0 {
		return errors.Wrapf(ErrMissingExtension, "instance extensions not available: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireLayers fails with ErrMissingLayer naming every absent layer
func (i *Instance) RequireLayers(names ...string) error {
	if missing := Missing(names, i.layers); len(missing) > 0 {
		return errors.Wrapf(ErrMissingLayer, "validation layers not available (install the LunarG Vulkan SDK): %s", strings.Join(missing, ", "))
	}
	return nil
}

// InstanceExtensions lists what the instance must enable for the window and,
// optionally, the debug messenger. Portability enumeration is added whenever
// the loader offers it.
func (i *Instance) InstanceExtensions(windowExtensions []string, validation bool) []string {
	extensions := append([]string{}, windowExtensions...)
	if validation {
		extensions = append(extensions, ext_debug_utils.ExtensionName)
	}
	if i.HasExtension(khr_portability_enumeration.ExtensionName) {
		extensions = append(extensions, khr_portability_enumeration.ExtensionName)
	}
	return extensions
}

// Missing returns required minus available, sorted and without duplicates
func Missing[T any](required []string, available map[string]T) []string {
	remaining := make(map[string]struct{}, len(required))
	for _, name := range required {
		remaining[name] = struct{}{}
	}
	for name := range available {
		delete(remaining, name)
	}

	missing := make([]string, 0, len(remaining))
	for name := range remaining {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

func nameSet[T any](m map[string]T) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for name := range m {
		set[name] = struct{}{}
	}
	return set
}
