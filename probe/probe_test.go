package probe_test

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/quad/probe"
)

func TestMissing(t *testing.T) {
	available := map[string]int{"a": 1, "b": 2, "c": 3}

	tests := []struct {
		name     string
		required []string
		want     []string
	}{
		{"all present", []string{"a", "c"}, []string{}},
		{"none required", nil, []string{}},
		{"one missing", []string{"a", "z"}, []string{"z"}},
		{"sorted and deduplicated", []string{"y", "x", "y", "b"}, []string{"x", "y"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := probe.Missing(test.required, available)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestRequireExtensions(t *testing.T) {
	instance := probe.NewInstance([]string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, nil)

	if err := instance.RequireExtensions("VK_KHR_surface"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := instance.RequireExtensions("VK_KHR_surface", "VK_KHR_win32_surface")
	if !errors.Is(err, probe.ErrMissingExtension) {
		t.Fatalf("expected ErrMissingExtension, got %v", err)
	}
}

func TestRequireLayers(t *testing.T) {
	instance := probe.NewInstance(nil, []string{"VK_LAYER_KHRONOS_validation"})
	if err := instance.RequireLayers(probe.ValidationLayers...); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	empty := probe.NewInstance(nil, nil)
	if err := empty.RequireLayers(probe.ValidationLayers...); !errors.Is(err, probe.ErrMissingLayer) {
		t.Errorf("expected ErrMissingLayer, got %v", err)
	}
}

func TestInstanceExtensions(t *testing.T) {
	window := []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}

	plain := probe.NewInstance(window, nil)
	got := plain.InstanceExtensions(window, false)
	if !reflect.DeepEqual(got, window) {
		t.Errorf("expected %v, got %v", window, got)
	}

	withDebug := plain.InstanceExtensions(window, true)
	if withDebug[len(withDebug)-1] != ext_debug_utils.ExtensionName {
		t.Errorf("expected debug utils to be appended, got %v", withDebug)
	}
	if len(window) != 2 {
		t.Error("input slice was modified")
	}

	portable := probe.NewInstance(append(window, khr_portability_enumeration.ExtensionName), nil)
	got = portable.InstanceExtensions(window, false)
	if got[len(got)-1] != khr_portability_enumeration.ExtensionName {
		t.Errorf("expected portability enumeration to be enabled, got %v", got)
	}
}
