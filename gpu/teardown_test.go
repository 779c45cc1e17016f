package gpu

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
)

type lifecycle struct {
	events []string
}

func (l *lifecycle) step(name string, fail bool) step {
	return step{
		name: name,
		create: func() error {
			l.events = append(l.events, "create "+name)
			if fail {
				return errors.New("out of memory")
			}
			return nil
		},
		release: func() {
			l.events = append(l.events, "release "+name)
		},
	}
}

func TestReleaseStackUnwindsInReverseCreationOrder(t *testing.T) {
	l := &lifecycle{}
	var stack releaseStack

	steps := []step{
		l.step("instance", false),
		l.step("surface", false),
		{name: "physical device", create: func() error { return nil }},
		l.step("device", false),
		l.step("swap-chain", false),
		l.step("pipeline", false),
		l.step("frame slots", false),
	}

	if err := stack.build(steps); err != nil {
		t.Fatal(err)
	}
	stack.unwind()

	expected := []string{
		"create instance",
		"create surface",
		"create device",
		"create swap-chain",
		"create pipeline",
		"create frame slots",
		"release frame slots",
		"release pipeline",
		"release swap-chain",
		"release device",
		"release surface",
		"release instance",
	}
	if !reflect.DeepEqual(l.events, expected) {
		t.Errorf("unexpected lifecycle:\n got %v\nwant %v", l.events, expected)
	}
}

func TestReleaseStackFailedStepReleasesPartialWork(t *testing.T) {
	l := &lifecycle{}
	var stack releaseStack

	steps := []step{
		l.step("instance", false),
		l.step("device", false),
		l.step("pipeline", true),
		l.step("frame slots", false),
	}

	err := stack.build(steps)
	if err == nil {
		t.Fatal("expected the pipeline step to fail")
	}
	if got := err.Error(); got != "gpu: pipeline: out of memory" {
		t.Errorf("unexpected error %q", got)
	}
	stack.unwind()

	expected := []string{
		"create instance",
		"create device",
		"create pipeline",
		"release pipeline",
		"release device",
		"release instance",
	}
	if !reflect.DeepEqual(l.events, expected) {
		t.Errorf("unexpected lifecycle:\n got %v\nwant %v", l.events, expected)
	}
}

func TestReleaseStackUnwindIsIdempotent(t *testing.T) {
	l := &lifecycle{}
	var stack releaseStack

	if err := stack.build([]step{l.step("instance", false)}); err != nil {
		t.Fatal(err)
	}
	stack.unwind()
	stack.unwind()

	if len(l.events) != 2 {
		t.Errorf("expected a single release, got %v", l.events)
	}
}
