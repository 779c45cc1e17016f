package gpu

import (
	"github.com/cockroachdb/errors"
)

// step creates one group of objects. release must cope with a create that
// failed halfway.
type step struct {
	name    string
	create  func() error
	release func()
}

type release struct {
	name string
	fn   func()
}

// releaseStack holds releases in creation order and runs them backwards
type releaseStack struct {
	entries []release
}

func (s *releaseStack) push(name string, fn func()) {
	if fn == nil {
		return
	}
	s.entries = append(s.entries, release{name: name, fn: fn})
}

func (s *releaseStack) unwind() {
	for len(s.entries) > 0 {
		last := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		last.fn()
	}
}

// build runs the steps in order. A failing step's release is still pushed so
// the caller's unwind also frees what it built before failing.
func (s *releaseStack) build(steps []step) error {
	for _, st := range steps {
		err := st.create()
		s.push(st.name, st.release)
		if err != nil {
			return errors.Wrapf(err, "gpu: %s", st.name)
		}
	}
	return nil
}
