// Package uniform computes the per-frame transforms written to each frame
// slot's uniform buffer.
package uniform

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/common"
)

// Size is the byte size of Transforms as the vertex shader sees it
const Size = 3 * 16 * 4

// Transforms matches the uniform block at binding 0 of the vertex shader
type Transforms struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// Compute returns the transforms after elapsed time for a target of the
// given size. The model turns a quarter turn per second about Z.
func Compute(elapsed time.Duration, width, height int) Transforms {
	period := math.Mod(elapsed.Seconds(), 4.0)

	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10)
	// Vulkan clip space has Y pointing down
	proj[5] *= -1

	return Transforms{
		Model: mgl32.HomogRotate3DZ(float32(period * math.Pi / 2.0)),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1},
		),
		Proj: proj,
	}
}

// Bytes lays the matrices out column-major in the driver's byte order
func (t Transforms) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	if err := binary.Write(buf, common.ByteOrder, &t); err != nil {
		return nil, errors.Wrap(err, "uniform: encoding transforms")
	}
	return buf.Bytes(), nil
}

// Clock measures time since it was started
type Clock struct {
	now   func() time.Duration
	start time.Duration
}

func NewClock() *Clock {
	return newClock(hrtime.Now)
}

func newClock(now func() time.Duration) *Clock {
	return &Clock{now: now, start: now()}
}

func (c *Clock) Elapsed() time.Duration {
	return c.now() - c.start
}
