// Package mesh provides the geometry drawn by the demo: a built-in colored
// quad or a mesh imported from a Wavefront OBJ file.
package mesh

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// MaxVertices is the most vertices 16-bit indices can address, keeping
// 0xFFFF free for primitive restart
const MaxVertices = math.MaxUint16

var ErrTooManyVertices = errors.New("mesh: too many vertices for 16-bit indices")

type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Quad is two triangles in the XY plane with a different color per corner
func Quad() *Mesh {
	return &Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, Color: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, Color: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Color: mgl32.Vec3{0, 0, 1}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Color: mgl32.Vec3{1, 1, 1}},
		},
		Indices: []uint16{0, 1, 2, 2, 3, 0},
	}
}

// Validate checks that the mesh is a non-empty triangle list whose indices
// all point at a vertex
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return errors.New("mesh: empty mesh")
	}
	if len(m.Vertices) > MaxVertices {
		return errors.Wrapf(ErrTooManyVertices, "%d vertices", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Newf("mesh: %d indices do not form a triangle list", len(m.Indices))
	}
	for i, index := range m.Indices {
		if int(index) >= len(m.Vertices) {
			return errors.Newf("mesh: index %d points at vertex %d of %d", i, index, len(m.Vertices))
		}
	}
	return nil
}

// Load returns the built-in quad for an empty path and the OBJ mesh at path
// otherwise
func Load(path string) (*Mesh, error) {
	if path == "" {
		return Quad(), nil
	}
	return LoadOBJ(path)
}

// LoadOBJ reads a Wavefront OBJ file. A material library next to it with the
// same base name is read if present. Polygons are split into triangle fans and
// every vertex is white.
func LoadOBJ(path string) (*Mesh, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "mesh: could not open mesh")
	}
	defer meshFile.Close()

	var matReader io.Reader = strings.NewReader("")
	matPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if matFile, err := os.Open(matPath); err == nil {
		defer matFile.Close()
		matReader = matFile
	}

	decoder, err := obj.DecodeReader(meshFile, matReader)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh: could not decode %s", path)
	}

	m, err := fromDecoder(decoder)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

func fromDecoder(decoder *obj.Decoder) (*Mesh, error) {
	m := &Mesh{}
	uniqueVertices := make(map[int]uint16)

	addVertex := func(face obj.Face, faceIndex int) error {
		vertInd := face.Vertices[faceIndex]
		index, vertexExists := uniqueVertices[vertInd]

		if !vertexExists {
			if (vertInd+1)*3 > len(decoder.Vertices) {
				return errors.Newf("mesh: face references missing vertex %d", vertInd)
			}
			if len(m.Vertices) >= MaxVertices {
				return ErrTooManyVertices
			}

			index = uint16(len(m.Vertices))
			m.Vertices = append(m.Vertices, Vertex{
				Position: mgl32.Vec3{
					decoder.Vertices[vertInd*3],
					decoder.Vertices[vertInd*3+1],
					decoder.Vertices[vertInd*3+2],
				},
				Color: mgl32.Vec3{1, 1, 1},
			})
			uniqueVertices[vertInd] = index
		}

		m.Indices = append(m.Indices, index)
		return nil
	}

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					if err := addVertex(face, corner); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func BindingDescriptions() []core1_0.VertexInputBindingDescription {
	v := Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func AttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}
