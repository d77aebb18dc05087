// Package formats provides parsers and writers for editable game asset files.
// GMSH (Geometry Mesh) container format for drawables with raw vertex and index buffers.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-meshedit/pkg/encoding"
)

// GMSH format errors.
var (
	ErrInvalidMeshMagic       = errors.New("invalid GMSH magic: expected 'GMSH'")
	ErrUnsupportedMeshVersion = errors.New("unsupported GMSH version")
	ErrTruncatedMeshData      = errors.New("truncated GMSH data")
	ErrInvalidModelCount      = errors.New("invalid GMSH model count")
	ErrInvalidGeometryCount   = errors.New("invalid GMSH geometry count")
	ErrInvalidStride          = errors.New("invalid GMSH vertex stride")
	ErrInvalidIndexWidth      = errors.New("invalid GMSH index width")
)

// Limits enforced while parsing.
const (
	MaxModels          = 1024
	MaxGeometries      = 4096
	MinVertexStride    = 12 // X, Y, Z float32 position
	maxVertexCount     = 1 << 24
	maxIndexCount      = 1 << 26
	meshNameLength     = 40
	geometryHasVertex  = 1 << 0
	geometryHasIndices = 1 << 1
)

// MeshVersion represents the GMSH file version.
type MeshVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v MeshVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v MeshVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// CurrentMeshVersion is the version written by Save.
var CurrentMeshVersion = MeshVersion{Major: 1, Minor: 1}

// VertexData is a raw vertex buffer of VertexCount records, VertexStride bytes each.
// Bytes [0,12) of every record hold the little-endian float32 X, Y, Z position.
type VertexData struct {
	VertexBytes  []byte
	VertexStride int
	VertexCount  int
}

// IndexBuffer is a triangle-list index buffer.
type IndexBuffer struct {
	Indices      []uint32
	IndicesCount uint32
}

// Geometry is one sub-mesh with its own vertex and index buffers.
// Either buffer may be nil.
type Geometry struct {
	VertexData     *VertexData
	IndexBuffer    *IndexBuffer
	IndicesCount   uint32
	TrianglesCount uint32
}

// Model groups the geometries drawn with one transform.
type Model struct {
	Name       string
	Geometries []*Geometry
}

// Drawable is the renderable part of an asset.
type Drawable struct {
	Models []*Model
}

// Asset represents a parsed GMSH file.
type Asset struct {
	Version  MeshVersion
	Name     string
	Drawable *Drawable // nil when the asset carries no drawable
}

// AllModels returns the drawable's models, or nil if the asset has no drawable.
func (a *Asset) AllModels() []*Model {
	if a == nil || a.Drawable == nil {
		return nil
	}
	return a.Drawable.Models
}

// TotalVertexCount returns the number of vertices across all geometries.
func (a *Asset) TotalVertexCount() int {
	total := 0
	for _, m := range a.AllModels() {
		if m == nil {
			continue
		}
		for _, g := range m.Geometries {
			if g != nil && g.VertexData != nil {
				total += g.VertexData.VertexCount
			}
		}
	}
	return total
}

// TotalFaceCount returns the number of triangles across all geometries.
func (a *Asset) TotalFaceCount() int {
	total := 0
	for _, m := range a.AllModels() {
		if m == nil {
			continue
		}
		for _, g := range m.Geometries {
			if g != nil && g.IndexBuffer != nil {
				total += len(g.IndexBuffer.Indices) / 3
			}
		}
	}
	return total
}

// Validate reports every structural problem found in the asset's buffers.
// A valid asset may still contain geometries without buffers.
func (a *Asset) Validate() error {
	if a == nil || a.Drawable == nil {
		return errors.New("asset has no drawable")
	}

	var err error
	for mi, m := range a.Drawable.Models {
		if m == nil {
			err = multierr.Append(err, fmt.Errorf("model %d: nil", mi))
			continue
		}
		for gi, g := range m.Geometries {
			if g == nil {
				err = multierr.Append(err, fmt.Errorf("model %d geometry %d: nil", mi, gi))
				continue
			}
			for _, gerr := range multierr.Errors(g.validate()) {
				err = multierr.Append(err, fmt.Errorf("model %d geometry %d: %w", mi, gi, gerr))
			}
		}
	}
	return err
}

func (g *Geometry) validate() error {
	var err error
	vd := g.VertexData
	if vd == nil {
		err = multierr.Append(err, errors.New("missing vertex data"))
	} else {
		if vd.VertexStride < MinVertexStride {
			err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidStride, vd.VertexStride))
		}
		if need := vd.VertexStride * vd.VertexCount; len(vd.VertexBytes) < need {
			err = multierr.Append(err, fmt.Errorf("vertex buffer holds %d bytes, need %d", len(vd.VertexBytes), need))
		}
	}

	ib := g.IndexBuffer
	if ib == nil {
		return multierr.Append(err, errors.New("missing index buffer"))
	}
	if len(ib.Indices)%3 != 0 {
		err = multierr.Append(err, fmt.Errorf("index count %d is not a multiple of 3", len(ib.Indices)))
	}
	if vd != nil {
		for i, idx := range ib.Indices {
			if int(idx) >= vd.VertexCount {
				err = multierr.Append(err, fmt.Errorf("index %d references vertex %d of %d", i, idx, vd.VertexCount))
				break
			}
		}
	}
	return err
}

// ParseMesh parses GMSH data from a byte slice.
func ParseMesh(data []byte) (*Asset, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedMeshData
	}

	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, ErrTruncatedMeshData
	}
	if string(magic) != "GMSH" {
		return nil, ErrInvalidMeshMagic
	}

	var verMajor, verMinor uint8
	binary.Read(r, binary.LittleEndian, &verMajor)
	binary.Read(r, binary.LittleEndian, &verMinor)

	asset := &Asset{
		Version: MeshVersion{Major: verMajor, Minor: verMinor},
	}

	// Supported versions: 1.0 - 1.1
	if asset.Version.Major != 1 || asset.Version.Minor > 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMeshVersion, asset.Version)
	}

	name, err := readString(r, meshNameLength)
	if err != nil {
		return nil, err
	}
	asset.Name = name

	var hasDrawable uint8
	if err := binary.Read(r, binary.LittleEndian, &hasDrawable); err != nil {
		return nil, ErrTruncatedMeshData
	}
	if hasDrawable == 0 {
		return asset, nil
	}

	var modelCount int32
	if err := binary.Read(r, binary.LittleEndian, &modelCount); err != nil {
		return nil, ErrTruncatedMeshData
	}
	if modelCount < 0 || modelCount > MaxModels {
		return nil, fmt.Errorf("%w: %d", ErrInvalidModelCount, modelCount)
	}

	asset.Drawable = &Drawable{Models: make([]*Model, modelCount)}
	for i := int32(0); i < modelCount; i++ {
		model, err := parseModel(r, asset.Version)
		if err != nil {
			return nil, fmt.Errorf("parsing model %d: %w", i, err)
		}
		asset.Drawable.Models[i] = model
	}

	return asset, nil
}

// parseModel parses a single model and its geometries.
func parseModel(r *bytes.Reader, version MeshVersion) (*Model, error) {
	name, err := readString(r, meshNameLength)
	if err != nil {
		return nil, err
	}
	model := &Model{Name: name}

	var geometryCount int32
	if err := binary.Read(r, binary.LittleEndian, &geometryCount); err != nil {
		return nil, ErrTruncatedMeshData
	}
	if geometryCount < 0 || geometryCount > MaxGeometries {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGeometryCount, geometryCount)
	}

	model.Geometries = make([]*Geometry, geometryCount)
	for i := int32(0); i < geometryCount; i++ {
		geom, err := parseGeometry(r, version)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		model.Geometries[i] = geom
	}
	return model, nil
}

func parseGeometry(r *bytes.Reader, version MeshVersion) (*Geometry, error) {
	geom := &Geometry{}

	var flags uint8
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, ErrTruncatedMeshData
	}

	if flags&geometryHasVertex != 0 {
		var stride uint16
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &stride); err != nil {
			return nil, ErrTruncatedMeshData
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, ErrTruncatedMeshData
		}
		if stride < MinVertexStride {
			return nil, fmt.Errorf("%w: %d", ErrInvalidStride, stride)
		}
		if count > maxVertexCount {
			return nil, fmt.Errorf("%w: vertex count %d", ErrTruncatedMeshData, count)
		}

		size := int(stride) * int(count)
		if r.Len() < size {
			return nil, ErrTruncatedMeshData
		}
		buf := make([]byte, size)
		io.ReadFull(r, buf)

		geom.VertexData = &VertexData{
			VertexBytes:  buf,
			VertexStride: int(stride),
			VertexCount:  int(count),
		}
	}

	if flags&geometryHasIndices != 0 {
		var width uint8
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
			return nil, ErrTruncatedMeshData
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, ErrTruncatedMeshData
		}
		if width != 2 && width != 4 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidIndexWidth, width)
		}
		if count > maxIndexCount || r.Len() < int(count)*int(width) {
			return nil, ErrTruncatedMeshData
		}

		indices := make([]uint32, count)
		if width == 2 {
			raw := make([]uint16, count)
			binary.Read(r, binary.LittleEndian, raw)
			for i, v := range raw {
				indices[i] = uint32(v)
			}
		} else {
			binary.Read(r, binary.LittleEndian, indices)
		}

		geom.IndexBuffer = &IndexBuffer{Indices: indices, IndicesCount: count}
		geom.IndicesCount = count
		geom.TrianglesCount = count / 3
	}

	// Triangle count (v1.1+), informational only
	if version.AtLeast(1, 1) {
		var triangles uint32
		if err := binary.Read(r, binary.LittleEndian, &triangles); err != nil {
			return nil, ErrTruncatedMeshData
		}
		geom.TrianglesCount = triangles
	}

	return geom, nil
}

// ParseMeshFile parses a GMSH file from disk.
func ParseMeshFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GMSH file: %w", err)
	}
	return ParseMesh(data)
}

// Save serializes the asset in the current GMSH version.
// Index buffers are written as uint16 when every index fits.
func (a *Asset) Save() ([]byte, error) {
	if a == nil {
		return nil, errors.New("nil asset")
	}

	var buf bytes.Buffer
	buf.WriteString("GMSH")
	buf.WriteByte(CurrentMeshVersion.Major)
	buf.WriteByte(CurrentMeshVersion.Minor)
	writeString(&buf, a.Name, meshNameLength)

	if a.Drawable == nil {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	buf.WriteByte(1)

	if len(a.Drawable.Models) > MaxModels {
		return nil, fmt.Errorf("%w: %d", ErrInvalidModelCount, len(a.Drawable.Models))
	}
	binary.Write(&buf, binary.LittleEndian, int32(len(a.Drawable.Models)))

	for mi, m := range a.Drawable.Models {
		if m == nil {
			m = &Model{}
		}
		writeString(&buf, m.Name, meshNameLength)
		if len(m.Geometries) > MaxGeometries {
			return nil, fmt.Errorf("model %d: %w: %d", mi, ErrInvalidGeometryCount, len(m.Geometries))
		}
		binary.Write(&buf, binary.LittleEndian, int32(len(m.Geometries)))

		for gi, g := range m.Geometries {
			if err := writeGeometry(&buf, g); err != nil {
				return nil, fmt.Errorf("model %d geometry %d: %w", mi, gi, err)
			}
		}
	}

	return buf.Bytes(), nil
}

func writeGeometry(buf *bytes.Buffer, g *Geometry) error {
	if g == nil {
		g = &Geometry{}
	}

	var flags uint8
	if g.VertexData != nil {
		flags |= geometryHasVertex
	}
	if g.IndexBuffer != nil {
		flags |= geometryHasIndices
	}
	buf.WriteByte(flags)

	if vd := g.VertexData; vd != nil {
		if vd.VertexStride < MinVertexStride || vd.VertexStride > 0xFFFF {
			return fmt.Errorf("%w: %d", ErrInvalidStride, vd.VertexStride)
		}
		binary.Write(buf, binary.LittleEndian, uint16(vd.VertexStride))
		binary.Write(buf, binary.LittleEndian, uint32(vd.VertexCount))

		size := vd.VertexStride * vd.VertexCount
		if len(vd.VertexBytes) >= size {
			buf.Write(vd.VertexBytes[:size])
		} else {
			// Short buffers are zero padded so the record count stays honest.
			buf.Write(vd.VertexBytes)
			buf.Write(make([]byte, size-len(vd.VertexBytes)))
		}
	}

	var triangles uint32
	if ib := g.IndexBuffer; ib != nil {
		width := uint8(2)
		for _, idx := range ib.Indices {
			if idx > 0xFFFF {
				width = 4
				break
			}
		}
		buf.WriteByte(width)
		binary.Write(buf, binary.LittleEndian, uint32(len(ib.Indices)))
		if width == 2 {
			raw := make([]uint16, len(ib.Indices))
			for i, idx := range ib.Indices {
				raw[i] = uint16(idx)
			}
			binary.Write(buf, binary.LittleEndian, raw)
		} else {
			binary.Write(buf, binary.LittleEndian, ib.Indices)
		}
		triangles = uint32(len(ib.Indices) / 3)
	}

	binary.Write(buf, binary.LittleEndian, triangles)
	return nil
}

// readString reads a fixed-length null-terminated EUC-KR string from a reader.
func readString(r *bytes.Reader, length int) (string, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ErrTruncatedMeshData
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return encoding.EUCKRToUTF8(buf), nil
}

// writeString writes s as a fixed-length null-padded EUC-KR field, truncating
// to leave room for the terminator.
func writeString(buf *bytes.Buffer, s string, length int) {
	field := make([]byte, length)
	copy(field, encoding.TruncateEUCKR(encoding.UTF8ToEUCKR(s), length-1))
	buf.Write(field)
}
