package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLB         = errors.New("invalid GLB container")
	errInvalidDataURI     = errors.New("invalid data URI")
	errAccessorRange      = errors.New("accessor exceeds its buffer")
)

// gltfParser holds a decoded document and its resolved buffers.
type gltfParser struct {
	baseDir string
	doc     *gltfDocument
}

// parseGLTFFile reads a .gltf or .glb file; the container is detected from the magic number.
func parseGLTFFile(path string) (*gltfParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseGLTF(data, filepath.Dir(path))
}

// parseGLTFReader parses a stream. External buffer and image URIs resolve against baseDir.
func parseGLTFReader(r io.Reader, baseDir string) (*gltfParser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read glTF stream: %w", err)
	}
	return parseGLTF(data, baseDir)
}

func parseGLTF(data []byte, baseDir string) (*gltfParser, error) {
	p := &gltfParser{baseDir: baseDir}

	jsonData, bin := data, []byte(nil)
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if jsonData, bin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}
	for i := range doc.Buffers {
		if err := p.loadBuffer(&doc.Buffers[i], i, bin); err != nil {
			return nil, err
		}
	}
	p.doc = &doc
	return p, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
func splitGLB(data []byte) ([]byte, []byte, error) {
	if len(data) < 12 {
		return nil, nil, fmt.Errorf("%w: %d byte header", errInvalidGLB, len(data))
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != glbVersion {
		return nil, nil, fmt.Errorf("%w: version %d", errInvalidGLB, v)
	}
	length := min(int(binary.LittleEndian.Uint32(data[8:])), len(data))

	var jsonChunk, binChunk []byte
	for off := 12; off+8 <= length; {
		size := int(binary.LittleEndian.Uint32(data[off:]))
		kind := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if off+size > length {
			return nil, nil, fmt.Errorf("%w: chunk of %d bytes at %d overruns the file", errInvalidGLB, size, off)
		}
		switch kind {
		case glbChunkJSON:
			jsonChunk = data[off : off+size]
		case glbChunkBIN:
			binChunk = data[off : off+size]
		}
		off += size
	}
	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: no JSON chunk", errInvalidGLB)
	}
	return jsonChunk, binChunk, nil
}

func (p *gltfParser) loadBuffer(buf *gltfBuffer, index int, bin []byte) error {
	switch {
	case buf.URI == "" && index == 0 && bin != nil:
		buf.data = bin
	case buf.URI == "":
		return fmt.Errorf("buffer %d has neither a URI nor a GLB chunk", index)
	default:
		data, err := p.resolveURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", index, err)
		}
		buf.data = data
	}
	if len(buf.data) < buf.ByteLength {
		return fmt.Errorf("buffer %d holds %d bytes, %d declared", index, len(buf.data), buf.ByteLength)
	}
	return nil
}

// resolveURI loads a data: URI or a file relative to the document.
func (p *gltfParser) resolveURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := decodeDataURI(uri)
		return data, err
	}
	data, err := os.ReadFile(filepath.Join(p.baseDir, filepath.FromSlash(uri)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", uri, err)
	}
	return data, nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errInvalidDataURI
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", errInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, mime, nil
}

// bufferView returns the bytes of a buffer view.
func (p *gltfParser) bufferView(index int) ([]byte, error) {
	if index < 0 || index >= len(p.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", index)
	}
	bv := p.doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(p.doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := p.doc.Buffers[bv.Buffer].data
	if bv.ByteOffset+bv.ByteLength > len(data) {
		return nil, fmt.Errorf("buffer view %d: %w", index, errAccessorRange)
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfByte, gltfUnsignedByte:
		return 1
	case gltfShort, gltfUnsignedShort:
		return 2
	case gltfUnsignedInt, gltfFloat:
		return 4
	}
	return 0
}

func componentCount(accessorType string) int {
	switch accessorType {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4", "MAT2":
		return 4
	case "MAT3":
		return 9
	case "MAT4":
		return 16
	}
	return 0
}

// readComponents decodes an accessor into one float per component. Normalized integer
// components map to [0, 1] (or [-1, 1] when signed); other integers convert unchanged.
func (p *gltfParser) readComponents(index int, accessorType string) ([]float32, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	acc := p.doc.Accessors[index]
	if acc.Type != accessorType {
		return nil, fmt.Errorf("accessor %d is %s, want %s", index, acc.Type, accessorType)
	}
	if acc.Sparse != nil {
		return nil, fmt.Errorf("accessor %d: sparse accessors are not supported", index)
	}
	n := componentCount(acc.Type)
	size := componentSize(acc.ComponentType)
	if n == 0 || size == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	out := make([]float32, acc.Count*n)
	if acc.BufferView == nil {
		return out, nil
	}
	view, err := p.bufferView(*acc.BufferView)
	if err != nil {
		return nil, err
	}

	stride := n * size
	if bv := p.doc.BufferViews[*acc.BufferView]; bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	if acc.Count > 0 && acc.ByteOffset+(acc.Count-1)*stride+n*size > len(view) {
		return nil, fmt.Errorf("accessor %d: %w", index, errAccessorRange)
	}

	for i := 0; i < acc.Count; i++ {
		base := acc.ByteOffset + i*stride
		for c := 0; c < n; c++ {
			out[i*n+c] = decodeComponent(view[base+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, nil
}

func decodeComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	case gltfUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / math.MaxUint16
		}
		return v
	case gltfShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/math.MaxInt16, -1)
		}
		return v
	case gltfUnsignedByte:
		if normalized {
			return float32(b[0]) / math.MaxUint8
		}
		return float32(b[0])
	case gltfByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/math.MaxInt8, -1)
		}
		return v
	}
	return 0
}

// readIndices decodes an unsigned scalar accessor into triangle indices.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	switch ct := p.doc.Accessors[index].ComponentType; ct {
	case gltfUnsignedByte, gltfUnsignedShort, gltfUnsignedInt:
	default:
		return nil, fmt.Errorf("accessor %d: unsupported index component type %d", index, ct)
	}
	values, err := p.readComponents(index, "SCALAR")
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out, nil
}
